package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/fightstreet/cfn-stats/external/buckler"
	"github.com/fightstreet/cfn-stats/external/notify"
	"github.com/fightstreet/cfn-stats/internal/config"
	"github.com/fightstreet/cfn-stats/internal/domain/club"
	"github.com/fightstreet/cfn-stats/internal/domain/ranking"
	repocache "github.com/fightstreet/cfn-stats/internal/infrastructure/repository/cache"
	"github.com/fightstreet/cfn-stats/internal/infrastructure/repository/postgres"
	"github.com/fightstreet/cfn-stats/internal/interfaces/httpapi"
	"github.com/fightstreet/cfn-stats/internal/platform/cache"
	"github.com/fightstreet/cfn-stats/internal/platform/logging"
	"github.com/fightstreet/cfn-stats/internal/platform/resilience"
	"github.com/fightstreet/cfn-stats/internal/usecase"
)

// Services bundles the application's wired use cases together with the
// resources they borrow. Close releases the database pool.
type Services struct {
	Ingestion   *usecase.IngestionService
	Leaderboard *usecase.LeaderboardService

	db *sqlx.DB
}

func (s *Services) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewServices wires the full capture-and-serve stack: postgres repositories,
// the document fetch engine, the optional notify publisher, and the two use
// case services on top.
func NewServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database %q: %w", dbNameFromURL(cfg.DBURL), err)
	}

	var boardCache *cache.Store
	if cfg.CacheEnabled {
		boardCache = cache.NewStore(cfg.CacheTTL)
	}

	var (
		rankingRepo ranking.Repository = postgres.NewRankingRepository(db)
		clubRepo    club.Repository    = postgres.NewClubMemberRepository(db)
	)
	historicRepo := postgres.NewHistoricRepository(db)
	lastUpdateRepo := postgres.NewLastUpdateRepository(db)
	if boardCache != nil {
		rankingRepo = repocache.NewRankingRepository(rankingRepo, boardCache)
		clubRepo = repocache.NewClubMemberRepository(clubRepo, boardCache)
	}

	zone, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load time zone %q: %w", cfg.TimeZone, err)
	}

	client := buckler.NewClient(buckler.ClientConfig{
		BaseURL:    cfg.BucklerBaseURL,
		BuildToken: cfg.BucklerBuildToken,
		Session: buckler.SessionCookies{
			BucklerID:         cfg.BucklerCookieID,
			BucklerRID:        cfg.BucklerCookieRID,
			BucklerPraiseDate: cfg.BucklerCookiePraiseDate,
		},
		HomeID:  cfg.BucklerHomeID,
		Timeout: cfg.BucklerTimeout,
		Logger:  logger,
	})
	fetcher, err := buckler.NewFetcher(buckler.FetcherConfig{
		Client:       client,
		Cache:        buckler.NewFileCache(cfg.DocumentCacheRoot),
		RequestDelay: cfg.BucklerRequestDelay,
		Zone:         zone,
		Logger:       logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build fetch engine: %w", err)
	}

	var alerter usecase.Alerter
	if cfg.NotifyEnabled {
		alerter = notify.NewPublisher(notify.PublisherConfig{
			BaseURL: cfg.NotifyBaseURL,
			Channel: cfg.NotifyChannel,
			Timeout: cfg.NotifyTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.NotifyCircuitEnabled,
				FailureThreshold: cfg.NotifyCircuitFailureCount,
				OpenTimeout:      cfg.NotifyCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.NotifyCircuitHalfOpenMax,
			},
		}, logger)
	}

	ingestionSvc, err := usecase.NewIngestionService(usecase.IngestionServiceConfig{
		Fetcher:         fetcher,
		RankingRepo:     rankingRepo,
		HistoricRepo:    historicRepo,
		ClubRepo:        clubRepo,
		LastUpdateRepo:  lastUpdateRepo,
		Alerter:         alerter,
		Logger:          logger,
		Zone:            zone,
		Workers:         cfg.ScrapeWorkers,
		HiddenMemberIDs: cfg.HiddenMemberIDs,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build ingestion service: %w", err)
	}

	leaderboardSvc := usecase.NewLeaderboardService(
		rankingRepo,
		historicRepo,
		clubRepo,
		lastUpdateRepo,
		boardCache,
		logger,
	)

	return &Services{
		Ingestion:   ingestionSvc,
		Leaderboard: leaderboardSvc,
		db:          db,
	}, nil
}

// NewHTTPServer wires services into the HTTP API surface. The caller owns the
// returned Services and must Close them after the server stops.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger, httpLogger *slog.Logger) (*http.Server, *Services, error) {
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	services, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	handler := httpapi.NewHandler(
		services.Leaderboard,
		services.Ingestion,
		cfg.Roster,
		cfg.ClubID,
		httpLogger,
	)
	router := httpapi.NewRouter(handler, httpLogger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, services, nil
}
