package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fightstreet/cfn-stats/external/buckler"
	"github.com/fightstreet/cfn-stats/internal/domain/club"
	"github.com/fightstreet/cfn-stats/internal/domain/historic"
	"github.com/fightstreet/cfn-stats/internal/domain/lastupdate"
	"github.com/fightstreet/cfn-stats/internal/domain/ranking"
	"github.com/fightstreet/cfn-stats/internal/platform/logging"
)

// DocumentFetcher is the slice of the fetch engine the ingestion flow needs.
type DocumentFetcher interface {
	Fetch(ctx context.Context, req buckler.FetchRequest) (*buckler.Document, bool, error)
	FetchAll(ctx context.Context, subject buckler.PaginatedSubject, ownerID string, date time.Time, exhaustive bool) ([]*buckler.Document, error)
}

// Alerter pushes short operator notifications. Failures are logged, never
// fatal.
type Alerter interface {
	Send(ctx context.Context, message string) error
}

type IngestionServiceConfig struct {
	Fetcher        DocumentFetcher
	RankingRepo    ranking.Repository
	HistoricRepo   historic.Repository
	ClubRepo       club.Repository
	LastUpdateRepo lastupdate.Repository
	Alerter        Alerter
	Logger         *logging.Logger
	Zone           *time.Location
	// Workers caps how many owners are captured concurrently. Each owner's
	// own page sequence stays serialized inside the fetch engine.
	Workers int
	// HiddenMemberIDs are roster accounts excluded from public boards.
	HiddenMemberIDs []string
}

// IngestionService drives daily captures: fetch documents per owner, flatten
// them, and insert rows idempotently. Any fetch or verification failure halts
// the whole run; a half-finished day is safe to rerun because inserts are
// conflict no-ops.
type IngestionService struct {
	fetcher        DocumentFetcher
	rankingRepo    ranking.Repository
	historicRepo   historic.Repository
	clubRepo       club.Repository
	lastUpdateRepo lastupdate.Repository
	alerter        Alerter
	logger         *logging.Logger
	zone           *time.Location
	workers        int
	hidden         map[string]struct{}
}

func NewIngestionService(cfg IngestionServiceConfig) (*IngestionService, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("%w: document fetcher is required", ErrInvalidInput)
	}
	if cfg.RankingRepo == nil || cfg.HistoricRepo == nil || cfg.ClubRepo == nil || cfg.LastUpdateRepo == nil {
		return nil, fmt.Errorf("%w: all four repositories are required", ErrInvalidInput)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	zone := cfg.Zone
	if zone == nil {
		zone = time.UTC
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	hidden := make(map[string]struct{}, len(cfg.HiddenMemberIDs))
	for _, id := range cfg.HiddenMemberIDs {
		if id = strings.TrimSpace(id); id != "" {
			hidden[id] = struct{}{}
		}
	}

	return &IngestionService{
		fetcher:        cfg.Fetcher,
		rankingRepo:    cfg.RankingRepo,
		historicRepo:   cfg.HistoricRepo,
		clubRepo:       cfg.ClubRepo,
		lastUpdateRepo: cfg.LastUpdateRepo,
		alerter:        cfg.Alerter,
		logger:         logger,
		zone:           zone,
		workers:        workers,
		hidden:         hidden,
	}, nil
}

// normalizeDate pins the capture date to noon in the reference zone, keeping
// date arithmetic clear of DST transitions.
func (s *IngestionService) normalizeDate(t time.Time) time.Time {
	local := t.In(s.zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, s.zone)
}

// SyncOverview captures one owner's profile overview for the date and
// persists its ranking snapshots and daily summary.
func (s *IngestionService) SyncOverview(ctx context.Context, ownerID string, date time.Time) ([]ranking.Snapshot, historic.Stats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncOverview")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, historic.Stats{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	date = s.normalizeDate(date)

	doc, _, err := s.fetcher.Fetch(ctx, buckler.FetchRequest{Subject: buckler.Overview{}, OwnerID: ownerID, Date: date})
	if err != nil {
		return nil, historic.Stats{}, fmt.Errorf("fetch overview owner=%s: %w", ownerID, err)
	}

	snapshots, err := BuildRankingRows(doc, ownerID, date)
	if err != nil {
		return nil, historic.Stats{}, err
	}
	summary, err := BuildHistoricRow(doc, ownerID, date, s.zone)
	if err != nil {
		return nil, historic.Stats{}, err
	}

	if err := s.rankingRepo.InsertMany(ctx, snapshots); err != nil {
		return nil, historic.Stats{}, fmt.Errorf("insert ranking snapshots owner=%s: %w", ownerID, err)
	}
	if err := s.historicRepo.InsertMany(ctx, []historic.Stats{summary}); err != nil {
		return nil, historic.Stats{}, fmt.Errorf("insert historic summary owner=%s: %w", ownerID, err)
	}

	s.logger.InfoContext(ctx, "overview ingested",
		"owner_id", ownerID, "date", date.Format(time.DateOnly), "ranked_characters", len(snapshots))
	return snapshots, summary, nil
}

// SyncAvatar captures the owner's avatar document into the cache. Nothing is
// persisted to the sink; the cached document feeds offline tooling.
func (s *IngestionService) SyncAvatar(ctx context.Context, ownerID string, date time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncAvatar")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	_, _, err := s.fetcher.Fetch(ctx, buckler.FetchRequest{Subject: buckler.Avatar{}, OwnerID: ownerID, Date: s.normalizeDate(date)})
	if err != nil {
		return fmt.Errorf("fetch avatar owner=%s: %w", ownerID, err)
	}
	return nil
}

// SyncBattlelog captures one battlelog category for the owner. Delta mode
// stops paging once a page holds only pre-today replays.
func (s *IngestionService) SyncBattlelog(ctx context.Context, ownerID string, category buckler.MatchCategory, date time.Time, exhaustive bool) ([]*buckler.Document, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncBattlelog")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	pages, err := s.fetcher.FetchAll(ctx, buckler.Battlelog{Category: category}, ownerID, s.normalizeDate(date), exhaustive)
	if err != nil {
		return nil, fmt.Errorf("fetch battlelog owner=%s category=%s: %w", ownerID, category, err)
	}
	return pages, nil
}

// SyncClub refreshes the club roster for the date.
func (s *IngestionService) SyncClub(ctx context.Context, clubID string, date time.Time) ([]club.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncClub")
	defer span.End()

	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return nil, fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}

	doc, _, err := s.fetcher.Fetch(ctx, buckler.FetchRequest{Subject: buckler.Club{}, OwnerID: clubID, Date: s.normalizeDate(date)})
	if err != nil {
		return nil, fmt.Errorf("fetch club roster club=%s: %w", clubID, err)
	}

	members, err := BuildClubMembers(doc, clubID, s.hidden, s.zone)
	if err != nil {
		return nil, err
	}
	if err := s.clubRepo.UpsertMany(ctx, members); err != nil {
		return nil, fmt.Errorf("upsert club members club=%s: %w", clubID, err)
	}

	s.logger.InfoContext(ctx, "club roster ingested", "club_id", clubID, "members", len(members))
	return members, nil
}

type DailyRunInput struct {
	Roster     []string
	ClubID     string
	Date       time.Time
	Exhaustive bool
}

type DailyRunResult struct {
	Date            time.Time
	OwnersProcessed int
	RankingRows     int
	BattlelogPages  int
	ClubMembers     int
}

// RunDaily captures the whole roster for one date: club roster first, then
// every owner's overview, avatar, and battlelog categories. Owners run on a
// worker pool; the first failure cancels the rest and halts the run, which is
// deliberate: a loud halt beats a silently incomplete day.
func (s *IngestionService) RunDaily(ctx context.Context, input DailyRunInput) (DailyRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.RunDaily")
	defer span.End()

	if len(input.Roster) == 0 {
		return DailyRunResult{}, fmt.Errorf("%w: roster is empty", ErrInvalidInput)
	}

	date := s.normalizeDate(input.Date)
	result := DailyRunResult{Date: date}

	if err := s.lastUpdateRepo.Start(ctx, date); err != nil {
		return DailyRunResult{}, fmt.Errorf("record run start: %w", err)
	}

	if input.ClubID != "" {
		members, err := s.SyncClub(ctx, input.ClubID, date)
		if err != nil {
			return DailyRunResult{}, s.failRun(ctx, date, err)
		}
		result.ClubMembers = len(members)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return DailyRunResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		workers      sync.WaitGroup
		rankingRows  atomic.Int64
		pageCount    atomic.Int64
		firstErrOnce sync.Once
		firstErr     error
	)
	fail := func(err error) {
		firstErrOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for _, ownerID := range input.Roster {
		ownerID := ownerID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if runCtx.Err() != nil {
				return
			}

			snapshots, _, err := s.SyncOverview(runCtx, ownerID, date)
			if err != nil {
				fail(err)
				return
			}
			rankingRows.Add(int64(len(snapshots)))

			if err := s.SyncAvatar(runCtx, ownerID, date); err != nil {
				fail(err)
				return
			}

			for _, category := range buckler.MatchCategories {
				pages, err := s.SyncBattlelog(runCtx, ownerID, category, date, input.Exhaustive)
				if err != nil {
					fail(err)
					return
				}
				pageCount.Add(int64(len(pages)))
			}
		}); err != nil {
			workers.Done()
			fail(fmt.Errorf("submit owner to worker pool: %w", err))
			break
		}
	}

	workers.Wait()
	if firstErr != nil {
		return DailyRunResult{}, s.failRun(ctx, date, firstErr)
	}

	if err := s.lastUpdateRepo.MarkDownloadComplete(ctx, date); err != nil {
		return DailyRunResult{}, fmt.Errorf("mark download complete: %w", err)
	}
	if err := s.lastUpdateRepo.MarkParsingComplete(ctx, date); err != nil {
		return DailyRunResult{}, fmt.Errorf("mark parsing complete: %w", err)
	}

	result.OwnersProcessed = len(input.Roster)
	result.RankingRows = int(rankingRows.Load())
	result.BattlelogPages = int(pageCount.Load())

	s.alert(ctx, fmt.Sprintf("stats inserted for %s", date.Format("Jan 02 2006")))
	s.logger.InfoContext(ctx, "daily run complete",
		"date", date.Format(time.DateOnly),
		"owners", result.OwnersProcessed,
		"ranking_rows", result.RankingRows,
		"battlelog_pages", result.BattlelogPages)
	return result, nil
}

// RebuildDate re-ingests one past date from cached documents only. Owners
// with no cached overview for the date are skipped; the remote service
// cannot backfill them.
func (s *IngestionService) RebuildDate(ctx context.Context, roster []string, date time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.RebuildDate")
	defer span.End()

	if len(roster) == 0 {
		return fmt.Errorf("%w: roster is empty", ErrInvalidInput)
	}

	date = s.normalizeDate(date)
	if err := s.lastUpdateRepo.Start(ctx, date); err != nil {
		return fmt.Errorf("record run start: %w", err)
	}

	restored := 0
	for _, ownerID := range roster {
		_, _, err := s.SyncOverview(ctx, ownerID, date)
		if err != nil {
			if stderrors.Is(err, buckler.ErrExpired) {
				s.logger.WarnContext(ctx, "no cached overview, skipping owner",
					"owner_id", ownerID, "date", date.Format(time.DateOnly))
				continue
			}
			return err
		}
		restored++
	}

	if err := s.lastUpdateRepo.MarkDownloadComplete(ctx, date); err != nil {
		return fmt.Errorf("mark download complete: %w", err)
	}
	if err := s.lastUpdateRepo.MarkParsingComplete(ctx, date); err != nil {
		return fmt.Errorf("mark parsing complete: %w", err)
	}

	s.logger.InfoContext(ctx, "historical date rebuilt",
		"date", date.Format(time.DateOnly), "owners_restored", restored)
	return nil
}

func (s *IngestionService) failRun(ctx context.Context, date time.Time, err error) error {
	s.alert(ctx, fmt.Sprintf("capture run failed for %s: %v", date.Format("Jan 02 2006"), err))
	return err
}

func (s *IngestionService) alert(ctx context.Context, message string) {
	if s.alerter == nil {
		return
	}
	if err := s.alerter.Send(ctx, message); err != nil {
		s.logger.WarnContext(ctx, "alert delivery failed", "error", err)
	}
}
