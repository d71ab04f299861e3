package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fightstreet/cfn-stats/internal/usecase"
)

type Handler struct {
	leaderboardService *usecase.LeaderboardService
	ingestionService   *usecase.IngestionService
	roster             []string
	clubID             string
	logger             *slog.Logger
	validator          *validator.Validate
}

func NewHandler(
	leaderboardService *usecase.LeaderboardService,
	ingestionService *usecase.IngestionService,
	roster []string,
	clubID string,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		leaderboardService: leaderboardService,
		ingestionService:   ingestionService,
		roster:             roster,
		clubID:             clubID,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetLeaderboardsByDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboardsByDate")
	defer span.End()

	raw := strings.TrimSpace(r.PathValue("date"))
	if err := h.validateRequest(ctx, leaderboardDateRequest{Date: raw}); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", usecase.ErrInvalidInput, raw))
		return
	}

	boards, err := h.leaderboardService.Leaderboard(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "build leaderboards failed", "date", raw, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boards)
}

func (h *Handler) GetLatestLeaderboards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestLeaderboards")
	defer span.End()

	boards, err := h.leaderboardService.LatestLeaderboard(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "build latest leaderboards failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boards)
}

func (h *Handler) ListDates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDates")
	defer span.End()

	dates, err := h.leaderboardService.ListDates(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list capture dates failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dates)
}

// RunDailyCapture triggers a full roster capture for today. The call blocks
// until the run finishes so the scheduler sees failures in the response.
func (h *Handler) RunDailyCapture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDailyCapture")
	defer span.End()

	if h.ingestionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: capture is not configured on this instance", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.ingestionService.RunDaily(ctx, usecase.DailyRunInput{
		Roster: h.roster,
		ClubID: h.clubID,
		Date:   time.Now(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "daily capture failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dailyRunResultDTO{
		Date:            result.Date.Format(time.DateOnly),
		OwnersProcessed: result.OwnersProcessed,
		RankingRows:     result.RankingRows,
		BattlelogPages:  result.BattlelogPages,
		ClubMembers:     result.ClubMembers,
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type leaderboardDateRequest struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

type dailyRunResultDTO struct {
	Date            string `json:"date"`
	OwnersProcessed int    `json:"ownersProcessed"`
	RankingRows     int    `json:"rankingRows"`
	BattlelogPages  int    `json:"battlelogPages"`
	ClubMembers     int    `json:"clubMembers"`
}
