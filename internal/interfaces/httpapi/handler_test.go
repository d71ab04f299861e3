package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/fightstreet/cfn-stats/internal/domain/club"
	"github.com/fightstreet/cfn-stats/internal/domain/ranking"
	"github.com/fightstreet/cfn-stats/internal/infrastructure/repository/memory"
	"github.com/fightstreet/cfn-stats/internal/usecase"
)

func newTestRouter(t *testing.T, seed func(ctx context.Context, rankingRepo *memory.RankingRepository, clubRepo *memory.ClubMemberRepository)) http.Handler {
	t.Helper()

	rankingRepo := memory.NewRankingRepository()
	historicRepo := memory.NewHistoricRepository()
	clubRepo := memory.NewClubMemberRepository()
	lastUpdateRepo := memory.NewLastUpdateRepository()

	if seed != nil {
		seed(context.Background(), rankingRepo, clubRepo)
	}

	leaderboardSvc := usecase.NewLeaderboardService(rankingRepo, historicRepo, clubRepo, lastUpdateRepo, nil, nil)
	handler := NewHandler(leaderboardSvc, nil, nil, "", slog.Default())

	return NewRouter(handler, slog.Default(), false, []string{"*"}, "job-secret")
}

type testEnvelope struct {
	APIVersion string          `json:"apiVersion"`
	Data       json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, body []byte) testEnvelope {
	t.Helper()
	var envelope testEnvelope
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func TestGetLeaderboardsByDate(t *testing.T) {
	date := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	router := newTestRouter(t, func(ctx context.Context, rankingRepo *memory.RankingRepository, clubRepo *memory.ClubMemberRepository) {
		_ = rankingRepo.InsertMany(ctx, []ranking.Snapshot{
			{Date: date, PlayerID: "111", PlayerName: "alpha", CharID: "1", LeaguePoints: 25000, Phase: 2},
			{Date: date, PlayerID: "222", PlayerName: "beta", CharID: "10", LeaguePoints: 9000, Phase: 2},
		})
		_ = clubRepo.UpsertMany(ctx, []club.Member{
			{ClubID: "club1", PlayerID: "111", PlayerName: "alpha"},
			{ClubID: "club1", PlayerID: "222", PlayerName: "beta"},
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboards/2024-06-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec.Body.Bytes())
	if envelope.APIVersion != "2.0" {
		t.Fatalf("unexpected apiVersion: %q", envelope.APIVersion)
	}

	var boards usecase.Leaderboards
	if err := sonic.Unmarshal(envelope.Data, &boards); err != nil {
		t.Fatalf("decode boards: %v", err)
	}
	if boards.Date != "2024-06-15" {
		t.Fatalf("unexpected board date: %q", boards.Date)
	}
	if len(boards.LeaguePoints.All) != 2 {
		t.Fatalf("expected 2 league point rows, got %d", len(boards.LeaguePoints.All))
	}
	if boards.LeaguePoints.All[0].PlayerID != "111" || boards.LeaguePoints.All[0].Rank != 1 {
		t.Fatalf("unexpected top entry: %+v", boards.LeaguePoints.All[0])
	}
}

func TestGetLeaderboardsByDate_RejectsMalformedDate(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboards/15-06-2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetLatestLeaderboards_EmptyWithoutCompleteRun(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboards", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec.Body.Bytes())
	var boards usecase.Leaderboards
	if err := sonic.Unmarshal(envelope.Data, &boards); err != nil {
		t.Fatalf("decode boards: %v", err)
	}
	if boards.Date != "" {
		t.Fatalf("expected empty boards, got date %q", boards.Date)
	}
}

func TestListDates(t *testing.T) {
	router := newTestRouter(t, func(ctx context.Context, rankingRepo *memory.RankingRepository, _ *memory.ClubMemberRepository) {
		_ = rankingRepo.InsertMany(ctx, []ranking.Snapshot{
			{Date: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), PlayerID: "111", CharID: "1", LeaguePoints: 100},
			{Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), PlayerID: "111", CharID: "1", LeaguePoints: 200},
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/dates", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec.Body.Bytes())
	var dates []string
	if err := sonic.Unmarshal(envelope.Data, &dates); err != nil {
		t.Fatalf("decode dates: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2024-06-15" {
		t.Fatalf("unexpected dates: %v", dates)
	}
}

func TestRunDailyCapture_RequiresJobToken(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/daily-capture", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRunDailyCapture_UnavailableWithoutIngestion(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/daily-capture", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without capture wiring, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
