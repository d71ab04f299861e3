package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fightstreet/cfn-stats/external/buckler"
	"github.com/fightstreet/cfn-stats/internal/infrastructure/repository/memory"
)

type fakeFetcher struct {
	mu          sync.Mutex
	overviewRaw string
	clubRaw     string
	failOwners  map[string]error
	fetchCalls  int
	pagesPerLog int
}

func (f *fakeFetcher) Fetch(_ context.Context, req buckler.FetchRequest) (*buckler.Document, bool, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()

	if err := f.failOwners[req.OwnerID]; err != nil {
		return nil, false, err
	}
	raw := f.overviewRaw
	if req.Subject.Name() == "club" {
		raw = f.clubRaw
	}
	doc, err := buckler.ParseDocument([]byte(raw))
	if err != nil {
		return nil, false, err
	}
	return doc, false, nil
}

func (f *fakeFetcher) FetchAll(ctx context.Context, subject buckler.PaginatedSubject, ownerID string, date time.Time, _ bool) ([]*buckler.Document, error) {
	pages := make([]*buckler.Document, 0, f.pagesPerLog)
	for i := 0; i < f.pagesPerLog; i++ {
		doc, _, err := f.Fetch(ctx, buckler.FetchRequest{Subject: subject, OwnerID: ownerID, Date: date, Page: i + 1})
		if err != nil {
			return nil, err
		}
		pages = append(pages, doc)
	}
	return pages, nil
}

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) Send(_ context.Context, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
	return nil
}

func (a *recordingAlerter) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.messages) == 0 {
		return ""
	}
	return a.messages[len(a.messages)-1]
}

type ingestionHarness struct {
	service    *IngestionService
	fetcher    *fakeFetcher
	rankRepo   *stubRankingRepository
	histRepo   *stubHistoricRepository
	clubRepo   *stubClubRepository
	lastUpdate *stubLastUpdateRepository
	alerter    *recordingAlerter
}

func newIngestionHarness(t *testing.T, fetcher *fakeFetcher) *ingestionHarness {
	t.Helper()

	h := &ingestionHarness{
		fetcher:    fetcher,
		rankRepo:   &stubRankingRepository{},
		histRepo:   &stubHistoricRepository{},
		clubRepo:   &stubClubRepository{},
		lastUpdate: newStubLastUpdateRepository(),
		alerter:    &recordingAlerter{},
	}
	service, err := NewIngestionService(IngestionServiceConfig{
		Fetcher:        fetcher,
		RankingRepo:    h.rankRepo,
		HistoricRepo:   h.histRepo,
		ClubRepo:       h.clubRepo,
		LastUpdateRepo: h.lastUpdate,
		Alerter:        h.alerter,
		Zone:           time.UTC,
		Workers:        2,
	})
	if err != nil {
		t.Fatalf("new ingestion service: %v", err)
	}
	h.service = service
	return h
}

func TestSyncOverview_PersistsRankingAndHistoricRows(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness(t, &fakeFetcher{overviewRaw: overviewFixture})

	snapshots, summary, err := h.service.SyncOverview(context.Background(), "2222222222", boardDate)
	if err != nil {
		t.Fatalf("sync overview: %v", err)
	}
	if len(snapshots) == 0 {
		t.Fatal("expected ranking snapshots")
	}
	if len(h.rankRepo.inserted) != len(snapshots) {
		t.Fatalf("ranking rows not persisted: got %d", len(h.rankRepo.inserted))
	}
	if len(h.histRepo.inserted) != 1 {
		t.Fatalf("expected one historic row, got %d", len(h.histRepo.inserted))
	}
	if summary.PlayerID != "2222222222" {
		t.Fatalf("unexpected summary owner: %q", summary.PlayerID)
	}
}

func TestRunDaily_MarksCompleteAndAlerts(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness(t, &fakeFetcher{
		overviewRaw: overviewFixture,
		clubRaw:     clubFixture,
		pagesPerLog: 1,
	})

	result, err := h.service.RunDaily(context.Background(), DailyRunInput{
		Roster: []string{"2222222222", "3333333333"},
		ClubID: "club42",
		Date:   boardDate,
	})
	if err != nil {
		t.Fatalf("run daily: %v", err)
	}

	if result.OwnersProcessed != 2 {
		t.Fatalf("owners processed: got=%d want=2", result.OwnersProcessed)
	}
	if result.ClubMembers == 0 {
		t.Fatal("club roster was not captured")
	}
	if want := 2 * len(buckler.MatchCategories); result.BattlelogPages != want {
		t.Fatalf("battlelog pages: got=%d want=%d", result.BattlelogPages, want)
	}

	run, err := h.lastUpdate.Get(context.Background(), result.Date)
	if err != nil {
		t.Fatalf("get run record: %v", err)
	}
	if !run.Complete() {
		t.Fatalf("run must be marked complete: %+v", run)
	}

	if msg := h.alerter.last(); !strings.Contains(msg, "stats inserted for") {
		t.Fatalf("expected success alert, got %q", msg)
	}
}

func TestRunDaily_FirstFailureHaltsAndAlerts(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("remote page changed shape")
	h := newIngestionHarness(t, &fakeFetcher{
		overviewRaw: overviewFixture,
		pagesPerLog: 1,
		failOwners:  map[string]error{"badowner": fetchErr},
	})

	_, err := h.service.RunDaily(context.Background(), DailyRunInput{
		Roster: []string{"2222222222", "badowner"},
		Date:   boardDate,
	})
	if err == nil {
		t.Fatal("expected the run to fail loudly")
	}
	if !errors.Is(err, fetchErr) {
		t.Fatalf("error must carry the fetch cause: %v", err)
	}

	if msg := h.alerter.last(); !strings.Contains(msg, "capture run failed") {
		t.Fatalf("expected failure alert, got %q", msg)
	}

	run, getErr := h.lastUpdate.Get(context.Background(), h.service.normalizeDate(boardDate))
	if getErr != nil {
		t.Fatalf("get run record: %v", getErr)
	}
	if run.Complete() {
		t.Fatal("a failed run must not be marked complete")
	}
}

func TestRunDaily_EmptyRosterRejected(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness(t, &fakeFetcher{overviewRaw: overviewFixture})

	_, err := h.service.RunDaily(context.Background(), DailyRunInput{Date: boardDate})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRunDaily_RerunIsConflictSafe(t *testing.T) {
	t.Parallel()

	rankRepo := memory.NewRankingRepository()
	histRepo := memory.NewHistoricRepository()
	lastUpdate := memory.NewLastUpdateRepository()
	service, err := NewIngestionService(IngestionServiceConfig{
		Fetcher:        &fakeFetcher{overviewRaw: overviewFixture, pagesPerLog: 1},
		RankingRepo:    rankRepo,
		HistoricRepo:   histRepo,
		ClubRepo:       memory.NewClubMemberRepository(),
		LastUpdateRepo: lastUpdate,
		Alerter:        &recordingAlerter{},
		Zone:           time.UTC,
		Workers:        2,
	})
	if err != nil {
		t.Fatalf("new ingestion service: %v", err)
	}
	input := DailyRunInput{Roster: []string{"2222222222"}, Date: boardDate}

	if _, err := service.RunDaily(context.Background(), input); err != nil {
		t.Fatalf("first run: %v", err)
	}

	day := service.normalizeDate(boardDate)
	rankAfterFirst, err := rankRepo.ListByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("list rankings: %v", err)
	}
	if len(rankAfterFirst) == 0 {
		t.Fatal("first run must persist ranking rows")
	}
	histAfterFirst, err := histRepo.ListByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("list historic: %v", err)
	}

	if _, err := service.RunDaily(context.Background(), input); err != nil {
		t.Fatalf("rerun: %v", err)
	}

	rankAfterRerun, err := rankRepo.ListByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("list rankings: %v", err)
	}
	if len(rankAfterRerun) != len(rankAfterFirst) {
		t.Fatalf("rerun changed ranking rows: first=%d rerun=%d", len(rankAfterFirst), len(rankAfterRerun))
	}
	histAfterRerun, err := histRepo.ListByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("list historic: %v", err)
	}
	if len(histAfterRerun) != len(histAfterFirst) {
		t.Fatalf("rerun changed historic rows: first=%d rerun=%d", len(histAfterFirst), len(histAfterRerun))
	}

	run, err := lastUpdate.LatestComplete(context.Background())
	if err != nil {
		t.Fatalf("latest complete: %v", err)
	}
	if !run.Complete() {
		t.Fatalf("rerun must leave the day complete: %+v", run)
	}
}

func TestRebuildDate_SkipsOwnersWithoutCache(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness(t, &fakeFetcher{
		overviewRaw: overviewFixture,
		failOwners:  map[string]error{"gone": buckler.ErrExpired},
	})

	past := boardDate.AddDate(0, 0, -30)
	if err := h.service.RebuildDate(context.Background(), []string{"2222222222", "gone"}, past); err != nil {
		t.Fatalf("rebuild date: %v", err)
	}

	if len(h.histRepo.inserted) != 1 {
		t.Fatalf("only the cached owner should be restored, got %d rows", len(h.histRepo.inserted))
	}

	run, err := h.lastUpdate.Get(context.Background(), h.service.normalizeDate(past))
	if err != nil {
		t.Fatalf("get run record: %v", err)
	}
	if !run.Complete() {
		t.Fatal("a rebuild with skips still completes")
	}
}
