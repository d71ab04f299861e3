package buckler

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/fightstreet/cfn-stats/internal/platform/logging"
)

const (
	// The endpoint never serves more than ten battlelog pages.
	maxPages = 10

	defaultRequestDelay = 3 * time.Second
	defaultZoneName     = "America/Los_Angeles"
)

var (
	// ErrExpired marks a cache miss for a capture date before today. The
	// endpoint only serves current state, so the data is gone for good.
	ErrExpired = crerr.New("no cached copy for an expired capture date")

	// ErrFutureDate marks a capture date after today.
	ErrFutureDate = crerr.New("capture date is in the future")
)

// FetchRequest addresses exactly one cache slot and remote resource.
type FetchRequest struct {
	Subject Subject
	OwnerID string
	Date    time.Time
	Page    int
}

func (r FetchRequest) withDefaults() FetchRequest {
	if r.Page <= 0 {
		r.Page = 1
	}
	return r
}

type FetcherConfig struct {
	Client *Client
	Cache  *FileCache
	// RequestDelay is the pause between consecutive network fetches. Cache
	// hits never pay it.
	RequestDelay time.Duration
	Zone         *time.Location
	Now          func() time.Time
	Logger       *logging.Logger
}

// Fetcher produces verified documents, from cache when possible and from the
// network exactly once otherwise. Failures are fatal to the caller's run;
// there is no retry here.
type Fetcher struct {
	client       *Client
	cache        *FileCache
	requestDelay time.Duration
	zone         *time.Location
	now          func() time.Time
	logger       *logging.Logger

	paceMu    sync.Mutex
	lastFetch time.Time
}

func NewFetcher(cfg FetcherConfig) (*Fetcher, error) {
	if cfg.Client == nil {
		return nil, crerr.New("buckler client is required")
	}
	if cfg.Cache == nil {
		return nil, crerr.New("document cache is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	zone := cfg.Zone
	if zone == nil {
		loaded, err := time.LoadLocation(defaultZoneName)
		if err != nil {
			return nil, crerr.Wrap(err, "load reference time zone")
		}
		zone = loaded
	}

	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = defaultRequestDelay
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Fetcher{
		client:       cfg.Client,
		cache:        cfg.Cache,
		requestDelay: delay,
		zone:         zone,
		now:          now,
		logger:       logger,
	}, nil
}

// Fetch returns the verified document for the request and whether it came
// from cache. A cached document is ground truth and is not re-verified.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) (*Document, bool, error) {
	return f.fetch(ctx, req.withDefaults())
}

// pace spaces network fetches requestDelay apart, across all callers. Cache
// hits never reach it.
func (f *Fetcher) pace(ctx context.Context) error {
	f.paceMu.Lock()
	defer f.paceMu.Unlock()

	if !f.lastFetch.IsZero() {
		if wait := f.requestDelay - f.now().Sub(f.lastFetch); wait > 0 {
			if err := sleepContext(ctx, wait); err != nil {
				return err
			}
		}
	}
	f.lastFetch = f.now()
	return nil
}

func (f *Fetcher) fetch(ctx context.Context, req FetchRequest) (*Document, bool, error) {
	today := f.dayOf(f.now())
	day := f.dayOf(req.Date)

	if day.After(today) {
		return nil, false, crerr.Wrapf(ErrFutureDate, "%s owner=%s date=%s",
			req.Subject.Name(), req.OwnerID, day.Format(time.DateOnly))
	}

	doc, hit, err := f.cache.Load(req.Subject, req.OwnerID, req.Date, req.Page)
	if err != nil {
		return nil, false, err
	}
	if hit {
		f.logger.DebugContext(ctx, "buckler cache hit",
			"subject", req.Subject.Name(), "owner_id", req.OwnerID, "page", req.Page)
		return doc, true, nil
	}

	if day.Before(today) {
		return nil, false, crerr.Wrapf(ErrExpired, "%s owner=%s date=%s",
			req.Subject.Name(), req.OwnerID, day.Format(time.DateOnly))
	}

	if err := f.pace(ctx); err != nil {
		return nil, false, err
	}

	doc, err = f.client.Fetch(ctx, req.Subject, req.OwnerID, req.Page)
	if err != nil {
		return nil, false, err
	}
	if err := req.Subject.Verify(doc); err != nil {
		return nil, false, err
	}
	if err := f.cache.Store(req.Subject, req.OwnerID, req.Date, req.Page, doc); err != nil {
		return nil, false, err
	}

	f.logger.InfoContext(ctx, "buckler document fetched",
		"subject", req.Subject.Name(), "owner_id", req.OwnerID, "page", req.Page)
	return doc, false, nil
}

// FetchAll walks battlelog pages 1..10 for one owner. Pagination stops after
// an empty page in every mode; in delta mode it also stops after a page whose
// replays all predate the start of today. Terminal empty and stale pages are
// cached but excluded from the returned slice.
func (f *Fetcher) FetchAll(ctx context.Context, subject PaginatedSubject, ownerID string, date time.Time, exhaustive bool) ([]*Document, error) {
	cutoff := f.dayOf(f.now())
	pages := make([]*Document, 0, maxPages)

	for page := 1; page <= maxPages; page++ {
		req := FetchRequest{Subject: subject, OwnerID: ownerID, Date: date, Page: page}
		doc, _, err := f.fetch(ctx, req)
		if err != nil {
			return nil, err
		}

		if subject.Empty(doc) {
			break
		}
		if !exhaustive && subject.Stale(doc, cutoff) {
			f.logger.DebugContext(ctx, "battlelog page stale, stopping pagination",
				"subject", subject.Name(), "owner_id", ownerID, "page", page)
			break
		}
		pages = append(pages, doc)
	}

	return pages, nil
}

// dayOf truncates to the calendar date in the reference zone.
func (f *Fetcher) dayOf(t time.Time) time.Time {
	local := t.In(f.zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, f.zone)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
