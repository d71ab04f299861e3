package buckler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/fightstreet/cfn-stats/internal/platform/logging"
)

const defaultBaseURL = "https://www.streetfighter.com/6/buckler"

var errBadStatus = crerr.New("unexpected endpoint status")

// SessionCookies is the three-field authenticated session the endpoint
// requires on every data route. Acquisition is out of band.
type SessionCookies struct {
	BucklerID         string
	BucklerRID        string
	BucklerPraiseDate string
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	// BuildToken is the opaque deployment version segment embedded in data
	// route URLs. It changes whenever the site redeploys.
	BuildToken string
	Session    SessionCookies
	// HomeID is the profile id used for the referer header, conventionally
	// the operator's own account.
	HomeID  string
	Timeout time.Duration
	Logger  *logging.Logger
}

// Client performs single GETs against the Buckler data routes. There is no
// retry layer here: a failed request fails the whole capture run.
type Client struct {
	httpClient *http.Client
	baseURL    string
	buildToken string
	session    SessionCookies
	homeID     string
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		buildToken: strings.TrimSpace(cfg.BuildToken),
		session:    cfg.Session,
		homeID:     strings.TrimSpace(cfg.HomeID),
		logger:     logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Fetch issues exactly one GET for the subject's resource and returns the
// parsed document. Any non-200 status is terminal.
func (c *Client) Fetch(ctx context.Context, subject Subject, ownerID string, page int) (*Document, error) {
	fullURL := subject.RequestURL(c.baseURL, c.buildToken, ownerID, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build buckler request")
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch %s owner=%s page=%d", subject.Name(), ownerID, page)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, crerr.Wrapf(err, "read %s response owner=%s", subject.Name(), ownerID)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "buckler request rejected",
			"subject", subject.Name(), "owner_id", ownerID, "page", page, "status", resp.StatusCode)
		return nil, crerr.Wrapf(errBadStatus, "%s owner=%s page=%d status=%d", subject.Name(), ownerID, page, resp.StatusCode)
	}

	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse %s owner=%s page=%d", subject.Name(), ownerID, page)
	}
	return doc, nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Referer", fmt.Sprintf("%s/profile/%s/play", c.baseURL, c.homeID))
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0")

	req.AddCookie(&http.Cookie{Name: "buckler_id", Value: c.session.BucklerID})
	req.AddCookie(&http.Cookie{Name: "buckler_r_id", Value: c.session.BucklerRID})
	req.AddCookie(&http.Cookie{Name: "buckler_praise_date", Value: c.session.BucklerPraiseDate})
}
