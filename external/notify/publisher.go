package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/fightstreet/cfn-stats/internal/platform/logging"
	"github.com/fightstreet/cfn-stats/internal/platform/resilience"
)

const defaultBaseURL = "https://notify.run"

var errNotifyTransient = crerr.New("notify transient failure")

type PublisherConfig struct {
	BaseURL        string
	Channel        string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher pushes short operator alerts to a notify channel. Delivery is
// best effort; callers log and move on when a push fails.
type Publisher struct {
	client         *http.Client
	baseURL        string
	channel        string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewPublisher(cfg PublisherConfig, logger *logging.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Publisher{
		client:         &http.Client{Timeout: timeout},
		baseURL:        baseURL,
		channel:        strings.TrimSpace(cfg.Channel),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Enabled reports whether a channel is configured at all. An empty channel
// turns the publisher into a no-op so local runs stay quiet.
func (p *Publisher) Enabled() bool {
	return p.channel != ""
}

func (p *Publisher) Send(ctx context.Context, message string) error {
	if !p.Enabled() {
		return nil
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return crerr.New("alert message is required")
	}

	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "notify circuit breaker rejected alert", "state", p.breaker.State())
			return fmt.Errorf("notify channel is temporarily unavailable: %w", err)
		}
	}

	endpoint, err := p.channelURL()
	if err != nil {
		return err
	}

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)
	_, _ = body.WriteString(message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return crerr.Wrap(err, "create notify request")
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: push alert: %v", errNotifyTransient, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		callErr := fmt.Errorf("push alert status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if isRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %v", errNotifyTransient, callErr)
		}
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.DebugContext(ctx, "alert pushed", "channel", p.channel)
	p.recordCircuitResult(nil)
	return nil
}

func (p *Publisher) channelURL() (string, error) {
	parsed, err := url.Parse(p.baseURL)
	if err != nil {
		return "", crerr.Wrapf(err, "parse notify base url %q", p.baseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("notify base url %q must be http(s)", p.baseURL)
	}
	return p.baseURL + "/" + url.PathEscape(p.channel), nil
}

func (p *Publisher) recordCircuitResult(err error) {
	if !p.circuitEnabled {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errNotifyTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status/100 == 5
}
