// Package api is the Congress.gov client: cache-first reads, a shared
// rolling-window rate limiter, bounded retries for transient failures, and
// a typed error taxonomy. The API key travels only in a request header and
// never appears in cache keys, log lines, or error messages.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"congressd/internal/cache"
	"congressd/internal/congress"
	"congressd/internal/logging"
	"congressd/internal/metrics"
	"congressd/internal/ratelimit"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond
	requestTimeout    = 30 * time.Second

	maxPageSize     = 250
	defaultPageSize = 20
)

// Client talks to the legislative data API.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	cache    *cache.Store
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	logger   *logging.AppLogger
	attempts uint
	delay    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAttempts overrides the retry budget.
func WithAttempts(n uint) Option {
	return func(c *Client) { c.attempts = n }
}

// WithRetryDelay overrides the base backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// NewClient wires the client against a cache store and a limiter. Both are
// shared with the rest of the server so every consumer sees the same
// budget and the same snapshots.
func NewClient(baseURL, apiKey string, store *cache.Store, limiter *ratelimit.Limiter, m *metrics.Metrics, logger *logging.AppLogger, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: requestTimeout},
		cache:    store,
		limiter:  limiter,
		metrics:  m,
		logger:   logger,
		attempts: defaultAttempts,
		delay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimitStatus reports the limiter windows.
func (c *Client) RateLimitStatus() ratelimit.Status {
	return c.limiter.Status()
}

// Probe issues a minimal uncached request and reports its latency. Used by
// the health monitor. The probe consumes rate-limit quota like any other
// outbound call.
func (c *Client) Probe(ctx context.Context) (time.Duration, error) {
	const endpoint = "/congress"
	if err := c.limiter.Wait(ctx); err != nil {
		var limited *ratelimit.LimitedError
		if errors.As(err, &limited) {
			c.metrics.RateLimitWaits.Inc()
			return 0, &Error{Kind: KindRateLimited, Endpoint: endpoint, RetryAfter: limited.RetryAfter, Err: err}
		}
		return 0, err
	}
	start := time.Now()
	_, err := c.fetch(ctx, endpoint, map[string]string{"limit": "1"})
	return time.Since(start), err
}

// Committees lists committees, optionally narrowed to a congress and
// chamber.
func (c *Client) Committees(ctx context.Context, cong int, chamber congress.Chamber, limit, offset int) (*congress.CommitteeList, error) {
	endpoint := "/committee"
	if cong > 0 {
		endpoint += "/" + strconv.Itoa(cong)
	}
	if chamber != "" {
		if cong <= 0 {
			// The upstream path form without a congress still takes the
			// chamber segment.
			endpoint = "/committee/" + string(chamber)
		} else {
			endpoint += "/" + string(chamber)
		}
	}
	var list congress.CommitteeList
	err := c.get(ctx, endpoint, pageParams(limit, offset), cache.ClassCommittee, &list)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := list.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	if dangling := list.DanglingSubcommitteeRefs(); len(dangling) > 0 {
		c.logger.Warn("committee list has unresolved subcommittee refs", "endpoint", endpoint, "codes", strings.Join(dangling, ","))
	}
	return &list, err
}

// CommitteeDetail fetches one committee by chamber and system code.
func (c *Client) CommitteeDetail(ctx context.Context, chamber congress.Chamber, systemCode string) (*congress.CommitteeDetail, error) {
	if systemCode == "" {
		return nil, InvalidArgument("committee system code is required")
	}
	if chamber == "" {
		return nil, InvalidArgument("chamber is required")
	}
	endpoint := fmt.Sprintf("/committee/%s/%s", chamber, systemCode)
	var detail congress.CommitteeDetail
	err := c.get(ctx, endpoint, nil, cache.ClassCommittee, &detail)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := detail.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &detail, err
}

// Hearings lists hearings for a congress, optionally bounded to an update
// window.
func (c *Client) Hearings(ctx context.Context, cong int, window DateRange, limit, offset int) (*congress.HearingList, error) {
	endpoint := "/hearing"
	if cong > 0 {
		endpoint += "/" + strconv.Itoa(cong)
	}
	params := pageParams(limit, offset)
	window.apply(params)
	var list congress.HearingList
	err := c.get(ctx, endpoint, params, cache.ClassHearing, &list)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := list.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &list, err
}

// CommitteeMeetings lists scheduled committee meetings for a congress and
// chamber. Callers filter by committee system code.
func (c *Client) CommitteeMeetings(ctx context.Context, cong int, chamber congress.Chamber, limit, offset int) (*congress.CommitteeMeetingList, error) {
	if cong <= 0 {
		return nil, InvalidArgument("congress number is required for committee meetings")
	}
	endpoint := "/committee-meeting/" + strconv.Itoa(cong)
	if chamber != "" {
		endpoint += "/" + string(chamber)
	}
	var list congress.CommitteeMeetingList
	err := c.get(ctx, endpoint, pageParams(limit, offset), cache.ClassHearing, &list)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := list.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &list, err
}

// Bills lists bills, optionally narrowed to a congress, a bill type, and
// an update window.
func (c *Client) Bills(ctx context.Context, cong int, billType congress.BillType, window DateRange, limit, offset int) (*congress.BillList, error) {
	endpoint := "/bill"
	if cong > 0 {
		endpoint += "/" + strconv.Itoa(cong)
		if billType != "" {
			endpoint += "/" + string(billType)
		}
	} else if billType != "" {
		return nil, InvalidArgument("bill type filter requires a congress number")
	}
	params := pageParams(limit, offset)
	window.apply(params)
	var list congress.BillList
	err := c.get(ctx, endpoint, params, cache.ClassBill, &list)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := list.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &list, err
}

// Laws lists bills that became law in a congress.
func (c *Client) Laws(ctx context.Context, cong, limit, offset int) (*congress.BillList, error) {
	if cong <= 0 {
		return nil, InvalidArgument("congress number is required for enacted laws")
	}
	endpoint := "/law/" + strconv.Itoa(cong)
	var list congress.BillList
	err := c.get(ctx, endpoint, pageParams(limit, offset), cache.ClassBill, &list)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := list.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &list, err
}

// BillDetail fetches one bill.
func (c *Client) BillDetail(ctx context.Context, cong int, billType congress.BillType, number string) (*congress.BillDetail, error) {
	if cong <= 0 {
		return nil, InvalidArgument("congress number is required")
	}
	if billType == "" {
		return nil, InvalidArgument("bill type is required")
	}
	if number == "" {
		return nil, InvalidArgument("bill number is required")
	}
	endpoint := fmt.Sprintf("/bill/%d/%s/%s", cong, billType, number)
	var detail congress.BillDetail
	err := c.get(ctx, endpoint, nil, cache.ClassBill, &detail)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := detail.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &detail, err
}

// Members lists members for a congress.
func (c *Client) Members(ctx context.Context, cong int, limit, offset int) (*congress.MemberList, error) {
	endpoint := "/member"
	if cong > 0 {
		endpoint = "/member/congress/" + strconv.Itoa(cong)
	}
	var list congress.MemberList
	err := c.get(ctx, endpoint, pageParams(limit, offset), cache.ClassMember, &list)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := list.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &list, err
}

// MembersByState lists members for a two-letter state code.
func (c *Client) MembersByState(ctx context.Context, state string, limit, offset int) (*congress.MemberList, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	if len(state) != 2 {
		return nil, InvalidArgument("state must be a two-letter code, got %q", state)
	}
	endpoint := "/member/" + state
	var list congress.MemberList
	err := c.get(ctx, endpoint, pageParams(limit, offset), cache.ClassMember, &list)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := list.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &list, err
}

// MemberDetail fetches one member by bioguide identifier.
func (c *Client) MemberDetail(ctx context.Context, bioguideID string) (*congress.MemberDetail, error) {
	bioguideID = strings.TrimSpace(bioguideID)
	if bioguideID == "" {
		return nil, InvalidArgument("bioguide id is required")
	}
	endpoint := "/member/" + bioguideID
	var detail congress.MemberDetail
	err := c.get(ctx, endpoint, nil, cache.ClassMember, &detail)
	if err != nil && !IsStale(err) {
		return nil, err
	}
	if verr := detail.Validate(); verr != nil {
		return nil, newError(KindParse, endpoint, verr)
	}
	return &detail, err
}

// get is the shared read path: cache lookup, limiter, retried fetch, cache
// fill, and the stale fallback when the upstream is unavailable.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, class string, out interface{}) error {
	key := cache.Key(endpoint, params)

	if payload, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		c.metrics.CacheHits.Inc()
		c.logger.Debug("cache hit", "endpoint", endpoint)
		if err := json.Unmarshal(payload, out); err != nil {
			return newError(KindParse, endpoint, err)
		}
		return nil
	} else if err != nil {
		c.logger.Warn("cache read failed, going upstream", "endpoint", endpoint, "error", err)
	}
	c.metrics.CacheMisses.Inc()

	// One limiter acquisition per logical request, not per retry attempt.
	if err := c.limiter.Wait(ctx); err != nil {
		var limited *ratelimit.LimitedError
		if errors.As(err, &limited) {
			c.metrics.RateLimitWaits.Inc()
			return &Error{Kind: KindRateLimited, Endpoint: endpoint, RetryAfter: limited.RetryAfter, Err: err}
		}
		return err
	}

	body, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		if IsUnavailable(err) {
			if payload, fetchedAt, ok, staleErr := c.cache.GetStale(ctx, key); staleErr == nil && ok {
				if uerr := json.Unmarshal(payload, out); uerr == nil {
					c.metrics.StaleServes.Inc()
					c.logger.Warn("upstream unavailable, serving stale snapshot",
						"endpoint", endpoint, "age", time.Since(fetchedAt).Round(time.Second).String())
					return &StaleError{Endpoint: endpoint, FetchedAt: fetchedAt, Err: err}
				}
			}
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newError(KindParse, endpoint, err)
	}
	if err := c.cache.Set(ctx, key, body, class); err != nil {
		c.logger.Warn("cache write failed", "endpoint", endpoint, "error", err)
	}
	return nil
}

// fetch performs the HTTP exchange with bounded retries. Only transient
// failures are retried; client-side rejections surface immediately.
func (c *Client) fetch(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = c.doRequest(ctx, endpoint, params)
			return err
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return KindOf(err) == KindUpstreamUnavailable
		}),
		retry.OnRetry(func(n uint, err error) {
			c.metrics.UpstreamRetries.Inc()
			c.logger.Warn("retrying upstream request", "endpoint", endpoint, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		c.metrics.UpstreamFailures.Inc()
		c.metrics.UpstreamRequests.WithLabelValues("failure").Inc()
		return nil, err
	}
	c.metrics.UpstreamRequests.WithLabelValues("success").Inc()
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, newError(KindInvalidArgument, endpoint, err)
	}
	q := u.Query()
	q.Set("format", "json")
	for name, value := range params {
		q.Set(name, value)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newError(KindInvalidArgument, endpoint, err)
	}
	// The key rides in a header so it never lands in URLs or logs.
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts, refused connections and resets all land here.
		return nil, newError(KindUpstreamUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, newError(KindUpstreamUnavailable, endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Kind: KindNotFound, Endpoint: endpoint, Status: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{
			Kind:       KindRateLimited,
			Endpoint:   endpoint,
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindUpstreamUnavailable, Endpoint: endpoint, Status: resp.StatusCode}
	default:
		return nil, &Error{Kind: KindUpstreamRejected, Endpoint: endpoint, Status: resp.StatusCode}
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// DateRange bounds a listing by upstream update time. A zero field leaves
// that side unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange builds a range from YYYY-MM-DD strings. Empty strings are
// allowed on either side.
func ParseDateRange(from, to string) (DateRange, error) {
	const layout = "2006-01-02"
	var r DateRange
	var err error
	if from = strings.TrimSpace(from); from != "" {
		if r.From, err = time.Parse(layout, from); err != nil {
			return DateRange{}, InvalidArgument("from_date must be YYYY-MM-DD, got %q", from)
		}
	}
	if to = strings.TrimSpace(to); to != "" {
		if r.To, err = time.Parse(layout, to); err != nil {
			return DateRange{}, InvalidArgument("to_date must be YYYY-MM-DD, got %q", to)
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return DateRange{}, InvalidArgument("to_date %q precedes from_date %q", to, from)
	}
	return r, nil
}

// IsZero reports whether the range is unbounded on both sides.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

func (r DateRange) apply(params map[string]string) {
	const layout = "2006-01-02T15:04:05Z"
	if !r.From.IsZero() {
		params["fromDateTime"] = r.From.UTC().Format(layout)
	}
	if !r.To.IsZero() {
		params["toDateTime"] = r.To.UTC().Format(layout)
	}
}

func pageParams(limit, offset int) map[string]string {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}
}
