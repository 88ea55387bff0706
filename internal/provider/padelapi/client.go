// Package padelapi is the HTTP client for the upstream live-score API.
//
// Every request goes through a list of routes: the direct URL and any number
// of CORS-proxy prefixes that wrap the URL-escaped target. Routes are tried
// in order starting from the last one that worked. Rate limiting is handled
// via a token bucket limiter.
package padelapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/padely/padely/internal/cache"
	"github.com/padely/padely/internal/config"
	"github.com/padely/padely/internal/padel"
)

// Direct is the route that calls the upstream URL without a proxy.
const Direct = ""

// ErrAllRoutesFailed wraps the last route error once every route failed.
var ErrAllRoutesFailed = errors.New("all upstream routes failed")

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Route string
	Code  int
	Body  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d via %s: %s", e.Code, routeName(e.Route), e.Body)
}

// Client is the shared HTTP client for all upstream endpoints.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	baseURL    string
	routes     []string
	preferred  atomic.Int32
	limiter    *rate.Limiter
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewClient creates a rate-limited client. routes lists the proxy prefixes
// to try, with Direct ("") for an unproxied call. timeout bounds one call
// across every route. A nil cache disables caching.
func NewClient(baseURL string, routes []string, timeout time.Duration, requestsPerMinute int, c *cache.Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if len(routes) == 0 {
		routes = []string{Direct}
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 120
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
		baseURL:    baseURL,
		routes:     routes,
		limiter:    rate.NewLimiter(rate.Limit(rps), 4),
		cache:      c,
		logger:     logger,
	}
}

// New builds a client from configuration.
func New(cfg *config.Config, c *cache.Cache, logger *slog.Logger) *Client {
	return NewClient(cfg.UpstreamBaseURL, Routes(cfg), cfg.UpstreamTimeout, cfg.UpstreamRPM, c, logger)
}

// Routes returns the configured route list: direct first when enabled,
// then the proxies in order.
func Routes(cfg *config.Config) []string {
	var routes []string
	if cfg.UpstreamDirect {
		routes = append(routes, Direct)
	}
	return append(routes, cfg.UpstreamProxies...)
}

// PreferredRoute returns the route the next request will try first.
func (c *Client) PreferredRoute() string {
	return c.routes[int(c.preferred.Load())%len(c.routes)]
}

// --------------------------------------------------------------------------
// Endpoints
// --------------------------------------------------------------------------

// GetTournaments returns every tournament the upstream lists.
func (c *Client) GetTournaments(ctx context.Context) ([]padel.Tournament, error) {
	var out []padel.Tournament
	if err := c.getCached(ctx, "tournaments", cache.TTLTournaments, "/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTournament looks one tournament up by id.
func (c *Client) GetTournament(ctx context.Context, id string) (padel.Tournament, error) {
	ts, err := c.GetTournaments(ctx)
	if err != nil {
		return padel.Tournament{}, err
	}
	return padel.FindTournament(ts, id)
}

// GetEventMatches returns the matches of one tournament day. Never cached:
// this is the live feed.
func (c *Client) GetEventMatches(ctx context.Context, eventID string, day int) ([]padel.Match, error) {
	params := url.Values{}
	params.Set("id", eventID)
	params.Set("day", strconv.Itoa(day))

	body, err := c.get(ctx, "/event", params)
	if err != nil {
		return nil, err
	}
	var out []padel.Match
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return out, nil
}

// GetMatchStats returns the statistics of one match.
func (c *Client) GetMatchStats(ctx context.Context, eventID, matchID string) (*padel.MatchStats, error) {
	params := url.Values{}
	params.Set("eventId", eventID)
	params.Set("matchId", matchID)

	var out padel.MatchStats
	key := "stats:" + eventID + ":" + matchID
	if err := c.getCached(ctx, key, cache.TTLMatchStats, "/match_stats", params, &out); err != nil {
		return nil, err
	}
	if out.IsEmpty() {
		return nil, fmt.Errorf("stats for match %s: %w", matchID, padel.ErrNotFound)
	}
	return &out, nil
}

// InvalidateStats drops the cached statistics of every match of an event.
// Returns the number of entries removed.
func (c *Client) InvalidateStats(eventID string) int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Invalidate("stats:" + eventID + ":")
}

// GetRankings returns the ranking table for a gender.
func (c *Client) GetRankings(ctx context.Context, gender padel.Gender) ([]padel.RankedPlayer, error) {
	if !gender.Valid() {
		return nil, fmt.Errorf("unknown ranking gender %q", gender)
	}
	params := url.Values{}
	params.Set("gender", string(gender))

	var out []padel.RankedPlayer
	if err := c.getCached(ctx, "rankings:"+string(gender), cache.TTLRankings, "/ranking", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Transport
// --------------------------------------------------------------------------

func (c *Client) getCached(ctx context.Context, key string, ttl time.Duration, path string, params url.Values, out any) error {
	if c.cache != nil {
		if data, _, ok := c.cache.Get(key); ok {
			return json.Unmarshal(data, out)
		}
	}
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if c.cache != nil {
		c.cache.Set(key, body, ttl)
	}
	return nil
}

// get performs a rate-limited GET, falling back across routes.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	n := len(c.routes)
	start := int(c.preferred.Load())
	var lastErr error
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		route := c.routes[idx]

		body, err := c.fetch(ctx, route, target)
		if err == nil {
			if idx != start {
				c.logger.Info("Upstream route switched", "route", routeName(route))
			}
			c.preferred.Store(int32(idx))
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", path, ctx.Err())
		}
		lastErr = err
		c.logger.Warn("Upstream route failed", "route", routeName(route), "path", path, "error", err)
	}
	return nil, fmt.Errorf("%s: %w: %w", path, ErrAllRoutesFailed, lastErr)
}

func (c *Client) fetch(ctx context.Context, route, target string) ([]byte, error) {
	u := target
	if route != Direct {
		u = route + url.QueryEscape(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Route: route, Code: resp.StatusCode, Body: truncate(body, 200)}
	}
	return body, nil
}

func routeName(route string) string {
	if route == Direct {
		return "direct"
	}
	return route
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
