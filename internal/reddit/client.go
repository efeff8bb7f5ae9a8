// Package reddit reads subreddit comments and posts replies over the Reddit
// OAuth API.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"branikbot/internal"
	"branikbot/internal/config"
)

var ErrUnauthorized = errors.New("reddit rejected credentials")

const maxAttempts = 5

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type listing struct {
	Data struct {
		Children []struct {
			Kind string      `json:"kind"`
			Data commentData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type commentData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	LinkID    string `json:"link_id"`
	Permalink string `json:"permalink"`
}

type commentResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
	} `json:"json"`
}

// userAgentTransport sets the User-Agent Reddit requires on every request,
// token requests included.
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// passwordSource fetches a fresh token with the password grant. Reddit
// script apps get no refresh token, so an expired token means logging in again.
type passwordSource struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (s passwordSource) Token() (*oauth2.Token, error) {
	tok, err := s.conf.PasswordCredentialsToken(s.ctx, s.username, s.password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, err
	}
	return tok, nil
}

func NewClient(cfg config.Config) (*Client, error) {
	if err := cfg.RequireReddit(); err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.RedditTimeoutMs) * time.Millisecond
	base := userAgentTransport{userAgent: cfg.RedditUserAgent, base: http.DefaultTransport}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: base, Timeout: timeout})

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.RedditTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		Scopes: []string{"read", "submit"},
	}
	src := oauth2.ReuseTokenSource(nil, passwordSource{
		ctx:      tokenCtx,
		conf:     oauthCfg,
		username: cfg.RedditUsername,
		password: cfg.RedditPassword,
	})

	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: base},
		Timeout:   timeout,
	}
	return newClient(cfg, httpClient), nil
}

func newClient(cfg config.Config, httpClient *http.Client) *Client {
	rps := cfg.RedditRateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.RedditAPIBaseURL, "/"),
		userAgent:  cfg.RedditUserAgent,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// LatestComments returns the newest comments of a subreddit, newest first.
func (c *Client) LatestComments(ctx context.Context, subreddit string, limit int) ([]internal.Comment, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("raw_json", "1")

	body, err := c.do(ctx, http.MethodGet, "/r/"+url.PathEscape(subreddit)+"/comments?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}

	out := make([]internal.Comment, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t1" || child.Data.ID == "" {
			continue
		}
		d := child.Data
		out = append(out, internal.Comment{
			ID:       d.ID,
			FullName: d.Name,
			Author:   d.Author,
			Body:     d.Body,
			PostID:   d.LinkID,
			PostURL:  d.Permalink,
		})
	}
	return out, nil
}

// Reply posts text as a reply to the thing with the given fullname.
func (c *Client) Reply(ctx context.Context, parentFullName, text string) error {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("thing_id", parentFullName)
	form.Set("text", text)

	body, err := c.do(ctx, http.MethodPost, "/api/comment", form)
	if err != nil {
		return err
	}

	var resp commentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode reply response: %w", err)
	}
	if len(resp.JSON.Errors) > 0 {
		return fmt.Errorf("reddit reply rejected: %v", resp.JSON.Errors)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if form != nil {
			reqBody = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) || ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				lastErr = fmt.Errorf("reddit status %d", resp.StatusCode)
				if err := sleepCtx(ctx, backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, fmt.Errorf("%w: status=%d", ErrUnauthorized, resp.StatusCode)
			}
			return nil, fmt.Errorf("reddit api error: status=%d body=%s", resp.StatusCode, string(body))
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("reddit request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
