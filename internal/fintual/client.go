// Package fintual is the HTTP session client for the Fintual web portal.
// It logs in with the portal credential form and fetches the goal
// performance document the app itself consumes.
package fintual

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrLoginFailed reports rejected portal credentials.
	ErrLoginFailed = errors.New("fintual login failed")
	// ErrSeriesMissing reports a named series absent from the goal
	// performance payload.
	ErrSeriesMissing = errors.New("series missing from goal performance")
)

// Identifiers of the two series this system consumes.
const (
	SeriesBalance  = "fintual"
	SeriesDeposits = "deposits"
)

const defaultBaseURL = "https://fintual.cl/app"

// The portal occasionally blocks default Go user agents, so each session
// picks a browser-looking one.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// ClientOptions configures the portal client.
type ClientOptions struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client
	UserAgent  string
}

// Client is a cookie-jar HTTP session against the portal.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a portal client with its own cookie jar.
func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		httpClient.Jar = jar
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = userAgents[rand.Intn(len(userAgents))]
	}
	return &Client{
		baseURL:    baseURL,
		email:      opts.Email,
		password:   opts.Password,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Login submits the portal credential form. The portal answers a rejected
// login by landing the session back on the login page.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("user[email]", c.email)
	form.Set("user[password]", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrLoginFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		return fmt.Errorf("login request: unexpected status %d", resp.StatusCode)
	}
	// After redirects a rejected login lands back on the login page.
	if resp.Request != nil && strings.HasSuffix(resp.Request.URL.Path, "/login") {
		return ErrLoginFailed
	}
	return nil
}

// GoalPerformance fetches and decodes the performance document for a goal.
func (c *Client) GoalPerformance(ctx context.Context, goalID string) (*GoalPerformance, error) {
	endpoint := fmt.Sprintf("%s/goals/%s/performance", c.baseURL, goalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build performance request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch goal %s performance: %w", goalID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch goal %s performance: unexpected status %d", goalID, resp.StatusCode)
	}

	var doc goalPerformanceDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode goal %s performance: %w", goalID, err)
	}
	return &GoalPerformance{
		GoalID:      doc.Data.ID,
		Performance: doc.Data.Attributes.Performance,
	}, nil
}

// FetchGoalPerformance is the one-call contract the job uses: establish the
// session, then fetch the goal document.
func (c *Client) FetchGoalPerformance(ctx context.Context, goalID string) (*GoalPerformance, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}
	return c.GoalPerformance(ctx, goalID)
}
