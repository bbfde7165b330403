// Package forge talks to the GitHub releases API and picks the release and
// asset a gh-rls package resolves to.
package forge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"

	perPage              = 100
	maxPages             = 5
	maxJSONResponseBytes = 10 << 20
	maxRetryElapsed      = 30 * time.Second
)

type githubRelease struct {
	TagName    string        `json:"tag_name"`
	Name       string        `json:"name"`
	Prerelease bool          `json:"prerelease"`
	Draft      bool          `json:"draft"`
	TarballURL string        `json:"tarball_url"`
	ZipballURL string        `json:"zipball_url"`
	Assets     []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Client implements ports.ReleaseClient for GitHub.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(base string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(base, "/") }
}

// WithToken authenticates API calls, raising the rate limit.
func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// NewClient creates a GitHub releases client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		userAgent:  "ivpm",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListReleases returns the releases of owner/repo in API order (newest first).
func (c *Client) ListReleases(ctx context.Context, owner, repo string) ([]domain.Release, error) {
	pageURL := c.baseURL + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) +
		"/releases?per_page=" + strconv.Itoa(perPage)

	var all []domain.Release
	for page := 0; page < maxPages && pageURL != ""; page++ {
		releases, next, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "owner", owner), "repo", repo)
		}
		all = append(all, releases...)
		pageURL = next
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]domain.Release, string, error) {
	var (
		releases []domain.Release
		next     string
	)

	op := func() error {
		resp, err := c.do(ctx, pageURL)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if rlErr := checkRateLimit(resp); rlErr != nil {
			return backoff.Permanent(rlErr)
		}
		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return zerr.With(zerr.Wrap(domain.ErrForgeAPIFailed, ""), "status", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(zerr.With(zerr.Wrap(domain.ErrForgeAPIFailed, ""), "status", resp.StatusCode))
		}

		var raw []githubRelease
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&raw); err != nil {
			return backoff.Permanent(errors.Join(domain.ErrForgeAPIFailed, err))
		}

		releases = make([]domain.Release, 0, len(raw))
		for _, gr := range raw {
			releases = append(releases, toRelease(gr))
		}
		next = parseLinkHeader(resp.Header.Get("Link"))
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxRetryElapsed
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, "", err
	}
	return releases, next, nil
}

func (c *Client) do(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(errors.Join(domain.ErrForgeAPIFailed, err))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(domain.ErrForgeAPIFailed, err)
	}
	return resp, nil
}

// checkRateLimit reports an exhausted quota from the X-RateLimit headers.
func checkRateLimit(resp *http.Response) error {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}
	remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil || remaining > 0 {
		return nil
	}
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	return zerr.With(zerr.Wrap(domain.ErrForgeRateLimited, ""), "resets_at", time.Unix(resetUnix, 0).UTC().Format(time.RFC3339))
}

// parseLinkHeader returns the "next" URL of a Link header.
func parseLinkHeader(header string) string {
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}

func toRelease(gr githubRelease) domain.Release {
	assets := make([]domain.Asset, 0, len(gr.Assets))
	for _, ga := range gr.Assets {
		assets = append(assets, domain.Asset{Name: ga.Name, URL: ga.BrowserDownloadURL, Size: ga.Size})
	}
	return domain.Release{
		TagName:    gr.TagName,
		Name:       gr.Name,
		Prerelease: gr.Prerelease,
		Draft:      gr.Draft,
		TarballURL: gr.TarballURL,
		ZipballURL: gr.ZipballURL,
		Assets:     assets,
	}
}

// ParseRepoURL extracts owner and repository from a GitHub repository URL.
func ParseRepoURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", "", zerr.With(zerr.Wrap(domain.ErrInvalidPackageOption, "not a repository url"), "url", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", zerr.With(zerr.Wrap(domain.ErrInvalidPackageOption, "repository url needs owner and name"), "url", raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
