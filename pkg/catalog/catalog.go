package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/internal/hashutil"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/metrics"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/tracing"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// DefaultBaseURL is the public Factorio mod portal.
const DefaultBaseURL = "https://mods.factorio.com"

// Catalog is the remote source of mod metadata and release archives.
type Catalog interface {
	Query(ctx context.Context, name string) (*types.ExtendedModInfo, error)
	Download(ctx context.Context, release types.Release, creds types.Credentials, progress types.ProgressFunc) ([]byte, error)
}

// Options configure a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// CacheTTL keeps query results for this long. Zero disables caching.
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// Client is the HTTP implementation of Catalog.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	cache   *gocache.Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Newf(errors.ErrConfigValid, "invalid catalog url %q", raw)
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL: base,
		http:    client,
		metrics: opts.Metrics,
		logger:  logging.GetLogger("catalog"),
	}
	if opts.CacheTTL > 0 {
		c.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return c, nil
}

type modResponse struct {
	Name           string            `json:"name"`
	Title          string            `json:"title"`
	Owner          string            `json:"owner"`
	Summary        string            `json:"summary"`
	DownloadsCount int               `json:"downloads_count"`
	Releases       []releaseResponse `json:"releases"`
}

type releaseResponse struct {
	DownloadURL string    `json:"download_url"`
	FileName    string    `json:"file_name"`
	ReleasedAt  time.Time `json:"released_at"`
	Version     string    `json:"version"`
	SHA1        string    `json:"sha1"`
	InfoJSON    struct {
		FactorioVersion string `json:"factorio_version"`
	} `json:"info_json"`
}

// Query fetches the full metadata of name. Results are shared with the
// cache and must not be modified.
func (c *Client) Query(ctx context.Context, name string) (*types.ExtendedModInfo, error) {
	ctx, span := tracing.Tracer().Start(ctx, "catalog.query")
	defer span.End()
	span.SetAttributes(attribute.String("mod.name", name))

	if c.cache != nil {
		if cached, ok := c.cache.Get(name); ok {
			c.metrics.CatalogQuery(metrics.ResultCached)
			return cached.(*types.ExtendedModInfo), nil
		}
	}

	endpoint := c.resolve("/api/mods/" + url.PathEscape(name) + "/full")
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		c.metrics.CatalogQuery(metrics.ResultUnavailable)
		tracing.RecordError(span, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp, name); err != nil {
		if errors.IsErrorCode(err, errors.ErrCatalogNoData) {
			c.metrics.CatalogQuery(metrics.ResultNoData)
		} else {
			c.metrics.CatalogQuery(metrics.ResultUnavailable)
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	var body modResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.CatalogQuery(metrics.ResultError)
		return nil, errors.Wrapf(err, errors.ErrCatalogNoData, "invalid catalog response for %s", name)
	}

	info := c.convert(name, body)
	c.metrics.CatalogQuery(metrics.ResultOK)
	if c.cache != nil {
		c.cache.SetDefault(name, info)
	}
	c.logger.Debug().Str("mod", name).Int("releases", len(info.Releases)).Msg("Catalog queried")
	return info, nil
}

func (c *Client) convert(name string, body modResponse) *types.ExtendedModInfo {
	if body.Name == "" {
		body.Name = name
	}
	info := &types.ExtendedModInfo{
		Name:      body.Name,
		Title:     body.Title,
		Owner:     body.Owner,
		Summary:   body.Summary,
		Downloads: body.DownloadsCount,
	}
	for _, r := range body.Releases {
		version, err := semver.ParseVersion(r.Version)
		if err != nil {
			c.logger.Warn().Str("mod", body.Name).Str("version", r.Version).Msg("Skipping release with invalid version")
			continue
		}
		fv, err := semver.FactorioVersion(r.InfoJSON.FactorioVersion)
		if err != nil {
			c.logger.Warn().Str("mod", body.Name).Str("factorio", r.InfoJSON.FactorioVersion).
				Msg("Skipping release with invalid factorio version")
			continue
		}
		info.Releases = append(info.Releases, types.Release{
			ModName:         body.Name,
			Version:         version,
			FactorioVersion: fv,
			DownloadURL:     r.DownloadURL,
			FileName:        r.FileName,
			SHA1:            r.SHA1,
			ReleasedAt:      r.ReleasedAt,
		})
	}
	return info
}

// Download fetches the archive of release, reporting progress by bytes
// received, and verifies its checksum when the catalog supplied one.
func (c *Client) Download(ctx context.Context, release types.Release, creds types.Credentials, progress types.ProgressFunc) ([]byte, error) {
	ctx, span := tracing.Tracer().Start(ctx, "catalog.download")
	defer span.End()
	span.SetAttributes(
		attribute.String("mod.name", release.ModName),
		attribute.String("mod.version", release.Version.String()),
	)

	if release.DownloadURL == "" {
		return nil, errors.Newf(errors.ErrInvalidInput, "release %s %s has no download url", release.ModName, release.Version)
	}

	endpoint := c.resolve(release.DownloadURL)
	if creds.Username != "" || creds.Token != "" {
		u, _ := url.Parse(endpoint)
		q := u.Query()
		q.Set("username", creds.Username)
		q.Set("token", creds.Token)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	description := fmt.Sprintf("Downloading %s %s", release.ModName, release.Version)
	progress.Report(0, description)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		c.metrics.CatalogDownload(metrics.ResultUnavailable, 0)
		tracing.RecordError(span, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.metrics.CatalogDownload(metrics.ResultError, 0)
		err := errors.Newf(errors.ErrCatalogAuth, "catalog refused download of %s: %s", release.ModName, resp.Status)
		tracing.RecordError(span, err)
		return nil, err
	}
	if err := statusError(resp, release.ModName); err != nil {
		c.metrics.CatalogDownload(metrics.ResultError, 0)
		tracing.RecordError(span, err)
		return nil, err
	}

	reader := &progressReader{r: resp.Body, total: resp.ContentLength, progress: progress, description: description}
	data, err := io.ReadAll(reader)
	if err != nil {
		c.metrics.CatalogDownload(metrics.ResultUnavailable, 0)
		err = c.transportError(ctx, err, release.ModName)
		tracing.RecordError(span, err)
		return nil, err
	}

	if release.SHA1 != "" {
		if ok, got := hashutil.MatchSHA1(data, release.SHA1); !ok {
			c.metrics.CatalogDownload(metrics.ResultError, 0)
			return nil, errors.Newf(errors.ErrChecksum, "checksum mismatch for %s", release.FileName).
				WithDetail("expected", release.SHA1).
				WithDetail("actual", got)
		}
	}

	c.metrics.CatalogDownload(metrics.ResultOK, len(data))
	progress.Report(1, description)
	c.logger.Info().Str("mod", release.ModName).Str("version", release.Version.String()).
		Int("bytes", len(data)).Msg("Release downloaded")
	return data, nil
}

func (c *Client) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return c.baseURL.String() + ref
	}
	return c.baseURL.ResolveReference(u).String()
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid catalog request %s", endpoint)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err, endpoint)
	}
	return resp, nil
}

func (c *Client) transportError(ctx context.Context, err error, subject string) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.ErrCancelled, "catalog request cancelled")
	}
	return errors.Wrapf(err, errors.ErrConnectivity, "could not reach catalog for %s", subject)
}

func statusError(resp *http.Response, subject string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode >= 500:
		return errors.Newf(errors.ErrConnectivity, "catalog unavailable: %s", resp.Status).
			WithDetail("status", resp.StatusCode)
	default:
		return errors.Newf(errors.ErrCatalogNoData, "catalog has no data for %s", subject).
			WithDetail("status", resp.StatusCode)
	}
}

type progressReader struct {
	r           io.Reader
	read        int64
	total       int64
	progress    types.ProgressFunc
	description string
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if n > 0 && p.total > 0 {
		p.progress.Report(float64(p.read)/float64(p.total), p.description)
	}
	return n, err
}
