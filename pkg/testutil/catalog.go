package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// FakeCatalog is an in-memory catalog. Unknown names answer with
// CATALOG_NO_DATA.
type FakeCatalog struct {
	mu   sync.Mutex
	mods map[string]*types.ExtendedModInfo

	// QueryErrors and DownloadErrors fail calls for a mod name.
	QueryErrors    map[string]error
	DownloadErrors map[string]error
	// OnDownload runs before each download returns.
	OnDownload func(release types.Release)

	Queries   []string
	Downloads []types.Release
}

// NewFakeCatalog creates an empty catalog.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		mods:           make(map[string]*types.ExtendedModInfo),
		QueryErrors:    make(map[string]error),
		DownloadErrors: make(map[string]error),
	}
}

// AddRelease publishes a release and returns it.
func (c *FakeCatalog) AddRelease(name, version, factorioVersion string) types.Release {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.mods[name]
	if !ok {
		info = &types.ExtendedModInfo{Name: name, Title: name + " title", Owner: "tester"}
		c.mods[name] = info
	}
	release := types.Release{
		ModName:         name,
		Version:         semver.MustParseVersion(version),
		FactorioVersion: factorioVersion,
		DownloadURL:     fmt.Sprintf("/download/%s/%s", name, version),
		FileName:        fmt.Sprintf("%s_%s.zip", name, version),
	}
	info.Releases = append(info.Releases, release)
	return release
}

// Query implements catalog.Catalog.
func (c *FakeCatalog) Query(ctx context.Context, name string) (*types.ExtendedModInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Queries = append(c.Queries, name)
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCancelled, "query cancelled")
	}
	if err, ok := c.QueryErrors[name]; ok {
		return nil, err
	}
	info, ok := c.mods[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCatalogNoData, "catalog has no data for %s", name)
	}
	return info, nil
}

// Download implements catalog.Catalog.
func (c *FakeCatalog) Download(ctx context.Context, release types.Release, _ types.Credentials, progress types.ProgressFunc) ([]byte, error) {
	c.mu.Lock()
	c.Downloads = append(c.Downloads, release)
	hook := c.OnDownload
	err, failed := c.DownloadErrors[release.ModName]
	c.mu.Unlock()

	if hook != nil {
		hook(release)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Wrap(ctxErr, errors.ErrCancelled, "download cancelled")
	}
	if failed {
		return nil, err
	}
	progress.Report(1, "downloaded "+release.FileName)
	return ModArchive(release.ModName, release.Version.String(), release.FactorioVersion, nil), nil
}

// DownloadCount returns the number of downloads issued.
func (c *FakeCatalog) DownloadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Downloads)
}
