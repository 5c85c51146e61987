// Package catalog talks to the remote mod portal.
//
// The portal exposes full metadata for a mod at /api/mods/{name}/full and
// serves release archives from the download_url of each release. A 404 means
// the portal has no data for that name, which callers treat as non-fatal.
// Transport failures and server errors are connectivity failures, which
// abort the batch that issued the request.
package catalog
