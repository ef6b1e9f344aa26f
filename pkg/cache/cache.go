// Package cache stores computed split results behind a small key/value
// interface.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (API deployments)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing (--no-cache)
//
// All backends honour per-entry TTLs. Backends that can enumerate their own
// entries also implement [Clearer].
//
// # Keys
//
// A [Keyer] derives keys from content hashes and options, so a changed input
// or option never hits a stale entry. [ScopedKeyer] prefixes every key for
// namespace isolation.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached artifacts.
const (
	// TTLSplit is how long a split result stays cached.
	TTLSplit = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered diagram stays cached.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLRun is how long an API run stays retrievable.
	TTLRun = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
// It returns the number of removed entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// SplitKeyOpts are the options that influence a split result.
type SplitKeyOpts struct {
	TargetSize             []int64 `json:"target_size"`
	Overlap                []int64 `json:"overlap"`
	MinStepSize            []int64 `json:"min_step_size"`
	Optimize               bool    `json:"optimize"`
	Snap                   bool    `json:"snap"`
	IlluminationsFromTiles bool    `json:"illuminations_from_tiles"`
}

// Keyer generates cache keys.
type Keyer interface {
	// SplitKey is the key of a split result for a dataset hash and options.
	SplitKey(datasetHash string, opts SplitKeyOpts) string

	// ArtifactKey is the key of a rendered artifact of a split result.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string

	// RunKey is the key of an API run.
	RunKey(id string) string
}

// ArtifactKeyOpts are the options that influence a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SplitKey returns "split:<sha256 of hash and options>".
func (DefaultKeyer) SplitKey(datasetHash string, opts SplitKeyOpts) string {
	return hashKey("split", datasetHash, opts)
}

// ArtifactKey returns "artifact:<sha256 of hash and options>".
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}

// RunKey returns "run:<id>".
func (DefaultKeyer) RunKey(id string) string {
	return "run:" + id
}
