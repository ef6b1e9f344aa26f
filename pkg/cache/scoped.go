package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, for
// example when several deployments share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SplitKey generates a prefixed key for split results.
func (k *ScopedKeyer) SplitKey(datasetHash string, opts SplitKeyOpts) string {
	return k.prefix + k.inner.SplitKey(datasetHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(resultHash, opts)
}

// RunKey generates a prefixed key for API runs.
func (k *ScopedKeyer) RunKey(id string) string {
	return k.prefix + k.inner.RunKey(id)
}
