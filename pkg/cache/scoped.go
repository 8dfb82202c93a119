package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "stackflame:")
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

// TreeKey generates a prefixed key for parsed profiles.
func (k *ScopedKeyer) TreeKey(profileHash string) string {
	return k.prefix + k.inner.TreeKey(profileHash)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(profileHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(profileHash, opts)
}

// MinimapKey generates a prefixed key for minimap caching.
func (k *ScopedKeyer) MinimapKey(profileHash string, opts MinimapKeyOpts) string {
	return k.prefix + k.inner.MinimapKey(profileHash, opts)
}
