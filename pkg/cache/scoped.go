package cache

// ScopedKeyer prefixes every key of an inner Keyer, keeping entries of
// different servers apart in a shared backend:
//
//	keyer := NewScopedKeyer(runner.Keyer, "https://api.ossinsight.io|")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey returns the prefixed inner HTTP key.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ExtractionKey returns the prefixed inner extraction key. An empty inner
// key stays empty.
func (k *ScopedKeyer) ExtractionKey(opts ExtractionKeyOpts) string {
	key := k.inner.ExtractionKey(opts)
	if key == "" {
		return ""
	}
	return k.prefix + key
}
