package cache

// ScopedKeyer prefixes every key of an inner Keyer, so deployments that
// share one Redis or MongoDB backend keep separate key spaces.
//
//	keyer := NewScopedKeyer(nil, "prod:")
type ScopedKeyer struct {
	Keyer
	Prefix string
}

// NewScopedKeyer wraps inner (the default keyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Keyer: inner, Prefix: prefix}
}

func (k ScopedKeyer) LineageKey(graphHash, focal string) string {
	return k.Prefix + k.Keyer.LineageKey(graphHash, focal)
}

func (k ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.Prefix + k.Keyer.LayoutKey(graphHash, opts)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Keyer.ArtifactKey(layoutHash, opts)
}
