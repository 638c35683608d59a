package cache

// Keyer builds cache keys for each entry type.
type Keyer interface {
	// LineageKey identifies a trace of focal within the graph with the given hash.
	LineageKey(graphHash, focal string) string

	// LayoutKey identifies a settled layout of a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs that change a computed layout.
type LayoutKeyOpts struct {
	Width    float64 `json:"w"`
	Height   float64 `json:"h"`
	Seed     uint64  `json:"seed"`
	MaxTicks int     `json:"ticks"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Focal    string `json:"focal,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
	Title    string `json:"title,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LineageKey(graphHash, focal string) string {
	return hashKey("lineage", graphHash, focal)
}

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
