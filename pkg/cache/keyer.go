package cache

// Key type names, reported to observability hooks.
const (
	KeyTypeTree     = "tree"
	KeyTypeArtifact = "artifact"
	KeyTypeMinimap  = "minimap"
)

// Keyer derives cache keys.
type Keyer interface {
	// TreeKey identifies a parsed profile.
	TreeKey(profileHash string) string

	// ArtifactKey identifies a rendered output of a profile.
	ArtifactKey(profileHash string, opts ArtifactKeyOpts) string

	// MinimapKey identifies a minimap image of a profile.
	MinimapKey(profileHash string, opts MinimapKeyOpts) string
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Width       int     `json:"width"`
	Flame       bool    `json:"flame,omitempty"`
	Theme       string  `json:"theme"`
	Palette     string  `json:"palette"`
	ColorMode   string  `json:"color_mode"`
	Search      string  `json:"search,omitempty"`
	Gaps        bool    `json:"gaps"`
	ShowSelf    bool    `json:"show_self,omitempty"`
	TextPadding int     `json:"text_padding"`
	MinWidth    float64 `json:"min_width,omitempty"`
	MaxDepth    int     `json:"max_depth,omitempty"`
	EmbedFont   bool    `json:"embed_font,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
	Colors      string  `json:"colors,omitempty"`
	Blending    bool    `json:"blending,omitempty"`
}

// MinimapKeyOpts holds every option that changes a minimap.
type MinimapKeyOpts struct {
	Width   int    `json:"width"`
	Flame   bool   `json:"flame,omitempty"`
	Theme   string `json:"theme"`
	Palette string `json:"palette"`
	Search  string `json:"search,omitempty"`
}

// DefaultKeyer hashes key options into fixed length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey implements [Keyer].
func (DefaultKeyer) TreeKey(profileHash string) string {
	return "tree:" + profileHash
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(profileHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", profileHash, opts)
}

// MinimapKey implements [Keyer].
func (DefaultKeyer) MinimapKey(profileHash string, opts MinimapKeyOpts) string {
	return hashKey("minimap", profileHash, opts)
}
