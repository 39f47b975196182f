package types

// MarketsSpec is the yaml document describing the logical marketplaces the
// tool mirrors into. Each market maps to one editor engine version and one
// local VSIX directory.
type MarketsSpec struct {
	APIVersion string   `yaml:"api_version"`
	Markets    []Market `yaml:"markets"`

	// Extensions optionally pins the set of extension ids to mirror.
	// When empty the list is derived from the reference editor CLI.
	Extensions []string `yaml:"extensions,omitempty"`

	Defaults MarketsDefaults `yaml:"defaults,omitempty"`
}

type Market struct {
	Name      string `yaml:"name"`
	Engine    string `yaml:"engine"`
	Directory string `yaml:"directory"`
}

// MarketsDefaults holds values used when not overridden by flags or
// environment variables, following the same embed-the-defaults approach
// as the rest of the configuration surface.
type MarketsDefaults struct {
	EditorCLI    string `yaml:"editor_cli,omitempty"`
	DisabledFile string `yaml:"disabled_file,omitempty"`
}
