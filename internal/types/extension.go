package types

// InstalledExtension is the observed state of one extension in an editor's
// extension host at snapshot time. IDs are publisher.name identifiers,
// matched case-insensitively.
type InstalledExtension struct {
	ID      string
	Version string
	Enabled bool
}

// PackageRelease is one published version of a marketplace extension.
// EngineRange is the declared editor-engine compatibility constraint
// (e.g. "^1.89.0") carried verbatim from upstream metadata.
type PackageRelease struct {
	PackageID   string
	Version     string
	EngineRange string
	ArtifactURL string
}

// MirroredArtifact is one locally cached VSIX ready to install into a
// target editor. SourceEnabled records whether the extension was enabled
// in the reference editor when it was mirrored.
type MirroredArtifact struct {
	ExtensionID   string
	Version       string
	Location      string
	SourceEnabled bool
}
