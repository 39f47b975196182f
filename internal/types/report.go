package types

type SkipReason string

const (
	SkipNotInCatalog  SkipReason = "not-in-catalog"
	SkipNoReleases    SkipReason = "no-releases"
	SkipIncompatible  SkipReason = "incompatible"
	SkipNoArtifactURL SkipReason = "no-artifact-url"
	SkipTransient     SkipReason = "transient-failure"
)

// MirrorRecord is the outcome of mirroring one extension into one market.
// Reason is empty when the extension was mirrored (or already cached).
type MirrorRecord struct {
	ExtensionID string
	Market      string
	Version     string
	Cached      bool
	Reason      SkipReason
	Detail      string
}

type MirrorReport struct {
	Records []MirrorRecord
}

// Mirrored returns the number of records that produced or confirmed an
// artifact.
func (r MirrorReport) Mirrored() int {
	count := 0
	for _, record := range r.Records {
		if record.Reason == "" {
			count++
		}
	}
	return count
}

// Skipped returns the number of records excluded from the mirror.
func (r MirrorReport) Skipped() int {
	return len(r.Records) - r.Mirrored()
}

// ApplyRecord is the outcome of executing one plan action.
type ApplyRecord struct {
	Action Action
	Err    string
}

type ApplyReport struct {
	Records []ApplyRecord
}

// Failed returns the records whose action did not succeed.
func (r ApplyReport) Failed() []ApplyRecord {
	var failed []ApplyRecord
	for _, record := range r.Records {
		if record.Err != "" {
			failed = append(failed, record)
		}
	}
	return failed
}
