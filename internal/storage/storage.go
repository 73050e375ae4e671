package storage

// Kind names a class of run artifact.
type Kind string

const (
	KindCSV    Kind = "csv"
	KindImage  Kind = "image"
	KindReport Kind = "report"
)

// BlobStore persists run artifacts keyed by filename.
//
// Writes are once per run per filename. Two concurrent runs with the same
// search term race on the same file; that is an accepted limitation, not a
// guarantee.
type BlobStore interface {
	// Save writes content under the given name and returns the path the
	// artifact can be retrieved from.
	Save(kind Kind, name string, content []byte) (string, error)

	// Clean removes all artifacts of a kind left over from past runs.
	Clean(kind Kind) error
}
