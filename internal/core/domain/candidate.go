package domain

// DatabaseCandidate is a discovered file believed to be an application
// SQLite database, not yet verified by introspection.
// Candidates are ephemeral: created by the scanner, consumed and discarded
// after the database has been analysed.
type DatabaseCandidate struct {
	// Path is the absolute path inside the mounted image.
	Path string

	// AppID is the owning application identifier (package name).
	AppID string

	// Name is the database file name.
	Name string

	// SizeBytes is the file size reported by the elevated stat call.
	// Zero when the size could not be determined.
	SizeBytes int64

	// Category is the catalog category of the owning app.
	Category string

	// Priority is the catalog priority of the owning app
	// (PriorityUnknown when no rule matched).
	Priority int
}
