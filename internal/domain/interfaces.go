package domain

import "context"

// Clipboard reads the system clipboard. Implementations may be overridden
// deterministically for testing.
type Clipboard interface {
	Read() (string, error)
}

// Resolver looks up the remote folder for a SKU. Implementations map
// backend failures onto the domain taxonomy: ErrFolderNotFound,
// ErrAuthRequired, or a TransientError.
type Resolver interface {
	Lookup(ctx context.Context, sku string) (*FolderRecord, error)
}

// PathResolver walks a relative folder path under an already-resolved
// SKU root. An empty relativePath returns the root itself.
type PathResolver interface {
	ResolveChild(ctx context.Context, root *FolderRecord, relativePath string) (*FolderRecord, error)
}

// Authenticator is the interactive sign-in collaborator.
type Authenticator interface {
	IsConnected() bool
	// Connect runs the sign-in flow. It blocks until the user completes
	// or declines; a nil return means the session is connected.
	Connect(ctx context.Context) error
}

// Store persists favorites, recents, and the folder-record snapshot.
// The format is opaque to the core.
type Store interface {
	LoadFavorites() ([]Favorite, error)
	SaveFavorites(favs []Favorite) error

	LoadRecents() ([]RecentEntry, error)
	SaveRecents(entries []RecentEntry) error

	LoadFolderRecords() ([]*FolderRecord, error)
	SaveFolderRecord(rec *FolderRecord) error
	DeleteFolderRecord(sku string) error

	Close() error
}
