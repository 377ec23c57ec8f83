package domain

import (
	"fmt"
	"time"
)

// RecordSource identifies where a FolderRecord came from.
type RecordSource string

const (
	SourceCache       RecordSource = "cache"
	SourceRemote      RecordSource = "remote"
	SourceOfflineStub RecordSource = "offline-stub"
)

// SkuMatch is a single SKU occurrence found in a text blob.
// Value holds the canonical (upper-case) form; Context is a bounded window
// of surrounding characters kept for diagnostics only.
type SkuMatch struct {
	Value   string
	Start   int
	End     int
	Context string
}

// FolderRecord is a resolved remote folder location for a SKU.
// Records are immutable once created; re-resolution produces a new record.
type FolderRecord struct {
	SKU           string       `json:"sku"`
	FolderID      string       `json:"folderId"`
	Path          string       `json:"path"`
	SharedDriveID string       `json:"sharedDriveId"`
	ResolvedAt    time.Time    `json:"resolvedAt"`
	Source        RecordSource `json:"source"`
}

// URL returns the browser URL for the folder.
func (r *FolderRecord) URL() string {
	return "https://drive.google.com/drive/folders/" + r.FolderID
}

// Favorite is a user-defined shortcut bound to a hotkey slot (1-8),
// pointing at a path template relative to the SKU root.
type Favorite struct {
	Label      string `json:"label"`
	HotkeySlot int    `json:"hotkeySlot"`
	TargetPath string `json:"targetPath"`
}

// RecentEntry is one item of the capped recency-ordered SKU list.
type RecentEntry struct {
	SKU       string    `json:"sku"`
	Timestamp time.Time `json:"timestamp"`
	Pinned    bool      `json:"pinned"`
}

// MinHotkeySlot and MaxHotkeySlot bound the favorite slot range.
const (
	MinHotkeySlot = 1
	MaxHotkeySlot = 8
)

// ValidateSlot reports whether slot is within the favorite hotkey range.
func ValidateSlot(slot int) error {
	if slot < MinHotkeySlot || slot > MaxHotkeySlot {
		return fmt.Errorf("hotkey slot %d out of range %d-%d", slot, MinHotkeySlot, MaxHotkeySlot)
	}
	return nil
}
