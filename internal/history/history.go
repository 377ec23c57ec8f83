// Package history keeps the user's favorite shortcuts and recently
// resolved SKUs. Mutations are synchronous on the in-memory registries;
// persistence is written through afterwards and failures surface as
// non-fatal warnings.
package history

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mgodinho/skunav/internal/domain"
)

// DefaultCapacity bounds the recents list when no override is configured.
const DefaultCapacity = 10

// DefaultFavorites seeds the eight hotkey slots with the legacy shortcut
// paths. Users override them through settings.
func DefaultFavorites() []domain.Favorite {
	return []domain.Favorite{
		{Label: "AV_QC", HotkeySlot: 1, TargetPath: ""},
		{Label: "Trailer / Video IN", HotkeySlot: 2, TargetPath: "02-TRAILER/VIDEO IN"},
		{Label: "Artes", HotkeySlot: 3, TargetPath: "EXPORT/03- ARTES"},
		{Label: "Marketing / Social", HotkeySlot: 4, TargetPath: "EXPORT/03- ARTES/06- MARKETING/SOCIAL"},
		{Label: "Envio Direto", HotkeySlot: 5, TargetPath: "EXPORT/03- ARTES/03- ENVIO DIRETO PLATAFORMA"},
		{Label: "Legendas", HotkeySlot: 6, TargetPath: "EXPORT/02- LEGENDAS"},
		{Label: "Temp", HotkeySlot: 7, TargetPath: "TEMP"},
		{Label: "Entrega", HotkeySlot: 8, TargetPath: "EXPORT/04- ENTREGAS"},
	}
}

// Service owns the favorites and recents registries.
type Service struct {
	store  domain.Store
	logger *slog.Logger

	mu        sync.Mutex
	favorites []domain.Favorite
	recents   []domain.RecentEntry
	capacity  int

	now func() time.Time
}

// NewService loads state from the store. A capacity <= 0 selects
// DefaultCapacity; an empty store is seeded with DefaultFavorites.
func NewService(store domain.Store, capacity int, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	s := &Service{
		store:    store,
		logger:   logger,
		capacity: capacity,
		now:      time.Now,
	}

	favs, err := store.LoadFavorites()
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if len(favs) == 0 {
		favs = DefaultFavorites()
	}
	s.favorites = favs

	recents, err := store.LoadRecents()
	if err != nil {
		return nil, fmt.Errorf("failed to load recents: %w", err)
	}
	s.recents = recents
	s.evictLocked()

	return s, nil
}

// === Favorites ===

// AddOrUpdateFavorite installs fav in its hotkey slot, replacing any
// favorite already bound there. Returns a *domain.PersistenceWarning when
// the in-memory change succeeded but could not be written through.
func (s *Service) AddOrUpdateFavorite(fav domain.Favorite) error {
	if err := domain.ValidateSlot(fav.HotkeySlot); err != nil {
		return err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.favorites {
		if s.favorites[i].HotkeySlot == fav.HotkeySlot {
			s.favorites[i] = fav
			replaced = true
			break
		}
	}
	if !replaced {
		s.favorites = append(s.favorites, fav)
		sort.Slice(s.favorites, func(i, j int) bool {
			return s.favorites[i].HotkeySlot < s.favorites[j].HotkeySlot
		})
	}
	snapshot := append([]domain.Favorite(nil), s.favorites...)
	s.mu.Unlock()

	return s.persistFavorites(snapshot)
}

// RemoveFavorite unbinds a hotkey slot. Removing an empty slot is a no-op.
func (s *Service) RemoveFavorite(slot int) error {
	if err := domain.ValidateSlot(slot); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.favorites[:0]
	for _, fav := range s.favorites {
		if fav.HotkeySlot != slot {
			kept = append(kept, fav)
		}
	}
	s.favorites = kept
	snapshot := append([]domain.Favorite(nil), s.favorites...)
	s.mu.Unlock()

	return s.persistFavorites(snapshot)
}

// Favorites returns the favorites ordered by hotkey slot.
func (s *Service) Favorites() []domain.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Favorite(nil), s.favorites...)
}

// FavoriteBySlot returns the favorite bound to slot, if any.
func (s *Service) FavoriteBySlot(slot int) (domain.Favorite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fav := range s.favorites {
		if fav.HotkeySlot == slot {
			return fav, true
		}
	}
	return domain.Favorite{}, false
}

// === Recents ===

// RecordRecent inserts sku at the front of the recents list, or moves an
// existing entry there with a refreshed timestamp. Pinned entries keep
// their position and only refresh their timestamp. When the list grows
// past capacity the oldest unpinned entry is evicted.
func (s *Service) RecordRecent(sku string) error {
	if sku == "" {
		return nil
	}

	s.mu.Lock()
	now := s.now()

	found := false
	for i := range s.recents {
		if s.recents[i].SKU != sku {
			continue
		}
		found = true
		s.recents[i].Timestamp = now
		if !s.recents[i].Pinned && i > 0 {
			entry := s.recents[i]
			s.recents = append(s.recents[:i], s.recents[i+1:]...)
			s.recents = append([]domain.RecentEntry{entry}, s.recents...)
		}
		break
	}
	if !found {
		entry := domain.RecentEntry{SKU: sku, Timestamp: now}
		s.recents = append([]domain.RecentEntry{entry}, s.recents...)
		s.evictLocked()
	}

	snapshot := append([]domain.RecentEntry(nil), s.recents...)
	s.mu.Unlock()

	return s.persistRecents(snapshot)
}

// PinRecent sets the pinned flag on an existing entry.
func (s *Service) PinRecent(sku string, pinned bool) error {
	s.mu.Lock()
	for i := range s.recents {
		if s.recents[i].SKU == sku {
			s.recents[i].Pinned = pinned
			break
		}
	}
	snapshot := append([]domain.RecentEntry(nil), s.recents...)
	s.mu.Unlock()

	return s.persistRecents(snapshot)
}

// ClearRecents drops all recent entries, pinned included.
func (s *Service) ClearRecents() error {
	s.mu.Lock()
	s.recents = nil
	s.mu.Unlock()

	return s.persistRecents(nil)
}

// Recents returns the recents list, most recent first.
func (s *Service) Recents() []domain.RecentEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.RecentEntry(nil), s.recents...)
}

// evictLocked removes the oldest unpinned entries while over capacity.
// Caller holds s.mu.
func (s *Service) evictLocked() {
	for len(s.recents) > s.capacity {
		evicted := false
		for i := len(s.recents) - 1; i >= 0; i-- {
			if !s.recents[i].Pinned {
				s.recents = append(s.recents[:i], s.recents[i+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			return // everything pinned, nothing to evict
		}
	}
}

// === Persistence ===

func (s *Service) persistFavorites(favs []domain.Favorite) error {
	if err := s.store.SaveFavorites(favs); err != nil {
		s.logger.Warn("failed to persist favorites", "error", err)
		return &domain.PersistenceWarning{Op: "favorites", Cause: err}
	}
	return nil
}

func (s *Service) persistRecents(entries []domain.RecentEntry) error {
	if err := s.store.SaveRecents(entries); err != nil {
		s.logger.Warn("failed to persist recents", "error", err)
		return &domain.PersistenceWarning{Op: "recents", Cause: err}
	}
	return nil
}
