package history

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"github.com/mgodinho/skunav/internal/domain"
)

// favoriteIndex implements sahilm/fuzzy.Source over favorite labels.
type favoriteIndex []domain.Favorite

func (idx favoriteIndex) String(i int) string { return idx[i].Label }
func (idx favoriteIndex) Len() int            { return len(idx) }

// SearchRecents returns recent SKUs fuzzy-matching query, best match
// first. An empty query returns nil.
func (s *Service) SearchRecents(query string) []domain.RecentEntry {
	if query == "" {
		return nil
	}

	s.mu.Lock()
	entries := append([]domain.RecentEntry(nil), s.recents...)
	s.mu.Unlock()

	targets := make([]string, len(entries))
	for i, e := range entries {
		targets[i] = e.SKU
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Sort(ranks)

	results := make([]domain.RecentEntry, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, entries[r.OriginalIndex])
	}
	return results
}

// SearchFavorites returns favorites whose label fuzzy-matches query,
// ranked by match quality.
func (s *Service) SearchFavorites(query string) []domain.Favorite {
	if query == "" {
		return nil
	}

	s.mu.Lock()
	favs := favoriteIndex(append([]domain.Favorite(nil), s.favorites...))
	s.mu.Unlock()

	matches := sahilm.FindFrom(query, favs)
	results := make([]domain.Favorite, 0, len(matches))
	for _, m := range matches {
		results = append(results, favs[m.Index])
	}
	return results
}
