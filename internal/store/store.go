// Package store persists favorites, recents, and resolved folder records
// in BoltDB, with an in-memory hot cache and a memory-only mode.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mgodinho/skunav/internal/domain"
)

// Bucket names
var (
	bucketFavorites = []byte("favorites")
	bucketRecents   = []byte("recents")
	bucketFolders   = []byte("folders")
)

// NavigatorStore implements domain.Store using BoltDB. With an empty data
// directory it runs memory-only (nothing survives the process).
type NavigatorStore struct {
	db *bolt.DB
	mu sync.RWMutex // protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// New opens (creating if needed) the store under dataDir.
func New(dataDir string) (*NavigatorStore, error) {
	if dataDir == "" {
		return &NavigatorStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "skunav.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketFavorites, bucketRecents, bucketFolders} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &NavigatorStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *NavigatorStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Favorites ===

func (s *NavigatorStore) LoadFavorites() ([]domain.Favorite, error) {
	var favs []domain.Favorite
	if ok := s.get(bucketFavorites, "list", &favs); !ok {
		return nil, nil
	}
	return favs, nil
}

func (s *NavigatorStore) SaveFavorites(favs []domain.Favorite) error {
	return s.set(bucketFavorites, "list", favs)
}

// === Recents ===

func (s *NavigatorStore) LoadRecents() ([]domain.RecentEntry, error) {
	var entries []domain.RecentEntry
	if ok := s.get(bucketRecents, "list", &entries); !ok {
		return nil, nil
	}
	return entries, nil
}

func (s *NavigatorStore) SaveRecents(entries []domain.RecentEntry) error {
	return s.set(bucketRecents, "list", entries)
}

// === Folder record snapshot ===

func (s *NavigatorStore) LoadFolderRecords() ([]*domain.FolderRecord, error) {
	var recs []*domain.FolderRecord
	err := s.view(bucketFolders, func(k, v []byte) error {
		var rec domain.FolderRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil // skip corrupt entries
		}
		recs = append(recs, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *NavigatorStore) SaveFolderRecord(rec *domain.FolderRecord) error {
	return s.set(bucketFolders, rec.SKU, rec)
}

func (s *NavigatorStore) DeleteFolderRecord(sku string) error {
	s.delete(bucketFolders, sku)
	return nil
}

// === Generic helpers ===

func (s *NavigatorStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *NavigatorStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *NavigatorStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// view iterates all key/value pairs in a bucket. Memory-only stores
// iterate the hot cache instead.
func (s *NavigatorStore) view(bucket []byte, fn func(k, v []byte) error) error {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		prefix := string(bucket) + ":"
		for k, v := range s.cache {
			if len(k) > len(prefix) && k[:len(prefix)] == prefix {
				if err := fn([]byte(k[len(prefix):]), v); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(fn)
	})
}
