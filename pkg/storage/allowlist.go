package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// AllowlistStore is the durable set of permanently exempt user ids. Insertion
// order is preserved so listings stay stable. The persisted form is a plain
// JSON array of ids, independent of the grants format.
type AllowlistStore struct {
	mu     sync.Mutex
	repo   *FilesystemRepository
	logger *slog.Logger
	ids    []int64
}

// NewAllowlistStore loads the allowlist file with the same fail-open
// semantics as the grant store.
func NewAllowlistStore(repo *FilesystemRepository, logger *slog.Logger) *AllowlistStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AllowlistStore{repo: repo, logger: logger}
	s.load()
	return s
}

func (s *AllowlistStore) load() {
	data, err := s.repo.readFile(AllowlistFile)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("failed to load allowlist, starting empty", "error", err)
		}
		return
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Error("failed to parse allowlist, starting empty", "error", err)
		return
	}
	s.ids = ids
	s.logger.Info("loaded allowlist", "count", len(s.ids))
}

func (s *AllowlistStore) persist() {
	ids := s.ids
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		s.logger.Error("failed to marshal allowlist", "error", err)
		return
	}
	if err := s.repo.writeFile(AllowlistFile, data); err != nil {
		s.logger.Error("failed to persist allowlist, in-memory state is authoritative", "error", err)
	}
}

// Add inserts the id. Adding an existing member is a no-op, not an error.
func (s *AllowlistStore) Add(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.ids, userID) {
		return
	}
	s.ids = append(s.ids, userID)
	s.persist()
}

// Remove drops the id. Removing an absent member is a no-op.
func (s *AllowlistStore) Remove(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.ids, userID)
	if i < 0 {
		return
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	s.persist()
}

// Contains reports allowlist membership.
func (s *AllowlistStore) Contains(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, userID)
}

// All returns a snapshot of the ids in insertion order.
func (s *AllowlistStore) All() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}
