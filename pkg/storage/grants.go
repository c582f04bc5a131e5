package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/doorman-bot/doorman/pkg/domain/access"
)

// grantsSchema validates the persisted grants document before unmarshal so a
// hand-edited or truncated file degrades to an empty store instead of
// poisoning startup with partial records.
const grantsSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["user_id"],
    "properties": {
      "user_id": {"type": "integer"},
      "username": {"type": "string"},
      "expires_at": {"type": ["string", "null"]},
      "warning_sent": {"type": "boolean"}
    }
  }
}`

// GrantStore is the durable mapping from user id to grant record. All
// mutations are write-through: the in-memory map changes first, then the
// whole grants file is rewritten. The mutex serializes each
// read-modify-write-persist sequence against the poller and the sweeper.
type GrantStore struct {
	mu     sync.Mutex
	repo   *FilesystemRepository
	logger *slog.Logger
	grants map[int64]*access.Grant
	now    func() time.Time
}

// NewGrantStore loads the grants file. Malformed or unreadable data is logged
// and treated as no records.
func NewGrantStore(repo *FilesystemRepository, logger *slog.Logger) *GrantStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &GrantStore{
		repo:   repo,
		logger: logger,
		grants: make(map[int64]*access.Grant),
		now:    time.Now,
	}
	s.load()
	return s
}

func (s *GrantStore) load() {
	data, err := s.repo.readFile(GrantsFile)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("failed to load grants, starting empty", "error", err)
		}
		return
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(grantsSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil || !result.Valid() {
		s.logger.Error("grants file failed schema validation, starting empty",
			"error", err, "issues", schemaIssues(result))
		return
	}

	var raw map[string]*access.Grant
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Error("failed to parse grants, starting empty", "error", err)
		return
	}

	for key, grant := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn("skipping grant with non-numeric key", "key", key)
			continue
		}
		grant.UserID = id
		s.grants[id] = grant
	}
	s.logger.Info("loaded grants", "count", len(s.grants))
}

func schemaIssues(result *gojsonschema.Result) []string {
	if result == nil {
		return nil
	}
	var issues []string
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return issues
}

// persist rewrites the grants file. A write failure is logged and the
// in-memory state stays authoritative until the next successful write.
func (s *GrantStore) persist() {
	doc := make(map[string]*access.Grant, len(s.grants))
	for id, grant := range s.grants {
		doc[strconv.FormatInt(id, 10)] = grant
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.logger.Error("failed to marshal grants", "error", err)
		return
	}
	if err := s.repo.writeFile(GrantsFile, data); err != nil {
		s.logger.Error("failed to persist grants, in-memory state is authoritative", "error", err)
	}
}

// Get returns a copy of the record, or nil if absent.
func (s *GrantStore) Get(userID int64) *access.Grant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneGrant(s.grants[userID])
}

// Ensure creates a bare record if absent and refreshes the stored username.
// The expiry is untouched; the admin picks a duration in a separate step.
func (s *GrantStore) Ensure(userID int64, username string) *access.Grant {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[userID]
	if !ok {
		grant = access.NewGrant(userID, username)
		s.grants[userID] = grant
	}
	if username != "" {
		grant.Username = username
	}
	s.persist()
	return cloneGrant(grant)
}

// Extend applies the extend-or-renew rule and persists the result. Hours are
// validated before any field is touched, so a rejected extend leaves the
// store unchanged, username included.
func (s *GrantStore) Extend(userID int64, username string, hours float64) (*access.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := access.ValidateHours(hours); err != nil {
		return nil, err
	}

	grant, ok := s.grants[userID]
	if !ok {
		grant = access.NewGrant(userID, username)
	}
	if username != "" {
		grant.Username = username
	}

	if err := grant.Extend(hours, s.now()); err != nil {
		return nil, err
	}

	s.grants[userID] = grant
	s.persist()
	return cloneGrant(grant), nil
}

// MarkWarned flips the warning flag for the current grant period.
func (s *GrantStore) MarkWarned(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[userID]
	if !ok {
		return
	}
	grant.WarningSent = true
	s.persist()
}

// Remove deletes the record if present. Removing an absent record is a no-op.
func (s *GrantStore) Remove(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.grants[userID]; !ok {
		return
	}
	delete(s.grants, userID)
	s.persist()
}

// All returns a snapshot of every record, ordered by user id for stable
// listings.
func (s *GrantStore) All() []access.Grant {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]access.Grant, 0, len(s.grants))
	for _, grant := range s.grants {
		out = append(out, *cloneGrant(grant))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// HasValidAccess reports whether the user holds a strictly-future expiry.
func (s *GrantStore) HasValidAccess(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[userID]
	return ok && grant.Active(s.now())
}

func cloneGrant(g *access.Grant) *access.Grant {
	if g == nil {
		return nil
	}
	out := *g
	if g.ExpiresAt != nil {
		t := *g.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}
