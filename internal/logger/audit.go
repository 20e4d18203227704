package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultCapacity is the number of entries kept; older ones are dropped
	// first.
	DefaultCapacity = 1000

	lockTimeout    = 2 * time.Second
	lockRetryDelay = 20 * time.Millisecond

	// maxRawBytes bounds the undecodable payload kept on an entry.
	maxRawBytes = 4096
)

// Entry is one classified request. ToolInput is stored as received.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	ToolName  string         `json:"tool_name"`
	Blocked   bool           `json:"blocked"`
	Reason    string         `json:"reason,omitempty"`
	Category  string         `json:"category,omitempty"`
	RuleID    string         `json:"rule_id,omitempty"`
	ToolInput map[string]any `json:"tool_input"`
	Raw       string         `json:"raw,omitempty"`
}

// SetRaw records a payload that could not be decoded.
func (e *Entry) SetRaw(data []byte) {
	if len(data) > maxRawBytes {
		data = data[:maxRawBytes]
	}
	e.Raw = string(data)
}

// Store is the on-disk audit log: a single JSON array holding the most recent
// entries, rewritten whole on every append. Appends from concurrent hook
// processes are serialized by an advisory lock on a sibling ".lock" file.
type Store struct {
	path     string
	capacity int
	logger   *zap.Logger
	now      func() time.Time
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:     path,
		capacity: DefaultCapacity,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Store) Path() string { return s.path }

// Append adds e, filling in its ID and timestamp when empty, and trims the log
// to capacity. A missing or corrupt log is started over. If the lock cannot
// be taken in time the write proceeds unlocked.
func (s *Store) Append(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = s.now().Format(time.RFC3339)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	unlock := s.lock()
	defer unlock()

	entries := s.read()
	entries = append(entries, e)
	if len(entries) > s.capacity {
		entries = entries[len(entries)-s.capacity:]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode audit log: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// Entries returns the stored entries, oldest first. A corrupt log reads as
// empty.
func (s *Store) Entries() ([]Entry, error) {
	if _, err := os.Stat(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat audit log: %w", err)
	}
	return s.read(), nil
}

func (s *Store) lock() func() {
	fl := flock.New(s.path + ".lock")

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		s.logger.Warn("audit log lock unavailable, writing without it",
			zap.String("lock", fl.Path()),
			zap.Error(err),
		)
		return func() {}
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn("failed to release audit log lock", zap.Error(err))
		}
	}
}

func (s *Store) read() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("audit log unreadable, starting over", zap.String("path", s.path), zap.Error(err))
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("audit log corrupt, starting over", zap.String("path", s.path), zap.Error(err))
		return nil
	}
	return entries
}

// writeFileAtomic replaces path with data through a temp file in the same
// directory, so readers never see a partial log.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp audit log: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp audit log: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp audit log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp audit log: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace audit log: %w", err)
	}
	return nil
}
