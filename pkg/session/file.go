package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/stackflame/pkg/cache"
)

// FileStore keeps the terminal viewer's sessions in a [cache.FileCache]
// below the user's state directory.
type FileStore struct {
	*CacheStore
	files *cache.FileCache
}

// NewFileStore opens the store in baseDir, or in
// ~/.local/state/stackflame/views when baseDir is empty.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "state", "stackflame", "views")
	}
	fc, err := cache.NewFileCache(baseDir)
	if err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{CacheStore: NewCacheStore(fc), files: fc}, nil
}

// Cleanup removes expired sessions from disk.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.files.Prune()
	return nil
}

// Path returns the directory holding the session files.
func (s *FileStore) Path() string { return s.files.Dir() }

var _ Store = (*FileStore)(nil)

// =============================================================================
// Terminal viewer resume
// =============================================================================

// ResumeTTL is how long the terminal viewer remembers a profile's view.
const ResumeTTL = 30 * 24 * time.Hour

// ResumeID returns the session ID under which the terminal viewer keeps the
// view of a profile.
func ResumeID(profileHash string) string {
	if len(profileHash) > 16 {
		profileHash = profileHash[:16]
	}
	return "view-" + profileHash
}

// LoadResume returns the stored view of a profile, or a fresh session with
// the resume ID when there is none.
func (s *FileStore) LoadResume(ctx context.Context, profileHash string) (*Session, error) {
	sess, err := s.Get(ctx, ResumeID(profileHash))
	if err != nil || sess != nil {
		return sess, err
	}
	sess = New(profileHash, ResumeTTL)
	sess.ID = ResumeID(profileHash)
	return sess, nil
}
