// Package session provides per-viewer interaction sessions.
//
// A session remembers how one viewer looks at one profile: the viewport,
// the zoom, the orientation, the search text and the selected and hovered
// frames. The state is plain data ([View]) so that it can be stored in
// any backend and reapplied to a fresh render engine on every request:
//   - memory: In-memory storage for a single server process
//   - cache: Storage on top of a [cache.Cache], e.g. Redis for
//     multi-instance deployments
//   - file: File-based storage used by the terminal viewer to resume
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New(profileHash, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
//	session.Restore(engine, sess.View, search)
//
// [cache.Cache]: github.com/matzehuels/stackflame/pkg/cache.Cache
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackflame/pkg/errors"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "session not found")

// Session stores the view state of one viewer.
type Session struct {
	ID          string    `json:"id"`
	ProfileHash string    `json:"profile_hash"`
	View        View      `json:"view"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session by ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	s.ExpiresAt = time.Now().Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be no-op for TTL backends).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 2 * time.Hour

// New creates a session with a random ID for the given profile and the
// default view.
func New(profileHash string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:          uuid.NewString(),
		ProfileHash: profileHash,
		View:        DefaultView(),
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}
}

// ValidID reports whether id has the shape of a session ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
