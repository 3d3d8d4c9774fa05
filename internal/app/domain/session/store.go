// Package session keeps the current user's identity for one device and
// persists it to the device's durable key-value entry "userInfo".
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/pkg/kv"
)

// StorageKey is the durable entry holding the serialized session.
const StorageKey = "userInfo"

var errCorrupt = errors.New("corrupt session record")

// Store is the session store of a single device. Safe for concurrent use.
type Store struct {
	kv     kv.Store
	logger *zap.Logger

	mu      sync.RWMutex
	current *Session
}

func NewStore(store kv.Store, logger *zap.Logger) *Store {
	return &Store{kv: store, logger: logger}
}

// Login records username as the current user and persists it. Credentials are
// not checked; only storage failures are reported.
func (s *Store) Login(ctx context.Context, username, _ string) (Session, error) {
	sess := New(username)

	raw, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}
	// A failed write leaves the previous session in place.
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	s.logger.Info("User logged in",
		zap.String("username", sess.Username),
		zap.String("role", string(sess.Role)))
	return sess, nil
}

// Logout clears the session and its durable entry. Safe to call when nobody
// is logged in.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.kv.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// Restore loads the persisted session into memory. A corrupt record is
// removed; an unreadable backend leaves the device logged out for this call.
func (s *Store) Restore(ctx context.Context) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.set(nil)
		return
	}
	if err != nil {
		s.logger.Error("Failed to read session", zap.Error(err))
		s.set(nil)
		return
	}

	sess, err := decode(raw)
	if err != nil {
		s.logger.Warn("Discarding stored session", zap.Error(err))
		s.set(nil)
		if err := s.kv.Remove(ctx, StorageKey); err != nil {
			s.logger.Error("Failed to remove corrupt session", zap.Error(err))
		}
		return
	}
	s.set(&sess)
}

func (s *Store) set(sess *Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

func decode(raw string) (Session, error) {
	var stored Session
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return Session{}, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if stored.Username == "" {
		return Session{}, fmt.Errorf("%w: missing username", errCorrupt)
	}
	if !stored.Role.Valid() || stored.Role != DeriveRole(stored.Username) {
		return Session{}, fmt.Errorf("%w: role %q does not match username", errCorrupt, stored.Role)
	}
	return New(stored.Username), nil
}
