package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ngprojetos/inscricao-eventos/internal/flow"
	"github.com/ngprojetos/inscricao-eventos/internal/logging"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/ngprojetos/inscricao-eventos/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "inscricao:session:"

// Store keeps flow sessions in Redis as JSON documents with a sliding TTL
type Store struct {
	redis *redisclient.Client
	ttl   time.Duration
}

// NewStore creates a session store
func NewStore(client *redisclient.Client, ttl time.Duration) *Store {
	return &Store{redis: client, ttl: ttl}
}

// NewID returns a fresh session identifier
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an identifier produced by NewID
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Load returns the stored session, or models.ErrSessionNotFound
func (s *Store) Load(ctx context.Context, id string) (*flow.Session, error) {
	raw, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess flow.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: session %s: %v", models.ErrSessionCorrupt, id, err)
	}
	if !sess.State.Valid() {
		return nil, fmt.Errorf("%w: session %s has unknown state %q", models.ErrSessionCorrupt, id, sess.State)
	}
	if sess.FieldErrors == nil {
		sess.FieldErrors = models.FieldErrors{}
	}
	return &sess, nil
}

// LoadOrCreate returns the stored session or a new one under the same id.
// An unreadable stored session is dropped and replaced.
func (s *Store) LoadOrCreate(ctx context.Context, id string) (*flow.Session, bool, error) {
	sess, err := s.Load(ctx, id)
	if errors.Is(err, models.ErrSessionCorrupt) {
		logging.Logger.Warn("discarding unreadable session", zap.String("session_id", id), zap.Error(err))
		if err := s.Delete(ctx, id); err != nil {
			return nil, false, err
		}
		return flow.NewSession(id), true, nil
	}
	if errors.Is(err, models.ErrSessionNotFound) {
		return flow.NewSession(id), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return sess, false, nil
}

// Save stores the session and renews its TTL
func (s *Store) Save(ctx context.Context, sess *flow.Session) error {
	sess.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
