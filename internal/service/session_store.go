package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notewise/internal/cache"
	"notewise/internal/domain"
	"notewise/internal/logger"

	"go.uber.org/zap"
)

// SessionStore persists study sessions in the cache with a sliding TTL.
type SessionStore interface {
	Save(ctx context.Context, session *domain.StudySession) error
	Get(ctx context.Context, sessionID string) (*domain.StudySession, error)
	Delete(ctx context.Context, sessionID string) error
}

type cacheSessionStore struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewSessionStore returns a store backed by c. A nil cache yields a store
// that never finds anything.
func NewSessionStore(c domain.Cache, ttl time.Duration) SessionStore {
	if c == nil {
		logger.Get().Warn("SessionStore initialized with nil cache. Sessions will not persist.")
		return &noopSessionStore{}
	}
	return &cacheSessionStore{cache: c, ttl: ttl}
}

func (s *cacheSessionStore) Save(ctx context.Context, session *domain.StudySession) error {
	if session == nil {
		return domain.NewInvalidInputError("cannot store nil session")
	}

	key := cache.SessionKey(session.ID)
	data, err := json.Marshal(session)
	if err != nil {
		return domain.NewInternalError("failed to marshal study session", err)
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		logger.Get().Error("Failed to store study session", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to store session %s", session.ID), err)
	}
	return nil
}

func (s *cacheSessionStore) Get(ctx context.Context, sessionID string) (*domain.StudySession, error) {
	key := cache.SessionKey(sessionID)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewSessionNotFoundError(sessionID)
		}
		logger.Get().Error("Failed to load study session", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to load session %s", sessionID), err)
	}
	if data == "" {
		return nil, domain.NewSessionNotFoundError(sessionID)
	}

	var session domain.StudySession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to decode session %s", sessionID), err)
	}
	if session.Notes == nil {
		session.Notes = make(map[domain.NoteLength]string)
	}
	if session.Chat == nil {
		session.Chat = []domain.ChatMessage{}
	}

	// Reading a session keeps it alive.
	if err := s.cache.Expire(ctx, key, s.ttl); err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		logger.Get().Warn("Failed to refresh session TTL", zap.Error(err), zap.String("key", key))
	}
	return &session, nil
}

func (s *cacheSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, cache.SessionKey(sessionID)); err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to delete session %s", sessionID), err)
	}
	return nil
}

type noopSessionStore struct{}

func (noopSessionStore) Save(ctx context.Context, session *domain.StudySession) error { return nil }

func (noopSessionStore) Get(ctx context.Context, sessionID string) (*domain.StudySession, error) {
	return nil, domain.NewSessionNotFoundError(sessionID)
}

func (noopSessionStore) Delete(ctx context.Context, sessionID string) error { return nil }
