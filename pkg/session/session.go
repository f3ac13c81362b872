package session

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state bound to one browser.
type Session struct {
	ID             uuid.UUID      `json:"id"`
	Token          string         `json:"token"`
	UserID         *uuid.UUID     `json:"user_id,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	ExpiresAt      time.Time      `json:"expires_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	CreatedAt      time.Time      `json:"created_at"`

	modified bool
}

// NewSession creates a session that expires after ttl.
func NewSession(token string, userID *uuid.UUID, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.New(),
		Token:          token,
		UserID:         userID,
		Data:           make(map[string]any),
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

// IsAuthenticated reports whether a user is attached to the session.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != nil
}

func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Modified reports whether Data changed since the session was loaded.
func (s *Session) Modified() bool {
	return s != nil && s.modified
}

func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	val, ok := s.Data[key]
	return val, ok
}

// GetString returns the value under key when it is a string.
func (s *Session) GetString(key string) (string, bool) {
	val, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

func (s *Session) Set(key string, value any) {
	if s == nil {
		return
	}
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
	s.modified = true
}

func (s *Session) Delete(key string) {
	if s == nil || s.Data == nil {
		return
	}
	if _, ok := s.Data[key]; ok {
		delete(s.Data, key)
		s.modified = true
	}
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	if s == nil {
		return
	}
	s.LastActivityAt = time.Now()
}

// clone returns a copy with its own Data map.
func (s *Session) clone() *Session {
	c := *s
	c.Data = maps.Clone(s.Data)
	c.modified = false
	return &c
}
