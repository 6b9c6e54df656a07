package client

import (
	"sync"

	"github.com/google/uuid"
)

// User is the profile the API returns for the signed-in account
type User struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
}

// Session holds the credentials of one signed-in user. It is passed to every
// authenticated call and is cleared on logout or when the API answers 401.
// A Session is safe for concurrent use.
type Session struct {
	mu           sync.RWMutex
	token        string
	refreshToken string
	user         *User
}

// NewSession returns an empty, unauthenticated session
func NewSession() *Session {
	return &Session{}
}

// Set replaces the stored credentials
func (s *Session) Set(token, refreshToken string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.refreshToken = refreshToken
	s.user = &user
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) setUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

// Clear forgets everything
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.refreshToken = ""
	s.user = nil
}

// Token returns the access token, empty when signed out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// RefreshToken returns the refresh token, empty when signed out
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns a copy of the stored user
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a token and user are stored
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// IsAdmin reports whether the stored user is an administrator
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin
}
