// Package force provides a client for the Salesforce REST API.
//
// The package covers the two concerns every integration needs before it can do
// anything useful with the platform:
//
//   - Session negotiation: Login inspects the configured credentials and picks
//     one of three OAuth strategies (a pre-issued session injected by the
//     hosting environment, a stored refresh token, or the username/password
//     grant). The interactive web-server flow is exposed separately through
//     AuthorizeURL and LoginWithCode for callers that can drive a browser.
//   - REST forwarding: Query, Search, Create, Retrieve, Update, Upsert and
//     Delete attach the session's Bearer token, resolve paths against the
//     instance URL and decode the platform's JSON error payloads into typed
//     errors.
//
// All state lives in the Session handle: absent before Login, populated once a
// strategy succeeds, cleared again by Logout.
package force

import (
	"sync"
	"time"

	"github.com/natserract/forcekit/pkg/config"
	httpclient "github.com/natserract/forcekit/pkg/http"
	"go.uber.org/zap"
)

// Session is the shared handle holding the authenticated client state. A zero
// session is logged out; Login (or LoginWithCode) populates it and Logout
// clears it.
type Session struct {
	config     *config.Config
	httpClient *httpclient.Client
	state      *sessionState
	logger     *zap.Logger
}

// sessionState guards the OAuth grant with thread-safe access
type sessionState struct {
	mu           sync.RWMutex
	accessToken  string
	instanceURL  string
	refreshToken string
	identityURL  string
	issuedAt     time.Time
}

// NewSession creates a new session handle with a default production logger
func NewSession(cfg *config.Config) (*Session, error) {
	logger, _ := zap.NewProduction()
	return NewSessionWithLogger(cfg, logger)
}

// NewSessionWithLogger creates a new session handle with a custom logger. The
// underlying HTTP client honors cfg.ProxyURL when one is configured.
func NewSessionWithLogger(cfg *config.Config, logger *zap.Logger) (*Session, error) {
	client, err := httpclient.NewClientWithProxy(cfg.ProxyURL, logger)
	if err != nil {
		return nil, err
	}
	return &Session{
		config:     cfg,
		httpClient: client,
		state:      &sessionState{},
		logger:     logger,
	}, nil
}

// LoggedIn reports whether the handle currently holds an access token.
func (s *Session) LoggedIn() bool {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.accessToken != ""
}

// InstanceURL returns the instance the session is bound to, or the empty
// string when logged out.
func (s *Session) InstanceURL() string {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.instanceURL
}

// token returns the current access token and instance URL.
func (s *Session) token() (string, string, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	if s.state.accessToken == "" {
		return "", "", ErrNotLoggedIn
	}
	return s.state.accessToken, s.state.instanceURL, nil
}

// apply stores a grant on the handle. A grant that carries no refresh token
// keeps the one already held, so a refresh-token exchange does not lose the
// original grant.
func (s *Session) apply(auth *AuthResponse) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.accessToken = auth.AccessToken
	if auth.InstanceURL != "" {
		s.state.instanceURL = auth.InstanceURL
	}
	if auth.RefreshToken != "" {
		s.state.refreshToken = auth.RefreshToken
	}
	if auth.ID != "" {
		s.state.identityURL = auth.ID
	}
	s.state.issuedAt = time.Now()
}

// clear drops all authenticated state from the handle.
func (s *Session) clear() {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.accessToken = ""
	s.state.instanceURL = ""
	s.state.refreshToken = ""
	s.state.identityURL = ""
	s.state.issuedAt = time.Time{}
}
