package force

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// Login negotiates an OAuth session using whichever strategy the configuration
// supports, in this order:
//
//  1. Pre-issued session: FORCE_ACCESS_TOKEN + FORCE_INSTANCE_URL are already
//     set, e.g. by a hosting environment that authenticated the user. No
//     network call is made.
//  2. Refresh token: a stored grant is exchanged for a fresh access token.
//  3. Username/password grant.
//
// When none of the three is configured, ErrNoLoginStrategy is returned and the
// caller should drive the interactive flow via AuthorizeURL and LoginWithCode.
func (s *Session) Login(ctx context.Context) error {
	switch {
	case s.config.AccessToken != "":
		s.logger.Info("Using pre-issued session from configuration",
			zap.String("instance_url", s.config.InstanceURL))
		s.apply(&AuthResponse{
			AccessToken: s.config.AccessToken,
			InstanceURL: s.config.InstanceURL,
		})
		return nil

	case s.config.RefreshToken != "":
		s.logger.Info("Logging in with stored refresh token")
		return s.loginRefresh(ctx, s.config.RefreshToken)

	case s.config.Username != "" && s.config.Password != "":
		s.logger.Info("Logging in with username/password grant",
			zap.String("username", s.config.Username))
		return s.loginPassword(ctx)

	default:
		return ErrNoLoginStrategy
	}
}

// AuthorizeURL builds the URL a caller redirects the user to for the
// interactive web-server flow. The authorization code delivered to the
// callback URL is then passed to LoginWithCode.
func (s *Session) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.config.ClientID)
	q.Set("redirect_uri", s.config.CallbackURL)
	if state != "" {
		q.Set("state", state)
	}
	return fmt.Sprintf("%s/services/oauth2/authorize?%s", s.config.LoginURL, q.Encode())
}

// LoginWithCode exchanges an authorization code obtained from the interactive
// flow and populates the session handle.
func (s *Session) LoginWithCode(ctx context.Context, code string) error {
	form := map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"client_id":    s.config.ClientID,
		"redirect_uri": s.config.CallbackURL,
	}
	if s.config.ClientSecret != "" {
		form["client_secret"] = s.config.ClientSecret
	}
	auth, err := s.tokenRequest(ctx, form)
	if err != nil {
		return fmt.Errorf("authorization code exchange failed: %w", err)
	}
	s.apply(auth)
	return nil
}

// Logout revokes the current access token and clears the session handle. The
// handle is cleared even when the revoke call fails; the error is still
// returned so callers can log it.
func (s *Session) Logout(ctx context.Context) error {
	token, _, err := s.token()
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/services/oauth2/revoke", s.config.LoginURL)
	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}
	resp, err := s.httpClient.Post(ctx, endpoint, headers, map[string]string{"token": token})
	s.clear()
	if err != nil {
		return fmt.Errorf("token revoke request failed: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("token revoke failed with status %d: %s", resp.StatusCode, string(resp.Body))
	}

	s.logger.Info("Logged out and cleared session")
	return nil
}

func (s *Session) loginRefresh(ctx context.Context, refreshToken string) error {
	form := map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     s.config.ClientID,
		"refresh_token": refreshToken,
	}
	if s.config.ClientSecret != "" {
		form["client_secret"] = s.config.ClientSecret
	}
	auth, err := s.tokenRequest(ctx, form)
	if err != nil {
		return fmt.Errorf("refresh token exchange failed: %w", err)
	}
	s.apply(auth)
	return nil
}

func (s *Session) loginPassword(ctx context.Context) error {
	form := map[string]string{
		"grant_type": "password",
		"client_id":  s.config.ClientID,
		"username":   s.config.Username,
		"password":   s.config.Password + s.config.SecurityToken,
	}
	if s.config.ClientSecret != "" {
		form["client_secret"] = s.config.ClientSecret
	}
	auth, err := s.tokenRequest(ctx, form)
	if err != nil {
		return fmt.Errorf("password grant failed: %w", err)
	}
	s.apply(auth)
	return nil
}

// reauthenticate re-runs a non-interactive strategy after a 401, preferring
// the refresh token the handle picked up during the original grant. The
// pre-issued session strategy is never retried: a stale injected token cannot
// be re-minted from here.
func (s *Session) reauthenticate(ctx context.Context) error {
	s.state.mu.RLock()
	refreshToken := s.state.refreshToken
	s.state.mu.RUnlock()

	switch {
	case refreshToken != "":
		s.logger.Info("Session expired, refreshing access token")
		return s.loginRefresh(ctx, refreshToken)
	case s.config.RefreshToken != "":
		s.logger.Info("Session expired, refreshing with configured token")
		return s.loginRefresh(ctx, s.config.RefreshToken)
	case s.config.Username != "" && s.config.Password != "":
		s.logger.Info("Session expired, re-running password grant")
		return s.loginPassword(ctx)
	default:
		return ErrNotLoggedIn
	}
}

// tokenRequest posts a form to the OAuth token endpoint and decodes the grant.
func (s *Session) tokenRequest(ctx context.Context, form map[string]string) (*AuthResponse, error) {
	endpoint := fmt.Sprintf("%s/services/oauth2/token", s.config.LoginURL)
	s.logger.Info("Requesting OAuth token", zap.String("url", endpoint), zap.String("grant_type", form["grant_type"]))

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}

	resp, err := s.httpClient.Post(ctx, endpoint, headers, form)
	if err != nil {
		s.logger.Error("Token request failed", zap.Error(err), zap.String("url", endpoint))
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	if resp.StatusCode != 200 {
		var oauthErr OAuthError
		if jsonErr := json.Unmarshal(resp.Body, &oauthErr); jsonErr == nil && oauthErr.Code != "" {
			s.logger.Error("Token request rejected",
				zap.Int("status_code", resp.StatusCode),
				zap.String("error", oauthErr.Code),
				zap.String("description", oauthErr.Description))
			return nil, &oauthErr
		}
		s.logger.Error("Token request rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(resp.Body))
	}

	var auth AuthResponse
	if err := json.Unmarshal(resp.Body, &auth); err != nil {
		s.logger.Error("Failed to parse token response", zap.Error(err))
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	s.logger.Info("Successfully obtained OAuth token",
		zap.String("token_type", auth.TokenType),
		zap.String("instance_url", auth.InstanceURL))

	return &auth, nil
}
