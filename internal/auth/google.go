package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/users"
)

const (
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	defaultCallback    = "/dashboard"
	stateTTL           = 10 * time.Minute
)

// UserStore persists identities returned by Google.
type UserStore interface {
	UpsertFromAuth(ctx context.Context, user users.User) (users.User, error)
}

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(userID, email, name, picture string) (string, error)
	TTL() time.Duration
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	CookieName   string
	SecureCookie bool
	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// GoogleService handles Google OAuth sign-in and sign-out.
type GoogleService struct {
	oauthConfig  *oauth2.Config
	users        UserStore
	signer       TokenSigner
	cookieName   string
	secureCookie bool
	userInfoURL  string
	states       *stateStore
}

func NewGoogleService(cfg GoogleConfig, store UserStore, signer TokenSigner) *GoogleService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "session_token"
	}
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoint,
		},
		users:        store,
		signer:       signer,
		cookieName:   cookieName,
		secureCookie: cfg.SecureCookie,
		userInfoURL:  userInfoURL,
		states:       newStateStore(time.Now),
	}
}

func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
	rg.POST("/auth/signout", s.signout)
}

func (s *GoogleService) configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" && s.oauthConfig.RedirectURL != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}
	state := uuid.NewString()
	s.states.put(state, safeCallback(c.Query("callbackUrl")))
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state))
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	callbackURL, ok := s.states.consume(state)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.exchange_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	info, err := s.fetchUserInfo(ctx, token)
	if err != nil || info.Sub == "" || info.Email == "" {
		telemetry.Warn("auth.userinfo_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	user, err := s.users.UpsertFromAuth(ctx, users.User{
		ID:    "google:" + info.Sub,
		Email: info.Email,
		Name:  info.Name,
		Image: info.Picture,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save user", nil)
		return
	}
	jwt, err := s.signer.Sign(user.ID, user.Email, user.Name, user.Image)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, jwt, int(s.signer.TTL().Seconds()), "/", "", s.secureCookie, true)
	telemetry.Info("auth.signed_in", map[string]any{"user_id": user.ID})
	c.Redirect(http.StatusFound, callbackURL)
}

func (s *GoogleService) signout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secureCookie, true)
	c.Status(http.StatusNoContent)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	// v2 userinfo uses "id" instead of "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

// safeCallback keeps only same-origin absolute paths.
func safeCallback(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return defaultCallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return defaultCallback
	}
	return u.RequestURI()
}

type pendingState struct {
	callbackURL string
	expires     time.Time
}

type stateStore struct {
	mu    sync.Mutex
	items map[string]pendingState
	now   func() time.Time
}

func newStateStore(now func() time.Time) *stateStore {
	return &stateStore{items: make(map[string]pendingState), now: now}
}

func (s *stateStore) put(state, callbackURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, v := range s.items {
		if now.After(v.expires) {
			delete(s.items, k)
		}
	}
	s.items[state] = pendingState{callbackURL: callbackURL, expires: now.Add(stateTTL)}
}

// consume returns the remembered callback and forgets the state.
func (s *stateStore) consume(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.items[state]
	if !ok {
		return "", false
	}
	delete(s.items, state)
	if s.now().After(pending.expires) {
		return "", false
	}
	return pending.callbackURL, true
}
