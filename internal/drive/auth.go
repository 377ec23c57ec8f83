package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/mgodinho/skunav/internal/domain"
)

// TokenAuth implements domain.Authenticator over a static bearer token.
// Token entry happens in the setup flow before the UI starts; Connect
// validates the stored token against the Drive about endpoint.
type TokenAuth struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.Mutex
	token string
}

// NewTokenAuth creates a token-based authenticator. An empty baseURL
// selects the public Google endpoint.
func NewTokenAuth(baseURL, token string, logger *slog.Logger) *TokenAuth {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenAuth{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
		token:      token,
	}
}

// Token returns the current bearer token. Usable as a TokenFunc.
func (a *TokenAuth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// SetToken replaces the current token.
func (a *TokenAuth) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// IsConnected reports whether a token is present. It does not validate;
// a stale token surfaces as ErrAuthRequired on the next API call.
func (a *TokenAuth) IsConnected() bool {
	return a.Token() != ""
}

// Connect validates the stored token against the Drive about endpoint.
func (a *TokenAuth) Connect(ctx context.Context) error {
	token := a.Token()
	if token == "" {
		return fmt.Errorf("no drive token configured: %w", domain.ErrAuthRequired)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"/drive/v3/about?fields=user", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("token validation failed", "error", err)
		return domain.Transient(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.ErrAuthRequired
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	a.logger.Info("drive token validated")
	return nil
}
