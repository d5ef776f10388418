package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// ErrTokenNotFound means no OAuth token has been stored yet.
var ErrTokenNotFound = errors.New("calendar: token not found")

// TokenStore persists the operator's OAuth token.
type TokenStore interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
}

// Token store kinds accepted by CALENDAR_TOKEN_STORE.
const (
	StoreEnv      = "env"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// DefaultStoreKind picks env-backed tokens in production and a local file elsewhere.
func DefaultStoreKind(env string) string {
	if env == "production" {
		return StoreEnv
	}
	return StoreFile
}

// EnvTokenStore serves a refresh token supplied through the environment.
// Saved tokens live in memory only and are lost on restart.
type EnvTokenStore struct {
	mu           sync.RWMutex
	refreshToken string
	token        *oauth2.Token
}

func NewEnvTokenStore(refreshToken string) *EnvTokenStore {
	return &EnvTokenStore{refreshToken: refreshToken}
}

func (s *EnvTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token != nil {
		copied := *s.token
		return &copied, nil
	}
	if s.refreshToken == "" {
		return nil, ErrTokenNotFound
	}
	return &oauth2.Token{RefreshToken: s.refreshToken}, nil
}

func (s *EnvTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("calendar: nil token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *token
	if copied.RefreshToken == "" {
		copied.RefreshToken = s.refreshToken
	}
	s.token = &copied
	return nil
}

// FileTokenStore keeps the token as JSON on local disk.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("calendar: read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("calendar: decode token file: %w", err)
	}
	return &token, nil
}

func (s *FileTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("calendar: nil token")
	}
	raw, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("calendar: encode token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("calendar: create token dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("calendar: write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("calendar: replace token file: %w", err)
	}
	return nil
}

var (
	_ TokenStore = (*EnvTokenStore)(nil)
	_ TokenStore = (*FileTokenStore)(nil)
)
