package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/oauth2"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresTokenStore keeps tokens in calendar_oauth_tokens, keyed by account.
type PostgresTokenStore struct {
	db      pgxQuerier
	account string
}

func NewPostgresTokenStore(db pgxQuerier, account string) *PostgresTokenStore {
	if db == nil {
		panic("calendar: postgres pool required")
	}
	if account == "" {
		account = "default"
	}
	return &PostgresTokenStore{db: db, account: account}
}

func (s *PostgresTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT token FROM calendar_oauth_tokens WHERE account = $1`, s.account).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("calendar: query token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("calendar: decode token: %w", err)
	}
	return &token, nil
}

func (s *PostgresTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("calendar: nil token")
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("calendar: encode token: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO calendar_oauth_tokens (account, token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (account) DO UPDATE SET token = EXCLUDED.token, updated_at = now()
	`, s.account, raw)
	if err != nil {
		return fmt.Errorf("calendar: upsert token: %w", err)
	}
	return nil
}

var _ TokenStore = (*PostgresTokenStore)(nil)
