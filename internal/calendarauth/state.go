package calendarauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateTTL bounds how long an authorization attempt stays valid.
const StateTTL = 10 * time.Minute

// StateStore remembers issued OAuth state values until they are consumed once.
type StateStore interface {
	Put(ctx context.Context, state string, ttl time.Duration) error
	// Consume reports whether state was issued and unexpired, and forgets it.
	Consume(ctx context.Context, state string) (bool, error)
}

func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("calendarauth: generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MemoryStateStore keeps states in process memory. Suitable for a single
// instance or the CLI.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStateStore) Put(ctx context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(ttl)
	return nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return !s.now().After(exp), nil
}

// RedisStateStore shares states across API instances.
type RedisStateStore struct {
	redis *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	if client == nil {
		panic("calendarauth: redis client cannot be nil")
	}
	return &RedisStateStore{redis: client}
}

func (s *RedisStateStore) Put(ctx context.Context, state string, ttl time.Duration) error {
	ok, err := s.redis.SetNX(ctx, stateKey(state), "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("calendarauth: store state: %w", err)
	}
	if !ok {
		return fmt.Errorf("calendarauth: state collision")
	}
	return nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	_, err := s.redis.GetDel(ctx, stateKey(state)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("calendarauth: consume state: %w", err)
	}
	return true, nil
}

func stateKey(state string) string {
	return fmt.Sprintf("calendar:oauth:state:%s", state)
}

var (
	_ StateStore = (*MemoryStateStore)(nil)
	_ StateStore = (*RedisStateStore)(nil)
)
