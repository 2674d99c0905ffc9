package flash

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionCookieName identifies the client's notice slot in Redis.
	SessionCookieName = "todo_flash_id"

	keyPrefix = "flash:"
)

// RedisStore keeps notices in Redis, keyed by a random per-client id cookie.
type RedisStore struct {
	rdb  *redis.Client
	opts Options
}

func NewRedisStore(rdb *redis.Client, opts Options) *RedisStore {
	return &RedisStore{rdb: rdb, opts: opts}
}

func (s *RedisStore) Set(w http.ResponseWriter, r *http.Request, msg string) error {
	id, ok := sessionID(r)
	if !ok {
		id = uuid.NewString()
	}

	if err := s.rdb.Set(r.Context(), keyPrefix+id, msg, s.opts.ttl()).Err(); err != nil {
		return fmt.Errorf("failed to store flash: %w", err)
	}

	setCookie(w, SessionCookieName, id, s.opts.ttl(), s.opts.Secure)
	return nil
}

func (s *RedisStore) Pop(w http.ResponseWriter, r *http.Request) (string, error) {
	id, ok := sessionID(r)
	if !ok {
		return "", nil
	}

	msg, err := s.rdb.GetDel(r.Context(), keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read flash: %w", err)
	}
	return msg, nil
}

func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

var _ Store = (*RedisStore)(nil)
