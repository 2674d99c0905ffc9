package flash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rdb.Ping(ctx).Err())

	return rdb
}

func TestRedisStore_SetThenPopOnce(t *testing.T) {
	rdb := newTestRedis(t)
	s := NewRedisStore(rdb, Options{TTL: time.Minute})

	setRec := httptest.NewRecorder()
	require.NoError(t, s.Set(setRec, httptest.NewRequest(http.MethodPost, "/todos/new", nil), "saved"))

	cookies := setRec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	_, err := uuid.Parse(cookies[0].Value)
	require.NoError(t, err)

	ttl, err := rdb.TTL(context.Background(), keyPrefix+cookies[0].Value).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	pop := func() string {
		req := httptest.NewRequest(http.MethodGet, "/todos", nil)
		carry(t, setRec, req)
		msg, err := s.Pop(httptest.NewRecorder(), req)
		require.NoError(t, err)
		return msg
	}

	assert.Equal(t, "saved", pop())
	assert.Empty(t, pop())
}

func TestRedisStore_ReusesSessionID(t *testing.T) {
	rdb := newTestRedis(t)
	s := NewRedisStore(rdb, Options{TTL: time.Minute})
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	rec := httptest.NewRecorder()
	require.NoError(t, s.Set(rec, req, "again"))

	assert.Equal(t, id, rec.Result().Cookies()[0].Value)
	t.Cleanup(func() { rdb.Del(context.Background(), keyPrefix+id) })
}

func TestRedisStore_PopIgnoresMalformedID(t *testing.T) {
	// No Redis round trip happens for a cookie that is not a uuid.
	s := NewRedisStore(nil, Options{})
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "../../etc"})

	msg, err := s.Pop(httptest.NewRecorder(), req)

	require.NoError(t, err)
	assert.Empty(t, msg)
}
