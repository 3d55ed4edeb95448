package redis

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// unreachable points at a port nothing listens on
func unreachable(t *testing.T) *Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return NewClient(rdb)
}

func TestClientErrorsWhenUnreachable(t *testing.T) {
	c := unreachable(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.Health(ctx))
	assert.NoError(t, c.Delete(ctx))
}

func TestIdempotencyStoreSurfacesErrors(t *testing.T) {
	s := NewIdempotencyStore(unreachable(t))

	_, reserved, err := s.Reserve(context.Background(), "user:1:abc", time.Minute)
	assert.Error(t, err)
	assert.False(t, reserved)
}

func TestRateLimiterSurfacesErrors(t *testing.T) {
	l := NewRateLimiter(unreachable(t), 0)
	assert.Equal(t, time.Minute, l.window)

	_, _, err := l.Hit(context.Background(), "1.2.3.4")
	assert.Error(t, err)
}

// vanishingKey answers every SETNX with "taken" and every GET with a wrapped
// miss, as if the key expired between the two calls each time.
type vanishingKey struct {
	claims int
}

func (h *vanishingKey) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *vanishingKey) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		switch c := cmd.(type) {
		case *redis.BoolCmd:
			h.claims++
			c.SetVal(false)
			return nil
		case *redis.StringCmd:
			err := fmt.Errorf("traced: %w", redis.Nil)
			c.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (h *vanishingKey) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestIdempotencyStoreRetriesVanishedKeyOnce(t *testing.T) {
	c := unreachable(t)
	hook := &vanishingKey{}
	c.Redis.AddHook(hook)

	existing, reserved, err := NewIdempotencyStore(c).Reserve(context.Background(), "user:1:abc", time.Minute)
	assert.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, existing)
	assert.Equal(t, 2, hook.claims)
}
