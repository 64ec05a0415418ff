package cache

import (
	"errors"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	original := env.Env
	env.Env = values
	t.Cleanup(func() { env.Env = original })
}

func TestOptions_FromVariables(t *testing.T) {
	withEnv(t, map[string]string{"CACHE_HOST": "cache", "CACHE_PORT": "6380", "CACHE_PASSWORD": "secret", "CACHE_DB": "2"})

	opt, err := options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
}

func TestOptions_URLWins(t *testing.T) {
	withEnv(t, map[string]string{"CACHE_URL": "redis://:pw@redis.internal:6379/5", "CACHE_HOST": "ignored"})

	opt, err := options()
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 5, opt.DB)
}

func TestOptions_InvalidURL(t *testing.T) {
	withEnv(t, map[string]string{"CACHE_URL": "http://not-redis"})

	_, err := options()
	assert.Error(t, err)
}

func TestIsMiss(t *testing.T) {
	assert.True(t, IsMiss(redis.Nil))
	assert.True(t, IsMiss(fmt.Errorf("lookup: %w", redis.Nil)))
	assert.False(t, IsMiss(errors.New("connection refused")))
	assert.False(t, IsMiss(nil))
}
