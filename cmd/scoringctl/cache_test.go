package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func redisConfig(t *testing.T, mr *miniredis.Miniredis, cacheEnabled bool) string {
	t.Helper()

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	return writeConfig(t, fmt.Sprintf(`
logger:
  level: error
redis:
  host: %s
  port: %d
cache:
  enabled: %t
  key_prefix: scoring-test
`, mr.Host(), port, cacheEnabled))
}

func TestCacheClearCmd(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("scoring-test:earnings:u1", `{"total_points":142}`))
	require.NoError(t, mr.Set("scoring-test:user:u1", `{"id":"u1"}`))
	require.NoError(t, mr.Set("other-service:earnings:u1", "keep"))

	out, err := runCLI(t, "--config", redisConfig(t, mr, true), "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "earnings cache cleared")

	assert.False(t, mr.Exists("scoring-test:earnings:u1"))
	assert.False(t, mr.Exists("scoring-test:user:u1"))
	assert.True(t, mr.Exists("other-service:earnings:u1"))
}

func TestCacheClearCmd_Disabled(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("scoring-test:earnings:u1", "cached"))

	out, err := runCLI(t, "--config", redisConfig(t, mr, false), "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to clear")
	assert.True(t, mr.Exists("scoring-test:earnings:u1"))
}

func TestCacheClearCmd_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	path := redisConfig(t, mr, true)
	mr.Close()

	_, err := runCLI(t, "--config", path, "cache", "clear")
	assert.Error(t, err)
}
