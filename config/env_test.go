package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{"mongo_db":"from_json","app_port":"9000","session_ttl":"30m"}`)
	envPath := writeFile(t, dir, ".env", "MONGO_DB=from_dotenv\n# comment\nREDIS_ADDR=\"redis:6379\"\n")

	t.Setenv("APP_PORT", "7000")

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "from_dotenv", get("MONGO_DB", ""), ".env beats app.json")
	assert.Equal(t, "7000", get("APP_PORT", ""), "environment beats files")
	assert.Equal(t, "redis:6379", get("REDIS_ADDR", ""), "quotes are stripped")
	assert.Equal(t, "30m", get("SESSION_TTL", ""))
}

func TestMissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".env")))

	assert.Equal(t, defaultMongoDB, get("MONGO_DB", ""))
	assert.Equal(t, defaultAppPort, get("APP_PORT", ""))
}

func TestMalformedJSONFails(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{not json`)
	assert.Error(t, loadFromFiles(jsonPath, filepath.Join(dir, ".env")))
}

func TestTypedGetters(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "SESSION_TTL=bogus\nSESSION_DRIVER=Memory\nLOGIN_RATE_LIMIT=-3\n")
	require.NoError(t, loadFromFiles(filepath.Join(dir, "none.json"), envPath))
	loadOnce.Do(func() {}) // keep Load from re-reading the real files

	assert.Equal(t, 2*time.Hour, SessionTTL())
	assert.Equal(t, "memory", SessionDriver())
	assert.Equal(t, 20, LoginRateLimit())
}
