package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, time.Minute, cfg.RedisCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 1, cfg.UsernameMinLength)
	assert.Equal(t, 6, cfg.PasswordMinLength)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "task_events", cfg.RabbitMQTaskQueue)
	assert.False(t, cfg.TaskEventsEnabled)
	assert.False(t, cfg.SearchEnabled)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("REDIS_CACHE_TTL", "5s")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("TASK_EVENTS_ENABLED", "true")
	t.Setenv("USERNAME_MIN_LENGTH", "3")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.RedisCacheTTL)
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.True(t, cfg.TaskEventsEnabled)
	assert.Equal(t, 3, cfg.UsernameMinLength)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_CACHE_TTL", "soon")
	t.Setenv("REDIS_DB", "zero")
	t.Setenv("SEARCH_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, time.Minute, cfg.RedisCacheTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.SearchEnabled)
}

func TestConfig_PostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "todo", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/todo?sslmode=disable", cfg.PostgresDSN())
}

func TestConfig_Lists(t *testing.T) {
	cfg := &Config{
		CORSAllowedOrigins: " http://a.test, ,http://b.test ",
		ElasticsearchAddrs: "http://es1:9200,http://es2:9200",
	}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.ESAddrs())
	assert.Empty(t, (&Config{}).CORSOrigins())
}
