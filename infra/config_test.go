package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgConfig_GetConnectionString(t *testing.T) {
	t.Run("explicit connection string wins", func(t *testing.T) {
		cfg := PgConfig{ConnectionString: "postgres://u:p@db/invoicebox", Hostname: "ignored"}
		assert.Equal(t, "postgres://u:p@db/invoicebox", cfg.GetConnectionString())
	})

	t.Run("built from parts, with port", func(t *testing.T) {
		cfg := PgConfig{Hostname: "localhost", User: "u", Password: "p", Database: "d", Port: "5432"}
		assert.Equal(t,
			"host=localhost user=u password=p database=d sslmode=prefer port=5432",
			cfg.GetConnectionString())
	})

	t.Run("socket connection omits the port", func(t *testing.T) {
		cfg := PgConfig{
			Hostname: "/cloudsql/db", User: "u", Password: "p", Database: "d",
			Port: "5432", DbConnectWithSocket: true, SslMode: "disable",
		}
		assert.Equal(t,
			"host=/cloudsql/db user=u password=p database=d sslmode=disable",
			cfg.GetConnectionString())
	})
}

func TestRedisConfig_Enabled(t *testing.T) {
	assert.False(t, RedisConfig{}.Enabled())
	assert.True(t, RedisConfig{Address: "localhost:6379"}.Enabled())
}
