package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realscan/realscan/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: test-secret
database:
  host: localhost
  port: 3306
  user: realscan
  password: pw
  name: realscan
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 60, cfg.Limits.RateCapacity)
	assert.Equal(t, 2, cfg.Limits.RateRefill)
	assert.Equal(t, 24, cfg.Sweep.IntervalHours)
	assert.Equal(t, "logs", cfg.Logs.Dir)
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: app
  password: pw
  name: realscan
  sslMode: require
auth:
  jwtSecret: s
  tokenTTLHours: 2
sweep:
  intervalHours: 6
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 6, cfg.Sweep.IntervalHours)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 3306
  user: realscan
  password: pw
  name: realscan_db
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t,
		"realscan:pw@tcp(localhost:3306)/realscan_db?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
}

func TestPostgresDSN_DefaultSSLMode(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  host: db
  port: 5432
  user: app
  password: pw
  name: realscan
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t,
		"host=db port=5432 user=app password=pw dbname=realscan sslmode=disable",
		cfg.PostgresDSN())
}
