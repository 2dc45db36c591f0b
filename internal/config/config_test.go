package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Env: "development"},
		Server: ServerConfig{Host: "0.0.0.0", Port: 5000},
		Database: DatabaseConfig{
			Driver: DriverPostgres,
			URL:    "postgres://localhost/drugs",
		},
		API: APIConfig{
			ListMode:     ListModePaginated,
			DefaultPage:  1,
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Seed: SeedConfig{FixturePath: "data/drugs.json"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, ListModePaginated, cfg.API.ListMode)
	assert.Equal(t, 1, cfg.API.DefaultPage)
	assert.Equal(t, 10, cfg.API.DefaultLimit)
	assert.Equal(t, 1000, cfg.API.MaxLimit)
	assert.False(t, cfg.API.StrictQuery)
	assert.Equal(t, "data/drugs.json", cfg.Seed.FixturePath)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DRUGAPI_API_LIST_MODE", "flat")
	t.Setenv("DRUGAPI_DATABASE_DRIVER", "sqlite")
	t.Setenv("DRUGAPI_SEED_FIXTURE_PATH", "/srv/fixtures/drugs.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ListModeFlat, cfg.API.ListMode)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/srv/fixtures/drugs.json", cfg.Seed.FixturePath)
}

func TestLoad_CompatEnvNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://compat@db:5432/drugs")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://compat@db:5432/drugs", cfg.Database.URL)
	assert.Equal(t, "production", cfg.App.Env)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := "api:\n  list_mode: flat\n  strict_query: true\nserver:\n  port: 9000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ListModeFlat, cfg.API.ListMode)
	assert.True(t, cfg.API.StrictQuery)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoad_InvalidListMode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DRUGAPI_API_LIST_MODE", "cursor")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.list_mode")
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Driver = "mysql"
		assert.ErrorContains(t, cfg.Validate(), "database.driver")
	})

	t.Run("unknown deployment", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Deployment = "fargate"
		assert.ErrorContains(t, cfg.Validate(), "server.deployment")
	})

	t.Run("non-positive default limit", func(t *testing.T) {
		cfg := validConfig()
		cfg.API.DefaultLimit = 0
		assert.ErrorContains(t, cfg.Validate(), "api.default_limit")
	})

	t.Run("max limit below default", func(t *testing.T) {
		cfg := validConfig()
		cfg.API.MaxLimit = 5
		assert.ErrorContains(t, cfg.Validate(), "api.max_limit")
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.URL = ""
		cfg.Seed.FixturePath = ""
		err := cfg.Validate()
		assert.ErrorContains(t, err, "database.url")
		assert.ErrorContains(t, err, "seed.fixture_path")
	})
}

func TestResolveDeployment(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Env = "production"
		cfg.Server.Deployment = DeploymentListen
		assert.Equal(t, DeploymentListen, cfg.ResolveDeployment())
	})

	t.Run("production defaults to lambda", func(t *testing.T) {
		t.Setenv("AWS_LAMBDA_RUNTIME_API", "")
		cfg := validConfig()
		cfg.App.Env = "production"
		assert.Equal(t, DeploymentLambda, cfg.ResolveDeployment())
	})

	t.Run("lambda runtime detected", func(t *testing.T) {
		t.Setenv("AWS_LAMBDA_RUNTIME_API", "127.0.0.1:9001")
		assert.Equal(t, DeploymentLambda, validConfig().ResolveDeployment())
	})

	t.Run("development listens", func(t *testing.T) {
		t.Setenv("AWS_LAMBDA_RUNTIME_API", "")
		assert.Equal(t, DeploymentListen, validConfig().ResolveDeployment())
	})
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DATABASE_URL=from_file\n"), 0o644))

	t.Setenv("DATABASE_URL", "from_env")
	t.Chdir(tmp)

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DATABASE_URL"))
}

func TestServerConfig_Address(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 5000}
	assert.Equal(t, "127.0.0.1:5000", s.Address())
}
