package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TENANT_ID", "contoso")
	t.Setenv("CLIENT_ID", "client")
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("RESOURCE", "https://contoso.crm6.dynamics.com/")
}

func TestLoad_LegacyEnvAndDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_BASE_URL", "https://portal.example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "contoso", cfg.CRM.TenantID)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.AskAdam.Window)
	assert.Equal(t, "https://portal.example.com", cfg.App.BaseURL)
	assert.Equal(t, "https://quickchart.io/qr", cfg.QR.Endpoint)
	assert.Empty(t, cfg.Redis.Addr)

	assert.Equal(t, "https://login.microsoftonline.com/contoso/oauth2/v2.0/token", cfg.CRM.TokenURL())
	assert.Equal(t, "https://contoso.crm6.dynamics.com/.default", cfg.CRM.Scope())
	assert.Equal(t, "https://contoso.crm6.dynamics.com/api/data/v9.2", cfg.CRM.BaseURL())
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EVENTPORTAL_CRM_TENANT_ID", "fabrikam")
	t.Setenv("EVENTPORTAL_ASKADAM_WINDOW", "90s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fabrikam", cfg.CRM.TenantID)
	assert.Equal(t, 90*time.Second, cfg.AskAdam.Window)
}

func TestLoad_ConfigFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\nredis:\n  addr: \"localhost:6379\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("TENANT_ID", "")
	t.Setenv("CLIENT_ID", "")
	t.Setenv("CLIENT_SECRET", "")
	t.Setenv("RESOURCE", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TenantID")
	assert.Contains(t, err.Error(), "Resource")
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	setRequiredEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
