package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return decode(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := read(t, "cms:\n  project_id: 13zwx11y\n")
	require.NoError(t, err)

	assert.Equal(t, "13zwx11y", cfg.CMS.ProjectID)
	assert.Equal(t, "production", cfg.CMS.Dataset)
	assert.True(t, cfg.CMS.UseCDN)
	assert.Equal(t, 9, cfg.Catalog.PageSize)
	assert.Equal(t, 60, cfg.Catalog.RefreshInterval)
	assert.Equal(t, 4, cfg.Catalog.RelatedLimit)
	assert.Equal(t, "compare-storage:v1", cfg.Compare.StorageKey)
	assert.Equal(t, 30*24*time.Hour, cfg.Compare.TTL())
	assert.Equal(t, 10000, cfg.Compare.CacheSize)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Contains(t, cfg.Database.DSN(), "dbname=radiolink")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CATALOG_PAGE_SIZE", "12")
	t.Setenv("CMS_DATASET", "staging")

	cfg, err := read(t, "cms:\n  project_id: abc\n")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Catalog.PageSize)
	assert.Equal(t, "staging", cfg.CMS.Dataset)
}

func TestValidate(t *testing.T) {
	_, err := read(t, "catalog:\n  page_size: 0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cms.project_id is required")
	assert.Contains(t, err.Error(), "catalog.page_size must be positive")
}
