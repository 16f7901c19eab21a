package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[WOOCOMMERCE]
URL = https://cart.example.com
Key = ck_file
Currencies = AUD
Currencies = NZD

[SYNC]
BatchSize = 20
`

func TestLoadStringDefaults(t *testing.T) {
	c, err := LoadString(sample)
	require.NoError(t, err)

	assert.Equal(t, 20, c.SYNC.BatchSize)
	assert.Equal(t, 10, c.SYNC.RelatedLimit)
	assert.Equal(t, []string{"simple", "variable", "bundle", "composite", "variation"}, c.SYNC.ProductTypes)
	assert.Equal(t, []string{"AUD", "NZD"}, c.WOOCOMMERCE.Currencies)
	assert.Equal(t, 5, c.WOOCOMMERCE.RPS)
	assert.Equal(t, 1, c.REVALIDATE.DelaySeconds)
	assert.Equal(t, "https://cart.example.com", c.WORDPRESS.URL)
	assert.Equal(t, 8080, c.SERVICE.PORT)
	assert.Len(t, c.WOOCOMMERCE.AccountEndpoint, 6)
}

func TestEnvironmentOverridesSecrets(t *testing.T) {
	t.Setenv("WOOLESS_WOO_KEY", "ck_env")
	t.Setenv("WOOLESS_ADMIN_TOKEN", "admin")

	c, err := LoadString(sample)
	require.NoError(t, err)

	assert.Equal(t, "ck_env", c.WOOCOMMERCE.Key)
	assert.Equal(t, "admin", c.SERVICE.AdminToken)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0600))

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "ck_file", c.WOOCOMMERCE.Key)

	_, err = Load(filepath.Join(dir, "missing.ini"))
	assert.Error(t, err)
}

func TestLoadStringRejectsUnknownSection(t *testing.T) {
	_, err := LoadString("[NOPE]\nA = 1\n")
	assert.Error(t, err)
}
