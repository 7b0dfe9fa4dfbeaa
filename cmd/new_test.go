package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/config"
)

func TestApplyConfigDefaults(t *testing.T) {
	cfg := &config.Config{TemplateDir: "templates"}
	cfg.Defaults.Type = "symfony"
	cfg.Defaults.Database = "pgsql"

	flags := map[string]string{"database": "mysql"}
	applyConfigDefaults(flags, cfg)

	assert.Equal(t, "mysql", flags["database"], "an explicit flag beats the config default")
	assert.Equal(t, "symfony", flags["type"])
	assert.Equal(t, "templates", flags["template-dir"], "template_dir from phphive.yml reaches the flag map")
	assert.NotContains(t, flags, "fallback", "empty defaults stay unset")
}

func TestSelectAppTypeByName(t *testing.T) {
	at, err := selectAppType("magento", false)
	require.NoError(t, err)
	assert.Equal(t, "magento", at.Metadata().Name)

	at, err = selectAppType("", false)
	require.NoError(t, err)
	assert.Equal(t, "laravel", at.Metadata().Name, "non-interactive runs default to laravel")

	_, err = selectAppType("wordpress", false)
	assert.ErrorContains(t, err, "wordpress")
}
