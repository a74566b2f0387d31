package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAIN_MODEL_DIR", "/data/main")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/main", cfg.Models.MainDir)
	assert.Equal(t, "psw", cfg.Data.WeightColumn)
	assert.Equal(t, 2000, cfg.Models.BootstrapReplicates)
	assert.Equal(t, "bca.simple", cfg.Models.CIType)
	assert.Equal(t, "./out", cfg.Output.Dir)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_MissingMainDirFails(t *testing.T) {
	t.Setenv("MAIN_MODEL_DIR", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIN_MODEL_DIR")
}

func TestParseGroupDirs(t *testing.T) {
	got := parseGroupDirs("re_all=/out/by_race, sex=/out/by_sex")
	assert.Equal(t, map[string]string{
		"re_all": "/out/by_race",
		"sex":    "/out/by_sex",
	}, got)

	assert.Empty(t, parseGroupDirs(""))
	assert.Empty(t, parseGroupDirs("novalue,=nokey"))
}
