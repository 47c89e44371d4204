package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/fine-structures/ecomotif/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromHome(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	pathname := filepath.Join(home, "ecomotif.yaml")
	require.NoError(t, os.WriteFile(pathname, []byte("workers: 5\n"), 0600))

	rootCmd := newRootCmd(flag.NewFlagSet("", flag.ContinueOnError))
	assert.Contains(t, rootCmd.PersistentFlags().Lookup("config").Usage, "$HOME/ecomotif.yaml")

	require.NoError(t, initConfig())
	assert.Equal(t, pathname, viper.ConfigFileUsed())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
}

func TestNoConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	require.NoError(t, initConfig())
	assert.Empty(t, viper.ConfigFileUsed())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
