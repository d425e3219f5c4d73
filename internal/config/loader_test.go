package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDecodesViperState(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("server.host", "0.0.0.0")
	viper.Set("server.port", 9000)
	viper.Set("server.read_timeout", "15s")
	viper.Set("store.driver", "libsql")
	viper.Set("store.path", "/tmp/flocklens-test.db")
	viper.Set("social.base_url", "https://api.example.test")
	viper.Set("social.timeout", "5s")
	viper.Set("scheduler.fan_out", 250)
	viper.Set("logging.level", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "/tmp/flocklens-test.db", cfg.Store.Path)
	require.Equal(t, "https://api.example.test", cfg.Social.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Social.Timeout)
	require.Equal(t, 250, cfg.Scheduler.FanOut)
	require.Equal(t, "debug", cfg.Logging.Level)

	require.Same(t, cfg, GetConfig())
}

func TestLoadFallsBackToDefaultStorePath(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Store.Path)
}
