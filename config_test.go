package grove

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/grove/schedule"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
sync:
  mode: two_way
  dimensions: 2d
workers: 3
fixed_step: 20ms
`))
	require.NoError(t, err)
	assert.Equal(t, SyncTwoWay, cfg.Sync.Mode)
	assert.Equal(t, Dimensions2D, cfg.Sync.Dimensions)
	assert.True(t, cfg.Sync.AutoSync, "absent keys keep their defaults")
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 20*time.Millisecond, cfg.FixedStep)
	assert.Equal(t, schedule.DefaultMaxDelta, cfg.MaxDelta)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "colour: red\n", "colour"},
		{"bad mode", "sync:\n  mode: sideways\n", "sideways"},
		{"bad dimensions", "sync:\n  dimensions: 4d\n", "4d"},
		{"bad duration", "fixed_step: soon\n", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigValidateCollectsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = -1
	cfg.FixedStep = 0
	cfg.MaxDelta = -time.Second
	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grove.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sync:\n  mode: disabled\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, SyncDisabled, cfg.Sync.Mode)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSyncMode(t *testing.T) {
	for in, want := range map[string]SyncMode{
		"one_way":  SyncOneWay,
		"OneWay":   SyncOneWay,
		"two-way":  SyncTwoWay,
		"disabled": SyncDisabled,
	} {
		got, err := ParseSyncMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSyncMode("both")
	assert.Error(t, err)
}

func TestConfigMarshalsReadableNames(t *testing.T) {
	out, err := yaml.Marshal(TwoWaySync().Only(Dimensions3D))
	require.NoError(t, err)
	assert.Contains(t, string(out), "mode: two_way")
	assert.Contains(t, string(out), "dimensions: 3d")
}

func TestSyncConfigConstructors(t *testing.T) {
	assert.Equal(t, SyncConfig{Mode: SyncOneWay, Dimensions: DimensionsAll, AutoSync: true}, OneWaySync())
	assert.False(t, TwoWaySync().WithoutAutoSync().AutoSync)
	assert.False(t, DisabledSync().Enabled(Dimensions2D))
	assert.True(t, OneWaySync().Enabled(Dimensions3D))
	assert.False(t, OneWaySync().Only(Dimensions2D).Enabled(Dimensions3D))
	assert.Equal(t, "all", DimensionsAll.String())
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sync = TwoWaySync()
	cfg.FixedStep = 5 * time.Millisecond
	app, err := NewApp(cfg.Options()...)
	require.NoError(t, err)
	assert.Equal(t, TwoWaySync(), app.SyncConfig())
	assert.Equal(t, 5*time.Millisecond, app.Schedule().Fixed().Step)
}
