package grove

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/grove/schedule"
)

// SyncMode is the direction transform data flows between nodes and entities.
type SyncMode uint8

const (
	// SyncOneWay writes ECS transform changes to nodes and never reads back.
	SyncOneWay SyncMode = iota
	// SyncTwoWay reads node transforms before gameplay and writes ECS changes
	// after it.
	SyncTwoWay
	// SyncDisabled never creates transform components for scene-tree entities.
	SyncDisabled
)

var syncModeNames = map[SyncMode]string{
	SyncOneWay:   "one_way",
	SyncTwoWay:   "two_way",
	SyncDisabled: "disabled",
}

func (m SyncMode) String() string {
	if s, ok := syncModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("SyncMode(%d)", uint8(m))
}

// ParseSyncMode accepts one_way, two_way or disabled. Dashes and case are
// ignored.
func ParseSyncMode(s string) (SyncMode, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for m, name := range syncModeNames {
		if name == norm || strings.ReplaceAll(name, "_", "") == norm {
			return m, nil
		}
	}
	return 0, fmt.Errorf("grove: unknown sync mode %q", s)
}

func (m SyncMode) MarshalYAML() (any, error) { return m.String(), nil }

func (m *SyncMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseSyncMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Dimensions selects which transform kinds are synchronized.
type Dimensions uint8

const (
	Dimensions2D Dimensions = 1 << iota
	Dimensions3D

	DimensionsAll = Dimensions2D | Dimensions3D
)

// Has reports whether d includes o.
func (d Dimensions) Has(o Dimensions) bool { return d&o == o }

func (d Dimensions) String() string {
	switch d {
	case Dimensions2D:
		return "2d"
	case Dimensions3D:
		return "3d"
	case DimensionsAll:
		return "all"
	case 0:
		return "none"
	}
	return fmt.Sprintf("Dimensions(%d)", uint8(d))
}

// ParseDimensions accepts 2d, 3d, all or none.
func ParseDimensions(s string) (Dimensions, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2d":
		return Dimensions2D, nil
	case "3d":
		return Dimensions3D, nil
	case "all", "both", "":
		return DimensionsAll, nil
	case "none":
		return 0, nil
	}
	return 0, fmt.Errorf("grove: unknown dimensions %q", s)
}

func (d Dimensions) MarshalYAML() (any, error) { return d.String(), nil }

func (d *Dimensions) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDimensions(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SyncConfig controls the transform sync engine. It is fixed once the App is
// created; changing the Settings resource afterwards has no effect.
type SyncConfig struct {
	Mode       SyncMode   `yaml:"mode"`
	Dimensions Dimensions `yaml:"dimensions"`
	// AutoSync attaches transform components at registration. When false,
	// call App.EnableTransformSync per entity.
	AutoSync bool `yaml:"auto_sync"`
}

// OneWaySync is the default configuration.
func OneWaySync() SyncConfig {
	return SyncConfig{Mode: SyncOneWay, Dimensions: DimensionsAll, AutoSync: true}
}

// TwoWaySync reads engine-side transform changes back into the ECS.
func TwoWaySync() SyncConfig {
	return SyncConfig{Mode: SyncTwoWay, Dimensions: DimensionsAll, AutoSync: true}
}

// DisabledSync turns transform sync off.
func DisabledSync() SyncConfig {
	return SyncConfig{Mode: SyncDisabled, Dimensions: DimensionsAll}
}

// WithoutAutoSync returns a copy that attaches transform components only on
// request.
func (c SyncConfig) WithoutAutoSync() SyncConfig {
	c.AutoSync = false
	return c
}

// Only returns a copy restricted to d.
func (c SyncConfig) Only(d Dimensions) SyncConfig {
	c.Dimensions = d
	return c
}

// Enabled reports whether transforms of dimension d are synchronized.
func (c SyncConfig) Enabled(d Dimensions) bool {
	return c.Mode != SyncDisabled && c.Dimensions.Has(d)
}

// Validate checks that the mode and dimensions are known values.
func (c SyncConfig) Validate() error {
	if _, ok := syncModeNames[c.Mode]; !ok {
		return fmt.Errorf("grove: invalid sync mode %d", uint8(c.Mode))
	}
	if c.Dimensions&^DimensionsAll != 0 {
		return fmt.Errorf("grove: invalid dimensions %d", uint8(c.Dimensions))
	}
	return nil
}

// Config is the file form of the App options.
type Config struct {
	Sync      SyncConfig    `yaml:"sync"`
	Workers   int           `yaml:"workers"`
	FixedStep time.Duration `yaml:"fixed_step"`
	MaxDelta  time.Duration `yaml:"max_delta"`
}

// DefaultConfig returns one-way sync, GOMAXPROCS workers and a 64 Hz fixed step.
func DefaultConfig() Config {
	return Config{
		Sync:      OneWaySync(),
		FixedStep: schedule.DefaultFixedStep,
		MaxDelta:  schedule.DefaultMaxDelta,
	}
}

// Validate reports every problem found in c.
func (c Config) Validate() error {
	err := c.Sync.Validate()
	if c.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("grove: workers must be >= 0, got %d", c.Workers))
	}
	if c.FixedStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("grove: fixed_step must be positive, got %s", c.FixedStep))
	}
	if c.MaxDelta < 0 {
		err = multierr.Append(err, fmt.Errorf("grove: max_delta must not be negative, got %s", c.MaxDelta))
	}
	return err
}

// Options converts c into App options.
func (c Config) Options() []Option {
	return []Option{
		WithSyncConfig(c.Sync),
		WithWorkers(c.Workers),
		WithFixedStep(c.FixedStep),
		WithMaxDelta(c.MaxDelta),
	}
}

// ParseConfig decodes YAML over DefaultConfig, so absent keys keep their
// defaults. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("grove: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("grove: read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
