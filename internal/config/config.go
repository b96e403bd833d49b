package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dicklesworthstone/cpugrid/internal/errors"
	"github.com/Dicklesworthstone/cpugrid/internal/grid"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (CPUGRID_WIDTH, ...).
const EnvPrefix = "CPUGRID"

// Keys shared by flags, environment, and viper.
const (
	KeyDebug               = "debug"
	KeyWidth               = "width"
	KeySimCoreCount        = "sim-core-count"
	KeyCPUTin              = "cputin"
	KeySysTin              = "systin"
	KeyDisplayTemperature  = "display-temperature"
	KeyPollTimeout         = "poll-timeout"
	KeyEdgePolicy          = "edge-policy"
	KeyBorders             = "borders"
	KeyMaxProviderFailures = "max-provider-failures"
	KeyEngine              = "engine"
)

// Front ends.
const (
	EngineLoop = "loop"
	EngineTea  = "tea"
)

// Config carries runtime options for cpugrid.
type Config struct {
	Debug               bool
	Width               int // minimum gauges per row
	SimCoreCount        int // 0 uses the detected count
	CPUTin              string
	SysTin              string
	DisplayTemperature  bool
	PollTimeout         time.Duration
	EdgePolicy          grid.EdgePolicy
	Borders             bool
	MaxProviderFailures int
	Engine              string
}

func Default() Config {
	return Config{
		Debug:               false,
		Width:               5,
		SimCoreCount:        0,
		CPUTin:              "",
		SysTin:              "",
		DisplayTemperature:  false,
		PollTimeout:         time.Second,
		EdgePolicy:          grid.EdgeFill,
		Borders:             true,
		MaxProviderFailures: 5,
		Engine:              EngineLoop,
	}
}

// ExtraRows is the number of auxiliary rows the layout needs.
func (c Config) ExtraRows() int {
	if c.DisplayTemperature {
		return 1
	}
	return 0
}

// SetDefaults registers defaults and environment lookup on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyDebug, d.Debug)
	v.SetDefault(KeyWidth, d.Width)
	v.SetDefault(KeySimCoreCount, d.SimCoreCount)
	v.SetDefault(KeyCPUTin, d.CPUTin)
	v.SetDefault(KeySysTin, d.SysTin)
	v.SetDefault(KeyDisplayTemperature, d.DisplayTemperature)
	v.SetDefault(KeyPollTimeout, d.PollTimeout)
	v.SetDefault(KeyEdgePolicy, d.EdgePolicy.String())
	v.SetDefault(KeyBorders, d.Borders)
	v.SetDefault(KeyMaxProviderFailures, d.MaxProviderFailures)
	v.SetDefault(KeyEngine, d.Engine)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	policy, err := grid.ParseEdgePolicy(v.GetString(KeyEdgePolicy))
	if err != nil {
		return Config{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid edge policy", "Use --edge-policy fill or --edge-policy first-gap")
	}

	cfg := Config{
		Debug:               v.GetBool(KeyDebug),
		Width:               v.GetInt(KeyWidth),
		SimCoreCount:        v.GetInt(KeySimCoreCount),
		CPUTin:              v.GetString(KeyCPUTin),
		SysTin:              v.GetString(KeySysTin),
		DisplayTemperature:  v.GetBool(KeyDisplayTemperature),
		PollTimeout:         v.GetDuration(KeyPollTimeout),
		EdgePolicy:          policy,
		Borders:             v.GetBool(KeyBorders),
		MaxProviderFailures: v.GetInt(KeyMaxProviderFailures),
		Engine:              strings.ToLower(strings.TrimSpace(v.GetString(KeyEngine))),
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the dashboard can't run with.
func Validate(cfg Config) error {
	if cfg.Width < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Width must be at least 1 (got %d)", cfg.Width),
			"Pass --width with the number of gauges per row, e.g. --width 5")
	}
	if cfg.SimCoreCount < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Simulated core count can't be negative (got %d)", cfg.SimCoreCount),
			"Use 0 to lay out the detected cores")
	}
	if cfg.PollTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Poll timeout must be positive (got %s)", cfg.PollTimeout),
			"Pass a duration such as --poll-timeout 1s or 100ms")
	}
	if cfg.MaxProviderFailures < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Max provider failures can't be negative (got %d)", cfg.MaxProviderFailures),
			"Use 0 to keep retrying forever")
	}
	switch cfg.Engine {
	case EngineLoop, EngineTea:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown engine '%s'", cfg.Engine),
			"Use --engine loop or --engine tea")
	}
	return nil
}
