package scoring

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the engine reads: component weights,
// generator thresholds, decay and bias shapes. Loaded from YAML with
// environment expansion so a build variant can override single knobs.
type Config struct {
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`
	Decay      Decay      `yaml:"decay"`
	Habit      Habit      `yaml:"habit"`
	Session    Session    `yaml:"session"`
}

// Weights are the multipliers of the final-score combination.
type Weights struct {
	Base    float64 `yaml:"base"`
	Context float64 `yaml:"context"`
	Habit   float64 `yaml:"habit"`
}

// Thresholds gate candidate generation per category.
type Thresholds struct {
	ReconnectMinDays      int     `yaml:"reconnectMinDays"`
	ReconnectMediumDays   int     `yaml:"reconnectMediumDays"`
	ReconnectLongDays     int     `yaml:"reconnectLongDays"`
	BirthdayLookaheadDays int     `yaml:"birthdayLookaheadDays"`
	BirthdaySoonDays      int     `yaml:"birthdaySoonDays"`
	LowRSVPMaxFill        float64 `yaml:"lowRsvpMaxFill"`
	LowRSVPSoonDays       int     `yaml:"lowRsvpSoonDays"`
	RepeatMinOccurrences  int     `yaml:"repeatMinOccurrences"`
}

// Decay shapes the recent-exposure penalty.
type Decay struct {
	WindowDays int     `yaml:"windowDays"`
	MaxPenalty float64 `yaml:"maxPenalty"`
}

// Habit shapes the accept-ratio bias and its confidence.
type Habit struct {
	Smoothing              float64 `yaml:"smoothing"`
	ConfidenceObservations int     `yaml:"confidenceObservations"`
}

// Session shapes the yesterday-signals bias.
type Session struct {
	AcceptBoost    float64 `yaml:"acceptBoost"`
	DismissPenalty float64 `yaml:"dismissPenalty"`
	MaxCounted     int     `yaml:"maxCounted"`
}

// Default returns the shipped tuning.
func Default() Config {
	return Config{
		Weights: Weights{Base: 0.45, Context: 0.30, Habit: 0.25},
		Thresholds: Thresholds{
			ReconnectMinDays:      14,
			ReconnectMediumDays:   30,
			ReconnectLongDays:     90,
			BirthdayLookaheadDays: 21,
			BirthdaySoonDays:      7,
			LowRSVPMaxFill:        0.5,
			LowRSVPSoonDays:       14,
			RepeatMinOccurrences:  2,
		},
		Decay: Decay{WindowDays: 7, MaxPenalty: 0.3},
		Habit: Habit{Smoothing: 1, ConfidenceObservations: 20},
		Session: Session{
			AcceptBoost:    0.04,
			DismissPenalty: 0.03,
			MaxCounted:     3,
		},
	}
}

// LoadConfig loads engine tuning from a YAML file. Values absent from the
// file keep their defaults. Supports ${VAR} and ${VAR:default} expansion
// in the file body.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read engine config %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse engine config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid engine config: %w", err)
	}

	return cfg, nil
}

// Validate rejects tunings the scorer cannot work with.
func (c Config) Validate() error {
	if c.Weights.Base <= 0 || c.Weights.Context < 0 || c.Weights.Habit < 0 {
		return fmt.Errorf("weights must be positive (base) and non-negative: %+v", c.Weights)
	}
	if c.Thresholds.ReconnectMinDays < 1 {
		return fmt.Errorf("reconnectMinDays must be at least 1, got %d", c.Thresholds.ReconnectMinDays)
	}
	if c.Thresholds.ReconnectMediumDays <= c.Thresholds.ReconnectMinDays ||
		c.Thresholds.ReconnectLongDays <= c.Thresholds.ReconnectMediumDays {
		return fmt.Errorf("reconnect buckets must be increasing: %d/%d/%d",
			c.Thresholds.ReconnectMinDays, c.Thresholds.ReconnectMediumDays, c.Thresholds.ReconnectLongDays)
	}
	if c.Thresholds.BirthdayLookaheadDays < 1 {
		return fmt.Errorf("birthdayLookaheadDays must be at least 1, got %d", c.Thresholds.BirthdayLookaheadDays)
	}
	if c.Thresholds.LowRSVPMaxFill <= 0 || c.Thresholds.LowRSVPMaxFill > 1 {
		return fmt.Errorf("lowRsvpMaxFill must be in (0,1], got %f", c.Thresholds.LowRSVPMaxFill)
	}
	if c.Decay.WindowDays < 1 {
		return fmt.Errorf("decay windowDays must be at least 1, got %d", c.Decay.WindowDays)
	}
	if c.Decay.MaxPenalty < 0 || c.Decay.MaxPenalty > 1 {
		return fmt.Errorf("decay maxPenalty must be in [0,1], got %f", c.Decay.MaxPenalty)
	}
	if c.Habit.Smoothing <= 0 {
		return fmt.Errorf("habit smoothing must be positive, got %f", c.Habit.Smoothing)
	}
	if c.Habit.ConfidenceObservations < 1 {
		return fmt.Errorf("habit confidenceObservations must be at least 1, got %d", c.Habit.ConfidenceObservations)
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or
// ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
