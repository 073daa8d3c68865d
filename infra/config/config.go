package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/drakos74/coin-ensemble/internal/algo/arbitrage"
	"github.com/drakos74/coin-ensemble/internal/algo/consensus"
	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/drakos74/coin-ensemble/internal/notify"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoStrategies is returned when no strategy is enabled.
	ErrNoStrategies = errors.New("no strategies enabled")
	// ErrInvalid is returned when a field does not pass validation.
	ErrInvalid = errors.New("invalid config")
)

var validate = validator.New()

// Config is the engine configuration.
// Zero values are replaced by the defaults on Load.
type Config struct {
	ConsensusThreshold float64                      `yaml:"consensus_threshold" default:"0.65" validate:"gt=0,lt=1"`
	MinStrategies      int                          `yaml:"min_strategies" default:"2" validate:"gte=1"`
	MaxPositionSize    float64                      `yaml:"max_position_size" default:"0.1" validate:"gt=0,lte=1"`
	AdaptiveWeights    *bool                        `yaml:"adaptive_weights" default:"true"`
	Strategies         []model.StrategyID           `yaml:"strategies"`
	Weights            map[model.StrategyID]float64 `yaml:"weights" validate:"dive,gt=0,lte=1"`
	History            History                      `yaml:"history"`
	Filter             Filter                       `yaml:"filter"`
	Learner            Learner                      `yaml:"learner"`
	Pairs              []Pair                       `yaml:"pairs" validate:"dive"`
	Notify             Notify                       `yaml:"notify"`
	Storage            Storage                      `yaml:"storage"`
	Log                Log                          `yaml:"log"`
}

// History defines the capacity of the engine buffers.
type History struct {
	PriceCapacity       int `yaml:"price_capacity" default:"200" validate:"gte=20"`
	PerformanceCapacity int `yaml:"performance_capacity" default:"1000" validate:"gte=1"`
}

// Filter defines the minimum quality of a voting signal.
type Filter struct {
	MinConfidence float64 `yaml:"min_confidence" default:"0.3" validate:"gte=0,lt=1"`
	MinStrength   float64 `yaml:"min_strength" default:"0.2" validate:"gte=0,lt=1"`
}

// Learner defines the weight adaptation.
type Learner struct {
	MinHistory int     `yaml:"min_history" default:"50" validate:"gte=1"`
	Window     int     `yaml:"window" default:"20" validate:"gte=1"`
	Boost      float64 `yaml:"boost" default:"1.05" validate:"gte=1"`
	Decay      float64 `yaml:"decay" default:"0.95" validate:"gt=0,lte=1"`
	Cap        float64 `yaml:"cap" default:"0.25" validate:"gt=0,lte=1"`
	Floor      float64 `yaml:"floor" default:"0.05" validate:"gt=0,ltfield=Cap"`
	High       float64 `yaml:"high" default:"0.6" validate:"gt=0,lte=1"`
	Low        float64 `yaml:"low" default:"0.3" validate:"gte=0,ltfield=High"`
}

// Pair defines a statistical arbitrage pair.
type Pair struct {
	Base     model.Coin `yaml:"base" validate:"required"`
	Hedge    model.Coin `yaml:"hedge" validate:"required,nefield=Base"`
	EntryZ   float64    `yaml:"entry_z" default:"2.0" validate:"gt=0"`
	ExitZ    float64    `yaml:"exit_z" default:"0.5" validate:"gt=0,ltfield=EntryZ"`
	Lookback int        `yaml:"lookback" default:"20" validate:"gte=2"`
}

// Notify defines the observer circuit breaker.
type Notify struct {
	Failures uint32        `yaml:"failures" default:"5" validate:"gte=1"`
	Timeout  time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
}

// Storage defines where the weights are persisted.
// An empty directory disables persistence.
type Storage struct {
	Dir   string `yaml:"dir"`
	Shard string `yaml:"shard" default:"default"`
}

// Log defines the logger output.
type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

// Default returns the default configuration with all strategies enabled.
func Default() Config {
	var c Config
	if err := c.SetDefaults(); err != nil {
		panic(fmt.Sprintf("could not set config defaults: %s", err.Error()))
	}
	return c
}

// Load reads, completes and validates the yaml config at the given path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config '%s': %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("could not decode config '%s': %w", path, err)
	}
	if err := c.SetDefaults(); err != nil {
		return Config{}, fmt.Errorf("could not set defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// SetDefaults fills in the zero fields.
// An empty strategy set enables all strategies.
func (c *Config) SetDefaults() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	if len(c.Strategies) == 0 {
		c.Strategies = append([]model.StrategyID{}, model.Strategies...)
	}
	return nil
}

// Validate checks the config for errors that prevent the engine from running.
func (c Config) Validate() error {
	if len(c.Strategies) == 0 {
		return ErrNoStrategies
	}
	for _, id := range c.Strategies {
		if !id.Known() {
			return fmt.Errorf("unknown strategy '%s': %w", id, ErrInvalid)
		}
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	for id := range c.Weights {
		if !id.Known() {
			return fmt.Errorf("weight for unknown strategy '%s': %w", id, ErrInvalid)
		}
	}
	return nil
}

// Adaptive returns true if the weights should be adapted.
func (c Config) Adaptive() bool {
	return c.AdaptiveWeights == nil || *c.AdaptiveWeights
}

// Consensus returns the aggregator parameters.
// Unset fields keep the aggregator defaults.
func (c Config) Consensus() consensus.Config {
	d := consensus.DefaultConfig()
	return consensus.Config{
		Threshold:       or(c.ConsensusThreshold, d.Threshold),
		MinStrategies:   or(c.MinStrategies, d.MinStrategies),
		MaxPositionSize: or(c.MaxPositionSize, d.MaxPositionSize),
		MinConfidence:   or(c.Filter.MinConfidence, d.MinConfidence),
		MinStrength:     or(c.Filter.MinStrength, d.MinStrength),
	}
}

// Adaptation returns the learner parameters.
func (c Config) Adaptation() consensus.LearnerConfig {
	d := consensus.DefaultLearnerConfig()
	return consensus.LearnerConfig{
		MinHistory: or(c.Learner.MinHistory, d.MinHistory),
		Window:     or(c.Learner.Window, d.Window),
		Boost:      or(c.Learner.Boost, d.Boost),
		Decay:      or(c.Learner.Decay, d.Decay),
		Cap:        or(c.Learner.Cap, d.Cap),
		Floor:      or(c.Learner.Floor, d.Floor),
		High:       or(c.Learner.High, d.High),
		Low:        or(c.Learner.Low, d.Low),
	}
}

// Arbitrage returns the pair thresholds.
func (c Config) Arbitrage() []arbitrage.Config {
	pairs := make([]arbitrage.Config, len(c.Pairs))
	for i, p := range c.Pairs {
		d := arbitrage.DefaultConfig(model.Pair{
			Base:  p.Base,
			Hedge: p.Hedge,
		})
		pairs[i] = arbitrage.Config{
			Pair:     d.Pair,
			Entry:    or(p.EntryZ, d.Entry),
			Exit:     or(p.ExitZ, d.Exit),
			Lookback: or(p.Lookback, d.Lookback),
		}
	}
	return pairs
}

// Breaker returns the observer hook settings.
func (c Config) Breaker() notify.Config {
	d := notify.DefaultConfig()
	return notify.Config{
		Failures: or(c.Notify.Failures, d.Failures),
		Timeout:  or(c.Notify.Timeout, d.Timeout),
	}
}

func or[T int | uint32 | float64 | time.Duration](v, d T) T {
	if v == 0 {
		return d
	}
	return v
}
