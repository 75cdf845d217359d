package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/optsim/gbm"
	"github.com/rustyeddy/optsim/internal/logging"
	"github.com/rustyeddy/optsim/market"
	"github.com/rustyeddy/optsim/option"
)

// Config is the complete optsim configuration
type Config struct {
	Market     MarketConfig     `json:"market" yaml:"market" mapstructure:"market"`
	Contract   ContractConfig   `json:"contract" yaml:"contract" mapstructure:"contract"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation" mapstructure:"simulation"`
	Provider   ProviderConfig   `json:"provider" yaml:"provider" mapstructure:"provider"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Logging    logging.Config   `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// MarketConfig holds the manual market inputs. With UseTicker set, spot
// and volatility come from the provider for Symbol instead.
type MarketConfig struct {
	Spot       float64 `json:"spot" yaml:"spot" mapstructure:"spot"`
	Rate       float64 `json:"rate" yaml:"rate" mapstructure:"rate"`
	Volatility float64 `json:"volatility" yaml:"volatility" mapstructure:"volatility"`
	Symbol     string  `json:"symbol" yaml:"symbol" mapstructure:"symbol"`
	UseTicker  bool    `json:"use_ticker" yaml:"use_ticker" mapstructure:"use_ticker"`
}

// ContractConfig describes the option being priced
type ContractConfig struct {
	Strike float64 `json:"strike" yaml:"strike" mapstructure:"strike"`
	Years  float64 `json:"years" yaml:"years" mapstructure:"years"`
	Kind   string  `json:"kind" yaml:"kind" mapstructure:"kind"`
}

// SimulationConfig contains path simulation parameters
type SimulationConfig struct {
	NumPaths     int    `json:"num_paths" yaml:"num_paths" mapstructure:"num_paths"`
	StepsPerYear int    `json:"steps_per_year" yaml:"steps_per_year" mapstructure:"steps_per_year"`
	MaxCells     int    `json:"max_cells" yaml:"max_cells" mapstructure:"max_cells"`
	Workers      int    `json:"workers" yaml:"workers" mapstructure:"workers"`
	Seed         uint64 `json:"seed" yaml:"seed" mapstructure:"seed"` // 0 picks a random seed
}

// ProviderConfig selects where ticker statistics come from
type ProviderConfig struct {
	Type    string `json:"type" yaml:"type" mapstructure:"type"` // "yahoo" or "sqlite"
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	DBPath  string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
	Timeout string `json:"timeout" yaml:"timeout" mapstructure:"timeout"` // e.g. "10s"
}

// ServerConfig contains HTTP service parameters
type ServerConfig struct {
	Addr            string `json:"addr" yaml:"addr" mapstructure:"addr"`
	SimulateTimeout string `json:"simulate_timeout" yaml:"simulate_timeout" mapstructure:"simulate_timeout"`
	MaxPaths        int    `json:"max_paths" yaml:"max_paths" mapstructure:"max_paths"`
}

// State returns the manual market state.
func (m MarketConfig) State() market.State {
	return market.State{Spot: m.Spot, Rate: m.Rate, Volatility: m.Volatility}
}

// Contract converts to an option.Contract, parsing the kind.
func (c ContractConfig) Contract() (option.Contract, error) {
	kind, err := option.ParseKind(c.Kind)
	if err != nil {
		return option.Contract{}, err
	}
	return option.Contract{Strike: c.Strike, Years: c.Years, Kind: kind}, nil
}

// GBM returns the simulator config.
func (s SimulationConfig) GBM() gbm.Config {
	return gbm.Config{
		NumPaths:     s.NumPaths,
		StepsPerYear: s.StepsPerYear,
		MaxCells:     s.MaxCells,
		Workers:      s.Workers,
	}
}

// ParseTimeout converts the timeout string to time.Duration
func (p ProviderConfig) ParseTimeout() (time.Duration, error) {
	return parseDuration(p.Timeout)
}

// ParseSimulateTimeout converts the simulate timeout to time.Duration
func (s ServerConfig) ParseSimulateTimeout() (time.Duration, error) {
	return parseDuration(s.SimulateTimeout)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// LoadFromFile loads configuration from a file (JSON or YAML). Missing
// keys keep their Default() values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !c.Market.UseTicker {
		if c.Market.Spot <= 0 {
			return fmt.Errorf("market.spot must be positive")
		}
		if c.Market.Volatility < 0 {
			return fmt.Errorf("market.volatility must not be negative")
		}
	} else if strings.TrimSpace(c.Market.Symbol) == "" {
		return fmt.Errorf("market.symbol is required when use_ticker is set")
	}
	if c.Contract.Strike <= 0 {
		return fmt.Errorf("contract.strike must be positive")
	}
	if c.Contract.Years <= 0 {
		return fmt.Errorf("contract.years must be positive")
	}
	if _, err := option.ParseKind(c.Contract.Kind); err != nil {
		return fmt.Errorf("contract.kind: %w", err)
	}
	if err := c.Simulation.GBM().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("simulation.workers must not be negative")
	}
	switch c.Provider.Type {
	case "yahoo":
	case "sqlite":
		if c.Provider.DBPath == "" {
			return fmt.Errorf("provider db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("provider.type must be 'yahoo' or 'sqlite'")
	}
	if _, err := c.Provider.ParseTimeout(); err != nil {
		return fmt.Errorf("provider.timeout: %w", err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := c.Server.ParseSimulateTimeout(); err != nil {
		return fmt.Errorf("server.simulate_timeout: %w", err)
	}
	if c.Server.MaxPaths < 0 {
		return fmt.Errorf("server.max_paths must not be negative")
	}
	return c.Logging.Validate()
}

// Default returns a two year 725 call on a 700 spot at 2% volatility
func Default() *Config {
	return &Config{
		Market: MarketConfig{
			Spot:       700,
			Rate:       0.015,
			Volatility: 0.02,
			Symbol:     "^TWII",
		},
		Contract: ContractConfig{
			Strike: 725,
			Years:  2,
			Kind:   string(option.Call),
		},
		Simulation: SimulationConfig{
			NumPaths:     20,
			StepsPerYear: gbm.DefaultStepsPerYear,
			MaxCells:     gbm.DefaultMaxCells,
			Workers:      1,
		},
		Provider: ProviderConfig{
			Type:    "yahoo",
			Timeout: "15s",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			SimulateTimeout: "30s",
			MaxPaths:        10000,
		},
		Logging: logging.Default(),
	}
}
