package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/orchestrator"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/population"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/results"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/sorter"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Config is the full simulation configuration.
type Config struct {
	Simulation  Simulation            `koanf:"simulation"`
	Mechanisms  Mechanisms            `koanf:"mechanisms"`
	Sensitivity mechanism.Sensitivity `koanf:"sensitivity"`
	Counties    []County              `koanf:"counties"`
	Credibility Credibility           `koanf:"credibility"`
	Logging     Logging               `koanf:"logging"`
	Metrics     Metrics               `koanf:"metrics"`
	Results     Results               `koanf:"results"`
	Audit       Audit                 `koanf:"audit"`
	MonteCarlo  MonteCarlo            `koanf:"montecarlo"`
}

// Simulation controls a single run.
type Simulation struct {
	Seed           int64    `koanf:"seed"`
	Periods        int      `koanf:"periods"`
	PopulationSize int      `koanf:"population_size"`
	Sorter         string   `koanf:"sorter"`
	Programs       []string `koanf:"programs"`
	StrictRouting  bool     `koanf:"strict_routing"`
}

// Mechanisms selects the behavioral mechanisms. A preset, when set, wins
// over the individual switches.
type Mechanisms struct {
	Preset string           `koanf:"preset"`
	Config mechanism.Config `koanf:",squash"`
}

// Resolve returns the effective mechanism configuration.
func (m Mechanisms) Resolve() (mechanism.Config, error) {
	if strings.TrimSpace(m.Preset) == "" {
		return m.Config, nil
	}
	return mechanism.ParsePreset(m.Preset)
}

// County is a served jurisdiction with optional aggregate features for the
// credibility models.
type County struct {
	Name       string             `koanf:"name"`
	Population int                `koanf:"population"`
	Features   map[string]float64 `koanf:"features"`
}

type Credibility struct {
	ModelsPath string `koanf:"models_path"`
}

type Logging struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Metrics configures the HTTP surface; an empty Addr disables it.
type Metrics struct {
	Addr string `koanf:"addr"`
}

type Results struct {
	Backend     string        `koanf:"backend"`
	PostgresDSN string        `koanf:"postgres_dsn"`
	RedisURL    string        `koanf:"redis_url"`
	KeyPrefix   string        `koanf:"key_prefix"`
	TTL         time.Duration `koanf:"ttl"`
}

// RedisConfig holds go-redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Redis returns connection settings for the results backend.
func (r Results) Redis() RedisConfig {
	return RedisConfig{
		URL:          r.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Audit selects the audit sink. Buffer zero publishes synchronously.
type Audit struct {
	Backend      string   `koanf:"backend"`
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`
	Buffer       int      `koanf:"buffer"`
}

const (
	AuditBackendMemory = "memory"
	AuditBackendKafka  = "kafka"
	AuditBackendNone   = "none"
)

type MonteCarlo struct {
	Runs    int `koanf:"runs"`
	Workers int `koanf:"workers"`
}

// Default returns a configuration that runs without any external service.
func Default() Config {
	return Config{
		Simulation: Simulation{
			Seed:           42,
			Periods:        12,
			PopulationSize: 1000,
			Sorter:         string(sorter.StrategyFCFS),
		},
		Mechanisms:  Mechanisms{Config: mechanism.Default()},
		Sensitivity: mechanism.BaselineSensitivity(),
		Logging:     Logging{Level: "info", Format: "text"},
		Results:     Results{Backend: string(results.BackendMemory), KeyPrefix: results.DefaultKeyPrefix},
		Audit:       Audit{Backend: AuditBackendMemory, Buffer: 1024},
		MonteCarlo:  MonteCarlo{Runs: 10},
	}
}

// DefaultCounties is used when the configuration names none.
func DefaultCounties() []County {
	return []County{
		{Name: "Suffolk County, MA", Population: 797936},
		{Name: "Hampshire County, MA", Population: 162308},
		{Name: "Berkshire County, MA", Population: 129026},
	}
}

func applyDefaults(cfg *Config) {
	if len(cfg.Counties) == 0 {
		cfg.Counties = DefaultCounties()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Results.Backend == "" {
		cfg.Results.Backend = string(results.BackendMemory)
	}
	if cfg.Results.KeyPrefix == "" {
		cfg.Results.KeyPrefix = results.DefaultKeyPrefix
	}
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = AuditBackendMemory
	}
	if cfg.MonteCarlo.Workers <= 0 {
		cfg.MonteCarlo.Workers = runtime.NumCPU()
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Simulation.Periods <= 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "simulation.periods must be positive")
	}
	if c.Simulation.PopulationSize <= 0 || c.Simulation.PopulationSize >= population.IDStride {
		return dErrors.New(dErrors.CodeInvalidConfig, "simulation.population_size out of range")
	}
	if _, err := sorter.ParseStrategy(c.Simulation.Sorter); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidConfig, "simulation.sorter")
	}
	programs, err := c.Programs()
	if err != nil {
		return err
	}
	if c.Simulation.PopulationSize*len(programs) >= orchestrator.ApplicationIDStride {
		return dErrors.New(dErrors.CodeInvalidConfig, "simulation.population_size too large for the configured programs")
	}
	if _, err := c.Mechanisms.Resolve(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidConfig, "mechanisms.preset")
	}
	if err := c.Sensitivity.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidConfig, "sensitivity")
	}
	seen := make(map[string]bool, len(c.Counties))
	for _, county := range c.Counties {
		name := strings.TrimSpace(county.Name)
		if name == "" {
			return dErrors.New(dErrors.CodeInvalidConfig, "counties: name is required")
		}
		if seen[name] {
			return dErrors.New(dErrors.CodeInvalidConfig, "counties: duplicate "+name)
		}
		seen[name] = true
		if county.Population < 0 {
			return dErrors.New(dErrors.CodeInvalidConfig, "counties: negative population for "+name)
		}
	}

	switch backend := results.Backend(c.Results.Backend); {
	case !backend.IsValid():
		return dErrors.New(dErrors.CodeInvalidConfig, "results.backend must be memory, postgres or redis")
	case backend == results.BackendPostgres && c.Results.PostgresDSN == "":
		return dErrors.New(dErrors.CodeInvalidConfig, "results.postgres_dsn is required for the postgres backend")
	case backend == results.BackendRedis && c.Results.RedisURL == "":
		return dErrors.New(dErrors.CodeInvalidConfig, "results.redis_url is required for the redis backend")
	}

	switch c.Audit.Backend {
	case AuditBackendMemory, AuditBackendNone:
	case AuditBackendKafka:
		if len(c.Audit.KafkaBrokers) == 0 {
			return dErrors.New(dErrors.CodeInvalidConfig, "audit.kafka_brokers is required for the kafka backend")
		}
	default:
		return dErrors.New(dErrors.CodeInvalidConfig, "audit.backend must be memory, kafka or none")
	}
	if c.Audit.Buffer < 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "audit.buffer cannot be negative")
	}
	if c.MonteCarlo.Runs <= 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "montecarlo.runs must be positive")
	}
	return nil
}

// Programs parses the configured program list; empty means every program.
func (c Config) Programs() ([]models.Program, error) {
	if len(c.Simulation.Programs) == 0 {
		return models.AllPrograms(), nil
	}
	out := make([]models.Program, 0, len(c.Simulation.Programs))
	for _, name := range c.Simulation.Programs {
		p, err := models.ParseProgram(name)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidConfig, "simulation.programs")
		}
		out = append(out, p)
	}
	return out, nil
}

// PopulationCounties converts the county list for the population generator.
func (c Config) PopulationCounties() []population.County {
	out := make([]population.County, len(c.Counties))
	for i, county := range c.Counties {
		out[i] = population.County{Name: strings.TrimSpace(county.Name), Population: county.Population}
	}
	return out
}
