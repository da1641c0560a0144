package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

const sampleYAML = `
simulation:
  seed: 7
  periods: 24
  population_size: 500
  sorter: need_based
  programs: [snap, ssi]
mechanisms:
  preset: only_learning
sensitivity:
  strictness: 0.6
counties:
  - name: Kent County, RI
    population: 170000
    features:
      poverty_rate: 0.09
  - name: Providence County, RI
    population: 660000
results:
  backend: redis
  redis_url: redis://localhost:6379/0
  ttl: 2h
audit:
  backend: kafka
  kafka_brokers: [localhost:9092]
  buffer: 0
`

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, 24, cfg.Simulation.Periods)
	assert.Equal(t, "need_based", cfg.Simulation.Sorter)

	programs, err := cfg.Programs()
	require.NoError(t, err)
	assert.Equal(t, []models.Program{models.ProgramSNAP, models.ProgramSSI}, programs)

	mechanisms, err := cfg.Mechanisms.Resolve()
	require.NoError(t, err)
	assert.Equal(t, mechanism.OnlyLearning(), mechanisms)

	assert.Equal(t, 0.6, cfg.Sensitivity.Strictness)
	assert.Equal(t, 0.70, cfg.Sensitivity.ApprovalRate, "unset sensitivity values keep their baseline")

	require.Len(t, cfg.Counties, 2)
	assert.Equal(t, 0.09, cfg.Counties[0].Features["poverty_rate"])
	assert.Equal(t, "Providence County, RI", cfg.PopulationCounties()[1].Name)

	assert.Equal(t, "redis", cfg.Results.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Results.TTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Results.Redis().URL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Audit.KafkaBrokers)
	assert.Equal(t, 0, cfg.Audit.Buffer)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 12, cfg.Simulation.Periods)
	assert.Equal(t, DefaultCounties(), cfg.Counties)
	assert.Equal(t, "memory", cfg.Results.Backend)
	assert.Equal(t, "welfaresim", cfg.Results.KeyPrefix)
	assert.Equal(t, AuditBackendMemory, cfg.Audit.Backend)
	assert.Positive(t, cfg.MonteCarlo.Workers)

	mechanisms, err := cfg.Mechanisms.Resolve()
	require.NoError(t, err)
	assert.True(t, mechanisms.IsFullModel())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("WELFARESIM_SIMULATION_SEED", "99")
	t.Setenv("WELFARESIM_SIMULATION_POPULATION_SIZE", "250")
	t.Setenv("WELFARESIM_RESULTS_BACKEND", "postgres")
	t.Setenv("WELFARESIM_RESULTS_POSTGRES_DSN", "postgres://sim@localhost/sim?sslmode=disable")
	t.Setenv("WELFARESIM_MECHANISMS_LEARNING", "false")

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Simulation.Seed)
	assert.Equal(t, 250, cfg.Simulation.PopulationSize)
	assert.Equal(t, "postgres", cfg.Results.Backend)
	assert.Equal(t, "postgres://sim@localhost/sim?sslmode=disable", cfg.Results.PostgresDSN)
	assert.Equal(t, 24, cfg.Simulation.Periods, "file values without overrides survive")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "simulation.seed", envKey("WELFARESIM_SIMULATION_SEED"))
	assert.Equal(t, "results.postgres_dsn", envKey("WELFARESIM_RESULTS_POSTGRES_DSN"))
	assert.Equal(t, "debug", envKey("WELFARESIM_DEBUG"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Simulation.Seed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero periods", func(c *Config) { c.Simulation.Periods = 0 }},
		{"empty population", func(c *Config) { c.Simulation.PopulationSize = 0 }},
		{"population overflows application ids", func(c *Config) { c.Simulation.PopulationSize = 5000 }},
		{"unknown sorter", func(c *Config) { c.Simulation.Sorter = "lottery" }},
		{"unknown program", func(c *Config) { c.Simulation.Programs = []string{"WIC"} }},
		{"unknown preset", func(c *Config) { c.Mechanisms.Preset = "everything" }},
		{"sensitivity out of range", func(c *Config) { c.Sensitivity.LearningRate = 2 }},
		{"unnamed county", func(c *Config) { c.Counties = []County{{Name: " "}} }},
		{"duplicate county", func(c *Config) { c.Counties = []County{{Name: "A County, MA"}, {Name: "A County, MA"}} }},
		{"unknown results backend", func(c *Config) { c.Results.Backend = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Results.Backend = "postgres" }},
		{"redis without url", func(c *Config) { c.Results.Backend = "redis" }},
		{"kafka without brokers", func(c *Config) { c.Audit.Backend = AuditBackendKafka }},
		{"unknown audit backend", func(c *Config) { c.Audit.Backend = "syslog" }},
		{"no monte carlo runs", func(c *Config) { c.MonteCarlo.Runs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			applyDefaults(&cfg)
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))
		})
	}

	cfg := Default()
	applyDefaults(&cfg)
	assert.NoError(t, cfg.Validate())
}
