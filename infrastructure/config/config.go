// Package config implements Causality's configuration surface (§6):
// TegExecutorConfig, ZkExecutionConfig and the supporting ambient config,
// loaded the way the teacher's pkg/config package loads its Config —
// defaults, then an optional YAML file, then environment overlay via
// envdecode, with .env support via godotenv.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TegExecutorConfig controls the TEG executor's work-stealing scheduler (§5, §6).
// StealTimeoutMs and LoadBalanceThreshold are loaded but not passed to
// system/executor, whose publish threshold is its fixed
// loadBalanceThreshold constant (8).
type TegExecutorConfig struct {
	WorkerCount           int  `json:"worker_count" yaml:"worker_count" env:"TEG_WORKER_COUNT"`
	StealTimeoutMs        int  `json:"steal_timeout_ms" yaml:"steal_timeout_ms" env:"TEG_STEAL_TIMEOUT_MS"`
	LoadBalanceThreshold  int  `json:"load_balance_threshold" yaml:"load_balance_threshold" env:"TEG_LOAD_BALANCE_THRESHOLD"`
	NodeTimeoutMs         int  `json:"node_timeout_ms" yaml:"node_timeout_ms" env:"TEG_NODE_TIMEOUT_MS"`
	AdaptiveScheduling    bool `json:"adaptive_scheduling" yaml:"adaptive_scheduling" env:"TEG_ADAPTIVE_SCHEDULING"`
	GlobalTimeoutMs       int  `json:"global_timeout_ms" yaml:"global_timeout_ms" env:"TEG_GLOBAL_TIMEOUT_MS"`
}

// ZkExecutionConfig controls the ZK circuit/witness/proof pipeline (§4.4, §6).
type ZkExecutionConfig struct {
	EnableCircuitCaching bool              `json:"enable_circuit_caching" yaml:"enable_circuit_caching" env:"ZK_ENABLE_CIRCUIT_CACHING"`
	MaxCircuitSize       int               `json:"max_circuit_size" yaml:"max_circuit_size" env:"ZK_MAX_CIRCUIT_SIZE"`
	AlwaysGenerateProofs bool              `json:"always_generate_proofs" yaml:"always_generate_proofs" env:"ZK_ALWAYS_GENERATE_PROOFS"`
	BackendConfig        map[string]string `json:"backend_config" yaml:"backend_config"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" env:"LOG_LEVEL"`
	Format string `json:"format" yaml:"format" env:"LOG_FORMAT"`
}

// CacheConfig controls the LRU/TTL caches shared by the circuit cache,
// relationship query cache and log segment cache.
type CacheConfig struct {
	MaxEntries  int `json:"max_entries" yaml:"max_entries" env:"CACHE_MAX_ENTRIES"`
	TTLSeconds  int `json:"ttl_seconds" yaml:"ttl_seconds" env:"CACHE_TTL_SECONDS"`
}

// Config is the top-level configuration structure for a Causality engine
// process.
type Config struct {
	TegExecutor TegExecutorConfig `json:"teg_executor" yaml:"teg_executor"`
	Zk          ZkExecutionConfig `json:"zk" yaml:"zk"`
	Logging     LoggingConfig     `json:"logging" yaml:"logging"`
	Cache       CacheConfig       `json:"cache" yaml:"cache"`
}

// New returns a configuration populated with defaults mirroring §5's
// "count configurable (default = CPU count)" note — the actual CPU count
// is filled in by cmd/engine's executorConfig (runtime.NumCPU) when it
// builds the executor's Config; zero here means "unset".
func New() *Config {
	return &Config{
		TegExecutor: TegExecutorConfig{
			WorkerCount:          0,
			StealTimeoutMs:       50,
			LoadBalanceThreshold: 32,
			NodeTimeoutMs:        30_000,
			AdaptiveScheduling:   true,
			GlobalTimeoutMs:      0,
		},
		Zk: ZkExecutionConfig{
			EnableCircuitCaching: true,
			MaxCircuitSize:       1 << 20,
			AlwaysGenerateProofs: false,
			BackendConfig:        map[string]string{},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Cache:   CacheConfig{MaxEntries: 1000, TTLSeconds: 300},
	}
}

// Load loads configuration from an optional YAML file then overlays
// environment variables, matching the teacher's Load() precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	if path := strings.TrimSpace(os.Getenv("CAUSALITY_CONFIG_FILE")); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		_ = loadFromFile("configs/causality.yaml", cfg)
	}

	if err := envdecode.Decode(cfg); err != nil {
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	return cfg, nil
}

// LoadFile reads configuration from a YAML file only (used by tests).
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
