package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
)

type Config struct {
	GhostMode         bool            `json:"ghost_mode"`
	AiGhostThrottleMs int             `json:"ai_ghost_throttle_ms"`
	AiLogSearchStats  bool            `json:"ai_log_search_stats"`
	AiRandomSeed      int64           `json:"ai_random_seed"`
	Heuristics        HeuristicConfig `json:"heuristics"`
}

type HeuristicConfig struct {
	CenterControl int `json:"center_control"`
	NearWin       int `json:"near_win"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		GhostMode:         false,
		AiGhostThrottleMs: 50,
		AiLogSearchStats:  false,
		// 0 seeds random bots from the clock.
		AiRandomSeed: 0,

		Heuristics: HeuristicConfig{
			CenterControl: 50,
			NearWin:       50,
		},
	}
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

// ConfigFromEnv layers MNK_* environment variables over base.
func ConfigFromEnv(base Config) Config {
	cfg := base
	cfg.GhostMode = getenvBool("MNK_GHOST_MODE", cfg.GhostMode)
	cfg.AiLogSearchStats = getenvBool("MNK_LOG_SEARCH_STATS", cfg.AiLogSearchStats)
	if throttle := getenvInt64("MNK_GHOST_THROTTLE_MS", int64(cfg.AiGhostThrottleMs)); throttle >= 0 {
		cfg.AiGhostThrottleMs = int(throttle)
	}
	cfg.AiRandomSeed = getenvInt64("MNK_RANDOM_SEED", cfg.AiRandomSeed)
	return cfg
}

// Validate rejects configs the engine would misread. All-zero heuristic
// weights are how an unset block looks, and the evaluator swaps in the
// defaults for it.
func (c Config) Validate() error {
	if c.AiGhostThrottleMs < 0 {
		return errors.New("ai_ghost_throttle_ms must be >= 0")
	}
	if c.Heuristics.CenterControl < 0 || c.Heuristics.NearWin < 0 {
		return errors.New("heuristic weights must be >= 0")
	}
	if c.Heuristics == (HeuristicConfig{}) {
		return errors.New("heuristic weights cannot all be 0")
	}
	return nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
