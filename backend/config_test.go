package main

import "testing"

func TestConfigFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("MNK_GHOST_MODE", "true")
	t.Setenv("MNK_LOG_SEARCH_STATS", "1")
	t.Setenv("MNK_GHOST_THROTTLE_MS", "120")
	t.Setenv("MNK_RANDOM_SEED", "42")

	cfg := ConfigFromEnv(DefaultConfig())
	if !cfg.GhostMode || !cfg.AiLogSearchStats {
		t.Fatalf("expected boolean overrides, got %+v", cfg)
	}
	if cfg.AiGhostThrottleMs != 120 || cfg.AiRandomSeed != 42 {
		t.Fatalf("expected numeric overrides, got %+v", cfg)
	}
	if cfg.Heuristics != DefaultConfig().Heuristics {
		t.Fatalf("expected heuristics to keep their defaults")
	}
}

func TestConfigFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("MNK_GHOST_MODE", "maybe")
	t.Setenv("MNK_GHOST_THROTTLE_MS", "-5")
	cfg := ConfigFromEnv(DefaultConfig())
	if cfg.GhostMode != DefaultConfig().GhostMode || cfg.AiGhostThrottleMs != DefaultConfig().AiGhostThrottleMs {
		t.Fatalf("expected invalid values to fall back, got %+v", cfg)
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultGameSettings().Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}
	cases := map[string]func(*GameSettings){
		"zero rows":    func(s *GameSettings) { s.Rows = 0 },
		"k too long":   func(s *GameSettings) { s.WinLength = 4 },
		"k zero":       func(s *GameSettings) { s.WinLength = 0 },
		"bad bot tier": func(s *GameSettings) { s.PlayerTwoLevel = 9 },
	}
	for name, mutate := range cases {
		settings := DefaultGameSettings()
		mutate(&settings)
		if err := settings.Validate(); err == nil {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
	settings := DefaultGameSettings()
	settings.Rows, settings.Cols, settings.WinLength = 2, 7, 7
	if err := settings.Validate(); err != nil {
		t.Fatalf("expected k up to the longer side to validate: %v", err)
	}
}

func TestConfigFromEnvAcceptsZeroThrottleAndNegativeSeed(t *testing.T) {
	t.Setenv("MNK_GHOST_THROTTLE_MS", "0")
	t.Setenv("MNK_RANDOM_SEED", "-7")
	cfg := ConfigFromEnv(DefaultConfig())
	if cfg.AiGhostThrottleMs != 0 {
		t.Fatalf("expected throttling disabled, got %d", cfg.AiGhostThrottleMs)
	}
	if cfg.AiRandomSeed != -7 {
		t.Fatalf("expected seed -7, got %d", cfg.AiRandomSeed)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}
	cases := map[string]func(*Config){
		"negative throttle": func(c *Config) { c.AiGhostThrottleMs = -1 },
		"negative weight":   func(c *Config) { c.Heuristics.NearWin = -3 },
		"zero weights":      func(c *Config) { c.Heuristics = HeuristicConfig{} },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
	cfg := DefaultConfig()
	cfg.AiGhostThrottleMs = 0
	cfg.Heuristics.CenterControl = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected a single zero weight to validate: %v", err)
	}
}
