package interp

import "github.com/caarlos0/env/v6"

// DefaultHeapLimit is the reclaimer's byte ceiling when none is configured.
const DefaultHeapLimit = 1 << 20

// Config holds the runtime configuration of an interpreter.
type Config struct {
	// HeapLimit is the byte ceiling of the reclaimer: before each heap
	// allocation that would reach it, a full collection runs, and if there
	// is still no room the allocation fails with an out of memory error.
	HeapLimit int `env:"HEAP_LIMIT" envDefault:"1048576"`
}

// ConfigFromEnv loads the configuration from the process environment, with
// the LOTUS_ prefix (e.g. LOTUS_HEAP_LIMIT).
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, env.Options{Prefix: "LOTUS_"}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
