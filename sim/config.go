package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Constants approximating Linux scheduler behavior.
const (
	// NICE0Weight is the canonical weight of a default-nice task.
	NICE0Weight = 1024.0

	// DefaultRRQuantum is the baseline round-robin time slice in ticks.
	DefaultRRQuantum = 100

	// DefaultSchedLatency is the CFS scheduling latency window in ticks.
	DefaultSchedLatency = 48

	// DefaultMinGranularity is the minimum quantum in ticks.
	DefaultMinGranularity = 1

	// DefaultMaxTicks is the runaway-simulation safety cap.
	DefaultMaxTicks = 70000

	// DefaultNumCores is the simulated core count.
	DefaultNumCores = 4
)

// Config groups the scheduler's tunables.
type Config struct {
	NumCores       int
	RRQuantum      int64
	SchedLatency   int64
	MinGranularity int64
	MaxTicks       int64
	// CoreOrders optionally overrides the pick priority order per core id.
	// Cores without an entry use the default [FIFO, RR, CFS, IDLE].
	CoreOrders map[int][]SchedClass
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		NumCores:       DefaultNumCores,
		RRQuantum:      DefaultRRQuantum,
		SchedLatency:   DefaultSchedLatency,
		MinGranularity: DefaultMinGranularity,
		MaxTicks:       DefaultMaxTicks,
	}
}

// PriorityOrder returns the pick order for one core.
func (c Config) PriorityOrder(core int) []SchedClass {
	if order, ok := c.CoreOrders[core]; ok {
		return order
	}
	return SchedClasses
}

// Validate rejects configurations the tick engine cannot run with.
func (c Config) Validate() error {
	if c.NumCores <= 0 {
		return fmt.Errorf("num cores must be > 0, got %d", c.NumCores)
	}
	if c.RRQuantum <= 0 {
		return fmt.Errorf("rr quantum must be > 0, got %d", c.RRQuantum)
	}
	if c.SchedLatency <= 0 {
		return fmt.Errorf("sched latency must be > 0, got %d", c.SchedLatency)
	}
	if c.MinGranularity <= 0 {
		return fmt.Errorf("min granularity must be > 0, got %d", c.MinGranularity)
	}
	if c.MaxTicks <= 0 {
		return fmt.Errorf("max ticks must be > 0, got %d", c.MaxTicks)
	}
	for core, order := range c.CoreOrders {
		if core < 0 || core >= c.NumCores {
			return fmt.Errorf("priority order for unknown core %d", core)
		}
		if len(order) == 0 {
			return fmt.Errorf("empty priority order for core %d", core)
		}
	}
	return nil
}

// Bundle holds scheduler configuration loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" — they do not override flags.
type Bundle struct {
	Cores          *int    `yaml:"cores"`
	RRQuantum      *int64  `yaml:"rr_quantum"`
	SchedLatency   *int64  `yaml:"sched_latency_ticks"`
	MinGranularity *int64  `yaml:"min_granularity"`
	MaxTicks       *int64  `yaml:"max_ticks"`
	Variant        string  `yaml:"variant"`
}

// LoadBundle reads and parses a YAML scheduler configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scheduler config: %w", err)
	}
	var bundle Bundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing scheduler config: %w", err)
	}
	if !IsValidVariant(bundle.Variant) {
		return nil, fmt.Errorf("unknown variant %q in scheduler config", bundle.Variant)
	}
	return &bundle, nil
}

// Apply copies the bundle's set fields onto cfg.
func (b *Bundle) Apply(cfg *Config) {
	if b.Cores != nil {
		cfg.NumCores = *b.Cores
	}
	if b.RRQuantum != nil {
		cfg.RRQuantum = *b.RRQuantum
	}
	if b.SchedLatency != nil {
		cfg.SchedLatency = *b.SchedLatency
	}
	if b.MinGranularity != nil {
		cfg.MinGranularity = *b.MinGranularity
	}
	if b.MaxTicks != nil {
		cfg.MaxTicks = *b.MaxTicks
	}
}
