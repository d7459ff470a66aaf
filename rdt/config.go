package rdt

import "runtime"

// Config is the property registry of spec.md §6: the tunable knobs read
// once at training start. It plays the role the original C++ gives to
// gm_rdt_context's struct gm_ui_property list, flattened into a plain
// Go struct since this module has no UI binding layer to drive.
type Config struct {
	DataDir   string
	IndexName string
	OutFile   string
	Reload    bool

	NPixels         int
	NThresholds     int
	ThresholdRange  float32
	NUV             int
	UVRange         float32
	MaxDepth        int
	Seed            int64
	Verbose         bool
	NThreads        int
	BgDepth         float32
}

// DefaultConfig returns the knob defaults listed in spec.md §6.
func DefaultConfig() Config {
	return Config{
		NPixels:        2000,
		NThresholds:    50,
		ThresholdRange: 1.29,
		NUV:            2000,
		UVRange:        1.29,
		MaxDepth:       20,
		Seed:           0,
		Verbose:        false,
		NThreads:       runtime.NumCPU(),
		BgDepth:        6.0,
	}
}

// maxSafeDepth bounds the packed node array to something that won't
// exhaust memory on a single allocation (2^30-1 nodes of 24 bytes is
// already ~24GiB); spec.md §9 explicitly calls for detecting
// pathological configurations and failing early.
const maxSafeDepth = 24

// Validate enforces the bounds and invariants spec.md documents for
// the knobs, plus the n_thresholds open-question decision from spec.md §9.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return newError(ConfigMissing, "data_dir is required", nil)
	}
	if c.IndexName == "" {
		return newError(ConfigMissing, "index_name is required", nil)
	}
	if c.OutFile == "" {
		return newError(ConfigMissing, "out_file is required", nil)
	}
	if c.MaxDepth < 1 || c.MaxDepth > 30 {
		return newError(ConfigMissing, "max_depth must be in [1,30]", nil)
	}
	if c.MaxDepth > maxSafeDepth {
		return newError(ConfigMissing, "max_depth exceeds the safe packed-tree allocation ceiling", nil)
	}
	if c.NThresholds <= 1 {
		// n_thresholds==1 divides by (n_thresholds-1)==0 when spacing
		// thresholds across the range; spec.md §9 calls this ill-defined.
		return newError(ConfigMissing, "n_thresholds must be > 1", nil)
	}
	if c.NUV < 1 {
		return newError(ConfigMissing, "n_uv must be >= 1", nil)
	}
	if c.NPixels < 1 {
		return newError(ConfigMissing, "n_pixels must be >= 1", nil)
	}
	if c.NThreads < 1 {
		c.NThreads = runtime.NumCPU()
	}
	if c.NThreads > 128 {
		c.NThreads = 128
	}
	return nil
}
