package selection

import (
	"fmt"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
)

// A CacheProfile is the parameter set of one cache variant.
type CacheProfile struct {
	Variant         string
	Size            uint64
	Assoc           int
	TagLatency      int
	DataLatency     int
	ResponseLatency int
	MSHRs           int
	TgtsPerMSHR     int
}

var baseProfiles = map[string]CacheProfile{
	hw.VariantL1I: {
		Variant: hw.VariantL1I, Size: 16 << 10, Assoc: 2,
		TagLatency: 2, DataLatency: 2, ResponseLatency: 2,
		MSHRs: 3, TgtsPerMSHR: 20,
	},
	hw.VariantL1D: {
		Variant: hw.VariantL1D, Size: 64 << 10, Assoc: 2,
		TagLatency: 2, DataLatency: 2, ResponseLatency: 2,
		MSHRs: 3, TgtsPerMSHR: 20,
	},
	hw.VariantL2: {
		Variant: hw.VariantL2, Size: 256 << 10, Assoc: 8,
		TagLatency: 20, DataLatency: 20, ResponseLatency: 20,
		MSHRs: 20, TgtsPerMSHR: 12,
	},
}

// Profile returns the cache parameters of a variant with the size and
// associativity overrides of the configuration applied.
func Profile(variant string, cfg options.Config) (CacheProfile, error) {
	p, ok := baseProfiles[variant]
	if !ok {
		return CacheProfile{}, &UnknownVariantError{
			What: "cache variant", Name: variant, Valid: sortedKeys(baseProfiles),
		}
	}

	var size string

	var assoc int

	switch variant {
	case hw.VariantL1I:
		size, assoc = cfg.L1ISize, cfg.L1IAssoc
	case hw.VariantL1D:
		size, assoc = cfg.L1DSize, cfg.L1DAssoc
	case hw.VariantL2:
		size, assoc = cfg.L2Size, cfg.L2Assoc
	}

	if size != "" {
		n, err := options.ParseSize(size)
		if err != nil {
			return CacheProfile{}, fmt.Errorf("%s cache size: %w", variant, err)
		}

		p.Size = n
	}

	if assoc > 0 {
		p.Assoc = assoc
	}

	return p, nil
}

// Params returns the profile as component parameters.
func (p CacheProfile) Params() map[string]any {
	return map[string]any{
		hw.ParamVariant:    p.Variant,
		"size":             p.Size,
		"assoc":            p.Assoc,
		"tag_latency":      p.TagLatency,
		"data_latency":     p.DataLatency,
		"response_latency": p.ResponseLatency,
		"mshrs":            p.MSHRs,
		"tgts_per_mshr":    p.TgtsPerMSHR,
	}
}
