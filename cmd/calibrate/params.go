package main

import (
	"math"

	"github.com/pthm-cable/snowfall/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Log     bool    // search in log10 space
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of material parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "youngs_modulus", Path: "material.youngs_modulus", Min: 2e3, Max: 2e5, Default: 1e4, Log: true},
			{Name: "poisson_ratio", Path: "material.poisson_ratio", Min: 0.05, Max: 0.45, Default: 0.2},
			{Name: "hardening", Path: "material.hardening", Min: 1, Max: 20, Default: 10},
			{Name: "compression_limit", Path: "material.compression_limit", Min: 0.005, Max: 0.1, Default: 0.025},
			{Name: "stretch_limit", Path: "material.stretch_limit", Min: 0.001, Max: 0.05, Default: 0.0075},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		lo, hi, v := spec.Min, spec.Max, raw[i]
		if spec.Log {
			lo, hi, v = math.Log10(lo), math.Log10(hi), math.Log10(v)
		}
		normalized[i] = (v - lo) / (hi - lo)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		if spec.Log {
			lo, hi := math.Log10(spec.Min), math.Log10(spec.Max)
			raw[i] = math.Pow(10, lo+normalized[i]*(hi-lo))
			continue
		}
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Material.YoungsModulus = clamped[0]
	cfg.Material.PoissonRatio = clamped[1]
	cfg.Material.Hardening = clamped[2]
	cfg.Material.CompressionLimit = clamped[3]
	cfg.Material.StretchLimit = clamped[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Material.YoungsModulus,
		cfg.Material.PoissonRatio,
		cfg.Material.Hardening,
		cfg.Material.CompressionLimit,
		cfg.Material.StretchLimit,
	}
}
