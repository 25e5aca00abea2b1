package domain

import (
	"fmt"
	"math"
	"strings"
)

// DefaultPlanConfig returns the settings used when a request leaves fields unset.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Format:           FormatDecimalDegrees,
		AutoFixDMM:       true,
		AutoExtent:       true,
		MarginPct:        10,
		ClusterKm:        10,
		MaxInsets:        2,
		InsetPadDeg:      0.2,
		Labels:           true,
		LabelDX:          0.05,
		FontSize:         8,
		Page:             "A4",
		Orientation:      "landscape",
		DeclutterMaxIter: 200,
	}
}

// Validate reports every out-of-range setting in one error wrapping ErrInvalidConfig.
func (c PlanConfig) Validate() error {
	var errs []string
	if _, err := ParseFormat(string(c.Format)); err != nil {
		errs = append(errs, err.Error())
	}
	check := func(name string, v, lo, hi float64) {
		if math.IsNaN(v) || v < lo || v > hi {
			errs = append(errs, fmt.Sprintf("%s must be in [%g, %g], got %g", name, lo, hi, v))
		}
	}
	check("margin_pct", c.MarginPct, 0, 100)
	check("buffer_deg", c.BufferDeg, 0, 90)
	check("cluster_km", c.ClusterKm, 0, 20000)
	check("inset_pad_deg", c.InsetPadDeg, 0, 10)
	check("label_dx", c.LabelDX, -10, 10)
	check("label_dy", c.LabelDY, -10, 10)
	if c.MaxInsets < 0 {
		errs = append(errs, "max_insets must not be negative")
	}
	if c.DeclutterMaxIter < 0 || c.DeclutterMaxIter > 10000 {
		errs = append(errs, fmt.Sprintf("declutter_max_iter must be in [0, 10000], got %d", c.DeclutterMaxIter))
	}
	if c.Labels {
		check("font_size", c.FontSize, 1, 72)
	}
	if !c.AutoExtent {
		corners := [4][2]string{{"left", c.Left}, {"right", c.Right}, {"bottom", c.Bottom}, {"top", c.Top}}
		for _, corner := range corners {
			if strings.TrimSpace(corner[1]) == "" {
				errs = append(errs, fmt.Sprintf("%s corner is required when auto_extent is off", corner[0]))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
