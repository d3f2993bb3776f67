package config

import (
	"fmt"
	"strings"
)

// ValidationError marks configuration the run cannot start with. This is
// the fatal class: callers record it at ERROR severity and terminate
// before any network access happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// Validate checks a loaded configuration against the rules every source
// must satisfy: at least one named area, a positive rolling period, and no
// negative thresholds. Returns a *ValidationError describing the first
// problem found.
func Validate(s *Settings) error {
	if len(s.Areas) == 0 {
		return &ValidationError{Reason: "no areas configured"}
	}
	seen := make(map[string]bool, len(s.Areas))
	for i, area := range s.Areas {
		if strings.TrimSpace(area) == "" {
			return &ValidationError{Reason: fmt.Sprintf("area %d has an empty name", i+1)}
		}
		if seen[area] {
			return &ValidationError{Reason: fmt.Sprintf("area %q is listed twice", area)}
		}
		seen[area] = true
	}

	if s.Thresholds.RollingPeriod < 1 {
		return &ValidationError{Reason: fmt.Sprintf("rolling period is %d, must be positive", s.Thresholds.RollingPeriod)}
	}
	for _, th := range thresholdValues(s.Thresholds) {
		if th.value < 0 {
			return &ValidationError{Reason: fmt.Sprintf("%s is negative (%v)", th.name, th.value)}
		}
	}

	if s.Source.Timeout <= 0 {
		return &ValidationError{Reason: "source timeout must be positive"}
	}
	return nil
}
