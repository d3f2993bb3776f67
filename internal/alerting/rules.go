package alerting

// Limits pairs the two thresholds applied to one metric in one scope.
type Limits struct {
	Increase float64
	Absolute float64
}

// Observation carries one metric's derived rolling numbers. HasValue and
// HasDelta record which of them could actually be computed; rules needing
// an unavailable number simply do not fire, the caller logs the gap.
type Observation struct {
	Value    float64
	Delta    float64
	HasValue bool
	HasDelta bool
}

// Evaluate applies the threshold rules to one observation. Each rule is
// checked independently, so one observation can raise several alerts:
//
//   - increase: the delta between consecutive rolling values exceeds the
//     increase limit (strictly).
//   - absolute: the rolling value exceeds the absolute limit (strictly).
//     National cases and deaths additionally report the implied daily
//     average as an informational entry.
//   - zero: the rolling value is exactly zero. Sub-regions only, where a
//     silent area is worth a note rather than a warning.
func Evaluate(scope Scope, obs Observation, limits Limits) []Alert {
	var alerts []Alert
	if obs.HasDelta && obs.Delta > limits.Increase {
		alerts = append(alerts, newIncrease(scope, obs.Delta, limits.Increase))
	}
	if obs.HasValue && obs.Value > limits.Absolute {
		alerts = append(alerts, newAbsolute(scope, obs.Value, limits.Absolute))
		if scope.National && scope.Metric != MetricPositivity {
			alerts = append(alerts, newDailyAverage(scope, obs.Value))
		}
	}
	if obs.HasValue && !scope.National && obs.Value == 0 {
		alerts = append(alerts, newZero(scope))
	}
	return alerts
}
