// Package alerting turns derived rolling statistics into typed alerts and
// records them through a severity-tagged sink.
package alerting

import (
	"fmt"
	"strconv"
	"time"
)

// Severity grades sink entries. ERROR is reserved for conditions the run
// cannot continue from; whoever logs one is expected to terminate after it
// is recorded.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Kind labels why an alert fired.
type Kind string

const (
	KindIncrease    Kind = "increase"
	KindAbsolute    Kind = "absolute"
	KindZero        Kind = "zero"
	KindExponential Kind = "exponential"
)

// Metric names the quantity an alert is about.
type Metric string

const (
	MetricCases      Metric = "cases"
	MetricDeaths     Metric = "deaths"
	MetricPositivity Metric = "positivity"
)

// Scope identifies what a set of observations belongs to: the area, the
// metric and the date of the newest sample they were derived from.
type Scope struct {
	Region   string
	National bool
	Metric   Metric
	Date     time.Time
	Period   int
}

// Label is the area name as it reads in alert text.
func (s Scope) Label() string {
	if s.National {
		return "the UK"
	}
	return s.Region
}

func (s Scope) dateText() string {
	return s.Date.Format("2006-01-02")
}

func (s Scope) noun() string {
	switch s.Metric {
	case MetricPositivity:
		return "rolling positive test rate"
	case MetricDeaths:
		return "rolling number of deaths"
	default:
		return "rolling number of cases"
	}
}

// formatAmount renders counts as whole numbers and rates to two decimal
// places, matching how each metric is read.
func (s Scope) formatAmount(v float64) string {
	if s.Metric == MetricPositivity {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// Alert is one triggered rule with the numbers that triggered it.
type Alert struct {
	Region   string
	Metric   Metric
	Kind     Kind
	Severity Severity
	Value    float64
	Limit    float64
	Date     time.Time
	Message  string
}

func newIncrease(scope Scope, delta, limit float64) Alert {
	return Alert{
		Region:   scope.Region,
		Metric:   scope.Metric,
		Kind:     KindIncrease,
		Severity: SeverityWarning,
		Value:    delta,
		Limit:    limit,
		Date:     scope.Date,
		Message: fmt.Sprintf("The %s for %s on %s increased by %s which is greater than %s",
			scope.noun(), scope.Label(), scope.dateText(), scope.formatAmount(delta), scope.formatAmount(limit)),
	}
}

func newAbsolute(scope Scope, value, limit float64) Alert {
	return Alert{
		Region:   scope.Region,
		Metric:   scope.Metric,
		Kind:     KindAbsolute,
		Severity: SeverityWarning,
		Value:    value,
		Limit:    limit,
		Date:     scope.Date,
		Message: fmt.Sprintf("The %s for %s on %s was %s which is greater than %s",
			scope.noun(), scope.Label(), scope.dateText(), scope.formatAmount(value), scope.formatAmount(limit)),
	}
}

// newDailyAverage is the informational companion to a national absolute
// alert: the rolling total spread back over the days of the period.
func newDailyAverage(scope Scope, value float64) Alert {
	average := value / float64(scope.Period)
	unit := "case"
	if scope.Metric == MetricDeaths {
		unit = "death"
	}
	return Alert{
		Region:   scope.Region,
		Metric:   scope.Metric,
		Kind:     KindAbsolute,
		Severity: SeverityInfo,
		Value:    average,
		Date:     scope.Date,
		Message: fmt.Sprintf("The average daily %s rate for %s on %s was %s",
			unit, scope.Label(), scope.dateText(), strconv.FormatFloat(average, 'f', 0, 64)),
	}
}

func newZero(scope Scope) Alert {
	return Alert{
		Region:   scope.Region,
		Metric:   scope.Metric,
		Kind:     KindZero,
		Severity: SeverityInfo,
		Date:     scope.Date,
		Message: fmt.Sprintf("The %s for %s on %s was 0",
			scope.noun(), scope.Label(), scope.dateText()),
	}
}

// NewExponential reports that an area's smoothed daily counts look
// exponential.
func NewExponential(scope Scope) Alert {
	return Alert{
		Region:   scope.Region,
		Metric:   scope.Metric,
		Kind:     KindExponential,
		Severity: SeverityWarning,
		Date:     scope.Date,
		Message: fmt.Sprintf("The daily number of cases for %s is growing exponentially as of %s",
			scope.Label(), scope.dateText()),
	}
}
