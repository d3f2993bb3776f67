package alerting

import (
	"strings"
	"testing"
	"time"
)

func testScope(metric Metric, national bool) Scope {
	return Scope{
		Region:   "Worthing",
		National: national,
		Metric:   metric,
		Date:     time.Date(2020, 11, 20, 0, 0, 0, 0, time.UTC),
		Period:   7,
	}
}

func kinds(alerts []Alert) []Kind {
	out := make([]Kind, len(alerts))
	for i, a := range alerts {
		out[i] = a.Kind
	}
	return out
}

func TestEvaluateThresholdsAreStrict(t *testing.T) {
	scope := testScope(MetricCases, true)
	scope.Region = "UK"

	// A flat series produces a zero delta; a zero increase limit must not
	// fire on it.
	alerts := Evaluate(scope, Observation{Value: 300, Delta: 0, HasValue: true, HasDelta: true}, Limits{Increase: 0, Absolute: 500})
	if len(alerts) != 0 {
		t.Fatalf("alerts = %v, want none", kinds(alerts))
	}

	// Equality on the absolute limit must not fire either.
	alerts = Evaluate(scope, Observation{Value: 500, Delta: 0, HasValue: true, HasDelta: true}, Limits{Increase: 10, Absolute: 500})
	if len(alerts) != 0 {
		t.Fatalf("alerts = %v, want none", kinds(alerts))
	}
}

func TestEvaluateIncrease(t *testing.T) {
	scope := testScope(MetricCases, false)

	alerts := Evaluate(scope, Observation{Value: 9, Delta: 4, HasValue: true, HasDelta: true}, Limits{Increase: 3, Absolute: 100})
	if len(alerts) != 1 || alerts[0].Kind != KindIncrease {
		t.Fatalf("alerts = %v, want one increase", kinds(alerts))
	}
	a := alerts[0]
	if a.Severity != SeverityWarning {
		t.Errorf("severity = %s, want WARNING", a.Severity)
	}
	want := "The rolling number of cases for Worthing on 2020-11-20 increased by 4 which is greater than 3"
	if a.Message != want {
		t.Errorf("message = %q, want %q", a.Message, want)
	}
}

func TestEvaluateNationalAbsoluteAddsDailyAverage(t *testing.T) {
	scope := testScope(MetricCases, true)
	scope.Region = "UK"

	alerts := Evaluate(scope, Observation{Value: 3500, Delta: 0, HasValue: true, HasDelta: true}, Limits{Increase: 500, Absolute: 3000})
	if len(alerts) != 2 {
		t.Fatalf("alerts = %v, want absolute plus daily average", kinds(alerts))
	}
	if alerts[0].Kind != KindAbsolute || alerts[0].Severity != SeverityWarning {
		t.Errorf("first alert = %s/%s, want absolute/WARNING", alerts[0].Kind, alerts[0].Severity)
	}
	if alerts[1].Severity != SeverityInfo {
		t.Errorf("daily average severity = %s, want INFO", alerts[1].Severity)
	}
	if alerts[1].Value != 500 {
		t.Errorf("daily average = %v, want 500", alerts[1].Value)
	}
	if !strings.Contains(alerts[1].Message, "average daily case rate for the UK") {
		t.Errorf("daily average message = %q", alerts[1].Message)
	}
}

func TestEvaluateRegionalAbsoluteHasNoDailyAverage(t *testing.T) {
	scope := testScope(MetricDeaths, false)

	alerts := Evaluate(scope, Observation{Value: 40, HasValue: true}, Limits{Increase: 5, Absolute: 30})
	if len(alerts) != 1 || alerts[0].Kind != KindAbsolute {
		t.Fatalf("alerts = %v, want one absolute", kinds(alerts))
	}
}

func TestEvaluatePositivityHasNoDailyAverage(t *testing.T) {
	scope := testScope(MetricPositivity, true)
	scope.Region = "UK"

	alerts := Evaluate(scope, Observation{Value: 1.25, Delta: 0.65, HasValue: true, HasDelta: true}, Limits{Increase: 0.02, Absolute: 0.6})
	if len(alerts) != 2 {
		t.Fatalf("alerts = %v, want increase and absolute only", kinds(alerts))
	}
	for _, a := range alerts {
		if a.Severity != SeverityWarning {
			t.Errorf("%s severity = %s, want WARNING", a.Kind, a.Severity)
		}
	}
	if !strings.Contains(alerts[0].Message, "increased by 0.65 which is greater than 0.02") {
		t.Errorf("increase message = %q", alerts[0].Message)
	}
}

func TestEvaluateZeroIsRegionalAndInformational(t *testing.T) {
	regional := testScope(MetricCases, false)
	alerts := Evaluate(regional, Observation{Value: 0, Delta: 0, HasValue: true, HasDelta: true}, Limits{Increase: 3, Absolute: 100})
	if len(alerts) != 1 || alerts[0].Kind != KindZero {
		t.Fatalf("alerts = %v, want one zero", kinds(alerts))
	}
	if alerts[0].Severity != SeverityInfo {
		t.Errorf("severity = %s, want INFO", alerts[0].Severity)
	}
	want := "The rolling number of cases for Worthing on 2020-11-20 was 0"
	if alerts[0].Message != want {
		t.Errorf("message = %q, want %q", alerts[0].Message, want)
	}

	national := testScope(MetricCases, true)
	if alerts := Evaluate(national, Observation{Value: 0, HasValue: true}, Limits{Absolute: 100}); len(alerts) != 0 {
		t.Errorf("national zero raised %v, want nothing", kinds(alerts))
	}
}

func TestEvaluateSkipsUnavailableNumbers(t *testing.T) {
	scope := testScope(MetricCases, false)

	// Value present but delta unavailable: only value rules run.
	alerts := Evaluate(scope, Observation{Value: 200, Delta: 999, HasValue: true, HasDelta: false}, Limits{Increase: 3, Absolute: 100})
	if len(alerts) != 1 || alerts[0].Kind != KindAbsolute {
		t.Fatalf("alerts = %v, want one absolute", kinds(alerts))
	}

	// Nothing available, nothing fires.
	if alerts := Evaluate(scope, Observation{Value: 500, Delta: 500}, Limits{}); len(alerts) != 0 {
		t.Errorf("alerts = %v, want none", kinds(alerts))
	}
}

func TestNewExponentialMessage(t *testing.T) {
	a := NewExponential(testScope(MetricCases, false))
	if a.Kind != KindExponential || a.Severity != SeverityWarning {
		t.Fatalf("alert = %s/%s, want exponential/WARNING", a.Kind, a.Severity)
	}
	want := "The daily number of cases for Worthing is growing exponentially as of 2020-11-20"
	if a.Message != want {
		t.Errorf("message = %q, want %q", a.Message, want)
	}
}
