// Package monitor drives the alert run: one national pass over the UK
// series followed by one pass per configured sub-region, each deriving
// rolling statistics and applying the threshold rules.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ukcovid/covidwatch/internal/alerting"
	"github.com/ukcovid/covidwatch/internal/dashboard"
	"github.com/ukcovid/covidwatch/pkg/config"
	"github.com/ukcovid/covidwatch/pkg/growth"
	"github.com/ukcovid/covidwatch/pkg/rolling"
	"go.uber.org/zap"
)

const component = "monitor"

// Source abstracts the dashboard client so runs can be driven from canned
// series in tests.
type Source interface {
	FetchSeries(ctx context.Context, filter dashboard.Filter, structure dashboard.Structure) (rolling.Series, error)
}

// RunContext carries everything one invocation shares: the run identity,
// the parsed configuration, the data source and the alert sink.
type RunContext struct {
	ID       uuid.UUID
	Date     time.Time
	Settings *config.Settings
	Source   Source
	Sink     alerting.Sink
	Logger   *zap.SugaredLogger
}

// Summary tallies what a run did.
type Summary struct {
	Areas    int
	Failures int
	Warnings int
	Notes    int
}

func (s *Summary) count(alerts []alerting.Alert) {
	for _, a := range alerts {
		if a.Severity == alerting.SeverityWarning {
			s.Warnings++
		} else {
			s.Notes++
		}
	}
}

// Run executes the national pass, then each configured sub-region in
// order. A failure to retrieve or process one region is recorded and the
// pass moves on, unless the configuration asks for regional failures to
// abort the run. A national failure always aborts: every later decision
// reads against the national picture.
func Run(ctx context.Context, rc *RunContext) (*Summary, error) {
	sum := &Summary{}
	rc.Sink.Log(component,
		fmt.Sprintf("Monitor run %s started on %s for %d areas", rc.ID, rc.Date.Format("2006-01-02"), len(rc.Settings.Areas)),
		alerting.SeverityInfo)

	if err := nationalPass(ctx, rc, sum); err != nil {
		return sum, err
	}

	for _, area := range rc.Settings.Areas {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Areas++
		if err := areaPass(ctx, rc, sum, area); err != nil {
			sum.Failures++
			rc.Sink.Log(component, fmt.Sprintf("Unable to process %s: %v", area, err), alerting.SeverityWarning)
			if rc.Settings.Source.AbortOnRegionFailure {
				return sum, err
			}
		}
	}

	rc.Sink.Log(component,
		fmt.Sprintf("Monitor run %s completed: %d areas, %d warnings, %d notes, %d failures",
			rc.ID, sum.Areas, sum.Warnings, sum.Notes, sum.Failures),
		alerting.SeverityInfo)
	return sum, nil
}

// nationalPass evaluates UK-wide cases, deaths, test positivity and the
// checks derived from the daily counts.
func nationalPass(ctx context.Context, rc *RunContext, sum *Summary) error {
	series, err := rc.Source.FetchSeries(ctx, dashboard.OverviewFilter, dashboard.OverviewStructure)
	if err != nil {
		sum.Failures++
		rc.Sink.Log(component, fmt.Sprintf("Unable to retrieve national data: %v", err), alerting.SeverityWarning)
		return err
	}

	th := rc.Settings.Thresholds
	casesScope := alerting.Scope{Region: "UK", National: true, Metric: alerting.MetricCases, Period: th.RollingPeriod}
	evaluateCounts(rc, sum, casesScope, series, rolling.FieldCases,
		alerting.Limits{Increase: th.UKCasesIncrease, Absolute: th.UKCasesAbsolute})

	deathsScope := casesScope
	deathsScope.Metric = alerting.MetricDeaths
	evaluateCounts(rc, sum, deathsScope, series, rolling.FieldDeaths,
		alerting.Limits{Increase: th.UKDeathsIncrease, Absolute: th.UKDeathsAbsolute})

	evaluatePositivity(rc, sum, series)

	if err := evaluateDaily(ctx, rc, sum, dashboard.OverviewFilter, casesScope, series); err != nil {
		sum.Failures++
		rc.Sink.Log(component, fmt.Sprintf("Unable to retrieve national daily cases: %v", err), alerting.SeverityWarning)
	}
	return nil
}

// areaPass evaluates one sub-region: rolling cases, the checks derived
// from the daily counts, the running death toll and rolling deaths. The
// first retrieval failure abandons the area; derived numbers that cannot
// be computed are logged and skipped individually.
func areaPass(ctx context.Context, rc *RunContext, sum *Summary, area string) error {
	filter := dashboard.AreaFilter(area)
	th := rc.Settings.Thresholds

	casesSeries, err := rc.Source.FetchSeries(ctx, filter, dashboard.CasesStructure)
	if err != nil {
		return err
	}
	if published := rolling.SkipLeadingIncomplete(casesSeries, rolling.FieldCases); len(published) > 0 {
		rc.Logger.Debugf("Latest published cases for %s are dated %s", area, published[0].Date.Format("2006-01-02"))
	}
	casesScope := alerting.Scope{Region: area, Metric: alerting.MetricCases, Period: th.RollingPeriod}
	evaluateCounts(rc, sum, casesScope, casesSeries, rolling.FieldCases,
		alerting.Limits{Increase: th.AreaCasesIncrease, Absolute: th.AreaCasesAbsolute})

	if err := evaluateDaily(ctx, rc, sum, filter, casesScope, casesSeries); err != nil {
		return err
	}

	deathsSeries, err := rc.Source.FetchSeries(ctx, filter, dashboard.DeathsStructure)
	if err != nil {
		return err
	}
	if published := rolling.SkipLeadingIncomplete(deathsSeries, rolling.FieldDeaths); len(published) > 0 {
		rc.Sink.Log(component,
			fmt.Sprintf("The total number of deaths for %s is now %s", area, published[0].Values[rolling.FieldDeaths]),
			alerting.SeverityInfo)
	}
	deathsScope := alerting.Scope{Region: area, Metric: alerting.MetricDeaths, Period: th.RollingPeriod}
	evaluateCounts(rc, sum, deathsScope, deathsSeries, rolling.FieldDeaths,
		alerting.Limits{Increase: th.AreaDeathsIncrease, Absolute: th.AreaDeathsAbsolute})

	return nil
}

// evaluateCounts samples a window over one cumulative count field and
// applies the threshold rules to it.
func evaluateCounts(rc *RunContext, sum *Summary, scope alerting.Scope, series rolling.Series, field rolling.Field, limits alerting.Limits) {
	pruned := rolling.SkipLeadingIncomplete(series, field)
	win, err := rolling.NewWindow(pruned, scope.Period)
	if err != nil {
		rc.Sink.Log(component,
			fmt.Sprintf("Not enough data to evaluate %s for %s: %v", scope.Metric, scope.Label(), err),
			alerting.SeverityInfo)
		return
	}
	scope.Date = win.C.Date

	var obs alerting.Observation
	value, missing, err := win.LatestValue(field)
	switch {
	case err != nil:
		rc.Sink.Log(component,
			fmt.Sprintf("Unable to compute the rolling %s value for %s: %v", scope.Metric, scope.Label(), err),
			malformedSeverity(err))
	case missing:
		rc.Sink.Log(component,
			fmt.Sprintf("The %s window for %s on %s has unpublished samples; value check skipped", scope.Metric, scope.Label(), win.Date()),
			alerting.SeverityInfo)
	default:
		obs.Value = value
		obs.HasValue = true
	}

	delta, err := win.Delta(field)
	if err != nil {
		rc.Sink.Log(component,
			fmt.Sprintf("Unable to compute the change in rolling %s for %s: %v", scope.Metric, scope.Label(), err),
			malformedSeverity(err))
	} else {
		obs.Delta = delta
		obs.HasDelta = true
	}

	alerts := alerting.Evaluate(scope, obs, limits)
	alerting.Emit(rc.Sink, component, alerts)
	sum.count(alerts)
}

// evaluatePositivity derives national test positivity for the latest and
// penultimate windows and applies the positivity thresholds to the latest
// rate and its change.
func evaluatePositivity(rc *RunContext, sum *Summary, series rolling.Series) {
	th := rc.Settings.Thresholds
	pruned := rolling.SkipLeadingIncomplete(series, rolling.FieldPillarOneTests)
	pruned = rolling.SkipLeadingIncomplete(pruned, rolling.FieldPillarTwoTests)

	win, err := rolling.NewWindow(pruned, th.RollingPeriod)
	if err != nil {
		rc.Sink.Log(component,
			fmt.Sprintf("Not enough data to evaluate positivity for the UK: %v", err),
			alerting.SeverityInfo)
		return
	}
	// Both pillar totals trail case publication; without them on the
	// newest sample the rate would divide by a partial test count.
	if !win.C.Has(rolling.FieldPillarOneTests) || !win.C.Has(rolling.FieldPillarTwoTests) {
		rc.Sink.Log(component,
			fmt.Sprintf("Test totals for the UK are not published for %s; positivity check skipped", win.Date()),
			alerting.SeverityInfo)
		return
	}

	penultimate, latest, err := win.PositivityRates(rolling.FieldCases, rolling.FieldPillarOneTests, rolling.FieldPillarTwoTests)
	if err != nil {
		rc.Sink.Log(component,
			fmt.Sprintf("Unable to compute positivity for the UK: %v", err),
			malformedSeverity(err))
		return
	}

	scope := alerting.Scope{
		Region:   "UK",
		National: true,
		Metric:   alerting.MetricPositivity,
		Date:     win.C.Date,
		Period:   th.RollingPeriod,
	}
	obs := alerting.Observation{
		Value:    latest,
		Delta:    latest - penultimate,
		HasValue: true,
		HasDelta: true,
	}
	alerts := alerting.Evaluate(scope, obs, alerting.Limits{Increase: th.UKPositivityIncrease, Absolute: th.UKPositivityAbsolute})
	alerting.Emit(rc.Sink, component, alerts)
	sum.count(alerts)
}

// evaluateDaily fetches one region's daily new-case series and runs the
// checks derived from it: the latest-published estimate against the
// cumulative series, then the exponential growth test. Retrieval failures
// are returned for the caller to handle; everything else is logged here.
func evaluateDaily(ctx context.Context, rc *RunContext, sum *Summary, filter dashboard.Filter, scope alerting.Scope, cumulative rolling.Series) error {
	daily, err := rc.Source.FetchSeries(ctx, filter, dashboard.NewCasesStructure)
	if err != nil {
		return err
	}
	reportLatestEstimate(rc, scope, cumulative, daily)
	checkGrowth(rc, sum, scope, daily)
	return nil
}

// reportLatestEstimate notes an up-to-date case total when daily counts
// have been published past the newest cumulative sample. Cumulative
// publication trails daily publication, so the sum of the two newest
// values estimates the total the dashboard has not yet rolled up.
func reportLatestEstimate(rc *RunContext, scope alerting.Scope, cumulative, daily rolling.Series) {
	cum := rolling.SkipLeadingIncomplete(cumulative, rolling.FieldCases)
	pub := rolling.SkipLeadingIncomplete(daily, rolling.FieldNew)
	if len(cum) == 0 || len(pub) == 0 || !pub[0].Date.After(cum[0].Date) {
		return
	}

	total, err := cum[0].Float(rolling.FieldCases)
	if err != nil {
		rc.Sink.Log(component,
			fmt.Sprintf("Unable to estimate the latest case total for %s: %v", scope.Label(), err),
			malformedSeverity(err))
		return
	}
	fresh, err := pub[0].Float(rolling.FieldNew)
	if err != nil {
		rc.Sink.Log(component,
			fmt.Sprintf("Unable to estimate the latest case total for %s: %v", scope.Label(), err),
			malformedSeverity(err))
		return
	}

	rc.Sink.Log(component,
		fmt.Sprintf("The estimated total number of cases for %s on %s is %.0f", scope.Label(), pub[0].Date.Format("2006-01-02"), total+fresh),
		alerting.SeverityInfo)
}

// checkGrowth tests the most recent 2*period-1 days of daily cases for
// exponential growth.
func checkGrowth(rc *RunContext, sum *Summary, scope alerting.Scope, daily rolling.Series) {
	th := rc.Settings.Thresholds
	pruned := rolling.SkipLeadingIncomplete(daily, rolling.FieldNew)
	need := 2*th.RollingPeriod - 1
	if len(pruned) < need {
		rc.Sink.Log(component,
			fmt.Sprintf("Not enough daily history to test %s for exponential growth: have %d days, need %d", scope.Label(), len(pruned), need),
			alerting.SeverityInfo)
		return
	}

	recent := pruned[:need].Chronological()
	obs := make([]growth.Observation, 0, need)
	for _, row := range recent {
		v, err := row.Float(rolling.FieldNew)
		if err != nil {
			rc.Sink.Log(component,
				fmt.Sprintf("Daily case counts for %s are unreadable; exponential check skipped: %v", scope.Label(), err),
				malformedSeverity(err))
			return
		}
		obs = append(obs, growth.Observation{Date: row.Date, Value: v})
	}

	cls := growth.Detect(obs, th.RollingPeriod, th.ExponentialSensitivity)
	rc.Logger.Debugf("Growth classification for %s: above=%d below=%d exponential=%v",
		scope.Label(), cls.Above, cls.Below, cls.Exponential)
	if cls.Exponential {
		scope.Date = recent[len(recent)-1].Date
		alerts := []alerting.Alert{alerting.NewExponential(scope)}
		alerting.Emit(rc.Sink, component, alerts)
		sum.count(alerts)
	}
}

// malformedSeverity grades a data parsing failure: a blank cell is routine
// publication lag, anything else is genuinely malformed data.
func malformedSeverity(err error) alerting.Severity {
	var malformed *rolling.MalformedDataError
	if errors.As(err, &malformed) && malformed.Value == "" {
		return alerting.SeverityInfo
	}
	return alerting.SeverityWarning
}
