package rolling

// Window holds three samples of a cumulative series spaced one rolling
// period apart: A is the oldest, C the newest. For a newest-first series
// the samples sit at indices 2*period, period and 0.
type Window struct {
	Period int
	A      Row
	B      Row
	C      Row
}

// NewWindow samples a window from a newest-first series. The series must
// hold at least 2*period+1 rows; shorter input yields an
// InsufficientDataError. Period must be positive.
func NewWindow(s Series, period int) (Window, error) {
	if period < 1 {
		return Window{}, &ArithmeticError{Op: "window period must be positive"}
	}
	need := 2*period + 1
	if len(s) < need {
		return Window{}, &InsufficientDataError{Have: len(s), Need: need}
	}
	return Window{Period: period, A: s[2*period], B: s[period], C: s[0]}, nil
}

// Date returns the date of the newest sample, the date alerts derived from
// this window are reported against.
func (w Window) Date() string {
	return w.C.Date.Format("2006-01-02")
}

// LatestValue is the count accumulated over the most recent rolling period,
// C-B. When either sample lacks a published value for f the result is 0
// with missing set, so that callers can note the gap without failing; a
// present but non-numeric value is a MalformedDataError.
func (w Window) LatestValue(f Field) (value float64, missing bool, err error) {
	return w.difference(w.C, w.B, f)
}

// PenultimateValue is the count accumulated over the rolling period before
// the most recent one, B-A, with the same missing-value handling as
// LatestValue.
func (w Window) PenultimateValue(f Field) (value float64, missing bool, err error) {
	return w.difference(w.B, w.A, f)
}

func (w Window) difference(newer, older Row, f Field) (float64, bool, error) {
	if !newer.Has(f) || !older.Has(f) {
		return 0, true, nil
	}
	n, err := newer.Float(f)
	if err != nil {
		return 0, false, err
	}
	o, err := older.Float(f)
	if err != nil {
		return 0, false, err
	}
	return n - o, false, nil
}

// Delta is the change between consecutive rolling values, C-2B+A. Unlike
// LatestValue there is no soft path: every sample must parse, and a blank
// cell surfaces as a MalformedDataError.
func (w Window) Delta(f Field) (float64, error) {
	a, err := w.A.Float(f)
	if err != nil {
		return 0, err
	}
	b, err := w.B.Float(f)
	if err != nil {
		return 0, err
	}
	c, err := w.C.Float(f)
	if err != nil {
		return 0, err
	}
	return c - 2*b + a, nil
}

// PositivityRates derives the share of tests returning positive, in
// percent, for the penultimate and latest rolling periods:
//
//	rate = rolling cases / (rolling pillar-1 tests + rolling pillar-2 tests) * 100
//
// Missing samples fall back to 0 the way LatestValue does. A zero rolling
// test total cannot be divided by and yields an ArithmeticError; callers
// are expected to check test-field presence before sampling so that the
// error marks genuinely inconsistent data.
func (w Window) PositivityRates(cases, pillarOne, pillarTwo Field) (penultimate, latest float64, err error) {
	latestCases, _, err := w.LatestValue(cases)
	if err != nil {
		return 0, 0, err
	}
	prevCases, _, err := w.PenultimateValue(cases)
	if err != nil {
		return 0, 0, err
	}
	latestTests, err := w.rollingTests(w.LatestValue, pillarOne, pillarTwo)
	if err != nil {
		return 0, 0, err
	}
	prevTests, err := w.rollingTests(w.PenultimateValue, pillarOne, pillarTwo)
	if err != nil {
		return 0, 0, err
	}
	if latestTests == 0 || prevTests == 0 {
		return 0, 0, &ArithmeticError{Op: "positivity rate over a zero rolling test total"}
	}
	return prevCases / prevTests * 100, latestCases / latestTests * 100, nil
}

func (w Window) rollingTests(value func(Field) (float64, bool, error), pillarOne, pillarTwo Field) (float64, error) {
	p1, _, err := value(pillarOne)
	if err != nil {
		return 0, err
	}
	p2, _, err := value(pillarTwo)
	if err != nil {
		return 0, err
	}
	return p1 + p2, nil
}
