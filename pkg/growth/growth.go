// Package growth detects exponential growth in short epidemic series. The
// detector smooths daily counts into centered rolling averages, moves the
// positive values into log space, and inspects the balance of log
// increments around their mean: under genuine exponential growth the
// increments cluster tightly, so roughly as many sit above the mean as
// below it.
package growth

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Observation is one daily data point: a date and the count (or smoothed
// count) observed on it. Sequences of observations are chronological,
// oldest first.
type Observation struct {
	Date  time.Time
	Value float64
}

// Values extracts the observation values in order.
func Values(obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Value
	}
	return out
}

// CenteredAverages smooths a chronological daily series into centered
// rolling averages. Each output point is the arithmetic mean of the
// period/2 days before its date, the date itself and the period/2 days
// after, so the first and last period/2 input days produce no output. A
// series of 2*period-1 days therefore smooths to period averages for odd
// periods, reproducing the seven-point sequences the detector nominally
// classifies.
func CenteredAverages(obs []Observation, period int) []Observation {
	if period < 1 {
		return nil
	}
	half := period / 2
	if len(obs) < 2*half+1 {
		return nil
	}
	out := make([]Observation, 0, len(obs)-2*half)
	for i := half; i < len(obs)-half; i++ {
		window := Values(obs[i-half : i+half+1])
		out = append(out, Observation{
			Date:  obs[i].Date,
			Value: floats.Sum(window) / float64(len(window)),
		})
	}
	return out
}

// Sample is a smoothed sub-series prepared for classification: the natural
// logs of its positive values and whether the raw sequence ended higher
// than it began. Non-positive values cannot be logged and are skipped.
type Sample struct {
	Log        []float64
	Increasing bool
}

// NewSample builds a Sample from a chronological sequence of smoothed
// observations.
func NewSample(obs []Observation) Sample {
	var s Sample
	for _, o := range obs {
		if o.Value > 0 {
			s.Log = append(s.Log, math.Log(o.Value))
		}
	}
	if len(obs) > 0 {
		s.Increasing = obs[len(obs)-1].Value > obs[0].Value
	}
	return s
}

// Classification is the detector's verdict on one sample together with the
// increment counts it was derived from.
type Classification struct {
	Above       int
	Below       int
	Exponential bool
}

// Classify inspects the log increments of a sample. Each increment is
// compared strictly against the mean increment; ties count toward neither
// side. The sample is classified exponential when the raw sequence is
// increasing and the above and below counts differ by at most sensitivity.
// Fewer than two increments leave the mean at zero and never classify as
// exponential.
func Classify(s Sample, sensitivity int) Classification {
	if len(s.Log) < 2 {
		return Classification{}
	}
	increments := make([]float64, len(s.Log)-1)
	for i := 1; i < len(s.Log); i++ {
		increments[i-1] = s.Log[i] - s.Log[i-1]
	}

	avg := 0.0
	if len(increments) >= 2 {
		avg = stat.Mean(increments, nil)
	}

	var c Classification
	for _, d := range increments {
		switch {
		case d > avg:
			c.Above++
		case d < avg:
			c.Below++
		}
	}

	diff := c.Above - c.Below
	if diff < 0 {
		diff = -diff
	}
	c.Exponential = len(increments) >= 2 && s.Increasing && diff <= sensitivity
	return c
}

// Detect runs the full pipeline: smooth the daily observations, log the
// result and classify it.
func Detect(daily []Observation, period, sensitivity int) Classification {
	return Classify(NewSample(CenteredAverages(daily, period)), sensitivity)
}
