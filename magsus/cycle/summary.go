package cycle

import (
	"github.com/cwbudde/algo-magsus/magsus/curve"
	"github.com/cwbudde/algo-magsus/stats/branch"
)

// Branch names a half of a cycle.
type Branch int

const (
	Heating Branch = iota
	Cooling
)

func (b Branch) String() string {
	if b == Cooling {
		return "cooling"
	}
	return "heating"
}

// Row is one line of [Cycle.ExportTable].
type Row struct {
	Branch       Branch
	T            float64
	ChiRaw       float64
	ChiCorrected float64
}

// ExportTable lists every sample, heating then cooling, each in recorded
// order.
func (c *Cycle) ExportTable() []Row {
	rows := make([]Row, 0, c.heat.Len()+c.cool.Len())
	rows = appendRows(rows, Heating, c.rawHeat.Points(), c.heat.Points())
	return appendRows(rows, Cooling, c.rawCool.Points(), c.cool.Points())
}

func appendRows(rows []Row, b Branch, raw, corrected []curve.Point) []Row {
	for i, p := range corrected {
		rows = append(rows, Row{Branch: b, T: p.T, ChiRaw: raw[i].Chi, ChiCorrected: p.Chi})
	}
	return rows
}

// MethodResult is the outcome of one method in a [Summary].
type MethodResult struct {
	Method   Method
	Estimate Estimate
	Err      error
}

// Summary collects the scalar metrics of a cycle.
type Summary struct {
	PeakTemperature float64
	Alteration      float64
	AlterationErr   error
	HopkinsonPeak   float64
	Results         []MethodResult
	Heating         branch.Stats
	Cooling         branch.Stats
}

// Temperature returns the estimate of method and whether it succeeded.
func (s Summary) Temperature(method Method) (float64, bool) {
	for _, r := range s.Results {
		if r.Method == method && r.Err == nil {
			return r.Estimate.Temperature, true
		}
	}
	return 0, false
}

// Summary runs methods (TransitionMethods when nil) over the scan range and
// gathers them with the other cycle metrics. Method failures are recorded
// in the result rather than returned.
func (c *Cycle) Summary(methods []Method, opts ...ScanOption) Summary {
	if methods == nil {
		methods = TransitionMethods()
	}

	s := Summary{
		PeakTemperature: c.PeakTemperature(),
		HopkinsonPeak:   c.HopkinsonPeak(),
		Heating:         branch.Calculate(c.heat),
		Cooling:         branch.Calculate(c.cool),
	}
	s.Alteration, s.AlterationErr = c.AlterationIndex()

	s.Results = make([]MethodResult, len(methods))
	for i, m := range methods {
		e, err := c.Estimate(m, opts...)
		s.Results[i] = MethodResult{Method: m, Estimate: e, Err: err}
	}
	return s
}
