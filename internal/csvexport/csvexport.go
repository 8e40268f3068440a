// Package csvexport writes cycle data and set summaries as comma-separated
// values.
package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cwbudde/algo-magsus/magsus/curve"
	"github.com/cwbudde/algo-magsus/magsus/cycle"
	"github.com/cwbudde/algo-magsus/magsus/furnace"
)

// Precision is the number of decimals written for table values.
const Precision = 4

func format(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// WriteCycle writes the corrected samples of c as "T,chi" pairs with two
// decimals and no header, heating then cooling in recorded order.
func WriteCycle(w io.Writer, c *cycle.Cycle) error {
	cw := csv.NewWriter(w)
	for _, br := range []curve.Curve{c.Heating(), c.Cooling()} {
		for _, p := range br.Points() {
			if err := cw.Write([]string{format(p.T, 2), format(p.Chi, 2)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes export rows with a header line.
func WriteTable(w io.Writer, rows []cycle.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"branch", "temperature", "chi_raw", "chi_corrected"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Branch.String(), format(r.T, 2), format(r.ChiRaw, Precision), format(r.ChiCorrected, Precision)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes one line per cycle summary. Methods that failed for
// a cycle leave an empty cell.
func WriteSummary(w io.Writer, sums []cycle.Summary, methods []cycle.Method) error {
	cw := csv.NewWriter(w)
	header := []string{"peak", "alteration", "hopkinson"}
	for _, m := range methods {
		header = append(header, m.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range sums {
		rec := []string{format(s.PeakTemperature, 1), "", format(s.HopkinsonPeak, 1)}
		if s.AlterationErr == nil {
			rec[1] = format(s.Alteration, Precision)
		}
		for _, m := range methods {
			cell := ""
			if t, ok := s.Temperature(m); ok {
				cell = format(t, 2)
			}
			rec = append(rec, cell)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSpline writes furnace baseline diagnostics with a header line.
func WriteSpline(w io.Writer, rows []furnace.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"temperature", "heating", "cooling"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{format(r.T, 2), format(r.Heating, Precision), format(r.Cooling, Precision)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
