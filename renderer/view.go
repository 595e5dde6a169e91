package renderer

import (
	"strconv"

	"github.com/etnz/folio"
)

// formatter formats money in the ledger currency. It is embedded in every view
// so that templates can call {{$.Money .X}}.
type formatter string

// Money formats m in the view currency.
func (f formatter) Money(m folio.Money) string { return m.Format(string(f)) }

// Signed formats m with an explicit sign, "-" for zero.
func (f formatter) Signed(m folio.Money) string { return m.SignedFormat(string(f)) }

// reportView is the template data of holding and report templates.
type reportView struct {
	*folio.Report
	formatter
	gaps map[string]folio.Percent
}

func newReportView(r *folio.Report, currency string) *reportView {
	v := &reportView{Report: r, formatter: formatter(currency), gaps: make(map[string]folio.Percent)}
	for _, g := range r.Gaps {
		v.gaps[g.Symbol] = g.Gap
	}
	return v
}

// Gap returns the cost basis gap of a symbol.
func (v *reportView) Gap(symbol string) string { return v.gaps[symbol].SignedString() }

// Weeks splits the heatmap in rows of seven days.
func (v *reportView) Weeks() [][]folio.HeatmapCell {
	var weeks [][]folio.HeatmapCell
	for i := 0; i+7 <= len(v.Heatmap); i += 7 {
		weeks = append(weeks, v.Heatmap[i:i+7])
	}
	return weeks
}

var levels = []string{"·", "░", "▒", "▓", "█"}

// Cell renders a heatmap cell: its intensity and the trade count, blank in the future.
func (v *reportView) Cell(c folio.HeatmapCell) string {
	switch {
	case c.Future:
		return " "
	case c.Count == 0:
		return levels[0]
	default:
		return levels[min(c.Level, len(levels)-1)] + " " + strconv.Itoa(c.Count)
	}
}

// logView is the template data of the log template.
type logView struct {
	Transactions []folio.Transaction
	formatter
}
