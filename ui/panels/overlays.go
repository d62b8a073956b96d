package panels

import (
	"fmt"

	"smart-chart/internal/chart"
	"smart-chart/internal/freqresp"
	"smart-chart/internal/margin"
)

// Row is one line of the overlay list.
type Row struct {
	Chart string
	Kind  string
	ID    int
	Text  string
}

// OverlayRows lists the cursors, measurements and user auxiliary lines of c
// in id order.
func OverlayRows(c *chart.Chart) []Row {
	var rows []Row
	for _, cur := range c.Cursors.All() {
		text := fmt.Sprintf("Cursor %d at x=%.4g", cur.ID, cur.X)
		if cur.HasY {
			text = fmt.Sprintf("Cursor %d (%.4g, %.4g)", cur.ID, cur.X, cur.Y)
		}
		if !cur.Visible {
			text += " [hidden]"
		}
		rows = append(rows, Row{Chart: c.Title, Kind: "cursor", ID: cur.ID, Text: text})
	}
	for _, m := range c.Measures.All() {
		rows = append(rows, Row{Chart: c.Title, Kind: "measurement", ID: m.ID, Text: fmt.Sprintf("Measurement %d %s", m.ID, m.Label)})
	}
	for _, l := range c.AuxLines.Normal() {
		kind := "Horizontal"
		if l.Orientation == chart.Vertical {
			kind = "Vertical"
		}
		text := fmt.Sprintf("%s line %d at %.4g", kind, l.ID, l.Value)
		if n := len(l.Markers()); n > 0 {
			text += fmt.Sprintf(", %d intersection(s)", n)
		}
		rows = append(rows, Row{Chart: c.Title, Kind: "line", ID: l.ID, Text: text})
	}
	return rows
}

// ResponseSummary describes r and its stability margins.
func ResponseSummary(r *freqresp.Response) []string {
	if r == nil {
		return []string{"No response loaded"}
	}
	n := r.Len()
	lines := []string{
		"Name: " + r.Name,
		fmt.Sprintf("Samples: %d", n),
		fmt.Sprintf("Frequency: %.4g to %.4g Hz", r.Frequency[0], r.Frequency[n-1]),
	}
	if gm, err := margin.GainMargin(r.Frequency, r.Magnitude, r.Phase); err == nil {
		lines = append(lines, fmt.Sprintf("Gain margin: %.2f dB at %.4g Hz", gm.Margin, gm.Frequency))
	} else {
		lines = append(lines, "Gain margin: none")
	}
	if pm, err := margin.PhaseMargin(r.Frequency, r.Magnitude, r.Phase); err == nil {
		lines = append(lines, fmt.Sprintf("Phase margin: %.2f deg at %.4g Hz", pm.Margin, pm.Frequency))
	} else {
		lines = append(lines, "Phase margin: none")
	}
	return lines
}

// DeleteAction returns the command that removes the overlay of a row.
func DeleteAction(r Row) chart.ActionID {
	switch r.Kind {
	case "cursor":
		return chart.ActionCursorDelete
	case "measurement":
		return chart.ActionMeasureDelete
	}
	return chart.ActionAuxDelete
}
