package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// RenderTable writes posts as a table, one row per post
func RenderTable(w io.Writer, posts []Post) error {
	table := tablewriter.NewWriter(w)
	table.Header("Status", "Confidence", "Title", "Source", "Reason")

	for _, p := range posts {
		if err := table.Append([]string{
			p.Badge(),
			meter(p),
			p.Title,
			p.Source,
			p.Reason,
		}); err != nil {
			return fmt.Errorf("render post %s: %w", p.ID, err)
		}
	}

	return table.Render()
}

// RenderJSON writes posts as indented JSON, including their display fields
func RenderJSON(w io.Writer, posts []Post) error {
	type view struct {
		Post
		Badge      string `json:"badge"`
		BadgeClass string `json:"badge_class"`
		MeterColor string `json:"meter_color"`
		Percent    int    `json:"percent"`
	}

	views := make([]view, len(posts))
	for i, p := range posts {
		views[i] = view{Post: p, Badge: p.Badge(), BadgeClass: p.BadgeClass(), MeterColor: p.MeterColor(), Percent: p.Percent()}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

// meter draws a ten-cell confidence bar followed by the percentage
func meter(p Post) string {
	filled := p.Percent() / 10
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return fmt.Sprintf("%s%s %d%%", strings.Repeat("█", filled), strings.Repeat("░", 10-filled), p.Percent())
}
