// Package tui renders engine results for the terminal.
// Tables go through lipgloss; json and yaml output are plain encodings.
package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"ramp_capacity/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Colors
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(white).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// ValidFormat reports whether f is a supported output format
func ValidFormat(f string) bool {
	switch f {
	case FormatTable, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Encode writes v as json or yaml
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// RenderSimulation prints a simulation result, one row per aircraft in id order
func RenderSimulation(w io.Writer, airportCode, runID string, result models.SimulationResult) {
	ids := make([]string, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := newTable("Aircraft", "Time", "Outcome", "FBO")
	assigned := 0
	for _, id := range ids {
		a := result[id]
		fbo := a.FBOName
		if !a.Assigned() {
			fbo = a.Reason
		} else {
			assigned++
		}
		t.Row(id, a.EvaluatedAt.Format("15:04"), string(a.Outcome), fbo)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("  SIMULATION "+airportCode)+mutedStyle.Render(" "+runID))
	fmt.Fprintln(w, t.Render())
	summary := fmt.Sprintf("  %d of %d aircraft placed", assigned, len(ids))
	if assigned == len(ids) {
		fmt.Fprintln(w, successStyle.Render(summary))
	} else {
		fmt.Fprintln(w, accentStyle.Render(summary))
	}
}

// RenderRecommendations prints relocation suggestions
func RenderRecommendations(w io.Writer, airportCode string, recs []models.Recommendation) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("  RECOMMENDATIONS "+airportCode))
	if len(recs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No parked aircraft eligible for relocation"))
		return
	}

	t := newTable("Aircraft", "Status", "Next Event", "Recommendation")
	for _, r := range recs {
		t.Row(r.TailNumber, r.Status, r.NextEvent, r.Recommendation)
	}
	fmt.Fprintln(w, t.Render())
}

// RenderOverview prints the capacity overview of an airport
func RenderOverview(w io.Writer, airportCode string, rows []models.FBOUsage) {
	t := newTable("FBO", "Usable ft²", "Occupied ft²", "Available ft²", "Used")
	for _, u := range rows {
		t.Row(u.Name,
			formatArea(u.EffectiveArea),
			formatArea(u.OccupiedArea),
			formatArea(u.AvailableArea),
			fmt.Sprintf("%.1f%%", u.PercentOccupied),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("  CAPACITY "+airportCode))
	fmt.Fprintln(w, t.Render())
}

// RenderRoster prints every aircraft tied to an airport, in roster order
func RenderRoster(w io.Writer, airportCode string, planes []models.Aircraft) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("  AIRCRAFT "+airportCode))
	if len(planes) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No aircraft at this airport"))
		return
	}

	t := newTable("Aircraft", "Type", "Size", "Status", "FBO", "Event")
	for _, ac := range planes {
		event := "-"
		if ac.EventTime != nil {
			event = ac.EventTime.UTC().Format("Jan 02 15:04Z")
		}
		t.Row(ac.TailNumber, ac.TypeCode, ac.Size, string(ac.Status), ac.FBOName, event)
	}
	fmt.Fprintln(w, t.Render())
}

// PrintSeedReport prints the row counts loaded per dataset
func PrintSeedReport(w io.Writer, counts map[string]int, elapsed time.Duration) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w)
	fmt.Fprintln(w, successStyle.Render("  ✓ SEED COMPLETE"))
	for _, name := range names {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(name+":"), titleStyle.Render(fmt.Sprintf("%d", counts[name])))
	}
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Time:"), titleStyle.Render(formatDuration(elapsed)))
}

// ShowProgress creates a progress bar for seeding
func ShowProgress(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// formatArea renders square feet with thousands separators
func formatArea(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
