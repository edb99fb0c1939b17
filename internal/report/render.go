// Package report turns analysis results into renderable tables and sections.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tasknexus/tasknexus/internal/output"
	"github.com/tasknexus/tasknexus/internal/service/analysis"
	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
	"github.com/tasknexus/tasknexus/pkg/analyzer/trend"
	"github.com/tasknexus/tasknexus/pkg/analyzer/workload"
	"github.com/tasknexus/tasknexus/pkg/models"
)

var titleCase = cases.Title(language.English)

// Full renders every part of a report. JSON and TOON output carry the
// report itself.
func Full(r *analysis.Report, colored bool) *output.Report {
	sections := []output.Renderable{Summary(r.Metadata)}
	sections = append(sections, Counts(r.Counts)...)
	sections = append(sections,
		Heatmap(r.Heatmap, colored),
		Bars(r.Bars),
		Trends(r.Trends.Paginate(1, len(r.Trends.Groups)), colored),
	)
	return &output.Report{
		Title:    "Task Analysis",
		Sections: sections,
		Data:     r,
	}
}

// Categories renders counts, heatmap and bars.
func Categories(cr *analysis.CategoryReport, colored bool) *output.Report {
	sections := []output.Renderable{Summary(cr.Metadata)}
	sections = append(sections, Counts(cr.Counts)...)
	sections = append(sections, Heatmap(cr.Heatmap, colored), Bars(cr.Bars))
	return &output.Report{
		Title:    "Categories",
		Sections: sections,
		Data:     cr,
	}
}

// Summary renders the input statistics of a run.
func Summary(m analysis.Metadata) *output.Section {
	lines := []string{
		"Tasks read:      " + output.Count(m.RawCount),
		"Tasks analyzed:  " + output.Count(m.FilteredCount),
		"Tasks dropped:   " + output.Count(m.DroppedCount) + " (points recorded as zero)",
	}
	if m.Skipped > 0 {
		lines = append(lines, "Records skipped: "+output.Count(m.Skipped)+" (malformed)")
	}
	if m.Warnings > 0 {
		lines = append(lines, "Schema warnings: "+output.Count(m.Warnings))
	}
	if m.Source != "" {
		lines = append(lines, "Source:          "+m.Source)
	}
	lines = append(lines,
		"Heatmap mode:    "+titleCase.String(strings.ReplaceAll(string(m.HeatmapMode), "_", " ")),
		"Generated:       "+m.GeneratedAt.Format(time.RFC3339),
	)
	if m.CacheHit {
		lines = append(lines, "Normalization:   cached")
	}
	return &output.Section{
		Title:   "Summary",
		Content: strings.Join(lines, "\n"),
		Data:    m,
	}
}

// Counts renders the category and focus-area frequency tables.
func Counts(c category.Counts) []output.Renderable {
	return []output.Renderable{
		frequencyTable("Categories", "Category", c.Categories),
		frequencyTable("Focus Areas", "Focus Area", c.FocusAreas),
	}
}

func frequencyTable(title, header string, f category.Frequency) *output.Table {
	rows := make([][]string, len(f.Labels))
	for i, label := range f.Labels {
		rows[i] = []string{label, output.Count(f.Counts[i])}
	}
	return output.NewTable(title, []string{header, "Tasks"}, rows,
		[]string{"Total", output.Count(f.Total())}, f)
}

// Heatmap renders the category x focus-area matrix. Empty cells show "-".
func Heatmap(h category.HeatmapData, colored bool) *output.Table {
	headers := append([]string{"Category"}, h.Labels...)
	rows := make([][]string, len(h.Categories))
	for i, cat := range h.Categories {
		row := make([]string, 0, len(h.Labels)+1)
		row = append(row, cat)
		for _, v := range h.Values[i] {
			row = append(row, heatCell(v, colored))
		}
		rows[i] = row
	}
	title := "Workload Heatmap (" + titleCase.String(strings.ReplaceAll(string(h.Mode), "_", " ")) + ")"
	return output.NewTable(title, headers, rows, nil, h)
}

func heatCell(v float64, colored bool) string {
	if v == 0 {
		return "-"
	}
	text := strconv.FormatFloat(v, 'f', -1, 64)
	if !colored {
		return text
	}
	return output.ClassColor(models.WorkloadClass(math.Round(v)), text)
}

// Bars renders mean done and expected points per group.
func Bars(b category.BarData) *output.Table {
	rows := make([][]string, len(b.Labels))
	for i, label := range b.Labels {
		rows[i] = []string{
			label,
			output.Number(b.DonePoints[i]),
			output.Number(b.ExpectedPoints[i]),
		}
	}
	return output.NewTable("Points by Group", []string{"Group", "Done", "Expected"}, rows, nil, b)
}

// Trends renders one page of trend fits.
func Trends(p trend.Page, colored bool) *output.Section {
	s := &output.Section{
		Title:   "Trends",
		Content: fmt.Sprintf("Page %d of %d, %s groups", p.Page, max(p.TotalPages, 1), output.Count(p.TotalGroups)),
		Data:    p,
	}
	for _, g := range p.Groups {
		s.Sections = append(s.Sections, trendSection(g, colored))
	}
	return s
}

func trendSection(g trend.GroupTrend, colored bool) output.Section {
	st := g.Statistics
	lines := []string{
		fmt.Sprintf("Tasks: %d  Mean: %s  Std dev: %s  Band: %s to %s",
			st.Count, output.Number(st.Mean), output.Number(st.StdDev),
			output.Number(st.BandLow), output.Number(st.BandHigh)),
	}

	reg := g.Regression
	if reg.Defined {
		r2 := strconv.FormatFloat(reg.RSquared, 'f', 2, 64)
		if colored {
			r2 = output.FitColor(reg.RSquared, r2)
		}
		lines = append(lines, fmt.Sprintf("Trend: %+.3f points/day  R²: %s", reg.SlopePerDay, r2))
	} else {
		lines = append(lines, "Trend: undefined (all tasks created at the same time)")
	}

	for _, a := range g.Annotations {
		lines = append(lines, fmt.Sprintf("  %s %s (%s)", g.Series.TaskIDs[a.Index], a.Text, a.Date.Format(time.DateOnly)))
	}
	return output.Section{Title: g.Title, Content: strings.Join(lines, "\n")}
}

// Workload renders the per-assignee workload summary.
func Workload(s workload.Summary, colored bool) *output.Table {
	rows := make([][]string, len(s.Assignees))
	for i, a := range s.Assignees {
		rows[i] = []string{
			strconv.Itoa(a.Ordinal),
			a.Assignee,
			output.Count(len(a.Tasks)),
			classCount(a.ClassCounts, models.WorkloadSmall, colored),
			classCount(a.ClassCounts, models.WorkloadMedium, colored),
			classCount(a.ClassCounts, models.WorkloadLarge, colored),
			output.Count(a.Unclassified),
			dayRange(a.Days),
		}
	}
	footer := []string{"", "Total", output.Count(s.TaskCount), "", "", "", "", dayRange(s.Total)}
	return output.NewTable("Workload",
		[]string{"#", "Assignee", "Tasks", "Small", "Medium", "Large", "Unclassified", "Days (min-max, avg)"},
		rows, footer, s)
}

func classCount(counts map[string]int, class models.WorkloadClass, colored bool) string {
	text := output.Count(counts[class.String()])
	if colored && counts[class.String()] > 0 {
		return output.ClassColor(class, text)
	}
	return text
}

func dayRange(r workload.Range) string {
	return fmt.Sprintf("%s-%s, %s", output.Number(r.Min), output.Number(r.Max), output.Number(r.Avg))
}

// Tasks renders normalized tasks, one row each.
func Tasks(n *analysis.Normalized, colored bool) *output.Report {
	rows := make([][]string, len(n.Tasks))
	for i := range n.Tasks {
		t := &n.Tasks[i]
		dev := strconv.Itoa(t.StatusDeviateFromFlow)
		if colored {
			dev = output.DeviationColor(t.StatusDeviateFromFlow, dev)
		}
		rows[i] = []string{
			t.ID,
			truncate(t.Title, 40),
			t.CategoryKey(),
			t.FocusAreaKey(),
			strconv.Itoa(t.Priority),
			output.Number(t.ExpectedPoints),
			output.Number(t.BurnedPoints),
			output.Count(t.NumberOfCommits),
			dev,
		}
	}
	return &output.Report{
		Title: "Normalized Tasks",
		Sections: []output.Renderable{
			Summary(n.Metadata),
			output.NewTable("Tasks",
				[]string{"ID", "Title", "Categories", "Focus Areas", "Priority", "Expected", "Burned", "Commits", "Deviations"},
				rows, nil, n.Tasks),
		},
		Data: struct {
			Metadata analysis.Metadata       `json:"metadata"`
			Tasks    []models.NormalizedTask `json:"tasks"`
		}{n.Metadata, n.Tasks},
	}
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
