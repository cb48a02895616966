package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/runnerr0/lifelog/internal/classifier"
	"github.com/runnerr0/lifelog/internal/stats"
	"github.com/runnerr0/lifelog/internal/storage"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	previewRunes    = 150
)

// Renderer turns domain values into styled terminal text.
type Renderer struct {
	styles Styles
}

// New creates a Renderer with the default styles.
func New() *Renderer {
	return &Renderer{styles: DefaultStyles()}
}

// Record renders one record as a bordered panel.
func (r *Renderer) Record(rec storage.Record) string {
	s := r.styles

	lines := []string{
		s.Timestamp.Render(rec.CreatedAt.Format(timestampLayout)),
		s.Summary.Render(rec.Summary),
	}
	if rec.OriginalText != nil && *rec.OriginalText != "" {
		lines = append(lines, s.Original.Render("original: "+Preview(*rec.OriginalText, previewRunes)))
	}
	if rec.ImageReference != nil {
		lines = append(lines, s.Image.Render("image: "+*rec.ImageReference))
	}
	lines = append(lines, s.Meta.Render(MetaLine(rec)))

	return s.Panel.Render(strings.Join(lines, "\n"))
}

// Records renders a titled list of record panels.
func (r *Renderer) Records(title string, records []storage.Record) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(fmt.Sprintf("%s (%d)", title, len(records))))
	b.WriteString("\n")
	if len(records) == 0 {
		b.WriteString(r.styles.Muted.Render("No records found."))
		b.WriteString("\n")
		return b.String()
	}
	for _, rec := range records {
		b.WriteString(r.Record(rec))
		b.WriteString("\n")
	}
	return b.String()
}

// MetaLine is the "#id | category | tags | duration" footer of a record.
func MetaLine(rec storage.Record) string {
	tags := "-"
	if len(rec.Tags) > 0 {
		tags = strings.Join(rec.Tags, ", ")
	}
	return fmt.Sprintf("#%d | %s | %s | %s", rec.ID, rec.Category, tags, FormatMinutes(rec.DurationMinutes))
}

// FormatMinutes renders an optional duration.
func FormatMinutes(m *int) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%d min", *m)
}

// Preview truncates s to n runes, marking the cut with an ellipsis.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Report renders a statistics overview with category and tag tables.
func (r *Renderer) Report(title string, rep *stats.Report) string {
	s := r.styles
	var b strings.Builder

	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(r.stat("Total records", strconv.Itoa(rep.TotalCount)))
	b.WriteString(r.stat("Total duration", fmt.Sprintf("%d min (%.1f h)", rep.TotalDurationMinutes, rep.TotalHours())))

	if rep.TotalCount == 0 {
		b.WriteString(s.Muted.Render("No records in this range."))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(rep.CountByCategory))
	for _, c := range rep.CategoryBreakdown() {
		rows = append(rows, []string{
			string(c.Category),
			strconv.Itoa(c.Count),
			strconv.Itoa(c.DurationMinutes) + " min",
			fmt.Sprintf("%.1f%%", c.Percent),
		})
	}
	b.WriteString("\n")
	b.WriteString(r.table([]string{"Category", "Count", "Duration", "Share"}, rows))
	b.WriteString("\n")

	if len(rep.TopTags) > 0 {
		tagRows := make([][]string, 0, len(rep.TopTags))
		for _, t := range rep.TopTags {
			tagRows = append(tagRows, []string{t.Tag, strconv.Itoa(t.Count)})
		}
		b.WriteString("\n")
		b.WriteString(r.table([]string{"Tag", "Count"}, tagRows))
		b.WriteString("\n")
	}

	return b.String()
}

// Analysis renders the classifier's result for a fresh capture.
func (r *Renderer) Analysis(a classifier.Analysis) string {
	tags := "-"
	if len(a.Tags) > 0 {
		tags = strings.Join(a.Tags, ", ")
	}
	rows := [][]string{
		{"Summary", a.Summary},
		{"Category", string(storage.NormalizeCategory(a.Category))},
		{"Tags", tags},
		{"Estimate", fmt.Sprintf("%d min", a.DurationEstimateMinutes)},
	}
	out := r.table(nil, rows)
	if a.Degraded {
		out += "\n" + r.styles.Warning.Render("Analysis failed; basic information was saved instead ("+a.Note+")")
	}
	return out
}

// Backfill renders the notice shown when a previous record's duration was
// rewritten.
func (r *Renderer) Backfill(fill *storage.Backfill) string {
	if fill == nil {
		return ""
	}
	return r.styles.Meta.Render(fmt.Sprintf("Updated duration of record #%d to %d min", fill.RecordID, fill.Minutes))
}

// Saved renders the confirmation for a stored record.
func (r *Renderer) Saved(rec *storage.Record) string {
	return r.styles.Success.Render(fmt.Sprintf("Saved record #%d", rec.ID))
}

func (r *Renderer) stat(label, value string) string {
	return r.styles.StatLabel.Render(label) + r.styles.StatValue.Render(value) + "\n"
}

func (r *Renderer) table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.styles.Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.Header
			}
			return r.styles.Table
		}).
		Rows(rows...)
	if len(headers) > 0 {
		t = t.Headers(headers...)
	}
	return t.Render()
}
