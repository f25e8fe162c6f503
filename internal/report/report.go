// Package report renders a CompositeReport for people: a plain-text
// console view, Markdown, a standalone HTML page, or indented JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/seenimoa/tickerscan/pkg/models"
	"github.com/seenimoa/tickerscan/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatText     ReportFormat = "text"
	FormatMarkdown ReportFormat = "markdown"
	FormatHTML     ReportFormat = "html"
	FormatJSON     ReportFormat = "json"
)

// ParseFormat matches a format name, accepting "md" for Markdown.
func ParseFormat(s string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q (text, markdown, html, json)", s)
}

// Render formats the report.
func Render(r *models.CompositeReport, format ReportFormat) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report is nil")
	}
	switch format {
	case FormatText:
		return renderText(buildReportData(r)), nil
	case FormatMarkdown:
		return renderMarkdown(buildReportData(r)), nil
	case FormatHTML:
		return renderHTML(buildReportData(r))
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal report: %w", err)
		}
		return string(data) + "\n", nil
	}
	return "", fmt.Errorf("unknown report format %q", format)
}

// ════════════════════════════════════════════════════════════════════
// Report Data
// ════════════════════════════════════════════════════════════════════

// ReportData is the model shared by the text, Markdown and HTML views.
type ReportData struct {
	Symbol      string
	CompanyName string
	GeneratedAt string
	ReportID    string

	CompanyType  string
	KeyTopics    string
	PromptSource string

	HasAggregate   bool
	Score          string
	Label          string
	LabelClass     string
	Contributors   string
	MeanConfidence string

	Providers []ProviderRow
	Headlines []HeadlineRow
	TakeRows  []TakeRow

	TotalCost string
	CostRows  []CostRow
}

// ProviderRow is one line of the provider status table.
type ProviderRow struct {
	Provider string
	Status   string
	Class    string // CSS class: ok, fail, skip
	Detail   string
	Duration string
}

// HeadlineRow is one news item.
type HeadlineRow struct {
	Headline  string
	Source    string
	URL       string
	Sentiment string
}

// TakeRow is one representative statement from a sentiment provider.
type TakeRow struct {
	Provider string
	Take     string
}

// CostRow is one metered call.
type CostRow struct {
	Stage    string
	Provider string
	Units    string
	Cost     string
}

func buildReportData(r *models.CompositeReport) ReportData {
	d := ReportData{
		Symbol:       r.Symbol,
		CompanyName:  r.CompanyName,
		GeneratedAt:  r.GeneratedAt.UTC().Format("02 Jan 2006 15:04 UTC"),
		ReportID:     r.ID,
		CompanyType:  string(r.Instructions.CompanyType),
		KeyTopics:    strings.Join(r.Instructions.KeyTopics, ", "),
		PromptSource: promptSource(r.Instructions.Source),
		TotalCost:    utils.FormatCost(r.TotalCostUSD),
	}

	if agg := r.Aggregate; agg != nil {
		d.HasAggregate = true
		d.Score = utils.FormatScore(agg.Score)
		d.Label = strings.ToUpper(string(agg.Label))
		d.LabelClass = string(agg.Label)
		names := make([]string, len(agg.Contributors))
		for i, id := range agg.Contributors {
			names[i] = string(id)
		}
		d.Contributors = strings.Join(names, ", ")
		if agg.MeanConfidence > 0 {
			d.MeanConfidence = utils.FormatPercent(agg.MeanConfidence)
		}
	}

	for _, res := range r.Results {
		d.Providers = append(d.Providers, providerRow(res))
		switch p := res.Payload.(type) {
		case *models.SentimentRecord:
			for _, take := range p.TopTakes {
				d.TakeRows = append(d.TakeRows, TakeRow{Provider: string(res.Provider), Take: take})
			}
		case *models.NewsDigest:
			for _, item := range p.Items {
				d.Headlines = append(d.Headlines, HeadlineRow{
					Headline:  item.Headline,
					Source:    item.Source,
					URL:       item.URL,
					Sentiment: string(item.Sentiment),
				})
			}
		}
	}

	for _, c := range r.CostBreakdown {
		d.CostRows = append(d.CostRows, CostRow{
			Stage:    c.Stage,
			Provider: string(c.Provider),
			Units:    fmt.Sprintf("%d in / %d out", c.Usage.InputUnits, c.Usage.OutputUnits),
			Cost:     utils.FormatCost(c.Usage.CostUSD),
		})
	}
	return d
}

func providerRow(res models.ProviderResult) ProviderRow {
	row := ProviderRow{
		Provider: string(res.Provider),
		Status:   string(res.Status),
		Duration: FormatDuration(res.Duration),
	}
	switch res.Status {
	case models.StatusSuccess:
		row.Class = "ok"
		row.Detail = payloadSummary(res.Payload)
	case models.StatusNotConfigured:
		row.Class = "skip"
		row.Detail = "no credential"
	default:
		row.Class = "fail"
		if res.Error != nil {
			row.Detail = res.Error.Error()
		}
	}
	return row
}

func payloadSummary(p models.Payload) string {
	switch v := p.(type) {
	case *models.SentimentRecord:
		return fmt.Sprintf("%s %s, confidence %s, buzz %s",
			v.Label, utils.FormatScore(v.Score), utils.FormatPercent(v.Confidence), v.BuzzLevel)
	case *models.NewsDigest:
		if len(v.Items) == 0 {
			return "no recent headlines"
		}
		return fmt.Sprintf("%d headlines (%d+ / %d= / %d-), %s %s",
			len(v.Items), v.Positive, v.Neutral, v.Negative, v.Label, utils.FormatScore(v.Score))
	}
	return ""
}

func promptSource(s models.InstructionSource) string {
	if s == models.SourceFallback {
		return "fallback templates"
	}
	return "orchestrator model"
}

// ════════════════════════════════════════════════════════════════════
// Renderers
// ════════════════════════════════════════════════════════════════════

func renderText(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s (%s): Sentiment Scan\n", d.CompanyName, d.Symbol))
	sb.WriteString(fmt.Sprintf("  Generated: %s\n", d.GeneratedAt))
	sb.WriteString(line + "\n\n")

	sb.WriteString(fmt.Sprintf("  Company type: %s | Prompts: %s\n", d.CompanyType, d.PromptSource))
	if d.KeyTopics != "" {
		sb.WriteString(fmt.Sprintf("  Key topics: %s\n", d.KeyTopics))
	}
	sb.WriteString(thinLine + "\n")

	if d.HasAggregate {
		sb.WriteString(fmt.Sprintf("\n  ★ COMPOSITE: %s (%s)\n", d.Label, d.Score))
		sb.WriteString(fmt.Sprintf("  From: %s", d.Contributors))
		if d.MeanConfidence != "" {
			sb.WriteString(fmt.Sprintf(" | Mean confidence: %s", d.MeanConfidence))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("\n  ★ COMPOSITE: no opinion (no provider succeeded)\n")
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  PROVIDERS\n")
	for _, p := range d.Providers {
		sb.WriteString(fmt.Sprintf("  %s %-8s %-15s %-7s %s\n", statusIcon(p.Class), p.Provider, p.Status, p.Duration, p.Detail))
	}

	if len(d.TakeRows) > 0 {
		sb.WriteString("\n  TOP TAKES\n")
		for _, t := range d.TakeRows {
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", t.Provider, t.Take))
		}
	}

	if len(d.Headlines) > 0 {
		sb.WriteString("\n  HEADLINES\n")
		for _, h := range d.Headlines {
			sb.WriteString(fmt.Sprintf("  %s %s", sentimentIcon(h.Sentiment), h.Headline))
			if h.Source != "" {
				sb.WriteString(" · " + h.Source)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n" + thinLine + "\n")
	sb.WriteString(fmt.Sprintf("  Total cost: %s\n", d.TotalCost))
	for _, c := range d.CostRows {
		sb.WriteString(fmt.Sprintf("    %-13s %-9s %-22s %s\n", c.Stage, c.Provider, c.Units, c.Cost))
	}
	sb.WriteString(line + "\n")
	return sb.String()
}

func renderMarkdown(d ReportData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s (%s): Sentiment Scan\n\n", d.CompanyName, d.Symbol)
	fmt.Fprintf(&sb, "_Generated %s · report %s_\n\n", d.GeneratedAt, d.ReportID)
	fmt.Fprintf(&sb, "- **Company type:** %s\n", d.CompanyType)
	if d.KeyTopics != "" {
		fmt.Fprintf(&sb, "- **Key topics:** %s\n", d.KeyTopics)
	}
	fmt.Fprintf(&sb, "- **Prompts:** %s\n\n", d.PromptSource)

	sb.WriteString("## Composite\n\n")
	if d.HasAggregate {
		fmt.Fprintf(&sb, "**%s** (%s) from %s", d.Label, d.Score, d.Contributors)
		if d.MeanConfidence != "" {
			fmt.Fprintf(&sb, ", mean confidence %s", d.MeanConfidence)
		}
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("No opinion: no provider succeeded.\n\n")
	}

	sb.WriteString("## Providers\n\n| Provider | Status | Time | Detail |\n|---|---|---|---|\n")
	for _, p := range d.Providers {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", p.Provider, p.Status, p.Duration, escapeCell(p.Detail))
	}

	if len(d.TakeRows) > 0 {
		sb.WriteString("\n## Top takes\n\n")
		for _, t := range d.TakeRows {
			fmt.Fprintf(&sb, "- **%s:** %s\n", t.Provider, t.Take)
		}
	}

	if len(d.Headlines) > 0 {
		sb.WriteString("\n## Headlines\n\n")
		for _, h := range d.Headlines {
			if h.URL != "" {
				fmt.Fprintf(&sb, "- [%s](%s)", h.Headline, h.URL)
			} else {
				fmt.Fprintf(&sb, "- %s", h.Headline)
			}
			fmt.Fprintf(&sb, " · %s _(%s)_\n", h.Source, h.Sentiment)
		}
	}

	fmt.Fprintf(&sb, "\n## Cost\n\nTotal: **%s**\n", d.TotalCost)
	if len(d.CostRows) > 0 {
		sb.WriteString("\n| Stage | Provider | Units | Cost |\n|---|---|---|---|\n")
		for _, c := range d.CostRows {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", c.Stage, c.Provider, c.Units, c.Cost)
		}
	}
	return sb.String()
}

var htmlTemplate = template.Must(template.New("report").Parse(ReportTemplate))

func renderHTML(d ReportData) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func statusIcon(class string) string {
	switch class {
	case "ok":
		return "✅"
	case "skip":
		return "⚪"
	default:
		return "❌"
	}
}

func sentimentIcon(s string) string {
	switch models.NewsSentiment(s) {
	case models.NewsPositive:
		return "▲"
	case models.NewsNegative:
		return "▼"
	default:
		return "•"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
