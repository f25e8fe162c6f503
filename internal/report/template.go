package report

// ReportTemplate is the standalone HTML page for one scan.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Symbol}} Sentiment Scan</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; color: #1a1a2e; max-width: 960px; margin: 0 auto; padding: 24px; }
  header { border-bottom: 3px solid #16213e; padding-bottom: 12px; margin-bottom: 20px; }
  h1 { margin: 0; font-size: 24px; }
  .meta { color: #666; font-size: 13px; }
  .composite { padding: 16px; border-radius: 8px; margin: 16px 0; font-size: 18px; background: #f4f4f8; }
  .bullish { background: #e6f7ee; color: #0a7d3b; }
  .bearish { background: #fdecea; color: #b3261e; }
  .neutral { background: #f4f4f8; color: #444; }
  table { width: 100%; border-collapse: collapse; margin: 12px 0; font-size: 14px; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #e0e0e0; }
  th { background: #16213e; color: #fff; }
  .ok { color: #0a7d3b; } .fail { color: #b3261e; } .skip { color: #888; }
  footer { margin-top: 24px; font-size: 12px; color: #888; }
</style>
</head>
<body>
<header>
  <h1>{{.CompanyName}} ({{.Symbol}})</h1>
  <div class="meta">Generated {{.GeneratedAt}} · {{.CompanyType}} · prompts from {{.PromptSource}}</div>
  {{if .KeyTopics}}<div class="meta">Key topics: {{.KeyTopics}}</div>{{end}}
</header>

{{if .HasAggregate}}
<div class="composite {{.LabelClass}}">
  <strong>{{.Label}}</strong> {{.Score}} from {{.Contributors}}{{if .MeanConfidence}}, mean confidence {{.MeanConfidence}}{{end}}
</div>
{{else}}
<div class="composite">No opinion: no provider succeeded.</div>
{{end}}

<h2>Providers</h2>
<table>
  <tr><th>Provider</th><th>Status</th><th>Time</th><th>Detail</th></tr>
  {{range .Providers}}
  <tr><td>{{.Provider}}</td><td class="{{.Class}}">{{.Status}}</td><td>{{.Duration}}</td><td>{{.Detail}}</td></tr>
  {{end}}
</table>

{{if .TakeRows}}
<h2>Top takes</h2>
<ul>
  {{range .TakeRows}}<li><strong>{{.Provider}}:</strong> {{.Take}}</li>{{end}}
</ul>
{{end}}

{{if .Headlines}}
<h2>Headlines</h2>
<ul>
  {{range .Headlines}}<li>{{if .URL}}<a href="{{.URL}}">{{.Headline}}</a>{{else}}{{.Headline}}{{end}} · {{.Source}} ({{.Sentiment}})</li>{{end}}
</ul>
{{end}}

<h2>Cost</h2>
<p>Total: <strong>{{.TotalCost}}</strong></p>
{{if .CostRows}}
<table>
  <tr><th>Stage</th><th>Provider</th><th>Units</th><th>Cost</th></tr>
  {{range .CostRows}}<tr><td>{{.Stage}}</td><td>{{.Provider}}</td><td>{{.Units}}</td><td>{{.Cost}}</td></tr>{{end}}
</table>
{{end}}

<footer>Report {{.ReportID}}</footer>
</body>
</html>
`
