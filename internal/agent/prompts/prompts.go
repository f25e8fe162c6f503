// Package prompts contains the orchestrator instruction, the sentiment
// system prompts for each downstream model, and the fallback templates
// used when the orchestrator is unavailable.
package prompts

import (
	"fmt"
	"strings"
)

// ── Orchestrator ──

// OrchestratorSystemPrompt frames the reasoning model as a research planner.
const OrchestratorSystemPrompt = `You are a research planner for an equity sentiment desk.
Given a stock, you classify the company and write one focused research prompt for each of three analysts:
- grokPrompt: an analyst with live access to X (Twitter) posts and social chatter
- openaiPrompt: an analyst summarizing news coverage and analyst narrative
- geminiPrompt: an analyst reading Reddit, StockTwits and retail investor forums

Respond with exactly one JSON object and nothing else.`

// orchestratorSchema documents the expected response shape.
const orchestratorSchema = `{
  "companyType": "biotech | tech | finance | retail | energy | healthcare | industrial | other",
  "keyTopics": ["topic", "..."],
  "grokPrompt": "string",
  "openaiPrompt": "string",
  "geminiPrompt": "string"
}`

// Worked examples teach the model what a good plan looks like.
const orchestratorExamples = `Example 1
Stock: MRNA (Moderna, Inc.), sector Healthcare, price $38.10
{"companyType":"biotech","keyTopics":["mRNA pipeline","FDA approvals","vaccine demand","cash runway"],"grokPrompt":"Analyze X posts from the last 7 days about $MRNA. Focus on reactions to FDA decisions, trial readouts and vaccine sales.","openaiPrompt":"Summarize recent news and analyst commentary on Moderna (MRNA): pipeline milestones, guidance changes and price target revisions.","geminiPrompt":"Review Reddit and StockTwits discussion of MRNA. How do retail investors view the pipeline and dilution risk?"}

Example 2
Stock: NVDA (NVIDIA Corporation), sector Technology, price $121.40
{"companyType":"tech","keyTopics":["data center demand","AI accelerators","export controls","earnings"],"grokPrompt":"Analyze X posts about $NVDA this week. Capture sentiment on AI chip demand, export restrictions and upcoming earnings.","openaiPrompt":"Summarize news and analyst views on NVIDIA (NVDA): data center revenue, supply constraints and valuation debate.","geminiPrompt":"Review retail forum sentiment on NVDA. Note whether posters are chasing momentum or worried about valuation."}`

// OrchestratorUserPrompt builds the per-request instruction carrying the
// subject and the worked examples.
func OrchestratorUserPrompt(symbol, companyName, sector string, price float64) string {
	var sb strings.Builder
	sb.WriteString("Plan sentiment research for this stock.\n\n")
	fmt.Fprintf(&sb, "Stock: %s (%s), sector %s, price $%.2f\n\n", symbol, companyName, sector, price)
	sb.WriteString("Return JSON with this shape:\n")
	sb.WriteString(orchestratorSchema)
	sb.WriteString("\n\n")
	sb.WriteString(orchestratorExamples)
	sb.WriteString("\n\nEach prompt must name the ticker and the company. Choose 3 to 6 key topics.")
	return sb.String()
}

// ── Sentiment analysts ──

// sentimentSchema is shared by every sentiment analyst prompt.
const sentimentSchema = `Respond with exactly one JSON object:
{
  "score": number between -1 (very bearish) and 1 (very bullish),
  "label": "bullish" | "neutral" | "bearish",
  "confidence": number between 0 and 100,
  "mentionVolume": integer estimate of mentions in the period,
  "sentimentBreakdown": {"bullish": percent, "neutral": percent, "bearish": percent},
  "trending": true | false,
  "buzzLevel": "low" | "medium" | "high" | "viral",
  "topTakes": ["up to five short representative statements"],
  "retailVsInstitutional": "retail" | "institutional" | "mixed"
}`

// GrokSystemPrompt targets social media chatter.
const GrokSystemPrompt = `You are a social sentiment analyst with access to recent posts on X (Twitter).
Measure how traders and investors are talking about the stock right now.

` + sentimentSchema

// OpenAISystemPrompt targets news and analyst narrative.
const OpenAISystemPrompt = `You are a market news analyst. Judge the tone of recent news coverage,
analyst notes and company announcements about the stock.

` + sentimentSchema

// GeminiSystemPrompt targets retail investor communities.
const GeminiSystemPrompt = `You are a retail investor community analyst covering Reddit, StockTwits
and investing forums. Judge the mood of retail discussion about the stock.

` + sentimentSchema

// ── Fallback templates ──

// FallbackGrokPrompt is used when no tailored prompt is available.
func FallbackGrokPrompt(symbol, companyName string) string {
	return fmt.Sprintf("Analyze recent X (Twitter) posts about $%s (%s). "+
		"What is the overall sentiment, how much buzz is there, and what are the top takes?", symbol, companyName)
}

// FallbackOpenAIPrompt is used when no tailored prompt is available.
func FallbackOpenAIPrompt(symbol, companyName string) string {
	return fmt.Sprintf("Summarize recent news and analyst commentary on %s (%s). "+
		"Is the coverage bullish, neutral or bearish, and why?", companyName, symbol)
}

// FallbackGeminiPrompt is used when no tailored prompt is available.
func FallbackGeminiPrompt(symbol, companyName string) string {
	return fmt.Sprintf("Review recent Reddit and StockTwits discussion of %s (%s). "+
		"What is retail sentiment and what are investors focused on?", symbol, companyName)
}
