package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/netgee-k/mt5-v2/internal/journal"
	"github.com/netgee-k/mt5-v2/internal/market"
	"github.com/netgee-k/mt5-v2/internal/models"
	"go.uber.org/zap"
)

// Report is the result of one weekly performance analysis.
type Report struct {
	Summary          string          `json:"summary"`
	PerformanceScore float64         `json:"performance_score"`
	Strengths        []string        `json:"strengths,omitempty"`
	Weaknesses       []string        `json:"weaknesses,omitempty"`
	RiskAssessment   string          `json:"risk_assessment,omitempty"`
	Recommendations  []string        `json:"recommendations"`
	Patterns         []string        `json:"patterns"`
	Sentiment        string          `json:"sentiment"`
	Outlook          string          `json:"outlook,omitempty"`
	BestTrade        *TradeHighlight `json:"best_trade,omitempty"`
	WorstTrade       *TradeHighlight `json:"worst_trade,omitempty"`
	MarketContext    string          `json:"market_context,omitempty"`
}

// TradeHighlight points at the standout trade of the week.
type TradeHighlight struct {
	Ticket     int64    `json:"ticket"`
	Symbol     string   `json:"symbol"`
	Profit     float64  `json:"profit"`
	EntryPrice float64  `json:"entry_price"`
	ExitPrice  *float64 `json:"exit_price,omitempty"`
	Reason     string   `json:"reason"`
}

// Analyzer produces weekly performance reports. When the LLM client is not
// configured, or the model call fails, it falls back to a deterministic
// analysis computed from the trade set alone. The analyzer holds only
// configuration and collaborators, no request-scoped state.
type Analyzer struct {
	llm    *OpenAIClient
	market *market.Client // optional, adds market context to reports
	logger *zap.Logger
}

// NewAnalyzer creates a new weekly report analyzer. market may be nil.
func NewAnalyzer(llm *OpenAIClient, marketClient *market.Client, logger *zap.Logger) *Analyzer {
	return &Analyzer{llm: llm, market: marketClient, logger: logger}
}

// llmAnalysis is the JSON document the model is asked to return.
type llmAnalysis struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	RiskAssessment  string   `json:"risk_assessment"`
	Recommendations []string `json:"recommendations"`
	Patterns        []string `json:"patterns"`
	Sentiment       string   `json:"sentiment"`
	Outlook         string   `json:"outlook"`
}

// AnalyzeWeek reviews one week of trades. previous may carry the prior
// week's stats for trend context.
func (a *Analyzer) AnalyzeWeek(ctx context.Context, trades []models.Trade, previous *journal.Stats) *Report {
	if a.llm == nil || !a.llm.Configured() {
		return a.basicAnalysis(ctx, trades)
	}

	report, err := a.llmAnalyzeWeek(ctx, trades, previous)
	if err != nil {
		a.logger.Warn("LLM analysis failed, using basic analysis", zap.Error(err))
		return a.basicAnalysis(ctx, trades)
	}
	return report
}

func (a *Analyzer) llmAnalyzeWeek(ctx context.Context, trades []models.Trade, previous *journal.Stats) (*Report, error) {
	type tradeSummary struct {
		Symbol string   `json:"symbol"`
		Type   string   `json:"type"`
		Profit float64  `json:"profit"`
		Win    *bool    `json:"win"`
		Volume float64  `json:"volume"`
		Pips   *float64 `json:"pips"`
	}

	summaries := make([]tradeSummary, 0, len(trades))
	for i := range trades {
		t := &trades[i]
		summaries = append(summaries, tradeSummary{
			Symbol: t.Symbol,
			Type:   t.Type,
			Profit: t.ProfitValue(),
			Win:    t.Win,
			Volume: t.Volume,
			Pips:   t.Pips,
		})
	}

	tradeJSON, err := json.Marshal(summaries)
	if err != nil {
		return nil, fmt.Errorf("could not encode trade summary: %w", err)
	}
	prevJSON := []byte("{}")
	if previous != nil {
		prevJSON, _ = json.Marshal(previous)
	}

	marketContext := a.marketContext(ctx)

	system := "You are an expert trading analyst. Analyze performance with market context. Provide concise, actionable insights."
	user := fmt.Sprintf(`Analyze this week of trading activity.

Market conditions: %s

Trade data: %s

Previous week stats: %s

Respond with a JSON object with keys: summary, strengths, weaknesses, risk_assessment, recommendations, patterns, sentiment, outlook. The list-valued keys hold arrays of short strings.`,
		marketContext, tradeJSON, prevJSON)

	reply, err := a.llm.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var analysis llmAnalysis
	if err := json.Unmarshal([]byte(extractJSON(reply)), &analysis); err != nil {
		return nil, fmt.Errorf("could not decode model reply: %w", err)
	}

	best, worst := extremeTrades(trades)
	return &Report{
		Summary:          analysis.Summary,
		PerformanceScore: performanceScore(trades, analysis.Sentiment),
		Strengths:        analysis.Strengths,
		Weaknesses:       analysis.Weaknesses,
		RiskAssessment:   analysis.RiskAssessment,
		Recommendations:  analysis.Recommendations,
		Patterns:         analysis.Patterns,
		Sentiment:        analysis.Sentiment,
		Outlook:          analysis.Outlook,
		BestTrade:        best,
		WorstTrade:       worst,
		MarketContext:    marketContext,
	}, nil
}

// basicAnalysis is the deterministic fallback used when the LLM is
// unavailable.
func (a *Analyzer) basicAnalysis(ctx context.Context, trades []models.Trade) *Report {
	if len(trades) == 0 {
		return &Report{
			Summary:         "No trades this week.",
			Recommendations: []string{"Start trading to generate performance data"},
			Patterns:        []string{},
			Sentiment:       "Neutral",
		}
	}

	stats := journal.ComputeStats(trades)

	sentiment := "Needs improvement"
	if stats.WinRate > 60 {
		sentiment = "Confident"
	} else if stats.WinRate > 40 {
		sentiment = "Cautious"
	}

	best, worst := extremeTrades(trades)
	return &Report{
		Summary: fmt.Sprintf("Traded %d times with %.1f%% win rate. Total profit: $%.2f",
			stats.TotalTrades, stats.WinRate, stats.TotalProfit),
		PerformanceScore: performanceScore(trades, sentiment),
		Recommendations: []string{
			fmt.Sprintf("Maintain win rate above %.1f%%", stats.WinRate),
			"Review losing trades for patterns",
			"Consider position sizing adjustments",
		},
		Patterns:      TradePatterns(trades),
		Sentiment:     sentiment,
		BestTrade:     best,
		WorstTrade:    worst,
		MarketContext: a.marketContext(ctx),
	}
}

// marketContext summarizes major index and forex quotes into one line of
// context for the model prompt. Failures degrade to an empty context.
func (a *Analyzer) marketContext(ctx context.Context) string {
	if a.market == nil {
		return "Market data unavailable"
	}

	var parts []string
	for _, symbol := range []string{"SPY", "QQQ", "DIA"} {
		quote, err := a.market.GetQuote(ctx, symbol)
		if err != nil || quote.Current == 0 {
			continue
		}
		trend := "neutral"
		if quote.PercentChange > 0 {
			trend = "bullish"
		} else if quote.PercentChange < 0 {
			trend = "bearish"
		}
		parts = append(parts, fmt.Sprintf("%s: $%.2f (%+.2f%%) - %s",
			symbol, quote.Current, quote.PercentChange, trend))
	}
	for _, pair := range []string{"EUR/USD", "GBP/USD", "USD/JPY"} {
		quote, err := a.market.GetForexQuote(ctx, pair)
		if err != nil || quote.Current == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %.4f", pair, quote.Current))
	}

	if len(parts) == 0 {
		return "Market data unavailable"
	}
	return strings.Join(parts, " | ")
}

// performanceScore maps a week of trades to a 0-100 score weighting win
// rate, profit factor and consistency, with a small sentiment adjustment.
func performanceScore(trades []models.Trade, sentiment string) float64 {
	if len(trades) == 0 {
		return 0
	}

	stats := journal.ComputeStats(trades)

	profitFactorScore := 100.0 // no losses: treat as a perfect factor
	if stats.ProfitFactor != nil {
		profitFactorScore = *stats.ProfitFactor * 25
		if profitFactorScore > 100 {
			profitFactorScore = 100
		}
	}

	// Lower profit variance scores higher.
	var variance float64
	for i := range trades {
		d := trades[i].ProfitValue() - stats.AvgProfit
		variance += d * d
	}
	variance /= float64(len(trades))
	consistency := 100 - variance
	if consistency < 0 {
		consistency = 0
	}

	bonus := 0.0
	lower := strings.ToLower(sentiment)
	if strings.Contains(lower, "confident") || strings.Contains(lower, "optimistic") {
		bonus = 5
	} else if strings.Contains(lower, "cautious") || strings.Contains(lower, "concerned") {
		bonus = -5
	}

	score := stats.WinRate*0.4 + profitFactorScore*0.3 + consistency*0.25 + bonus
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// extremeTrades picks the best and worst trade of the window.
func extremeTrades(trades []models.Trade) (*TradeHighlight, *TradeHighlight) {
	if len(trades) == 0 {
		return nil, nil
	}

	best, worst := &trades[0], &trades[0]
	for i := range trades {
		t := &trades[i]
		if t.ProfitValue() > best.ProfitValue() {
			best = t
		}
		if t.ProfitValue() < worst.ProfitValue() {
			worst = t
		}
	}

	return &TradeHighlight{
			Ticket:     best.Ticket,
			Symbol:     best.Symbol,
			Profit:     best.ProfitValue(),
			EntryPrice: best.OpenPrice,
			ExitPrice:  best.ClosePrice,
			Reason:     "Highest profit trade",
		}, &TradeHighlight{
			Ticket:     worst.Ticket,
			Symbol:     worst.Symbol,
			Profit:     worst.ProfitValue(),
			EntryPrice: worst.OpenPrice,
			ExitPrice:  worst.ClosePrice,
			Reason:     "Largest loss trade",
		}
}

// TradePatterns derives human-readable behavioral patterns from a trade
// window: most active weekday, profitable and unprofitable symbols, and the
// longest win/loss streaks.
func TradePatterns(trades []models.Trade) []string {
	if len(trades) < 5 {
		return []string{"Insufficient data for pattern analysis"}
	}

	var patterns []string

	dayCounts := make(map[time.Weekday]int)
	for i := range trades {
		dayCounts[trades[i].OpenTime.Weekday()]++
	}
	var busiest time.Weekday
	for day, count := range dayCounts {
		if count > dayCounts[busiest] || (count == dayCounts[busiest] && day < busiest) {
			busiest = day
		}
	}
	patterns = append(patterns, fmt.Sprintf("Most active trading day: %s (%d trades)",
		busiest, dayCounts[busiest]))

	symbolProfit := make(map[string]float64)
	for i := range trades {
		symbolProfit[trades[i].Symbol] += trades[i].ProfitValue()
	}
	var profitable, unprofitable []string
	for symbol, profit := range symbolProfit {
		if profit > 0 {
			profitable = append(profitable, symbol)
		} else if profit < 0 {
			unprofitable = append(unprofitable, symbol)
		}
	}
	sort.Strings(profitable)
	sort.Strings(unprofitable)
	if len(profitable) > 0 {
		patterns = append(patterns, "Profitable symbols: "+strings.Join(top(profitable, 3), ", "))
	}
	if len(unprofitable) > 0 {
		patterns = append(patterns, "Unprofitable symbols: "+strings.Join(top(unprofitable, 3), ", "))
	}

	winStreak, lossStreak := streaks(trades)
	patterns = append(patterns,
		fmt.Sprintf("Longest win streak: %d trades", winStreak),
		fmt.Sprintf("Longest loss streak: %d trades", lossStreak))

	return patterns
}

func streaks(trades []models.Trade) (maxWin, maxLoss int) {
	ordered := make([]models.Trade, len(trades))
	copy(ordered, trades)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].OpenTime.Before(ordered[j].OpenTime)
	})

	current := 0 // positive while winning, negative while losing
	for i := range ordered {
		if ordered[i].IsWin() {
			if current < 0 {
				current = 0
			}
			current++
			if current > maxWin {
				maxWin = current
			}
		} else {
			if current > 0 {
				current = 0
			}
			current--
			if -current > maxLoss {
				maxLoss = -current
			}
		}
	}
	return maxWin, maxLoss
}

func top(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// extractJSON trims any prose or code fences the model wrapped around its
// JSON reply.
func extractJSON(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start >= 0 && end > start {
		return reply[start : end+1]
	}
	return reply
}
