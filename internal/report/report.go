package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/wonny/equityscreen/internal/contracts"
)

// Row is the flat rendering of a ranked ticker
type Row struct {
	Rank              int                     `json:"rank"`
	Ticker            string                  `json:"ticker"`
	CompositeScore    float64                 `json:"composite_score"`
	ValueScore        float64                 `json:"value_score"`
	MomentumScore     float64                 `json:"momentum_score"`
	RiskScore         float64                 `json:"risk_score"`
	Momentum21D       contracts.OptionalFloat `json:"momentum_21d"`
	Volatility21D     contracts.OptionalFloat `json:"volatility_21d"`
	PERatio           contracts.OptionalFloat `json:"pe_ratio"`
	PBRatio           contracts.OptionalFloat `json:"pb_ratio"`
	FreeCashFlowYield contracts.OptionalFloat `json:"free_cash_flow_yield"`
	MarketCap         contracts.OptionalFloat `json:"market_cap"`
}

// Payload is the JSON document of a screening run
type Payload struct {
	RunID    string               `json:"run_id"`
	Period   contracts.Period     `json:"period"`
	Results  []Row                `json:"results"`
	Failures contracts.FailureMap `json:"failures"`
}

// NewPayload flattens a summary; it never recomputes scores
func NewPayload(summary *contracts.Summary) Payload {
	rows := make([]Row, len(summary.Ranked))
	for i, r := range summary.Ranked {
		row := Row{
			Rank:           r.Rank,
			Ticker:         r.Ticker,
			CompositeScore: r.CompositeScore,
			ValueScore:     r.ValueScore,
			MomentumScore:  r.MomentumScore,
			RiskScore:      r.RiskScore,
		}
		if a := r.Analysis; a != nil {
			row.Momentum21D = a.Momentum21D
			row.Volatility21D = a.Volatility21D
			row.PERatio = a.PE
			row.PBRatio = a.PB
			row.FreeCashFlowYield = a.FreeCashFlowYield
			row.MarketCap = a.MarketCap
		}
		rows[i] = row
	}

	failures := summary.Failures
	if failures == nil {
		failures = contracts.FailureMap{}
	}

	return Payload{
		RunID:    summary.RunID.String(),
		Period:   summary.Period,
		Results:  rows,
		Failures: failures,
	}
}

// WriteJSON writes the indented JSON payload
func WriteJSON(w io.Writer, summary *contracts.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewPayload(summary))
}

var tableHeaders = []string{
	"Rank", "Ticker", "Score", "Value", "Momentum", "Risk",
	"PE", "PB", "FCF Yield", "21d Mom", "21d Vol",
}

// WriteTable writes an aligned text table followed by the skipped tickers
func WriteTable(w io.Writer, summary *contracts.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, strings.Join(tableHeaders, "\t")+"\t")
	for _, row := range NewPayload(summary).Results {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Rank,
			row.Ticker,
			row.CompositeScore,
			row.ValueScore,
			row.MomentumScore,
			row.RiskScore,
			formatRatio(row.PERatio),
			formatRatio(row.PBRatio),
			formatPercent(row.FreeCashFlowYield),
			formatPercent(row.Momentum21D),
			formatPercent(row.Volatility21D),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(summary.Failures) == 0 {
		return nil
	}

	tickers := make([]string, 0, len(summary.Failures))
	for t := range summary.Failures {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	fmt.Fprintln(w, "\nTickers skipped due to data issues:")
	for _, t := range tickers {
		fmt.Fprintf(w, "- %s: %s\n", t, summary.Failures[t])
	}
	return nil
}

func formatRatio(v contracts.OptionalFloat) string {
	f, ok := v.Get()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", f)
}

func formatPercent(v contracts.OptionalFloat) string {
	f, ok := v.Get()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", f*100)
}
