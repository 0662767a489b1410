// Package console renders arbitrage results as terminal tables.
package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
)

const rule = "================================================================================"

// Reporter implements app.Reporter for CLI output.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter writing to out, or stdout when nil.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

func usd(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}

func pct(v decimal.Decimal) string {
	return v.StringFixed(3) + "%"
}

// Opportunities prints a ranked scan.
func (r *Reporter) Opportunities(scan *domain.ScanResult) {
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "TRIANGULAR ARBITRAGE SCAN  %s\n", scan.StartedAt.Format(time.RFC3339))
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Snapshot:   %s\n", scan.SnapshotAt.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Venues:     %v\n", scan.Venues)
	fmt.Fprintf(r.out, "Cycles:     %d\n", scan.Cycles)
	fmt.Fprintf(r.out, "Amount:     %s   Min spread: %s\n", usd(scan.Amount), pct(scan.MinSpread))

	if len(scan.Opportunities) == 0 {
		fmt.Fprintln(r.out, "\nNo opportunities above the minimum spread.")
		return
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("#", "Route", "Venue", "Spread", "Gross", "Fees", "Gas", "Net", "ROI")
	for i, o := range scan.Opportunities {
		table.Append(
			fmt.Sprintf("%d", i+1),
			o.Route.String(),
			o.Venue,
			pct(o.Spread),
			usd(o.GrossProfit),
			usd(o.Fees),
			usd(o.GasCost),
			usd(o.NetProfit),
			pct(o.ROI),
		)
	}
	table.Render()
}

// Analysis prints a single profit breakdown.
func (r *Reporter) Analysis(a domain.ProfitAnalysis) {
	verdict := "NOT PROFITABLE"
	if a.Profitable() {
		verdict = "PROFITABLE"
	}

	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "PROFITABILITY ANALYSIS")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Venue:          %s\n", a.Venue)
	fmt.Fprintf(r.out, "Amount:         %s\n", usd(a.Amount))
	fmt.Fprintf(r.out, "Spread:         %s\n", pct(a.Spread))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintf(r.out, "  Gross:        %s\n", usd(a.GrossProfit))
	fmt.Fprintf(r.out, "  Fees (3 legs):%s\n", usd(a.Fees))
	fmt.Fprintf(r.out, "  Gas:          %s\n", usd(a.GasCost))
	fmt.Fprintf(r.out, "  Net:          %s (%s ROI)\n", usd(a.NetProfit), pct(a.ROI))
	fmt.Fprintf(r.out, "Verdict:        %s\n", verdict)
}

// Breakeven prints a breakeven spread.
func (r *Reporter) Breakeven(b domain.Breakeven) {
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "BREAKEVEN SPREAD")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Venue:              %s\n", b.Venue)
	fmt.Fprintf(r.out, "Amount:             %s\n", usd(b.Amount))
	fmt.Fprintf(r.out, "Fees:               %s\n", usd(b.Fees))
	fmt.Fprintf(r.out, "Gas:                %s\n", usd(b.GasCost))
	fmt.Fprintf(r.out, "Breakeven spread:   %s\n", pct(b.Spread))
	fmt.Fprintf(r.out, "Min profitable:     %s\n", pct(b.MinProfitableSpread))
}

// Optimal prints an optimal trade size.
func (r *Reporter) Optimal(o domain.OptimalAmount) {
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "OPTIMAL TRADE AMOUNT")
	fmt.Fprintln(r.out, rule)
	if len(o.Route) > 0 {
		fmt.Fprintf(r.out, "Route:          %s\n", o.Route)
	}
	fmt.Fprintf(r.out, "Spread:         %s\n", pct(o.Spread))
	fmt.Fprintf(r.out, "Target profit:  %s\n", usd(o.TargetProfit))
	fmt.Fprintf(r.out, "Optimal amount: %s\n", usd(o.Amount))
	fmt.Fprintf(r.out, "Expected fees:  %s + %s gas\n", usd(o.ExpectedFees), usd(o.GasCost))
}

// Matrix prints a profitability grid: one row per spread, one column per amount.
func (r *Reporter) Matrix(m domain.ProfitMatrix) {
	fmt.Fprintf(r.out, "PROFITABILITY MATRIX (%s, net profit)\n", m.Venue)

	header := make([]any, 0, len(m.Amounts)+1)
	header = append(header, "Spread")
	for _, a := range m.Amounts {
		header = append(header, usd(a))
	}

	table := tablewriter.NewWriter(r.out)
	table.Header(header...)
	for i, s := range m.Spreads {
		row := make([]any, 0, len(m.Amounts)+1)
		row = append(row, pct(s))
		for _, cell := range m.Cells[i] {
			mark := " "
			if cell.Profitable() {
				mark = "+"
			}
			row = append(row, usd(cell.NetProfit)+mark)
		}
		table.Append(row...)
	}
	table.Render()
}

// Strategies prints strategy recommendations.
func (r *Reporter) Strategies(strategies []domain.Strategy) {
	table := tablewriter.NewWriter(r.out)
	table.Header("Tier", "Venue", "Min spread", "Max position", "Stop loss", "Trades/day", "Daily", "Monthly", "Monthly ROI")
	for _, s := range strategies {
		table.Append(
			string(s.Tier),
			s.Venue,
			pct(s.TargetSpread),
			usd(s.MaxPosition),
			s.StopLoss.Mul(decimal.NewFromInt(100)).StringFixed(0)+"%",
			fmt.Sprintf("%d", s.TradesPerDay),
			usd(s.ExpectedDaily),
			usd(s.ExpectedMonthly),
			s.MonthlyROI.StringFixed(1)+"%",
		)
	}
	table.Render()
}

// Batch prints the results of an execution batch.
func (r *Reporter) Batch(b domain.BatchResult) {
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "ARBITRAGE EXECUTION")
	fmt.Fprintln(r.out, rule)

	table := tablewriter.NewWriter(r.out)
	table.Header("#", "Mode", "Route", "Venue", "Amount", "Profit", "Fees", "Slippage", "Status")
	for i, res := range b.Results {
		mode := "LIVE"
		if res.DryRun {
			mode = "DRY RUN"
		}
		status := string(res.Status)
		if res.ErrorCode != "" {
			status += " " + res.ErrorCode
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			mode,
			res.Route.String(),
			res.Venue,
			usd(res.Amount),
			usd(res.Profit),
			usd(res.Fees),
			pct(res.Slippage),
			status,
		)
	}
	table.Render()
	fmt.Fprintf(r.out, "TOTAL PROFIT: %s  (%d succeeded, %d failed)\n", usd(b.TotalProfit), b.Succeeded, b.Failed)
}

// Stats prints engine performance.
func (r *Reporter) Stats(s domain.PerformanceStats) {
	fmt.Fprintln(r.out, "PERFORMANCE")
	fmt.Fprintf(r.out, "  Executions:    %d (%d live successes, %d failed, %d simulated)\n", s.Total, s.Successful, s.Failed, s.Simulated)
	fmt.Fprintf(r.out, "  Success rate:  %s%%\n", s.SuccessRate.StringFixed(1))
	fmt.Fprintf(r.out, "  Avg profit:    %s\n", usd(s.AvgProfit))
	fmt.Fprintf(r.out, "  Avg fees:      %s\n", usd(s.AvgFees))
	fmt.Fprintf(r.out, "  Avg slippage:  %s\n", pct(s.AvgSlippage))
}

// Pools prints a snapshot's pools grouped by venue.
func (r *Reporter) Pools(snap *marketDomain.Snapshot) {
	fmt.Fprintf(r.out, "POOL STATUS  %s\n", snap.Timestamp().Format(time.RFC3339))

	table := tablewriter.NewWriter(r.out)
	table.Header("Venue", "Pool", "Pair", "Rate", "Liquidity", "24h Volume", "APY")
	for _, venue := range snap.Venues() {
		for _, p := range snap.Pools(venue) {
			rate := "derived"
			if !p.Rate.IsZero() {
				rate = p.Rate.String()
			}
			table.Append(
				venue,
				p.ID,
				p.Pair(),
				rate,
				usd(p.Liquidity),
				usd(p.Volume24h),
				pct(p.APY),
			)
		}
	}
	table.Render()
}
