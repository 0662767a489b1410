// Package jsonout renders arbitrage results as JSON documents for export.
package jsonout

import (
	"encoding/json"
	"io"
	"os"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
)

// Reporter implements app.Reporter, writing one indented JSON document per call.
type Reporter struct {
	enc *json.Encoder
	err error
}

// NewReporter creates a Reporter writing to out, or stdout when nil.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return &Reporter{enc: enc}
}

// Err returns the first encoding error, if any.
func (r *Reporter) Err() error {
	return r.err
}

func (r *Reporter) write(kind string, v any) {
	if r.err != nil {
		return
	}
	r.err = r.enc.Encode(struct {
		Kind string `json:"kind"`
		Data any    `json:"data"`
	}{kind, v})
}

func (r *Reporter) Opportunities(scan *domain.ScanResult) { r.write("scan", scan) }
func (r *Reporter) Analysis(a domain.ProfitAnalysis)      { r.write("analysis", a) }
func (r *Reporter) Breakeven(b domain.Breakeven)          { r.write("breakeven", b) }
func (r *Reporter) Optimal(o domain.OptimalAmount)        { r.write("optimal", o) }
func (r *Reporter) Matrix(m domain.ProfitMatrix)          { r.write("matrix", m) }
func (r *Reporter) Strategies(s []domain.Strategy)        { r.write("strategies", s) }
func (r *Reporter) Batch(b domain.BatchResult)            { r.write("batch", b) }
func (r *Reporter) Stats(s domain.PerformanceStats)       { r.write("stats", s) }

type poolView struct {
	marketDomain.Pool
	Pair string
}

// Pools writes the snapshot's pools grouped by venue.
func (r *Reporter) Pools(snap *marketDomain.Snapshot) {
	byVenue := make(map[string][]poolView)
	for _, venue := range snap.Venues() {
		for _, p := range snap.Pools(venue) {
			byVenue[venue] = append(byVenue[venue], poolView{Pool: p, Pair: p.Pair()})
		}
	}
	r.write("pools", struct {
		Timestamp any
		Tokens    []marketDomain.Token
		Venues    map[string][]poolView
	}{snap.Timestamp(), snap.Tokens(), byVenue})
}
