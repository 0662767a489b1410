// Package sqlite implements the scan and execution journal on SQLite (pure Go, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	"github.com/fd1az/triarb/internal/apperror"
)

// Decimals are stored as TEXT to keep them exact.
const schema = `
CREATE TABLE IF NOT EXISTS scans (
    id            TEXT PRIMARY KEY,
    started_at    TEXT    NOT NULL,
    snapshot_at   TEXT    NOT NULL,
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    venues        TEXT    NOT NULL,
    cycles        INTEGER NOT NULL DEFAULT 0,
    opportunities INTEGER NOT NULL DEFAULT 0,
    min_spread    TEXT    NOT NULL,
    amount        TEXT    NOT NULL,
    best_route    TEXT,
    best_spread   TEXT,
    best_net      TEXT
);

CREATE TABLE IF NOT EXISTS executions (
    id             TEXT PRIMARY KEY,
    opportunity_id TEXT,
    executed_at    TEXT    NOT NULL,
    status         TEXT    NOT NULL,
    success        INTEGER NOT NULL,
    dry_run        INTEGER NOT NULL,
    route          TEXT    NOT NULL,
    venue          TEXT    NOT NULL,
    amount         TEXT    NOT NULL,
    profit         TEXT    NOT NULL,
    fees           TEXT    NOT NULL,
    gas_cost       TEXT    NOT NULL,
    slippage       TEXT    NOT NULL,
    error_code     TEXT,
    error          TEXT
);

CREATE INDEX IF NOT EXISTS idx_scans_at      ON scans(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_executions_at ON executions(executed_at DESC);
`

const routeSep = ">"

// Fixed width so timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal implements app.Journal.
type Journal struct {
	db *sql.DB
}

// NewJournal opens (or creates) the database at path and applies the schema.
func NewJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeJournalFailed, "open "+path, err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperror.Internal(apperror.CodeJournalFailed, "apply schema", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Ping reports whether the database is reachable.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

func ts(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RecordScan stores a scan summary with its best opportunity.
func (j *Journal) RecordScan(ctx context.Context, scan *domain.ScanResult) error {
	var bestRoute, bestSpread, bestNet sql.NullString
	if best, ok := scan.Best(); ok {
		bestRoute = sql.NullString{String: best.Route.String(), Valid: true}
		bestSpread = sql.NullString{String: best.Spread.String(), Valid: true}
		bestNet = sql.NullString{String: best.NetProfit.String(), Valid: true}
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO scans (id, started_at, snapshot_at, duration_ms, venues, cycles, opportunities,
		                    min_spread, amount, best_route, best_spread, best_net)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, ts(scan.StartedAt), ts(scan.SnapshotAt), scan.Duration.Milliseconds(),
		strings.Join(scan.Venues, ","), scan.Cycles, len(scan.Opportunities),
		scan.MinSpread.String(), scan.Amount.String(), bestRoute, bestSpread, bestNet,
	)
	if err != nil {
		return apperror.Internal(apperror.CodeJournalFailed, "insert scan", err)
	}
	return nil
}

// ScanCount returns the number of journaled scans.
func (j *Journal) ScanCount(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`).Scan(&n); err != nil {
		return 0, apperror.Internal(apperror.CodeJournalFailed, "count scans", err)
	}
	return n, nil
}

// RecordExecution stores one execution result.
func (j *Journal) RecordExecution(ctx context.Context, r domain.ExecutionResult) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO executions (id, opportunity_id, executed_at, status, success, dry_run, route, venue,
		                         amount, profit, fees, gas_cost, slippage, error_code, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OpportunityID, ts(r.ExecutedAt), string(r.Status), boolInt(r.Success), boolInt(r.DryRun),
		strings.Join(r.Route, routeSep), r.Venue,
		r.Amount.String(), r.Profit.String(), r.Fees.String(), r.GasCost.String(), r.Slippage.String(),
		r.ErrorCode, r.Error,
	)
	if err != nil {
		return apperror.Internal(apperror.CodeJournalFailed, "insert execution", err)
	}
	return nil
}

// RecentExecutions returns up to limit results, newest first.
func (j *Journal) RecentExecutions(ctx context.Context, limit int) ([]domain.ExecutionResult, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, opportunity_id, executed_at, status, success, dry_run, route, venue,
		        amount, profit, fees, gas_cost, slippage, error_code, error
		 FROM executions
		 ORDER BY executed_at DESC, rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeJournalFailed, "query executions", err)
	}
	defer rows.Close()

	var out []domain.ExecutionResult
	for rows.Next() {
		r, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(apperror.CodeJournalFailed, "iterate executions", err)
	}
	return out, nil
}

func scanExecution(rows *sql.Rows) (domain.ExecutionResult, error) {
	var (
		r                                       domain.ExecutionResult
		oppID, errCode, errMsg                  sql.NullString
		executedAt, status, route               string
		success, dryRun                         int
		amount, profit, fees, gasCost, slippage string
	)
	if err := rows.Scan(&r.ID, &oppID, &executedAt, &status, &success, &dryRun, &route, &r.Venue,
		&amount, &profit, &fees, &gasCost, &slippage, &errCode, &errMsg); err != nil {
		return r, apperror.Internal(apperror.CodeJournalFailed, "scan execution row", err)
	}

	t, err := time.Parse(tsLayout, executedAt)
	if err != nil {
		return r, apperror.Internal(apperror.CodeJournalFailed, "parse executed_at", err)
	}

	decimals := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{amount, &r.Amount}, {profit, &r.Profit}, {fees, &r.Fees}, {gasCost, &r.GasCost}, {slippage, &r.Slippage},
	}
	for _, f := range decimals {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return r, apperror.Internal(apperror.CodeJournalFailed, "parse decimal", err)
		}
		*f.dst = v
	}

	r.OpportunityID = oppID.String
	r.ExecutedAt = t
	r.Status = domain.Status(status)
	r.Success = success == 1
	r.DryRun = dryRun == 1
	r.Route = domain.Route(strings.Split(route, routeSep))
	r.ErrorCode = errCode.String
	r.Error = errMsg.String
	return r, nil
}
