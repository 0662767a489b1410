package main

import (
	"flag"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/config"
)

func TestDecimalFlags(t *testing.T) {
	var (
		amount  = decimal.NewFromInt(1000)
		spreads []decimal.Decimal
	)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(decimalValue{&amount}, "amount", "")
	fs.Var(decimalList{&spreads}, "spreads", "")

	if err := fs.Parse([]string{"--amount", "10000.50", "--spreads", "0.3, 1,,2"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("10000.5")) {
		t.Errorf("amount = %s", amount)
	}
	if got := (decimalList{&spreads}).String(); got != "0.3,1,2" {
		t.Errorf("spreads = %s", got)
	}

	if err := fs.Parse([]string{"--amount", "lots"}); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"raydium", 1},
		{" raydium , orca ,", 2},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); len(got) != tt.want {
			t.Errorf("splitList(%q) = %v", tt.in, got)
		}
	}
}

func TestScanFlags_Request(t *testing.T) {
	sf := &scanFlags{venues: "orca,raydium", federated: true, amount: decimal.NewFromInt(500)}
	req := sf.request()
	if len(req.Venues) != 3 || req.Venues[2] != "federated" {
		t.Errorf("Venues = %v", req.Venues)
	}
	if !req.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Amount = %s", req.Amount)
	}
}

func TestScanFlags_Strategy(t *testing.T) {
	cfg := &config.Config{
		Scan:     config.ScanConfig{MinSpread: 1, Amount: 5000},
		Strategy: config.StrategyConfig{Capital: 1000, RiskTier: "medium"},
	}

	tests := []struct {
		name       string
		args       []string
		wantTier   string
		wantSpread string
		wantAmount string
		wantVenues string
	}{
		{
			name:       "no_strategy_keeps_config",
			args:       nil,
			wantSpread: "1",
			wantAmount: "5000",
		},
		{
			name:       "medium_tier",
			args:       []string{"--strategy", "medium"},
			wantTier:   "medium",
			wantSpread: "0.3",
			wantAmount: "700",
			wantVenues: "raydium",
		},
		{
			name:       "conservative_with_capital",
			args:       []string{"--strategy", "Conservative", "--capital", "20000"},
			wantTier:   "conservative",
			wantSpread: "0.5",
			wantAmount: "10000",
			wantVenues: "jupiter",
		},
		{
			name:       "explicit_flags_win",
			args:       []string{"--strategy", "aggressive", "--amount", "250", "--venue", "raydium"},
			wantTier:   "aggressive",
			wantSpread: "0.2",
			wantAmount: "250",
			wantVenues: "raydium",
		},
		{
			name:       "federated_keeps_all_venues",
			args:       []string{"--strategy", "medium", "--federated"},
			wantTier:   "medium",
			wantSpread: "0.3",
			wantAmount: "700",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cli{cfg: cfg}
			fs := flag.NewFlagSet("scan", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			sf := c.bindScanFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}

			s, err := sf.resolve(fs)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if tt.wantTier == "" {
				if s != nil {
					t.Errorf("got strategy %s, want none", s.Tier)
				}
			} else if s == nil || string(s.Tier) != tt.wantTier {
				t.Errorf("strategy = %v, want %s", s, tt.wantTier)
			}

			req := sf.request()
			if !req.MinSpread.Equal(decimal.RequireFromString(tt.wantSpread)) {
				t.Errorf("MinSpread = %s, want %s", req.MinSpread, tt.wantSpread)
			}
			if !req.Amount.Equal(decimal.RequireFromString(tt.wantAmount)) {
				t.Errorf("Amount = %s, want %s", req.Amount, tt.wantAmount)
			}
			if sf.venues != tt.wantVenues {
				t.Errorf("venues = %q, want %q", sf.venues, tt.wantVenues)
			}
		})
	}
}

func TestScanFlags_StrategyErrors(t *testing.T) {
	tests := []struct {
		name     string
		sf       *scanFlags
		wantCode apperror.Code
	}{
		{
			name:     "unknown_tier",
			sf:       &scanFlags{strategy: "yolo", capital: decimal.NewFromInt(1000)},
			wantCode: apperror.CodeUnknownRiskTier,
		},
		{
			name:     "no_capital",
			sf:       &scanFlags{strategy: "medium"},
			wantCode: apperror.CodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sf.resolve(nil)
			if got := apperror.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s (err %v)", got, tt.wantCode, err)
			}
		})
	}
}
