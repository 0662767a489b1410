package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// decimalValue is a flag.Value holding an exact decimal.
type decimalValue struct {
	d *decimal.Decimal
}

func (v decimalValue) String() string {
	if v.d == nil {
		return ""
	}
	return v.d.String()
}

func (v decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*v.d = d
	return nil
}

// decimalList is a flag.Value for comma separated decimals.
type decimalList struct {
	ds *[]decimal.Decimal
}

func (v decimalList) String() string {
	if v.ds == nil {
		return ""
	}
	parts := make([]string, len(*v.ds))
	for i, d := range *v.ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

func (v decimalList) Set(s string) error {
	var out []decimal.Decimal
	for _, part := range splitList(s) {
		d, err := decimal.NewFromString(part)
		if err != nil {
			return fmt.Errorf("not a number: %q", part)
		}
		out = append(out, d)
	}
	*v.ds = out
	return nil
}

// splitList splits a comma separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func mustDecimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}
