/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package validate

import (
	"errors"
	"testing"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/diag"
	"pgedge-netsuite-mcp/internal/joingraph"
)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	return New(cat)
}

func TestValidateIntentEmptyInput(t *testing.T) {
	v := testValidator(t)
	if _, err := v.ValidateIntent(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("nil intent: %v", err)
	}
	if _, err := v.ValidateIntent(&Intent{}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty intent: %v", err)
	}
}

func TestValidateIntentRejectsMalformed(t *testing.T) {
	v := testValidator(t)

	_, err := v.ValidateIntent(&Intent{
		Tables:      []string{"transaction"},
		Projections: []Projection{{Column: "amount", Aggregate: "MEDIAN"}},
	})
	if err == nil {
		t.Error("unknown aggregate accepted")
	}

	_, err = v.ValidateIntent(&Intent{
		Tables:  []string{"transaction"},
		Filters: []Filter{{Column: "tranid", Op: "~", Value: "'x'"}},
	})
	if err == nil {
		t.Error("unknown operator accepted")
	}
}

func TestValidateIntentSingleTable(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateIntent(&Intent{
		Tables:      []string{"TRANSACTIONS"},
		Projections: []Projection{{Column: "TRAN_ID"}, {Column: "tran_date"}},
		Filters:     []Filter{{Column: "posting", Op: "=", Value: "'T'"}},
		Top:         50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
	want := "SELECT TOP 50 tranid, trandate FROM transaction WHERE posting = 'T'"
	if res.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", res.SQL, want)
	}
}

func TestValidateIntentPaginationLimits(t *testing.T) {
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	v := NewWithLimits(cat, Limits{DefaultTop: 100, MaxTop: 500})

	// an intent that gives no TOP gets the configured default
	res, err := v.ValidateIntent(&Intent{
		Tables:      []string{"transaction"},
		Projections: []Projection{{Column: "tran_id"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
	if want := "SELECT TOP 100 tranid FROM transaction"; res.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", res.SQL, want)
	}

	// an explicit TOP within the cap is kept as given
	res, err = v.ValidateIntent(&Intent{
		Tables:      []string{"transaction"},
		Projections: []Projection{{Column: "tran_id"}},
		Top:         25,
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := "SELECT TOP 25 tranid FROM transaction"; res.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", res.SQL, want)
	}

	// above the cap the intent is rejected
	res, err = v.ValidateIntent(&Intent{
		Tables:      []string{"transaction"},
		Projections: []Projection{{Column: "tran_id"}},
		Top:         501,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusRejected || !res.Diagnostics.Has(diag.ForbiddenSyntax) {
		t.Errorf("oversized TOP not rejected: %+v", res)
	}
}

func TestValidateIntentDefaultLimitsLeaveTopAlone(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateIntent(&Intent{
		Tables:      []string{"transaction"},
		Projections: []Projection{{Column: "tran_id"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := "SELECT tranid FROM transaction"; res.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", res.SQL, want)
	}
}

func TestValidateIntentJoinedAggregate(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateIntent(&Intent{
		Tables: []string{"transaction", "CUSTOMERS", "TRANSACTION_LINES"},
		Projections: []Projection{
			{Table: "customer", Column: "company_name"},
			{Table: "transaction", Column: "tran_id"},
			{Table: "transaction_line", Column: "amount", Aggregate: "SUM", Alias: "total"},
		},
		Filters: []Filter{
			{Table: "transaction", Column: "transaction_type", Op: "=", Value: "'CustInvc'"},
			{Table: "transaction", Column: "tran_date", Op: ">=", Value: "TO_DATE('2025-08-01', 'YYYY-MM-DD')"},
		},
		Joins: []joingraph.Predicate{
			{LeftTable: "transaction", LeftColumns: []string{"entity_id"},
				RightTable: "customer", RightColumns: []string{"customer_id"}},
			{LeftTable: "transaction_line", LeftColumns: []string{"transaction_id"},
				RightTable: "transaction", RightColumns: []string{"transaction_id"}},
		},
		OrderBy: []OrderBy{{Column: "total", Desc: true}},
		Top:     10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}

	want := "SELECT TOP 10 customer.companyname, transaction.tranid, " +
		"SUM(transactionline.amount) AS total " +
		"FROM transaction " +
		"JOIN customer ON transaction.entity = customer.id " +
		"JOIN transactionline ON transactionline.transaction = transaction.id " +
		"WHERE transaction.type = 'CustInvc' " +
		"AND transaction.trandate >= TO_DATE('2025-08-01', 'YYYY-MM-DD') " +
		"GROUP BY customer.companyname, transaction.tranid " +
		"ORDER BY total DESC"
	if res.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", res.SQL, want)
	}
}

func TestValidateIntentUnknownNames(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateIntent(&Intent{
		Tables:      []string{"invoices"},
		Projections: []Projection{{Column: "number"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusRejected || res.SQL != "" {
		t.Fatalf("expected a rejection without SQL, got %+v", res)
	}
	if !res.Diagnostics.Has(diag.UnknownTable) {
		t.Errorf("missing UnknownTable: %v", res.Diagnostics)
	}

	res, err = v.ValidateIntent(&Intent{
		Tables:      []string{"transaction"},
		Projections: []Projection{{Column: "invoice_number"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Diagnostics.Has(diag.UnknownColumn) {
		t.Errorf("missing UnknownColumn: %v", res.Diagnostics)
	}
}

func TestValidateIntentUnlistedTableReference(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateIntent(&Intent{
		Tables:      []string{"transaction"},
		Projections: []Projection{{Table: "customer", Column: "company_name"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusRejected || !res.Diagnostics.Has(diag.UnknownTable) {
		t.Errorf("unlisted table reference not rejected: %+v", res)
	}
}

func TestValidateIntentAmbiguousJoin(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateIntent(&Intent{
		Tables:      []string{"transaction", "employee"},
		Projections: []Projection{{Table: "transaction", Column: "tran_id"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Diagnostics.Count(diag.AmbiguousJoin) != 1 {
		t.Errorf("expected AmbiguousJoin: %v", res.Diagnostics)
	}
}

func TestValidateIntentCompositeKeyAtomic(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateIntent(&Intent{
		Tables:      []string{"transaction_accounting_line", "transaction_line"},
		Projections: []Projection{{Table: "transaction_accounting_line", Column: "amount"}},
		Joins: []joingraph.Predicate{
			{LeftTable: "transaction_accounting_line", LeftColumns: []string{"transaction_id"},
				RightTable: "transaction_line", RightColumns: []string{"transaction_id"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Diagnostics.Count(diag.MissingCompositeKeyPart) != 1 {
		t.Errorf("expected MissingCompositeKeyPart: %v", res.Diagnostics)
	}
}

func TestValidateIntentTypeChecks(t *testing.T) {
	v := testValidator(t)

	tests := []struct {
		name   string
		filter Filter
		kind   diag.Kind
		want   int
	}{
		{"string into number", Filter{Column: "transaction_id", Op: "=", Value: "'abc'"}, diag.TypeMismatch, 1},
		{"number into varchar", Filter{Column: "tran_id", Op: "=", Value: "42"}, diag.TypeMismatch, 1},
		{"number into timestamp", Filter{Column: "tran_date", Op: ">", Value: "20250801"}, diag.TypeMismatch, 1},
		{"shapeless string into timestamp", Filter{Column: "tran_date", Op: "=", Value: "'yesterday'"}, diag.TypeMismatch, 1},
		{"number into number", Filter{Column: "foreign_amount", Op: ">=", Value: "100.5"}, diag.TypeMismatch, 0},
		{"string into varchar", Filter{Column: "tran_id", Op: "=", Value: "'INV-1'"}, diag.TypeMismatch, 0},
		{"to_date into timestamp", Filter{Column: "tran_date", Op: "<", Value: "TO_DATE('2025-01-01', 'YYYY-MM-DD')"}, diag.TypeMismatch, 0},
		{"null check skips typing", Filter{Column: "tran_date", Op: "IS NULL", Value: ""}, diag.TypeMismatch, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateIntent(&Intent{
				Tables:      []string{"transaction"},
				Projections: []Projection{{Column: "tran_id"}},
				Filters:     []Filter{tt.filter},
			})
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Diagnostics.Count(tt.kind); got != tt.want {
				t.Errorf("got %d %s, want %d: %v", got, tt.kind, tt.want, res.Diagnostics)
			}
		})
	}
}

func TestValidateIntentDateShapedStringGoesToLinter(t *testing.T) {
	v := testValidator(t)

	// a date-shaped string against a TIMESTAMP column is not a type
	// mismatch; the dialect stage reports the more specific finding
	res, err := v.ValidateIntent(&Intent{
		Tables:      []string{"transaction"},
		Projections: []Projection{{Column: "tran_id"}},
		Filters:     []Filter{{Column: "tran_date", Op: ">=", Value: "'2025-08-01'"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Diagnostics.Has(diag.TypeMismatch) {
		t.Errorf("unexpected TypeMismatch: %v", res.Diagnostics)
	}
	if res.Diagnostics.Count(diag.InvalidDateLiteral) != 1 {
		t.Errorf("expected InvalidDateLiteral: %v", res.Diagnostics)
	}
}

func TestValidateIntentAccumulatesAcrossStages(t *testing.T) {
	v := testValidator(t)

	// unknown column, ambiguous join, and a dialect violation in one call
	res, err := v.ValidateIntent(&Intent{
		Tables: []string{"transaction", "employee"},
		Projections: []Projection{
			{Table: "transaction", Column: "invoice_number"},
			{Table: "transaction", Column: "tran_id"},
		},
		Filters: []Filter{
			{Table: "transaction", Column: "posting", Op: "=", Value: "'Y'"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusRejected {
		t.Fatal("expected a rejection")
	}
	for _, kind := range []diag.Kind{diag.UnknownColumn, diag.AmbiguousJoin, diag.InvalidBooleanLiteral} {
		if !res.Diagnostics.Has(kind) {
			t.Errorf("missing %s in %v", kind, res.Diagnostics)
		}
	}
}
