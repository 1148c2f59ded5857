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
	"strings"
	"testing"

	"pgedge-netsuite-mcp/internal/diag"
)

func TestValidateSQLEmpty(t *testing.T) {
	v := testValidator(t)
	if _, err := v.ValidateSQL("   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestValidateSQLRewritesToLiveNames(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL(
		"SELECT TOP 5 TRANSACTIONS.TRAN_ID FROM TRANSACTIONS WHERE TRANSACTIONS.POSTING = 'T'")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
	want := "SELECT TOP 5 transaction.tranid FROM transaction WHERE transaction.posting = 'T'"
	if res.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", res.SQL, want)
	}
}

func TestValidateSQLKeepsAliasSpelling(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL(
		"SELECT t.TRAN_ID FROM TRANSACTIONS t JOIN CUSTOMERS c ON t.ENTITY_ID = c.CUSTOMER_ID")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
	want := "SELECT t.tranid FROM transaction t JOIN customer c ON t.entity = c.id"
	if res.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", res.SQL, want)
	}
}

func TestValidateSQLLimitIsSingleFinding(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL("SELECT tranid FROM transaction LIMIT 10")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusRejected {
		t.Fatal("expected a rejection")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != diag.ForbiddenSyntax {
		t.Errorf("expected exactly one ForbiddenSyntax, got %v", res.Diagnostics)
	}
}

func TestValidateSQLUnknownTable(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL("SELECT number FROM invoices")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Diagnostics.Has(diag.UnknownTable) {
		t.Errorf("missing UnknownTable: %v", res.Diagnostics)
	}
}

func TestValidateSQLUnknownColumn(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL("SELECT transaction.invoice_number FROM transaction")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Diagnostics.Has(diag.UnknownColumn) {
		t.Errorf("missing UnknownColumn: %v", res.Diagnostics)
	}
}

func TestValidateSQLUnknownQualifier(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL("SELECT x.tranid FROM transaction")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Diagnostics.Has(diag.UnknownTable) {
		t.Errorf("missing UnknownTable for unknown qualifier: %v", res.Diagnostics)
	}
}

func TestValidateSQLWithCTE(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL(
		"WITH recent AS (SELECT tranid FROM transaction) SELECT recent.tranid FROM recent")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
}

func TestValidateSQLChainedCTEsWithTable(t *testing.T) {
	v := testValidator(t)

	// CTE names stay opaque while the real table still resolves and
	// rewrites to its live spelling
	res, err := v.ValidateSQL(
		"WITH recent AS (SELECT tranid FROM transaction), " +
			"reps AS (SELECT id FROM employee) " +
			"SELECT recent.tranid, reps.id, t.TRAN_ID FROM recent, reps, TRANSACTIONS t")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
	if want := "FROM recent, reps, transaction t"; !strings.Contains(res.SQL, want) {
		t.Errorf("SQL = %q, want it to contain %q", res.SQL, want)
	}
	if want := "t.tranid"; !strings.Contains(res.SQL, want) {
		t.Errorf("SQL = %q, want it to contain %q", res.SQL, want)
	}
}

func TestValidateSQLCommaJoinDisambiguatedInWhere(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL(
		"SELECT transaction.tranid FROM transaction, employee " +
			"WHERE transaction.employee = employee.id")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
}

func TestValidateSQLWhereFilterIsNotAJoinPredicate(t *testing.T) {
	v := testValidator(t)

	// a cross-table equality that matches no foreign-key column pair must
	// stay a filter, so the comma join remains ambiguous
	res, err := v.ValidateSQL(
		"SELECT transaction.tranid FROM transaction, employee " +
			"WHERE transaction.memo = employee.entityid")
	if err != nil {
		t.Fatal(err)
	}
	if res.Diagnostics.Count(diag.AmbiguousJoin) != 1 {
		t.Errorf("expected AmbiguousJoin: %v", res.Diagnostics)
	}
}

func TestValidateSQLCommaJoinIsAmbiguous(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL("SELECT transaction.tranid FROM transaction, employee")
	if err != nil {
		t.Fatal(err)
	}
	if res.Diagnostics.Count(diag.AmbiguousJoin) != 1 {
		t.Errorf("expected AmbiguousJoin: %v", res.Diagnostics)
	}
}

func TestValidateSQLExplicitOnDisambiguates(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL(
		"SELECT t.tranid FROM transaction t JOIN employee e ON t.employee = e.id")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
}

func TestValidateSQLCompositeJoin(t *testing.T) {
	v := testValidator(t)

	partial := "SELECT tal.amount FROM transactionaccountingline tal " +
		"JOIN transactionline tl ON tal.transaction = tl.transaction"
	res, err := v.ValidateSQL(partial)
	if err != nil {
		t.Fatal(err)
	}
	if res.Diagnostics.Count(diag.MissingCompositeKeyPart) != 1 {
		t.Errorf("expected MissingCompositeKeyPart: %v", res.Diagnostics)
	}

	full := partial + " AND tal.transactionline = tl.id"
	res, err = v.ValidateSQL(full)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("full composite join rejected: %v", res.Diagnostics)
	}
}

func TestValidateSQLUnterminatedString(t *testing.T) {
	v := testValidator(t)

	res, err := v.ValidateSQL("SELECT tranid FROM transaction WHERE memo = 'open")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusRejected || !res.Diagnostics.Has(diag.ForbiddenSyntax) {
		t.Errorf("unterminated literal not rejected: %+v", res)
	}
}

func TestValidateSQLDocumentedJoinForms(t *testing.T) {
	v := testValidator(t)

	// table and column references entirely in documented spelling
	res, err := v.ValidateSQL(
		"SELECT TRANSACTION_LINES.AMOUNT FROM TRANSACTION_LINES " +
			"JOIN TRANSACTIONS ON TRANSACTION_LINES.TRANSACTION_ID = TRANSACTIONS.TRANSACTION_ID")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("rejected: %v", res.Diagnostics)
	}
	want := "SELECT transactionline.amount FROM transactionline " +
		"JOIN transaction ON transactionline.transaction = transaction.id"
	if res.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", res.SQL, want)
	}
}
