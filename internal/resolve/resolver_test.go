/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package resolve

import (
	"testing"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/diag"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	return New(cat)
}

func TestTableResolvesAnyForm(t *testing.T) {
	r := testResolver(t)

	for _, name := range []string{"transaction_line", "TRANSACTION_LINES", "transactionline"} {
		tbl, d := r.Table(name)
		if d != nil {
			t.Errorf("Table(%q) diagnostic: %s", name, d)
			continue
		}
		if tbl.Canonical != "transaction_line" {
			t.Errorf("Table(%q) = %q", name, tbl.Canonical)
		}
	}
}

func TestTableUnknown(t *testing.T) {
	r := testResolver(t)
	tbl, d := r.Table("invoices")
	if tbl != nil || d == nil {
		t.Fatal("expected a diagnostic for an unknown table")
	}
	if d.Kind != diag.UnknownTable || d.Stage != diag.StageNameResolution {
		t.Errorf("got %s/%s", d.Stage, d.Kind)
	}
	if d.TableOrColumn != "invoices" {
		t.Errorf("diagnostic names %q", d.TableOrColumn)
	}
}

func TestColumnUnknown(t *testing.T) {
	r := testResolver(t)
	tbl, _ := r.Table("customer")
	col, d := r.Column(tbl, "account_balance")
	if col != nil || d == nil {
		t.Fatal("expected a diagnostic for an unknown column")
	}
	if d.Kind != diag.UnknownColumn {
		t.Errorf("kind = %s", d.Kind)
	}
}

func TestLiveOutputsLiveSpelling(t *testing.T) {
	r := testResolver(t)

	tests := []struct {
		table, column         string
		wantTable, wantColumn string
	}{
		{"TRANSACTIONS", "TRANSACTION_ID", "transaction", "id"},
		{"transaction", "tran_date", "transaction", "trandate"},
		{"transactionline", "amount", "transactionline", "amount"},
		{"CUSTOMERS", "COMPANY_NAME", "customer", "companyname"},
	}
	for _, tt := range tests {
		liveTable, liveColumn, diags := r.Live(tt.table, tt.column)
		if len(diags) != 0 {
			t.Errorf("Live(%s, %s) diagnostics: %v", tt.table, tt.column, diags)
			continue
		}
		if liveTable != tt.wantTable || liveColumn != tt.wantColumn {
			t.Errorf("Live(%s, %s) = %s.%s, want %s.%s",
				tt.table, tt.column, liveTable, liveColumn, tt.wantTable, tt.wantColumn)
		}
	}
}

// Every table and column must resolve from all three of its name forms,
// across the whole embedded catalog. Canonical and live column forms are
// unambiguous and must land on the exact column; a documented form shared
// by a declared synonym pair lands on the first column carrying it.
func TestEveryNameFormResolves(t *testing.T) {
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	r := New(cat)

	for _, tbl := range cat.Tables() {
		for _, form := range []string{tbl.Canonical, tbl.Documented, tbl.Live} {
			got, d := r.Table(form)
			if d != nil {
				t.Errorf("Table(%q) diagnostic: %s", form, d)
				continue
			}
			if got.Live != tbl.Live {
				t.Errorf("Table(%q) = %q, want %q", form, got.Live, tbl.Live)
			}
		}

		def, d := r.Table(tbl.Canonical)
		if d != nil {
			t.Fatalf("Table(%q) diagnostic: %s", tbl.Canonical, d)
		}
		for _, col := range tbl.Columns {
			for _, form := range []string{col.Canonical, col.Live} {
				got, d := r.Column(def, form)
				if d != nil {
					t.Errorf("Column(%s, %q) diagnostic: %s", tbl.Canonical, form, d)
					continue
				}
				if got.Live != col.Live {
					t.Errorf("Column(%s, %q) = %q, want %q", tbl.Canonical, form, got.Live, col.Live)
				}
			}
			got, d := r.Column(def, col.Documented)
			if d != nil {
				t.Errorf("Column(%s, %q) diagnostic: %s", tbl.Canonical, col.Documented, d)
				continue
			}
			if got.Documented != col.Documented {
				t.Errorf("Column(%s, %q) = %q, want documented form %q",
					tbl.Canonical, col.Documented, got.Documented, col.Documented)
			}
		}
	}
}

func TestLiveUnknownColumnKeepsTable(t *testing.T) {
	r := testResolver(t)
	liveTable, liveColumn, diags := r.Live("customer", "ghost")
	if liveTable != "customer" || liveColumn != "" {
		t.Errorf("got %q.%q", liveTable, liveColumn)
	}
	if !diags.Has(diag.UnknownColumn) {
		t.Error("expected UnknownColumn")
	}
}
