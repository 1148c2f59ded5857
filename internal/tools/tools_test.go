/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"pgedge-netsuite-mcp/internal/learning"
	"pgedge-netsuite-mcp/internal/mcp"
	"pgedge-netsuite-mcp/internal/validate"
)

func testLearningStore(t *testing.T) *learning.Store {
	t.Helper()
	store, err := learning.NewStore(filepath.Join(t.TempDir(), "learning.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestValidateQueryToolApproves(t *testing.T) {
	tool := ValidateQueryTool(testProvider(t), nil, validate.DefaultLimits)

	resp, err := tool.Handler(context.Background(), map[string]interface{}{
		"sql": "SELECT TOP 5 TRAN_ID FROM TRANSACTIONS",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.IsError {
		t.Fatalf("error response: %s", responseText(t, resp))
	}
	text := responseText(t, resp)
	if !strings.Contains(text, `"status": "approved"`) {
		t.Errorf("response does not report approval: %s", text)
	}
	if !strings.Contains(text, "FROM transaction") {
		t.Errorf("approved SQL not rewritten to live names: %s", text)
	}
}

func TestValidateQueryToolReportsDiagnostics(t *testing.T) {
	tool := ValidateQueryTool(testProvider(t), nil, validate.DefaultLimits)

	resp, err := tool.Handler(context.Background(), map[string]interface{}{
		"sql": "SELECT tranid FROM transaction LIMIT 10",
	})
	if err != nil {
		t.Fatal(err)
	}
	text := responseText(t, resp)
	if !strings.Contains(text, `"status": "rejected"`) || !strings.Contains(text, "forbidden_syntax") {
		t.Errorf("diagnostics missing: %s", text)
	}
}

func TestValidateQueryToolIntent(t *testing.T) {
	tool := ValidateQueryTool(testProvider(t), nil, validate.DefaultLimits)

	resp, err := tool.Handler(context.Background(), map[string]interface{}{
		"intent": map[string]interface{}{
			"tables":      []interface{}{"TRANSACTIONS"},
			"projections": []interface{}{map[string]interface{}{"column": "TRAN_ID"}},
			"top":         5,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	text := responseText(t, resp)
	if !strings.Contains(text, "SELECT TOP 5 tranid FROM transaction") {
		t.Errorf("intent not rendered: %s", text)
	}
}

func TestValidateQueryToolRecordsOutcome(t *testing.T) {
	store := testLearningStore(t)
	tool := ValidateQueryTool(testProvider(t), store, validate.DefaultLimits)

	_, err := tool.Handler(context.Background(), map[string]interface{}{
		"sql":      "SELECT tranid FROM transaction LIMIT 10",
		"question": "first ten invoices",
	})
	if err != nil {
		t.Fatal(err)
	}

	records, err := store.RecentRejections(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Question != "first ten invoices" {
		t.Errorf("outcome not recorded: %+v", records)
	}
}

func TestValidateQueryToolRequiresInput(t *testing.T) {
	tool := ValidateQueryTool(testProvider(t), nil, validate.DefaultLimits)
	resp, err := tool.Handler(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsError {
		t.Error("expected an error without sql or intent")
	}
}

func TestListTablesTool(t *testing.T) {
	tool := ListTablesTool(testProvider(t))

	resp, err := tool.Handler(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	text := responseText(t, resp)
	if !strings.Contains(text, "Schema release: 2025.2") {
		t.Errorf("release missing: %s", text)
	}
	for _, want := range []string{"transaction_line", "TRANSACTION_LINES", "transactionline"} {
		if !strings.Contains(text, want) {
			t.Errorf("name form %q missing", want)
		}
	}

	resp, err = tool.Handler(context.Background(), map[string]interface{}{"domain": "entities"})
	if err != nil {
		t.Fatal(err)
	}
	text = responseText(t, resp)
	if !strings.Contains(text, "customer") || strings.Contains(text, "TRANSACTION_LINES") {
		t.Errorf("domain filter not applied: %s", text)
	}

	resp, _ = tool.Handler(context.Background(), map[string]interface{}{"domain": "nosuch"})
	if !resp.IsError {
		t.Error("expected an error for an unmatched domain")
	}
}

func TestDescribeTableTool(t *testing.T) {
	tool := DescribeTableTool(testProvider(t))

	resp, err := tool.Handler(context.Background(), map[string]interface{}{"table": "TRANSACTION_LINES"})
	if err != nil {
		t.Fatal(err)
	}
	text := responseText(t, resp)
	if !strings.Contains(text, "Table transaction_line (documented TRANSACTION_LINES, live transactionline)") {
		t.Errorf("header missing: %s", text)
	}
	if !strings.Contains(text, "Primary key: transaction_id, transaction_line_id") {
		t.Errorf("primary key missing: %s", text)
	}
	if !strings.Contains(text, "T/F") {
		t.Errorf("flag column marker missing: %s", text)
	}
	if !strings.Contains(text, "fk_transaction_line_transaction") {
		t.Errorf("foreign keys missing: %s", text)
	}

	resp, _ = tool.Handler(context.Background(), map[string]interface{}{"table": "invoices"})
	if !resp.IsError {
		t.Error("expected an error for an unknown table")
	}
}

func TestExplainJoinsTool(t *testing.T) {
	tool := ExplainJoinsTool(testProvider(t))

	resp, err := tool.Handler(context.Background(), map[string]interface{}{
		"tables": []interface{}{"TRANSACTIONS", "transaction_line"},
	})
	if err != nil {
		t.Fatal(err)
	}
	text := responseText(t, resp)
	if resp.IsError || !strings.Contains(text, "transaction_line(transaction_id) -> transaction(transaction_id)") {
		t.Errorf("join step missing: %s", text)
	}

	// ambiguous pair comes back as diagnostics
	resp, err = tool.Handler(context.Background(), map[string]interface{}{
		"tables": []interface{}{"transaction", "employee"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsError || !strings.Contains(responseText(t, resp), "ambiguous_join") {
		t.Errorf("ambiguity not reported: %s", responseText(t, resp))
	}
}

func TestQueryMirrorToolWithoutMirror(t *testing.T) {
	tool := QueryMirrorTool(testProvider(t), nil, nil)

	// a valid query without a mirror reports the mirror, not the query
	resp, err := tool.Handler(context.Background(), map[string]interface{}{
		"sql": "SELECT TOP 5 tranid FROM transaction",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsError || responseText(t, resp) != mcp.MirrorNotReadyError {
		t.Errorf("unexpected response: %s", responseText(t, resp))
	}

	// a rejected query reports diagnostics before the mirror is consulted
	resp, err = tool.Handler(context.Background(), map[string]interface{}{
		"sql": "SELECT tranid FROM transaction LIMIT 10",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(responseText(t, resp), "forbidden_syntax") {
		t.Errorf("diagnostics missing: %s", responseText(t, resp))
	}
}

func TestRecordFeedbackTool(t *testing.T) {
	store := testLearningStore(t)
	rec, err := store.RecordValidation("", "SELECT 1 FROM transaction", "approved", nil, "2025.2")
	if err != nil {
		t.Fatal(err)
	}

	tool := RecordFeedbackTool(store)
	resp, err := tool.Handler(context.Background(), map[string]interface{}{
		"validation_id": rec.ID,
		"verdict":       "correct",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.IsError {
		t.Fatalf("error response: %s", responseText(t, resp))
	}

	resp, _ = tool.Handler(context.Background(), map[string]interface{}{
		"validation_id": rec.ID,
		"verdict":       "maybe",
	})
	if !resp.IsError {
		t.Error("unknown verdict accepted")
	}

	resp, _ = tool.Handler(context.Background(), map[string]interface{}{
		"validation_id": "val_missing",
		"verdict":       "correct",
	})
	if !resp.IsError {
		t.Error("feedback on a missing validation accepted")
	}

	resp, _ = RecordFeedbackTool(nil).Handler(context.Background(), map[string]interface{}{
		"validation_id": rec.ID,
		"verdict":       "correct",
	})
	if !resp.IsError {
		t.Error("nil store accepted")
	}
}
