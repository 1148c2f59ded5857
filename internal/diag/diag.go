/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package diag

import "fmt"

// Stage identifies the validation pipeline stage that produced a diagnostic
type Stage string

const (
	// StageNameResolution covers table and column name resolution
	StageNameResolution Stage = "name_resolution"
	// StageJoinValidation covers foreign-key join plan validation
	StageJoinValidation Stage = "join_validation"
	// StageDialect covers SuiteAnalytics Connect dialect linting
	StageDialect Stage = "dialect"
)

// Kind classifies a diagnostic so a generation/retry loop can react to it
// programmatically instead of parsing messages
type Kind string

const (
	// UnknownTable means no catalog table matched any name form
	UnknownTable Kind = "unknown_table"
	// UnknownColumn means no column of the resolved table matched any name form
	UnknownColumn Kind = "unknown_column"
	// AmbiguousJoin means more than one foreign-key edge connects a table pair
	// and the caller did not disambiguate with an explicit predicate
	AmbiguousJoin Kind = "ambiguous_join"
	// MissingCompositeKeyPart means a composite foreign-key group was only
	// partially bound by the supplied join predicates
	MissingCompositeKeyPart Kind = "missing_composite_key_part"
	// ForbiddenSyntax means the SQL text uses a construct the Connect
	// endpoint cannot execute (LIMIT, ROWNUM, DML, unbalanced quotes, ...)
	ForbiddenSyntax Kind = "forbidden_syntax"
	// InvalidDateLiteral means a date comparison does not use TO_DATE with
	// an explicit format string
	InvalidDateLiteral Kind = "invalid_date_literal"
	// InvalidBooleanLiteral means a flag column is compared against
	// something other than the 'T'/'F' literals
	InvalidBooleanLiteral Kind = "invalid_boolean_literal"
	// TypeMismatch means a filter literal does not fit the column's SQL type
	TypeMismatch Kind = "type_mismatch"
)

// Diagnostic is a single, structured validation finding. Diagnostics are
// returned to callers; they are never raised as errors because the expected
// caller is a retry loop that needs the complete set in one pass.
type Diagnostic struct {
	Stage         Stage  `json:"stage"`
	Kind          Kind   `json:"kind"`
	Message       string `json:"message"`
	TableOrColumn string `json:"table_or_column,omitempty"`
}

// Newf builds a diagnostic with a formatted message
func Newf(stage Stage, kind Kind, tableOrColumn, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Stage:         stage,
		Kind:          kind,
		Message:       fmt.Sprintf(format, args...),
		TableOrColumn: tableOrColumn,
	}
}

// String renders the diagnostic for logs and CLI output
func (d Diagnostic) String() string {
	if d.TableOrColumn != "" {
		return fmt.Sprintf("[%s] %s (%s): %s", d.Stage, d.Kind, d.TableOrColumn, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Stage, d.Kind, d.Message)
}

// List is an ordered collection of diagnostics
type List []Diagnostic

// Has reports whether the list contains a diagnostic of the given kind
func (l List) Has(kind Kind) bool {
	for _, d := range l {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// OfKind returns the diagnostics of the given kind, preserving order
func (l List) OfKind(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diagnostics of the given kind
func (l List) Count(kind Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
