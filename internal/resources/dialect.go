/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package resources

// DialectRules is the reference card for the SuiteAnalytics Connect SQL
// dialect, served as a resource so agents can keep it in context.
const DialectRules = `# SuiteAnalytics Connect dialect

Only SELECT statements are accepted. One statement per request; no
semicolons, no DML, no DDL.

## Pagination

Use SELECT TOP n. These are all rejected:

- LIMIT n
- ROWNUM <= n
- FETCH FIRST n ROWS ONLY

## Dates

Every date literal goes through TO_DATE with an explicit format:

    WHERE trandate >= TO_DATE('2025-01-01', 'YYYY-MM-DD')

Bare date strings in comparisons ('2025-01-01') are rejected.

## Booleans

There is no boolean type. Flag columns hold the single-character strings
'T' and 'F':

    WHERE isinactive = 'F'

TRUE, FALSE, 0, and 1 are rejected against flag columns.

## Strings

Single quotes only. Escape an embedded quote by doubling it: 'O''Brien'.
Double quotes delimit identifiers, not strings.

## Joins

There are no implicit relationships. Join only along declared foreign-key
edges; when two tables share more than one edge the query must pick one
explicitly, and a composite key must bind every column of the key.
`
