/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package schemadoc imports table definitions from saved Connect Browser
// HTML pages. The browser documents each record on its own page: an
// underscored table name, a column table with types and descriptions, and
// the declared join fields. The importer produces skeleton definitions in
// documented spelling; the canonical and live names are assigned during
// curation before the table enters a release.
package schemadoc

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pgedge-netsuite-mcp/internal/catalog"
)

// ImportedTable is one table scraped from a Connect Browser page, plus the
// join fields the page declares
type ImportedTable struct {
	Table catalog.TableDef
	Edges []catalog.ForeignKeyEdge
}

// typePattern matches documented column types like VARCHAR2(100) and
// NUMBER(20, 2)
var typePattern = regexp.MustCompile(`(?i)^(VARCHAR2|NUMBER|TIMESTAMP)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?$`)

// joinPattern matches the browser's join notation:
// TABLE_A.FIELD = TABLE_B.FIELD
var joinPattern = regexp.MustCompile(`^\s*(\w+)\.(\w+)\s*=\s*(\w+)\.(\w+)\s*$`)

// ImportFile imports one saved Connect Browser page
func ImportFile(path string) (*ImportedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	imported, err := Import(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return imported, nil
}

// Import parses a Connect Browser page from a reader
func Import(r io.Reader) (*ImportedTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	documented := strings.TrimSpace(doc.Find("h1").First().Text())
	if documented == "" {
		return nil, fmt.Errorf("page has no table heading")
	}

	imported := &ImportedTable{
		Table: catalog.TableDef{
			Documented:  documented,
			Canonical:   strings.ToLower(documented),
			Description: strings.TrimSpace(doc.Find("h1").First().NextFiltered("p").Text()),
		},
	}

	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		headers := headerCells(tbl)
		switch {
		case contains(headers, "name") && contains(headers, "type"):
			imported.Table.Columns = append(imported.Table.Columns, parseColumns(tbl, headers)...)
		case contains(headers, "join"):
			imported.Edges = append(imported.Edges, parseJoins(tbl, documented)...)
		}
	})

	if len(imported.Table.Columns) == 0 {
		return nil, fmt.Errorf("page for %s lists no columns", documented)
	}
	return imported, nil
}

// headerCells returns the lower-cased header texts of a table
func headerCells(tbl *goquery.Selection) []string {
	var headers []string
	tbl.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(cell.Text())))
	})
	return headers
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// parseColumns reads the column table. Header order varies between browser
// releases, so cells are mapped by header name.
func parseColumns(tbl *goquery.Selection, headers []string) []catalog.ColumnDef {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}

	var cols []catalog.ColumnDef
	tbl.Find("tr").Each(func(rowNum int, row *goquery.Selection) {
		if rowNum == 0 {
			return // header row
		}
		cells := row.Find("td").Map(func(_ int, c *goquery.Selection) string {
			return strings.TrimSpace(c.Text())
		})
		if len(cells) < 2 {
			return
		}

		cell := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(cells) {
				return ""
			}
			return cells[i]
		}

		documented := cell("name")
		if documented == "" {
			return
		}
		col := catalog.ColumnDef{
			Documented:  documented,
			Canonical:   strings.ToLower(documented),
			Description: cell("description"),
		}
		applyType(&col, cell("type"))
		cols = append(cols, col)
	})
	return cols
}

// applyType fills the SQL type fields from a documented type string
func applyType(col *catalog.ColumnDef, typeText string) {
	m := typePattern.FindStringSubmatch(typeText)
	if m == nil {
		// unknown types arrive as plain VARCHAR2, curation sorts them out
		col.Type = catalog.TypeVarchar2
		return
	}
	switch strings.ToUpper(m[1]) {
	case "VARCHAR2":
		col.Type = catalog.TypeVarchar2
		if m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				col.Length = &n
			}
		}
	case "NUMBER":
		col.Type = catalog.TypeNumber
		if m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				col.Precision = &n
			}
		}
		if m[3] != "" {
			if n, err := strconv.Atoi(m[3]); err == nil {
				col.Scale = &n
			}
		}
	case "TIMESTAMP":
		col.Type = catalog.TypeTimestamp
	}
}

// parseJoins reads the join table. Each row holds one equality in the
// browser's TABLE.FIELD = TABLE.FIELD notation; rows that do not involve
// this page's table are skipped.
func parseJoins(tbl *goquery.Selection, documented string) []catalog.ForeignKeyEdge {
	var edges []catalog.ForeignKeyEdge
	tbl.Find("tr").Each(func(rowNum int, row *goquery.Selection) {
		if rowNum == 0 {
			return
		}
		text := strings.TrimSpace(row.Find("td").First().Text())
		m := joinPattern.FindStringSubmatch(text)
		if m == nil {
			return
		}
		fromTable, fromCol, toTable, toCol := m[1], m[2], m[3], m[4]
		if !strings.EqualFold(fromTable, documented) && !strings.EqualFold(toTable, documented) {
			return
		}
		edges = append(edges, catalog.ForeignKeyEdge{
			FromTable:   strings.ToLower(fromTable),
			FromColumns: []string{strings.ToLower(fromCol)},
			ToTable:     strings.ToLower(toTable),
			ToColumns:   []string{strings.ToLower(toCol)},
			Group:       fmt.Sprintf("fk_%s_%s", strings.ToLower(fromTable), strings.ToLower(fromCol)),
		})
	})
	return edges
}

// Merge adds an imported table to a definition, replacing an existing
// table with the same documented name. Edges are appended only when their
// group is new.
func Merge(def *catalog.Definition, imported *ImportedTable) {
	replaced := false
	for i, t := range def.Tables {
		if strings.EqualFold(t.Documented, imported.Table.Documented) {
			def.Tables[i] = imported.Table
			replaced = true
			break
		}
	}
	if !replaced {
		def.Tables = append(def.Tables, imported.Table)
	}

	known := make(map[string]bool, len(def.ForeignKeys))
	for _, e := range def.ForeignKeys {
		known[e.Group] = true
	}
	for _, e := range imported.Edges {
		if !known[e.Group] {
			def.ForeignKeys = append(def.ForeignKeys, e)
			known[e.Group] = true
		}
	}
}
