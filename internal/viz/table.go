package viz

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/sandevgo/vizchat/pkg/log"
)

var (
	tableTitlePattern   = regexp.MustCompile(`(?m)^\s*title:\s*(.+?)\s*$`)
	tableColumnsPattern = regexp.MustCompile(`(?m)^\s*columns:\s*(.+?)\s*$`)
	bracketRowPattern   = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// parseTable applies a firm gate: without a title and at least one
// column the directive is discarded. Rows are recovered best effort,
// a table with zero rows is still valid.
func (p *Parser) parseTable(ctx context.Context, raw string) (Table, bool) {
	body := strings.TrimPrefix(raw, "{{table:")
	body = strings.TrimSuffix(body, "}}")

	dataBlock, rest := splitDataBlock(body)

	t := Table{ID: p.tableID(raw)}
	if m := tableTitlePattern.FindStringSubmatch(rest); m != nil {
		t.Title = m[1]
	}
	if m := tableColumnsPattern.FindStringSubmatch(rest); m != nil {
		t.Columns = parseStringList(ctx, normalizeQuotes(m[1]))
	}

	if t.Title == "" || len(t.Columns) == 0 {
		log.FromCtx(ctx).Debug().Str("title", t.Title).Int("columns", len(t.Columns)).
			Msg("table directive rejected, missing title or columns")
		return Table{}, false
	}

	t.Rows = parseRows(ctx, dataBlock)
	return t, true
}

// parseRows tries strict JSON on the whole block, then per-row bracket
// extraction, then line-by-line reconstruction.
func parseRows(ctx context.Context, block string) [][]string {
	if block == "" {
		return nil
	}

	if rows, ok := parseRowsStrict(block); ok {
		log.FromCtx(ctx).Debug().Str("tier", "json").Int("rows", len(rows)).Msg("table rows parsed")
		return rows
	}

	inner := strings.TrimSpace(block)
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")

	if matches := bracketRowPattern.FindAllString(inner, -1); len(matches) > 0 {
		rows := make([][]string, 0, len(matches))
		for _, m := range matches {
			if row := parseStringList(ctx, normalizeQuotes(m)); len(row) > 0 {
				rows = append(rows, row)
			}
		}
		if len(rows) > 0 {
			log.FromCtx(ctx).Debug().Str("tier", "brackets").Int("rows", len(rows)).Msg("table rows parsed")
			return rows
		}
	}

	var rows [][]string
	for _, line := range strings.Split(inner, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "[],")
		if line == "" {
			continue
		}
		if row := parseListNaive(line); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	log.FromCtx(ctx).Debug().Str("tier", "lines").Int("rows", len(rows)).Msg("table rows parsed")
	return rows
}

func parseRowsStrict(block string) ([][]string, bool) {
	cleaned := normalizeQuotes(block)
	cleaned = trailingCommaArray.ReplaceAllString(cleaned, "]")

	var vals [][]any
	if err := json.Unmarshal([]byte(cleaned), &vals); err != nil {
		return nil, false
	}
	rows := make([][]string, 0, len(vals))
	for _, rv := range vals {
		row := make([]string, 0, len(rv))
		for _, v := range rv {
			switch t := v.(type) {
			case string:
				row = append(row, t)
			case float64:
				row = append(row, formatNumber(t))
			case bool:
				if t {
					row = append(row, "true")
				} else {
					row = append(row, "false")
				}
			case nil:
				row = append(row, "")
			default:
				return nil, false
			}
		}
		rows = append(rows, row)
	}
	return rows, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// normalizeQuotes rewrites single-quoted items to double quotes so the
// JSON tier accepts them. Apostrophes inside double-quoted cells are
// left alone.
func normalizeQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inDouble := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			inDouble = !inDouble
			b.WriteByte(ch)
		case '\'':
			if inDouble {
				b.WriteByte(ch)
			} else {
				b.WriteByte('"')
			}
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
