package viz

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sandevgo/vizchat/pkg/log"
)

var barewordSeriesKey = regexp.MustCompile(`([,{[]\s*|^\s*)(name|values)\s*:`)

// parseChart is permissive: any field it cannot recover is left zero
// and the chart is still emitted. Only a panic drops it, and Parse
// absorbs that.
func (p *Parser) parseChart(ctx context.Context, typ ChartType, body string) (Chart, bool) {
	c := Chart{
		ID:   p.chartID(),
		Type: typ,
	}

	dataBlock, rest := splitDataBlock(body)

	for _, line := range strings.Split(rest, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "title":
			c.Title = value
		case "xAxis":
			c.XAxisTitle = value
		case "yAxis":
			c.YAxisTitle = value
		case "categories":
			c.Categories = parseStringList(ctx, value)
		}
	}

	if dataBlock != "" {
		series, err := parseSeries(dataBlock)
		if err != nil {
			log.FromCtx(ctx).Debug().Err(err).Str("type", string(typ)).
				Msg("chart data block unparseable, emitting chart without series")
		}
		c.Series = series
	}
	return c, true
}

// splitDataBlock cuts the balanced [...] that follows "data:" out of
// the body, returning the block and the body without it.
func splitDataBlock(body string) (block, rest string) {
	idx := strings.Index(body, "data:")
	if idx < 0 {
		return "", body
	}
	open := strings.Index(body[idx:], "[")
	if open < 0 {
		return "", body
	}
	open += idx
	depth := 0
	for i := open; i < len(body); i++ {
		switch body[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return body[open : i+1], body[:idx] + body[i+1:]
			}
		}
	}
	return "", body
}

// parseSeries reads the data block as JSON after normalizing bareword
// name/values keys and trailing commas.
func parseSeries(block string) ([]Series, error) {
	normalized := barewordSeriesKey.ReplaceAllString(block, `$1"$2":`)
	normalized = trailingCommaArray.ReplaceAllString(normalized, "]")
	normalized = trailingCommaObj.ReplaceAllString(normalized, "}")

	var series []Series
	if err := json.Unmarshal([]byte(normalized), &series); err != nil {
		return nil, err
	}
	return series, nil
}
