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
	quotedItemPattern  = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'`)
	trailingCommaArray = regexp.MustCompile(`,\s*\]`)
	trailingCommaObj   = regexp.MustCompile(`,\s*\}`)
)

// parseStringList turns a loosely formatted list literal into strings.
// It tries three tiers in order: strict JSON, quoted-item extraction,
// then a naive comma split. The winning tier is logged at debug level.
func parseStringList(ctx context.Context, raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.HasPrefix(raw, "[") {
		raw = "[" + raw + "]"
	}

	if items, ok := parseListStrict(raw); ok {
		log.FromCtx(ctx).Debug().Str("tier", "json").Msg("list parsed")
		return items
	}
	if items, ok := parseListQuoted(raw); ok {
		log.FromCtx(ctx).Debug().Str("tier", "quoted").Msg("list parsed")
		return items
	}
	items := parseListNaive(raw)
	log.FromCtx(ctx).Debug().Str("tier", "split").Msg("list parsed")
	return items
}

func parseListStrict(raw string) ([]string, bool) {
	cleaned := trailingCommaArray.ReplaceAllString(raw, "]")
	var vals []any
	if err := json.Unmarshal([]byte(cleaned), &vals); err != nil {
		return nil, false
	}
	items := make([]string, 0, len(vals))
	for _, v := range vals {
		switch t := v.(type) {
		case string:
			items = append(items, t)
		case float64:
			items = append(items, strconv.FormatFloat(t, 'f', -1, 64))
		case bool:
			items = append(items, strconv.FormatBool(t))
		default:
			return nil, false
		}
	}
	return items, true
}

// parseListQuoted collects every quoted run, tolerating escaped quotes
// the model left in from a JSON string context.
func parseListQuoted(raw string) ([]string, bool) {
	unescaped := strings.ReplaceAll(raw, `\"`, `"`)
	matches := quotedItemPattern.FindAllStringSubmatch(unescaped, -1)
	if len(matches) == 0 {
		return nil, false
	}
	items := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[0][0] == '"' {
			items = append(items, m[1])
		} else {
			items = append(items, m[2])
		}
	}
	return items, true
}

func parseListNaive(raw string) []string {
	raw = strings.Trim(raw, "[]")
	var items []string
	for _, part := range strings.Split(raw, ",") {
		item := strings.Trim(strings.TrimSpace(part), `"'`)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
