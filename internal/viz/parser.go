package viz

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/vizchat/pkg/log"
)

const (
	chartPlaceholder = "[Chart visualization created]"
	tablePlaceholder = "[Data table created]"
)

var chartPattern = regexp.MustCompile(
	`(?s)\{\{chart:(line|bar|column|pie|area|scatter|timeseries)\s(.*?)\}\}`)

// Parser turns assistant replies into placeholder text plus extracted
// visualizations. It is safe for concurrent use.
type Parser struct {
	now func() time.Time
	rnd func() int
}

func NewParser() *Parser {
	return &Parser{
		now: time.Now,
		rnd: func() int { return rand.Intn(1000) },
	}
}

// Parse never fails: on panic it logs and returns the input untouched.
func (p *Parser) Parse(ctx context.Context, content string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Error().Any("panic", r).Msg("visualization parse panicked")
			res = Result{Text: content}
		}
	}()

	spans := p.findSpans(ctx, content)
	if len(spans) == 0 {
		return Result{Text: content}
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(content[last:s.start])
		b.WriteString(s.placeholder)
		if s.viz != nil {
			res.Visualizations = append(res.Visualizations, s.viz)
		}
		last = s.end
	}
	b.WriteString(content[last:])
	res.Text = b.String()
	return res
}

type span struct {
	start, end  int
	placeholder string
	viz         Visualization
}

func (p *Parser) findSpans(ctx context.Context, content string) []span {
	var spans []span

	for _, m := range chartPattern.FindAllStringSubmatchIndex(content, -1) {
		typ := ChartType(content[m[2]:m[3]])
		body := content[m[4]:m[5]]
		s := span{start: m[0], end: m[1], placeholder: chartPlaceholder}
		if c, ok := p.parseChart(ctx, typ, body); ok {
			s.viz = c
		}
		spans = append(spans, s)
	}

	for _, loc := range findTableSpans(content) {
		s := span{start: loc[0], end: loc[1], placeholder: tablePlaceholder}
		raw := content[loc[0]:loc[1]]
		if t, ok := p.parseTable(ctx, raw); ok {
			s.viz = t
		}
		spans = append(spans, s)
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	// Chart and table spans cannot nest, but guard against overlap anyway.
	out := spans[:0]
	end := -1
	for _, s := range spans {
		if s.start < end {
			continue
		}
		out = append(out, s)
		end = s.end
	}
	return out
}

// findTableSpans locates {{table: ... }} spans, honoring bracket
// nesting inside the body so rows full of commas and brackets do not
// end the span early.
func findTableSpans(content string) [][2]int {
	const open = "{{table:"
	var spans [][2]int
	for i := 0; i+len(open) <= len(content); {
		j := strings.Index(content[i:], open)
		if j < 0 {
			break
		}
		start := i + j
		depth := 0
		end := -1
		for k := start + len(open); k < len(content); k++ {
			switch content[k] {
			case '[':
				depth++
			case ']':
				depth--
			case '}':
				if depth <= 0 && k+1 < len(content) && content[k+1] == '}' {
					end = k + 2
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			break
		}
		spans = append(spans, [2]int{start, end})
		i = end
	}
	return spans
}

func (p *Parser) chartID() string {
	return fmt.Sprintf("chart-%d-%d", p.now().UnixMilli(), p.rnd())
}

func (p *Parser) tableID(raw string) string {
	h := fnv.New32a()
	h.Write([]byte(raw))
	return fmt.Sprintf("table-%d-%x", p.now().UnixMilli(), h.Sum32())
}
