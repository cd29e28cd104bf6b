// Package viz extracts {{chart:...}} and {{table:...}} directives that
// models embed in their replies. Extraction is best effort per
// directive: malformed blocks are dropped without affecting siblings or
// the surrounding prose.
package viz

// Kind discriminates the visualization variants.
type Kind string

const (
	KindChart Kind = "chart"
	KindTable Kind = "table"
)

// ChartType is the plot family requested by a chart directive.
type ChartType string

const (
	ChartLine       ChartType = "line"
	ChartBar        ChartType = "bar"
	ChartColumn     ChartType = "column"
	ChartPie        ChartType = "pie"
	ChartArea       ChartType = "area"
	ChartScatter    ChartType = "scatter"
	ChartTimeseries ChartType = "timeseries"
)

// Visualization is what transports render in the workspace surface.
type Visualization interface {
	VizID() string
	VizKind() Kind
	VizTitle() string
}

// Series is one named run of numeric values.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Chart is a parsed chart directive. Fields the directive omitted stay
// zero: chart parsing is permissive and emits partial configurations.
type Chart struct {
	ID         string    `json:"id"`
	Type       ChartType `json:"type"`
	Title      string    `json:"title"`
	XAxisTitle string    `json:"xAxisTitle"`
	YAxisTitle string    `json:"yAxisTitle"`
	Categories []string  `json:"categories"`
	Series     []Series  `json:"series"`
}

func (c Chart) VizID() string    { return c.ID }
func (c Chart) VizKind() Kind    { return KindChart }
func (c Chart) VizTitle() string { return c.Title }

// Table is a parsed table directive. Tables are gated: anything that
// reaches a caller has a title and at least one column.
type Table struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (t Table) VizID() string    { return t.ID }
func (t Table) VizKind() Kind    { return KindTable }
func (t Table) VizTitle() string { return t.Title }

// Result is the outcome of parsing one assistant reply.
type Result struct {
	// Text is the reply with every directive span replaced by a
	// placeholder sentence.
	Text string
	// Visualizations holds the successfully parsed directives in
	// document order.
	Visualizations []Visualization
}
