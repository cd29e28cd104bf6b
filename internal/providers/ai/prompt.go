package ai

import "strings"

// workspaceInstructions teaches the model the directive syntax the
// parser extracts. It is appended to every system prompt.
const workspaceInstructions = `You can create visualizations in the user's workspace by embedding directives in your reply.

Charts:
{{chart:TYPE
title: Chart title
xAxis: X axis label
yAxis: Y axis label
categories: ["A", "B", "C"]
data: [{name: "Series 1", values: [1, 2, 3]}]
}}
TYPE is one of line, bar, column, pie, area, scatter, timeseries.

Tables:
{{table:
title: Table title
columns: ["Col 1", "Col 2"]
data: [
["r1c1", "r1c2"],
["r2c1", "r2c2"]
]
}}

Use a directive whenever data would be clearer as a chart or table. Keep explanatory prose outside the directive blocks.`

// buildSystemPrompt assembles the fixed-order system prompt: general
// instructions, role, persona, scenario, then the workspace syntax.
func buildSystemPrompt(instructions, role, persona, scenario string) string {
	var parts []string
	if instructions != "" {
		parts = append(parts, instructions)
	}
	if role != "" {
		parts = append(parts, role)
	}
	if persona != "" {
		parts = append(parts, "User Persona:\n"+persona)
	}
	if scenario != "" {
		parts = append(parts, "Current Scenario:\n"+scenario)
	}
	parts = append(parts, workspaceInstructions)
	return strings.Join(parts, "\n\n")
}
