package core

import "time"

const (
	AppName = "vizchat"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation as sent to a provider.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ModelOption describes one selectable model in an adapter's catalog.
type ModelOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ContextCategory names one of the three context resource groups.
type ContextCategory string

const (
	CategoryRole     ContextCategory = "roles"
	CategoryPersona  ContextCategory = "personas"
	CategoryScenario ContextCategory = "scenarios"
)

// ContextOptions lists the resource names available per category.
type ContextOptions struct {
	Roles     []string `json:"roles"`
	Personas  []string `json:"personas"`
	Scenarios []string `json:"scenarios"`
}

// ContextSelection names the resources an adapter should load. Empty
// fields mean "first available".
type ContextSelection struct {
	Role     string
	Persona  string
	Scenario string
}
