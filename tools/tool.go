package tools

import "context"

// ToolParameter describes one declared parameter of a tool. The
// declaration is purely descriptive metadata for prompt construction; the
// registry never validates call arguments against it.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

// Tool is a named capability with declared parameters and a text-in/
// text-out invocation.
type Tool interface {
	// Name returns the tool's name, unique within a registry.
	Name() string
	// Description returns a short human-readable description.
	Description() string
	// Run invokes the tool with the given parameters and returns text.
	Run(ctx context.Context, params map[string]any) (string, error)
	// Parameters returns the declared parameter set.
	Parameters() []ToolParameter
}

// Expander is implemented by tools that expand into several independently
// addressable sub-tools. Expansion replaces the parent in the registry:
// the sub-tools register under their own names and the parent does not.
// An expansion yielding zero tools falls back to registering the parent.
type Expander interface {
	Expand() []Tool
}

// Func is a raw callable registered alongside full tools. It receives the
// caller's input text and returns text.
type Func func(ctx context.Context, input string) (string, error)
