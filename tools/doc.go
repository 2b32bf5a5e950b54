// Package tools provides the capability contract shared by all agent
// tools, a dual-namespace registry with capability expansion, and the
// built-in file and web-search tools.
//
// Tools are independent of the agent loops; the registry is the
// composition point where an orchestrator looks capabilities up by name.
// The registry's Execute boundary never fails: tool errors and panics are
// converted into textual error results.
package tools
