package tools

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// Registration followed by lookup must round-trip for arbitrary names,
// and unregistration must remove the name from every namespace.
func TestRegistry_RegistrationRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z][a-z0-9_]{0,30}`).Draw(rt, "name")

		r := NewRegistry(nil)
		if err := r.RegisterTool(&staticTool{name: name, output: "ok"}, true); err != nil {
			rt.Fatalf("register failed: %v", err)
		}

		got, ok := r.GetTool(name)
		if !ok {
			rt.Fatalf("tool %q not found after registration", name)
		}
		if got.Name() != name {
			rt.Fatalf("got name %q, want %q", got.Name(), name)
		}

		if !r.Unregister(name) {
			rt.Fatalf("unregister of %q reported absent", name)
		}
		if _, ok := r.GetTool(name); ok {
			rt.Fatalf("tool %q still present after unregister", name)
		}
	})
}

// Execute must return a string for any input, never panic, regardless of
// the registered tool's behavior.
func TestRegistry_ExecuteTotal(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		behavior := rapid.SampledFrom([]string{"ok", "error", "panic"}).Draw(rt, "behavior")
		target := rapid.SampledFrom([]string{"known", "unknown"}).Draw(rt, "target")

		tool := &staticTool{name: "known", output: "fine"}
		switch behavior {
		case "error":
			tool.err = fmt.Errorf("synthetic failure")
		case "panic":
			tool.panicMsg = "synthetic panic"
		}

		r := NewRegistry(nil)
		if err := r.RegisterTool(tool, true); err != nil {
			rt.Fatalf("register failed: %v", err)
		}

		out := r.Execute(context.Background(), target, nil)
		if target == "known" && behavior == "ok" && out != "fine" {
			rt.Fatalf("got %q, want %q", out, "fine")
		}
		if target == "unknown" && out == "fine" {
			rt.Fatalf("unknown tool produced a success result")
		}
	})
}
