package types

import "testing"

func TestMessage_Constructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  Message
		role Role
	}{
		{"system", NewSystemMessage("be brief"), RoleSystem},
		{"user", NewUserMessage("hello"), RoleUser},
		{"assistant", NewAssistantMessage("hi"), RoleAssistant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.msg.Role != tt.role {
				t.Fatalf("expected role %s, got %s", tt.role, tt.msg.Role)
			}
			if tt.msg.Content == "" {
				t.Fatalf("expected non-empty content")
			}
			if tt.msg.Timestamp.IsZero() {
				t.Fatalf("expected timestamp to be set")
			}
		})
	}
}

func TestMessage_Wire(t *testing.T) {
	t.Parallel()

	msg := NewUserMessage("query").WithMetadata(map[string]any{"step": 1})
	wire := msg.Wire()

	if wire.Role != RoleUser || wire.Content != "query" {
		t.Fatalf("unexpected wire message: %+v", wire)
	}

	wires := WireMessages([]Message{NewSystemMessage("a"), NewUserMessage("b")})
	if len(wires) != 2 || wires[0].Role != RoleSystem || wires[1].Content != "b" {
		t.Fatalf("unexpected wire slice: %+v", wires)
	}
}
