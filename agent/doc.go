// Package agent implements the agent runtimes: a plan-then-execute agent
// that decomposes a question into steps and runs them sequentially, and a
// reflection agent that iteratively critiques and refines its own answer.
//
// Both agents drive an llm.Provider through its streaming interface and
// keep a bounded conversation history. They share BaseAgent for identity,
// history, logging and tracing.
package agent
