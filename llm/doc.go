// Package llm defines the transport contract between agents and LLM
// backends: a Provider interface with a synchronous Completion call and a
// channel-based Stream call, plus the request/response/chunk types shared
// by every provider implementation.
//
// The core never retries a transport failure; retry policy, if any,
// belongs to the provider implementation behind the interface.
package llm
