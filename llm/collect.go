package llm

import (
	"context"
	"strings"
)

// Collect drains a stream and returns the concatenation of all deltas.
// Partial output is not observable through Collect; callers that need
// fragments as they arrive should range over the channel themselves.
//
// A chunk-borne error aborts the fold and is returned as-is; context
// cancellation returns ctx.Err(). The channel is drained on the error
// paths so the producing goroutine is never blocked.
func Collect(ctx context.Context, ch <-chan StreamChunk) (string, error) {
	var sb strings.Builder
	for {
		select {
		case <-ctx.Done():
			go drain(ch)
			return "", ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				return sb.String(), nil
			}
			if chunk.Err != nil {
				go drain(ch)
				return "", chunk.Err
			}
			sb.WriteString(chunk.Delta)
		}
	}
}

func drain(ch <-chan StreamChunk) {
	for range ch {
	}
}

// StreamAndCollect is the common "one streaming call, fully drained"
// pattern used by every agent loop: issue the streaming request and fold
// the chunks into one response string.
func StreamAndCollect(ctx context.Context, p Provider, req *ChatRequest) (string, error) {
	ch, err := p.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	return Collect(ctx, ch)
}
