package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/miniagents/types"
)

func chunkChannel(chunks ...StreamChunk) <-chan StreamChunk {
	ch := make(chan StreamChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func TestCollect_ConcatenatesDeltas(t *testing.T) {
	t.Parallel()

	ch := chunkChannel(
		StreamChunk{Delta: "Hello"},
		StreamChunk{Delta: ", "},
		StreamChunk{Delta: "world"},
		StreamChunk{FinishReason: "stop"},
	)

	out, err := Collect(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", out)
}

func TestCollect_EmptyStream(t *testing.T) {
	t.Parallel()

	out, err := Collect(context.Background(), chunkChannel())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCollect_ChunkError(t *testing.T) {
	t.Parallel()

	upstream := types.NewError(types.ErrUpstreamError, "boom")
	ch := chunkChannel(
		StreamChunk{Delta: "partial"},
		StreamChunk{Err: upstream},
	)

	out, err := Collect(context.Background(), ch)
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
	assert.Empty(t, out, "partial output must not leak on error")
}

func TestCollect_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan StreamChunk) // never written, never closed
	_, err := Collect(ctx, ch)
	assert.ErrorIs(t, err, context.Canceled)
}
