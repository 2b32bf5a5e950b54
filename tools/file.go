package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/miniagents/types"
)

// FileTool reads and writes local files, optionally confined to a base
// directory. It expands into two independently addressable sub-tools,
// file_read and file_write; the unexpanded parent dispatches on an
// "action" parameter instead.
type FileTool struct {
	baseDir string // absolute, symlink-resolved; empty means unconfined
	logger  *zap.Logger
}

// NewFileTool creates a file tool. When baseDir is non-empty, every path
// handed to the tool must resolve to a location inside it.
func NewFileTool(baseDir string, logger *zap.Logger) (*FileTool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &FileTool{logger: logger}
	if baseDir != "" {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, types.NewError(types.ErrInvalidConfig, "resolve base directory").WithCause(err)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		t.baseDir = abs
	}
	return t, nil
}

// Name implements Tool.
func (t *FileTool) Name() string { return "file_tool" }

// Description implements Tool.
func (t *FileTool) Description() string { return "Read and write local files." }

// Parameters implements Tool.
func (t *FileTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "action", Type: "string", Description: "Action to perform: read or write", Required: true},
		{Name: "path", Type: "string", Description: "File path", Required: true},
		{Name: "content", Type: "string", Description: "Content to write", Required: false},
	}
}

// Run dispatches on the "action" parameter.
func (t *FileTool) Run(ctx context.Context, params map[string]any) (string, error) {
	path := stringParam(params, "path", "file")
	switch strings.ToLower(stringParam(params, "action")) {
	case "read":
		return t.read(ctx, path)
	case "write":
		return t.write(ctx, path, stringParam(params, "content"))
	default:
		return "", types.NewError(types.ErrInvalidRequest, "unsupported action: expected read or write")
	}
}

// Expand implements Expander: file_read and file_write share the parent's
// base directory confinement.
func (t *FileTool) Expand() []Tool {
	return []Tool{
		&fileReadTool{parent: t},
		&fileWriteTool{parent: t},
	}
}

// resolve validates a candidate path. With a base directory configured,
// the candidate is joined to it, resolved, and must still lie inside it;
// symlinks on the existing portion of the path are followed before the
// containment check so a link inside the base cannot point back out.
func (t *FileTool) resolve(raw string) (string, error) {
	if raw == "" {
		return "", types.NewError(types.ErrInvalidRequest, "file path is required")
	}
	if t.baseDir == "" {
		return filepath.Abs(raw)
	}

	target := filepath.Join(t.baseDir, raw)
	if !within(t.baseDir, target) {
		return "", types.NewErrorf(types.ErrPathOutsideBase, "path outside base directory: %s", raw)
	}
	resolved, err := resolveExisting(target)
	if err != nil {
		return "", types.NewError(types.ErrInvalidRequest, "resolve path").WithCause(err)
	}
	if !within(t.baseDir, resolved) {
		return "", types.NewErrorf(types.ErrPathOutsideBase, "path outside base directory: %s", raw)
	}
	return resolved, nil
}

func (t *FileTool) read(_ context.Context, path string) (string, error) {
	target, err := t.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", types.NewErrorf(types.ErrFileNotFound, "file not found: %s", target)
		}
		return "", types.NewError(types.ErrUpstreamError, "read file").WithCause(err)
	}
	t.logger.Debug("file read", zap.String("path", target), zap.Int("bytes", len(data)))
	return string(data), nil
}

func (t *FileTool) write(_ context.Context, path, content string) (string, error) {
	target, err := t.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", types.NewError(types.ErrUpstreamError, "create parent directories").WithCause(err)
	}
	// Always a truncating write; the tool never appends.
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return "", types.NewError(types.ErrUpstreamError, "write file").WithCause(err)
	}
	t.logger.Debug("file written", zap.String("path", target), zap.Int("bytes", len(content)))
	return fmt.Sprintf("OK: wrote %s", target), nil
}

// within reports whether p lies under base after lexical resolution.
func within(base, p string) bool {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExisting follows symlinks on the deepest existing ancestor of
// path and rejoins the remaining, not-yet-existing suffix.
func resolveExisting(path string) (string, error) {
	suffix := ""
	p := path
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		suffix = filepath.Join(filepath.Base(p), suffix)
		parent := filepath.Dir(p)
		if parent == p {
			return path, nil
		}
		p = parent
	}
}

func stringParam(params map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := params[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			return fmt.Sprint(v)
		}
	}
	return ""
}

// --- sub-tools ---

type fileReadTool struct {
	parent *FileTool
}

func (t *fileReadTool) Name() string        { return "file_read" }
func (t *fileReadTool) Description() string { return "Read a file" }

func (t *fileReadTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "path", Type: "string", Description: "File path", Required: true},
	}
}

func (t *fileReadTool) Run(ctx context.Context, params map[string]any) (string, error) {
	return t.parent.read(ctx, stringParam(params, "path", "file"))
}

type fileWriteTool struct {
	parent *FileTool
}

func (t *fileWriteTool) Name() string        { return "file_write" }
func (t *fileWriteTool) Description() string { return "Write to a file" }

func (t *fileWriteTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "path", Type: "string", Description: "File path", Required: true},
		{Name: "content", Type: "string", Description: "Content to write", Required: false},
	}
}

func (t *fileWriteTool) Run(ctx context.Context, params map[string]any) (string, error) {
	return t.parent.write(ctx, stringParam(params, "path", "file"), stringParam(params, "content"))
}
