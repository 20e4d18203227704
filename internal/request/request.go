package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingToolName is returned by Decode when the payload parses but names no tool.
var ErrMissingToolName = errors.New("hook payload has no tool_name")

// ToolKind is the closed set of tool types the guard knows how to route.
type ToolKind int

const (
	ToolUnknown ToolKind = iota
	ToolBash
	ToolRead
	ToolEdit
	ToolWrite
	ToolMultiEdit
	ToolNotebookEdit
	ToolPassive
)

var toolKinds = map[string]ToolKind{
	"bash":         ToolBash,
	"read":         ToolRead,
	"edit":         ToolEdit,
	"write":        ToolWrite,
	"multiedit":    ToolMultiEdit,
	"notebookedit": ToolNotebookEdit,
	"notebookread": ToolPassive,
	"glob":         ToolPassive,
	"grep":         ToolPassive,
	"ls":           ToolPassive,
	"webfetch":     ToolPassive,
	"websearch":    ToolPassive,
	"todowrite":    ToolPassive,
	"task":         ToolPassive,
}

// KindOf maps a host tool name to its ToolKind. Matching ignores case.
func KindOf(toolName string) ToolKind {
	if k, ok := toolKinds[strings.ToLower(strings.TrimSpace(toolName))]; ok {
		return k
	}
	return ToolUnknown
}

func (k ToolKind) String() string {
	switch k {
	case ToolBash:
		return "bash"
	case ToolRead:
		return "read"
	case ToolEdit:
		return "edit"
	case ToolWrite:
		return "write"
	case ToolMultiEdit:
		return "multi_edit"
	case ToolNotebookEdit:
		return "notebook_edit"
	case ToolPassive:
		return "passive"
	default:
		return "unknown"
	}
}

// IsShell reports whether the tool executes a command line.
func (k ToolKind) IsShell() bool {
	return k == ToolBash
}

// IsFileWrite reports whether the tool writes the file named by its path.
func (k ToolKind) IsFileWrite() bool {
	switch k {
	case ToolEdit, ToolWrite, ToolMultiEdit, ToolNotebookEdit:
		return true
	}
	return false
}

// ToolRequest is one proposed tool invocation as sent by the host runtime.
// Claude Code sends: {"hook_event_name": "PreToolUse", "tool_name": "Bash", "tool_input": {"command": "..."}}
type ToolRequest struct {
	ToolName  string         `json:"tool_name"`
	ToolInput map[string]any `json:"tool_input"`
}

// Decode parses a hook payload. Unknown top-level fields are ignored.
func Decode(data []byte) (ToolRequest, error) {
	var req ToolRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ToolRequest{}, fmt.Errorf("decode hook payload: %w", err)
	}
	if strings.TrimSpace(req.ToolName) == "" {
		return ToolRequest{}, ErrMissingToolName
	}
	return req, nil
}

func (r ToolRequest) Kind() ToolKind {
	return KindOf(r.ToolName)
}

// Command returns tool_input.command when it is a string.
func (r ToolRequest) Command() string {
	return r.stringInput("command")
}

// FilePath returns the target path of a file tool. Notebook and generic
// path keys are consulted when file_path is absent.
func (r ToolRequest) FilePath() string {
	for _, key := range []string{"file_path", "notebook_path", "path"} {
		if v := r.stringInput(key); v != "" {
			return v
		}
	}
	return ""
}

func (r ToolRequest) stringInput(key string) string {
	if r.ToolInput == nil {
		return ""
	}
	s, _ := r.ToolInput[key].(string)
	return s
}
