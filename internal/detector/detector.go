package detector

import (
	"strings"

	"github.com/gzhole/hookguard/internal/normalize"
	"github.com/gzhole/hookguard/internal/request"
)

// Category is the class of dangerous operation a detector recognizes.
type Category int

const (
	CategoryNone Category = iota
	CategoryDestructiveDelete
	CategorySystemDestructive
	CategorySecretFileWrite
	CategoryContainerEscape
)

func (c Category) String() string {
	switch c {
	case CategoryDestructiveDelete:
		return "destructive_delete"
	case CategorySystemDestructive:
		return "system_destructive"
	case CategorySecretFileWrite:
		return "secret_file_write"
	case CategoryContainerEscape:
		return "container_escape"
	default:
		return "none"
	}
}

// Detector is one category's rule set.
//
// Applicable decides whether the category has anything to say about the
// request at all; Detect is only called when it returns true. Detect returns
// nil when no rule matches. Errors come from the matcher and mean the request
// could not be evaluated.
type Detector interface {
	Category() Category
	Applicable(in *Input) bool
	Detect(in *Input) (*Finding, error)
}

// Finding is a single rule hit.
type Finding struct {
	Category Category
	RuleID   string
	Platform Platform
	Reason   string
	Hint     string // optional remediation shown after the reason
}

// Input is the per-request view shared by all detectors. It is built once
// and never modified.
type Input struct {
	Kind     request.ToolKind
	Command  string   // normalized command line, one line per command list
	Lines    []string // lines of Command
	Segments []string // simple commands of Command
	FilePath string   // lower-cased target path of a file tool
}

// NewInput normalizes a request for evaluation.
func NewInput(req request.ToolRequest) *Input {
	cmd := normalize.Command(req.Command())
	return &Input{
		Kind:     req.Kind(),
		Command:  cmd,
		Lines:    normalize.Lines(cmd),
		Segments: normalize.Segments(cmd),
		FilePath: strings.ToLower(strings.TrimSpace(req.FilePath())),
	}
}

// Shell reports whether the request carries a command line to inspect.
// Unknown tools that carry one are treated as shells.
func (in *Input) Shell() bool {
	if in.Command == "" {
		return false
	}
	return in.Kind.IsShell() || in.Kind == request.ToolUnknown
}

// FileWrite reports whether the request writes the file at FilePath.
// Unknown tools that name a path are treated as writers.
func (in *Input) FileWrite() bool {
	if in.FilePath == "" {
		return false
	}
	return in.Kind.IsFileWrite() || in.Kind == request.ToolUnknown
}

// Defaults returns the built-in detectors in evaluation order.
func Defaults(extra []Rule) ([]Detector, error) {
	system, err := NewSystemDestructive(extra)
	if err != nil {
		return nil, err
	}
	return []Detector{
		NewSecretFileWrite(),
		NewDestructiveDelete(),
		system,
		NewContainerEscape(),
	}, nil
}
