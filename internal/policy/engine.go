package policy

import (
	"fmt"
	"strings"

	"github.com/gzhole/hookguard/internal/detector"
	"github.com/gzhole/hookguard/internal/request"
)

// Engine runs detectors in a fixed order and stops at the first hit. It holds
// no per-request state, so a single Engine may evaluate any number of
// requests.
type Engine struct {
	detectors []detector.Detector
}

func NewEngine(detectors []detector.Detector) *Engine {
	return &Engine{detectors: detectors}
}

// NewDefaultEngine builds an engine over the built-in detectors, with extra
// rules appended to the system-destructive table.
func NewDefaultEngine(extra []detector.Rule) (*Engine, error) {
	detectors, err := detector.Defaults(extra)
	if err != nil {
		return nil, fmt.Errorf("build detectors: %w", err)
	}
	return NewEngine(detectors), nil
}

// Evaluate classifies req. An error means a detector could not finish
// (a pattern hit its match timeout); the verdict is then meaningless and the
// caller applies its failure policy.
func (e *Engine) Evaluate(req request.ToolRequest) (Verdict, error) {
	in := detector.NewInput(req)

	for _, d := range e.detectors {
		if !d.Applicable(in) {
			continue
		}
		f, err := d.Detect(in)
		if err != nil {
			return Verdict{}, fmt.Errorf("%s: %w", d.Category(), err)
		}
		if f != nil {
			return Block(f), nil
		}
	}
	return Allow(), nil
}

// Explain renders a verdict for humans.
func Explain(v Verdict) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Decision: %s\n", v.Decision)
	if !v.Blocked() {
		return sb.String()
	}

	fmt.Fprintf(&sb, "Category: %s\n", v.Category)
	fmt.Fprintf(&sb, "Triggered rule: %s\n", v.RuleID)
	fmt.Fprintf(&sb, "Reason: %s\n", v.Reason)
	if v.Hint != "" {
		fmt.Fprintf(&sb, "Hint: %s\n", v.Hint)
	}
	return sb.String()
}
