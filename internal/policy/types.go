package policy

import "github.com/gzhole/hookguard/internal/detector"

type Decision string

const (
	DecisionAllow Decision = "ALLOW"
	DecisionBlock Decision = "BLOCK"
)

// Verdict is the outcome of evaluating one request. Reason is set iff the
// request is blocked.
type Verdict struct {
	Decision Decision
	Category detector.Category
	RuleID   string
	Reason   string
	Hint     string
}

// Allow is the verdict for a request no rule matched.
func Allow() Verdict {
	return Verdict{Decision: DecisionAllow, Category: detector.CategoryNone}
}

// Block builds a verdict from a detector hit.
func Block(f *detector.Finding) Verdict {
	return Verdict{
		Decision: DecisionBlock,
		Category: f.Category,
		RuleID:   f.RuleID,
		Reason:   f.Reason,
		Hint:     f.Hint,
	}
}

func (v Verdict) Blocked() bool { return v.Decision == DecisionBlock }
