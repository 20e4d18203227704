package hook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gzhole/hookguard/internal/config"
	"github.com/gzhole/hookguard/internal/logger"
	"github.com/gzhole/hookguard/internal/policy"
	"github.com/gzhole/hookguard/internal/request"
	"go.uber.org/zap"
)

// Exit codes understood by the host. Any other non-zero code is reported as
// a hook failure rather than a block.
const (
	ExitAllow = 0
	ExitBlock = 2
)

// Outcome is what the hook process reports: an exit code and, when
// blocking, the text for stderr.
type Outcome struct {
	ExitCode int
	Message  string
}

func (o Outcome) Blocked() bool { return o.ExitCode == ExitBlock }

type Evaluator interface {
	Evaluate(req request.ToolRequest) (policy.Verdict, error)
}

type AuditLog interface {
	Append(e logger.Entry) error
}

// Controller turns one raw hook payload into an Outcome and records it.
type Controller struct {
	evaluator  Evaluator
	audit      AuditLog
	failPolicy config.FailPolicy
	logger     *zap.Logger
}

func NewController(evaluator Evaluator, audit AuditLog, failPolicy config.FailPolicy, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if failPolicy != config.FailOpen && failPolicy != config.FailClosed {
		failPolicy = config.DefaultFailPolicy
	}
	return &Controller{
		evaluator:  evaluator,
		audit:      audit,
		failPolicy: failPolicy,
		logger:     logger,
	}
}

// Handle classifies a raw PreToolUse payload. It never panics: a payload that
// cannot be decoded, a detector error and a panic during evaluation all go
// through the configured failure policy.
func (c *Controller) Handle(data []byte) (out Outcome) {
	entry := logger.Entry{}

	defer func() {
		if r := recover(); r != nil {
			out = c.fail(entry, "evaluate", fmt.Errorf("%w: %v", errPanic, r))
		}
	}()

	req, err := request.Decode(data)
	if err != nil {
		entry.SetRaw(data)
		return c.fail(entry, "decode", err)
	}
	entry.ToolName = req.ToolName
	entry.ToolInput = req.ToolInput

	verdict, err := c.evaluator.Evaluate(req)
	if err != nil {
		return c.fail(entry, "evaluate", err)
	}

	entry.Blocked = verdict.Blocked()
	if !verdict.Blocked() {
		c.record(entry)
		return Outcome{ExitCode: ExitAllow}
	}

	entry.Reason = verdict.Reason
	entry.Category = verdict.Category.String()
	entry.RuleID = verdict.RuleID
	c.record(entry)

	c.logger.Info("blocked tool call",
		zap.String("tool", req.ToolName),
		zap.String("category", entry.Category),
		zap.String("rule", verdict.RuleID),
	)
	return Outcome{ExitCode: ExitBlock, Message: blockMessage(verdict.Reason, verdict.Hint)}
}

func (c *Controller) fail(entry logger.Entry, stage string, err error) Outcome {
	var setup unavailableError
	if errors.As(err, &setup) {
		stage = "setup"
	}
	fields := []zap.Field{
		zap.String("stage", stage),
		zap.String("fail_policy", string(c.failPolicy)),
		zap.String("tool", entry.ToolName),
		zap.Error(err),
	}

	if c.failPolicy == config.FailOpen {
		c.logger.Warn("request could not be evaluated, allowing (fail-open)", fields...)
		entry.Blocked = false
		entry.Reason = fmt.Sprintf("fail-open after %s error: %v", stage, err)
		c.record(entry)
		return Outcome{ExitCode: ExitAllow}
	}

	c.logger.Error("request could not be evaluated, blocking (fail-closed)", fields...)
	entry.Blocked = true
	entry.Reason = fmt.Sprintf("fail-closed after %s error: %v", stage, err)
	c.record(entry)
	return Outcome{
		ExitCode: ExitBlock,
		Message:  blockMessage(fmt.Sprintf("hookguard could not evaluate this request (%s error: %s); failing closed", stage, failureClass(err)), ""),
	}
}

var errPanic = errors.New("panic")

// failureClass names the kind of failure in a few words for the agent. The
// full error only goes to the diagnostic log and the audit entry.
func failureClass(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		setup     unavailableError
	)
	switch {
	case errors.Is(err, request.ErrMissingToolName):
		return "payload has no tool_name"
	case errors.As(err, &syntaxErr):
		return "payload is not valid JSON"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("payload field %s has the wrong type", typeErr.Field)
	case errors.As(err, &setup):
		return "config or rule packs failed to load"
	case errors.Is(err, errPanic):
		return "internal panic"
	case strings.Contains(err.Error(), "timeout"):
		return "rule match timed out"
	}
	return "internal error"
}

// record appends to the audit log. A failed write never changes the outcome.
func (c *Controller) record(entry logger.Entry) {
	if c.audit == nil {
		return
	}
	if err := c.audit.Append(entry); err != nil {
		c.logger.Warn("audit log write failed", zap.Error(err))
	}
}

func blockMessage(reason, hint string) string {
	var sb strings.Builder
	sb.WriteString("BLOCKED: ")
	sb.WriteString(reason)
	if hint != "" {
		sb.WriteString("\n")
		sb.WriteString(hint)
	}
	return sb.String()
}

type unavailable struct{ err error }

func (u unavailable) Evaluate(request.ToolRequest) (policy.Verdict, error) {
	return policy.Verdict{}, unavailableError{u.err}
}

// unavailableError marks an error from building the evaluator rather than
// from the request at hand.
type unavailableError struct{ err error }

func (e unavailableError) Error() string { return e.err.Error() }
func (e unavailableError) Unwrap() error { return e.err }

// Unavailable is an Evaluator for when the real one could not be built, for
// instance because the config file is invalid. Every request then goes
// through the failure policy.
func Unavailable(err error) Evaluator {
	return unavailable{err: err}
}
