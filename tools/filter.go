package tools

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"overseerr-mcp/overseerr"
)

// filterEnv is the environment a request filter expression evaluates
// against: one flattened request summary per evaluation.
type filterEnv struct {
	ID          int
	Title       string
	Type        string
	Status      string
	MediaStatus string
	RequestedBy string
	UserID      int
	RequestedAt string
}

// requestFilter is a compiled boolean expression over request summaries.
type requestFilter struct {
	expression string
	program    *vm.Program
}

// compileRequestFilter compiles a filter expression, validating field
// references and the boolean result type up front.
func compileRequestFilter(expression string) (*requestFilter, error) {
	program, err := expr.Compile(expression,
		expr.Env(filterEnv{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, err
	}
	return &requestFilter{expression: expression, program: program}, nil
}

// match evaluates the filter against one summary.
func (f *requestFilter) match(summary overseerr.RequestSummary) (bool, error) {
	out, err := expr.Run(f.program, filterEnv{
		ID:          summary.ID,
		Title:       summary.Title,
		Type:        string(summary.Type),
		Status:      summary.Status,
		MediaStatus: summary.MediaStatus,
		RequestedBy: summary.RequestedBy,
		UserID:      summary.UserID,
		RequestedAt: summary.RequestedAt,
	})
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", f.expression, err)
	}

	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not return a boolean", f.expression)
	}
	return result, nil
}
