package lutmap

import "github.com/pkg/errors"

// CorruptInputError reports a netlist that violates a precondition the
// mapper requires of its input (a dangling Sig, a primitive gate with the
// wrong arity, a cell type the Registry doesn't know). It always names
// the offending Sig or Cell.
type CorruptInputError struct {
	msg string
	err error
}

func (e *CorruptInputError) Error() string { return e.msg }
func (e *CorruptInputError) Cause() error  { return e.err }
func (e *CorruptInputError) Unwrap() error { return e.err }

func newCorruptInput(format string, args ...interface{}) error {
	return &CorruptInputError{msg: errors.Errorf(format, args...).Error()}
}

func wrapCorruptInput(err error, format string, args ...interface{}) error {
	return &CorruptInputError{msg: errors.Wrapf(err, format, args...).Error(), err: err}
}

// InvariantViolationError reports a condition that this package's own
// algorithms guarantee internally (a cut built with more than K inputs, a
// truth table requested over more than K inputs, a dual-output pair that
// reaches NetlistEmitter and fails its Z5 = Z[I5=0] check). Seeing one
// means a bug in this package, not bad input.
type InvariantViolationError struct {
	msg string
	err error
}

func (e *InvariantViolationError) Error() string { return e.msg }
func (e *InvariantViolationError) Cause() error  { return e.err }
func (e *InvariantViolationError) Unwrap() error { return e.err }

func newInvariantViolation(format string, args ...interface{}) error {
	return &InvariantViolationError{msg: errors.Errorf(format, args...).Error()}
}

func wrapInvariantViolation(err error, format string, args ...interface{}) error {
	return &InvariantViolationError{msg: errors.Wrapf(err, format, args...).Error(), err: err}
}

// BudgetExceededError reports that a bounded search (find_mappable_driver's
// transparent-buffer walk, the area-flow iteration loop) hit its iteration
// cap without converging. It is recoverable: callers may skip the signal
// and continue mapping the rest of the netlist.
type BudgetExceededError struct {
	msg string
	err error
}

func (e *BudgetExceededError) Error() string { return e.msg }
func (e *BudgetExceededError) Cause() error  { return e.err }
func (e *BudgetExceededError) Unwrap() error { return e.err }

func newBudgetExceeded(format string, args ...interface{}) error {
	return &BudgetExceededError{msg: errors.Errorf(format, args...).Error()}
}
