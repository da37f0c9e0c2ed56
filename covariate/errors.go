package covariate

import "fmt"

// Error represents an error related with covariates
type Error string

const (
	// ErrMissingValue is returned by split rules evaluated against a missing value.
	ErrMissingValue = Error("split rule evaluated against a missing value")
	// ErrUnknownCovariate is returned when a sample has no value for a covariate index.
	ErrUnknownCovariate = Error("unknown covariate")
)

func (e Error) Error() string {
	return string(e)
}

/*
ParseError is returned when a raw string cannot be converted into a value for
a covariate.
*/
type ParseError struct {
	Covariate string
	Raw       string
	Err       error
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("parsing %q for covariate %s: %v", pe.Raw, pe.Covariate, pe.Err)
}

func (pe *ParseError) Unwrap() error {
	return pe.Err
}

/*
MissingValueError is returned when a split rule is evaluated against a missing
value outside of the trained routing of missing values. It identifies the row
and the rule.
*/
type MissingValueError struct {
	RowID int
	Rule  SplitRule
}

func (mve *MissingValueError) Error() string {
	return fmt.Sprintf("row %d has no value for covariate %d required by rule %v", mve.RowID, mve.Rule.CovariateIndex(), mve.Rule)
}

func (mve *MissingValueError) Unwrap() error {
	return ErrMissingValue
}
