/*
Package dataset provides the rows forests are trained on and predict for, and
the helpers loaders use to build them from raw records.
*/
package dataset

import (
	"fmt"
	"strings"

	"github.com/pbanos/grove/covariate"
)

/*
Row represents an observation: an identifier, a response of type Y and a value
for every covariate, indexed by covariate index. Rows are immutable; WithValue
returns a modified copy. Row implements covariate.Sample.
*/
type Row[Y any] struct {
	id       int
	response Y
	values   []covariate.Value
}

/*
NewRow takes an id, a response and the slice of values of the row indexed by
covariate index and returns a row. The row keeps its own copy of values.
*/
func NewRow[Y any](id int, response Y, values []covariate.Value) *Row[Y] {
	return &Row[Y]{id: id, response: response, values: append([]covariate.Value(nil), values...)}
}

// ID returns the identifier of the row
func (r *Row[Y]) ID() int {
	return r.id
}

// Response returns the response of the row
func (r *Row[Y]) Response() Y {
	return r.response
}

// NumValues returns the number of covariate values of the row
func (r *Row[Y]) NumValues() int {
	return len(r.values)
}

/*
ValueAt takes a covariate index and returns the value of the row for it, or an
error wrapping covariate.ErrUnknownCovariate if the row has no such index.
*/
func (r *Row[Y]) ValueAt(index int) (covariate.Value, error) {
	if index < 0 || index >= len(r.values) {
		return nil, fmt.Errorf("row %d has %d values, asked for %d: %w", r.id, len(r.values), index, covariate.ErrUnknownCovariate)
	}
	return r.values[index], nil
}

/*
WithValue takes a covariate index and a value and returns a copy of the row
that takes that value for the index.
*/
func (r *Row[Y]) WithValue(index int, v covariate.Value) *Row[Y] {
	values := append([]covariate.Value(nil), r.values...)
	values[index] = v
	return &Row[Y]{id: r.id, response: r.response, values: values}
}

func (r *Row[Y]) String() string {
	values := make([]string, len(r.values))
	for i, v := range r.values {
		values[i] = v.String()
	}
	return fmt.Sprintf("%d: %v [%s]", r.id, r.response, strings.Join(values, ", "))
}

// Responses returns the responses of the given rows in order
func Responses[Y any](rows []*Row[Y]) []Y {
	result := make([]Y, len(rows))
	for i, r := range rows {
		result[i] = r.response
	}
	return result
}

/*
Column takes a slice of rows and a covariate index and returns the values the
rows take for it in order, or an error if a row has no value for the index.
*/
func Column[Y any](rows []*Row[Y], index int) ([]covariate.Value, error) {
	result := make([]covariate.Value, len(rows))
	for i, r := range rows {
		v, err := r.ValueAt(index)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

/*
Validate takes a slice of rows and the covariates they are expected to have
values for and returns an error if two covariates share an index or if any row
lacks a value for a covariate index. Rows may hold values for other covariates
too.
*/
func Validate[Y any](rows []*Row[Y], covariates []covariate.Covariate) error {
	width := 0
	seen := make(map[int]string, len(covariates))
	for _, c := range covariates {
		if other, ok := seen[c.Index()]; ok {
			return fmt.Errorf("covariates %s and %s share index %d", other, c.Name(), c.Index())
		}
		seen[c.Index()] = c.Name()
		if c.Index() < 0 {
			return fmt.Errorf("covariate %s has negative index %d: %w", c.Name(), c.Index(), covariate.ErrUnknownCovariate)
		}
		if c.Index()+1 > width {
			width = c.Index() + 1
		}
	}
	for _, r := range rows {
		if r.NumValues() < width {
			return fmt.Errorf("row %d has %d values, covariate indices go up to %d: %w", r.id, r.NumValues(), width-1, covariate.ErrUnknownCovariate)
		}
	}
	return nil
}

// Samples returns the given rows as a slice of covariate.Sample
func Samples[Y any](rows []*Row[Y]) []covariate.Sample {
	result := make([]covariate.Sample, len(rows))
	for i, r := range rows {
		result[i] = r
	}
	return result
}
