package covariate

import (
	"fmt"
	"strings"

	"github.com/yourbasic/bit"
)

/*
SplitRule represents a decision on the value of a single covariate, identified
by its index, that sends rows to the left or the right hand of a tree node.

IsLeftHand takes the value of the covariate and returns whether it goes to the
left hand. It returns ErrMissingValue if the value is missing.
*/
type SplitRule interface {
	CovariateIndex() int
	IsLeftHand(Value) (bool, error)
	String() string
}

/*
NumericSplitRule sends values lower or equal to its threshold to the left hand.
*/
type NumericSplitRule struct {
	index     int
	name      string
	threshold float64
}

/*
FactorSplitRule sends values whose level is among its left hand levels to the
left hand.
*/
type FactorSplitRule struct {
	index  int
	name   string
	levels []string
	left   *bit.Set
}

/*
BooleanSplitRule sends false values to the left hand.
*/
type BooleanSplitRule struct {
	index int
	name  string
}

// CovariateIndex returns the index of the covariate the rule decides on
func (r *NumericSplitRule) CovariateIndex() int {
	return r.index
}

// Threshold returns the highest value that goes to the left hand
func (r *NumericSplitRule) Threshold() float64 {
	return r.threshold
}

/*
IsLeftHand takes a value and returns true if it is lower or equal to the
rule's threshold.
*/
func (r *NumericSplitRule) IsLeftHand(v Value) (bool, error) {
	if v == nil || v.IsNA() {
		return false, ErrMissingValue
	}
	x, ok := numericValue(v)
	if !ok {
		return false, fmt.Errorf("numeric split rule on %s got %T value", r.name, v)
	}
	return x <= r.threshold, nil
}

func (r *NumericSplitRule) String() string {
	return fmt.Sprintf("%s <= %g", r.name, r.threshold)
}

// CovariateIndex returns the index of the covariate the rule decides on
func (r *FactorSplitRule) CovariateIndex() int {
	return r.index
}

/*
LeftLevels returns the names of the levels that go to the left hand in the
order they are declared on the covariate.
*/
func (r *FactorSplitRule) LeftLevels() []string {
	var result []string
	r.left.Visit(func(n int) bool {
		result = append(result, r.levels[n])
		return false
	})
	return result
}

/*
IsLeftHand takes a value and returns true if its level is among the rule's
left hand levels.
*/
func (r *FactorSplitRule) IsLeftHand(v Value) (bool, error) {
	if v == nil || v.IsNA() {
		return false, ErrMissingValue
	}
	l, ok := levelValue(v)
	if !ok {
		return false, fmt.Errorf("factor split rule on %s got %T value", r.name, v)
	}
	return r.left.Contains(l.Index), nil
}

func (r *FactorSplitRule) String() string {
	return fmt.Sprintf("%s in {%s}", r.name, strings.Join(r.LeftLevels(), ", "))
}

// CovariateIndex returns the index of the covariate the rule decides on
func (r *BooleanSplitRule) CovariateIndex() int {
	return r.index
}

/*
IsLeftHand takes a value and returns true if it is false.
*/
func (r *BooleanSplitRule) IsLeftHand(v Value) (bool, error) {
	if v == nil || v.IsNA() {
		return false, ErrMissingValue
	}
	b, ok := booleanValue(v)
	if !ok {
		return false, fmt.Errorf("boolean split rule on %s got %T value", r.name, v)
	}
	return !b, nil
}

func (r *BooleanSplitRule) String() string {
	return fmt.Sprintf("%s is false", r.name)
}
