package covariate

import (
	"math/rand"
	"strconv"
	"strings"
)

/*
BooleanCovariate represents a covariate that takes true or false values.
*/
type BooleanCovariate struct {
	base
}

/*
NewBooleanCovariate takes a name, an index and options and returns a boolean
covariate.
*/
func NewBooleanCovariate(name string, index int, options ...Option) *BooleanCovariate {
	return &BooleanCovariate{newBase(name, index, options)}
}

// Kind returns Boolean
func (bc *BooleanCovariate) Kind() Kind {
	return Boolean
}

/*
CreateValue takes a raw string and returns a missing value if it is empty or an
NA token, the parsed boolean literal otherwise, or a *ParseError if it is not
one.
*/
func (bc *BooleanCovariate) CreateValue(raw string) (Value, error) {
	if IsNAToken(raw) {
		return Missing[bool](), nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, &ParseError{Covariate: bc.name, Raw: raw, Err: err}
	}
	return Present(b), nil
}

// NewValue takes a bool and returns it as a value of the covariate
func (bc *BooleanCovariate) NewValue(b bool) Value {
	return Present(b)
}

// SplitRule returns the only split rule on the covariate: false goes left.
func (bc *BooleanCovariate) SplitRule() *BooleanSplitRule {
	return &BooleanSplitRule{index: bc.index, name: bc.name}
}

/*
GenerateSplitRules takes the values of the rows at a node and returns an
iterator with the only split of the covariate if both true and false are
observed, or an empty one otherwise. The number of splits and the source of
randomness are ignored.
*/
func (bc *BooleanCovariate) GenerateSplitRules(values []Value, _ int, _ *rand.Rand) SplitIterator {
	var falses []int
	var trues int
	for i, v := range values {
		b, ok := booleanValue(v)
		if !ok {
			continue
		}
		if b {
			trues++
		} else {
			falses = append(falses, i)
		}
	}
	if trues == 0 || len(falses) == 0 {
		return emptyIterator{}
	}
	return &sliceIterator{candidates: []Candidate{{Rule: bc.SplitRule(), Movers: falses, Full: true}}}
}
