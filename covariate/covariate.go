/*
Package covariate defines the typed input columns a forest is trained on,
the values rows take for them, the split rules that route rows to the left or
right of a tree node and the generators that propose candidate split rules for
each kind of covariate.
*/
package covariate

import (
	"fmt"
	"math/rand"
	"strings"
)

/*
Covariate represents a named input column of a dataset. Its Index is a stable
dense position into every row's values.

CreateValue parses a raw string into a Value for the covariate. Empty strings
and NA tokens produce a missing value, and strings the covariate cannot
represent produce a *ParseError.

HasNAs reports whether trees must be able to route missing values of the
covariate at prediction time.

HaveNASplitPenalty reports whether candidate splits on the covariate are
scored with its missing rows included on the side they will be routed to.

GenerateSplitRules takes the values that the rows at a node take for the
covariate, a requested number of candidate splits and a source of randomness,
and returns a SplitIterator over the candidate split rules.
*/
type Covariate interface {
	Name() string
	Index() int
	Kind() Kind
	CreateValue(raw string) (Value, error)
	HasNAs() bool
	HaveNASplitPenalty() bool
	GenerateSplitRules(values []Value, number int, rnd *rand.Rand) SplitIterator
}

/*
Sample is something that can be routed down a tree: it has an ID and takes a
value for every covariate index.
*/
type Sample interface {
	ID() int
	ValueAt(index int) (Value, error)
}

// Kind identifies the closed set of covariate kinds
type Kind string

const (
	// Numeric covariates take float64 values
	Numeric Kind = "numeric"
	// Factor covariates take one value among a declared set of levels
	Factor Kind = "factor"
	// Boolean covariates take true or false
	Boolean Kind = "boolean"
)

// NATokens are the raw strings, besides the empty one, that denote a missing value.
var NATokens = []string{"NA", "?"}

/*
IsNAToken takes a raw string and returns whether it denotes a missing value.
*/
func IsNAToken(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	for _, t := range NATokens {
		if raw == t {
			return true
		}
	}
	return false
}

// Option configures the missing value policy of a covariate
type Option func(*base)

// WithNAs marks a covariate as one whose missing values must be routable at prediction time.
func WithNAs() Option {
	return func(b *base) {
		b.hasNAs = true
	}
}

// WithNASplitPenalty makes split scoring account for the covariate's missing rows.
func WithNASplitPenalty() Option {
	return func(b *base) {
		b.naPenalty = true
	}
}

type base struct {
	name      string
	index     int
	hasNAs    bool
	naPenalty bool
}

func newBase(name string, index int, options []Option) base {
	b := base{name: name, index: index}
	for _, o := range options {
		o(&b)
	}
	return b
}

// Name returns the name of the covariate
func (b *base) Name() string {
	return b.name
}

// Index returns the position of the covariate's values on rows
func (b *base) Index() int {
	return b.index
}

// HasNAs reports whether missing values of the covariate can be routed at prediction time
func (b *base) HasNAs() bool {
	return b.hasNAs
}

// HaveNASplitPenalty reports whether split scoring accounts for missing rows
func (b *base) HaveNASplitPenalty() bool {
	return b.naPenalty
}

func (b *base) String() string {
	return b.name
}

/*
Settings describes a covariate before it is built: its name, kind, the levels
for factor covariates and its missing value policy.
*/
type Settings struct {
	Name           string   `yaml:"name" json:"name"`
	Kind           Kind     `yaml:"type" json:"type"`
	Levels         []string `yaml:"levels,omitempty" json:"levels,omitempty"`
	NA             bool     `yaml:"na,omitempty" json:"na,omitempty"`
	NASplitPenalty bool     `yaml:"naPenalty,omitempty" json:"naPenalty,omitempty"`
}

/*
Build takes an index and returns the covariate described by the settings with
that index, or an error if the settings are invalid.
*/
func (s Settings) Build(index int) (Covariate, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("covariate %d has no name", index)
	}
	var options []Option
	if s.NA {
		options = append(options, WithNAs())
	}
	if s.NASplitPenalty {
		options = append(options, WithNASplitPenalty())
	}
	switch s.Kind {
	case Numeric:
		return NewNumericCovariate(s.Name, index, options...), nil
	case Factor:
		return NewFactorCovariate(s.Name, index, s.Levels, options...)
	case Boolean:
		return NewBooleanCovariate(s.Name, index, options...), nil
	}
	return nil, fmt.Errorf("covariate %s has unknown type %q", s.Name, s.Kind)
}

/*
Build takes a slice of settings and returns the covariates they describe,
indexed by their position on the slice. It returns an error if any of the
settings is invalid or if two covariates share a name.
*/
func Build(settings []Settings) ([]Covariate, error) {
	covariates := make([]Covariate, 0, len(settings))
	names := make(map[string]bool, len(settings))
	for i, s := range settings {
		if names[s.Name] {
			return nil, fmt.Errorf("covariate %s is declared more than once", s.Name)
		}
		names[s.Name] = true
		c, err := s.Build(i)
		if err != nil {
			return nil, err
		}
		covariates = append(covariates, c)
	}
	return covariates, nil
}

/*
SettingsOf takes a covariate and returns the settings that build it again.
*/
func SettingsOf(c Covariate) Settings {
	s := Settings{
		Name:           c.Name(),
		Kind:           c.Kind(),
		NA:             c.HasNAs(),
		NASplitPenalty: c.HaveNASplitPenalty(),
	}
	if fc, ok := c.(*FactorCovariate); ok {
		s.Levels = fc.Levels()
	}
	return s
}

/*
ByName takes a slice of covariates and returns a map of them by name.
*/
func ByName(covariates []Covariate) map[string]Covariate {
	result := make(map[string]Covariate, len(covariates))
	for _, c := range covariates {
		result[c.Name()] = c
	}
	return result
}
