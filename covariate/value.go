package covariate

import "fmt"

/*
Value is the value a row takes for a covariate. It is either present or
missing (NA).
*/
type Value interface {
	IsNA() bool
	String() string
}

/*
Typed is a Value holding a V when present. Its zero value is missing.
*/
type Typed[V any] struct {
	v       V
	present bool
}

// Present returns a Typed value holding v
func Present[V any](v V) Typed[V] {
	return Typed[V]{v: v, present: true}
}

// Missing returns a missing Typed value
func Missing[V any]() Typed[V] {
	return Typed[V]{}
}

// Get returns the held value and whether it is present
func (t Typed[V]) Get() (V, bool) {
	return t.v, t.present
}

// IsNA returns true if the value is missing
func (t Typed[V]) IsNA() bool {
	return !t.present
}

func (t Typed[V]) String() string {
	if !t.present {
		return "NA"
	}
	return fmt.Sprint(t.v)
}

/*
Level is a value of a factor covariate: the name of the level and its index
on the covariate's declared levels.
*/
type Level struct {
	Index int
	Name  string
}

func (l Level) String() string {
	return l.Name
}

func numericValue(v Value) (float64, bool) {
	tv, ok := v.(Typed[float64])
	if !ok {
		return 0, false
	}
	return tv.Get()
}

func levelValue(v Value) (Level, bool) {
	tv, ok := v.(Typed[Level])
	if !ok {
		return Level{}, false
	}
	return tv.Get()
}

func booleanValue(v Value) (bool, bool) {
	tv, ok := v.(Typed[bool])
	if !ok {
		return false, false
	}
	return tv.Get()
}
