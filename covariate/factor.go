package covariate

import (
	"fmt"
	"math/rand"
	"sort"

	mapset "github.com/deckarep/golang-set"
	"github.com/yourbasic/bit"
)

/*
MaxEnumeratedLevels is the largest number of observed levels for which a
factor covariate enumerates every possible split. Above it, splits are
sampled at random.
*/
const MaxEnumeratedLevels = 10

/*
FactorCovariate represents a covariate that can only take a value among a
finite set of levels.
*/
type FactorCovariate struct {
	base
	levels     []string
	levelIndex map[string]int
}

/*
NewFactorCovariate takes a name, an index, the slice of levels the covariate
can take and options and returns a factor covariate, or an error if there are
no levels, a level is repeated or a level is empty or an NA token.
*/
func NewFactorCovariate(name string, index int, levels []string, options ...Option) (*FactorCovariate, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("factor covariate %s has no levels", name)
	}
	levelIndex := make(map[string]int, len(levels))
	for i, l := range levels {
		if IsNAToken(l) {
			return nil, fmt.Errorf("factor covariate %s declares level %q, which denotes a missing value", name, l)
		}
		if _, ok := levelIndex[l]; ok {
			return nil, fmt.Errorf("factor covariate %s declares level %q more than once", name, l)
		}
		levelIndex[l] = i
	}
	return &FactorCovariate{
		base:       newBase(name, index, options),
		levels:     append([]string(nil), levels...),
		levelIndex: levelIndex,
	}, nil
}

// Kind returns Factor
func (fc *FactorCovariate) Kind() Kind {
	return Factor
}

// Levels returns the levels declared for the covariate
func (fc *FactorCovariate) Levels() []string {
	return append([]string(nil), fc.levels...)
}

/*
CreateValue takes a raw string and returns a missing value if it is empty or
an NA token, the level with that exact name, or a *ParseError if the covariate
declares no such level.
*/
func (fc *FactorCovariate) CreateValue(raw string) (Value, error) {
	if IsNAToken(raw) {
		return Missing[Level](), nil
	}
	v, err := fc.NewValue(raw)
	if err != nil {
		return nil, &ParseError{Covariate: fc.name, Raw: raw, Err: err}
	}
	return v, nil
}

/*
NewValue takes the name of a level and returns it as a value of the covariate,
or an error if the covariate declares no such level.
*/
func (fc *FactorCovariate) NewValue(level string) (Value, error) {
	i, ok := fc.levelIndex[level]
	if !ok {
		return nil, fmt.Errorf("unknown level %q, expected one of %v", level, fc.levels)
	}
	return Present(Level{Index: i, Name: level}), nil
}

/*
SplitRule takes the names of the levels that go to the left hand and returns a
split rule for them, or an error if any of them is unknown.
*/
func (fc *FactorCovariate) SplitRule(leftLevels []string) (*FactorSplitRule, error) {
	set := new(bit.Set)
	for _, l := range leftLevels {
		i, ok := fc.levelIndex[l]
		if !ok {
			return nil, fmt.Errorf("unknown level %q for factor covariate %s", l, fc.name)
		}
		set.Add(i)
	}
	return fc.splitRule(set), nil
}

func (fc *FactorCovariate) splitRule(left *bit.Set) *FactorSplitRule {
	return &FactorSplitRule{index: fc.index, name: fc.name, levels: fc.levels, left: left}
}

/*
GenerateSplitRules takes the values of the rows at a node, a number of
candidate splits and a source of randomness and returns an iterator over
split rules whose left hand is a non-empty, non-full subset of the observed
levels. The last observed level always stays on the right hand, so a subset
and its complement are never both proposed. With up to MaxEnumeratedLevels
observed levels and a number that is not positive or not lower than the count
of distinct splits, every split is proposed; otherwise up to number random
splits are. Candidates carry the full left hand as movers.
*/
func (fc *FactorCovariate) GenerateSplitRules(values []Value, number int, rnd *rand.Rand) SplitIterator {
	observedSet := mapset.NewThreadUnsafeSet()
	it := &factorIterator{covariate: fc}
	for i, v := range values {
		if l, ok := levelValue(v); ok {
			observedSet.Add(l.Index)
			it.positions = append(it.positions, i)
			it.levels = append(it.levels, l.Index)
		}
	}
	if observedSet.Cardinality() < 2 {
		return emptyIterator{}
	}
	observed := make([]int, 0, observedSet.Cardinality())
	for _, l := range observedSet.ToSlice() {
		observed = append(observed, l.(int))
	}
	sort.Ints(observed)
	free := observed[:len(observed)-1]
	maxSplits := 1<<MaxEnumeratedLevels - 1
	if len(observed) <= MaxEnumeratedLevels {
		maxSplits = 1<<len(free) - 1
		if number <= 0 || number >= maxSplits {
			for mask := 1; mask <= maxSplits; mask++ {
				it.sets = append(it.sets, maskSet(free, mask))
			}
			return it
		}
	}
	if number <= 0 || number > maxSplits {
		number = maxSplits
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(int64(len(observed))))
	}
	seen := make(map[string]bool, number)
	for attempts := 0; len(it.sets) < number && attempts < 4*number; attempts++ {
		set := new(bit.Set)
		for _, l := range free {
			if rnd.Intn(2) == 1 {
				set.Add(l)
			}
		}
		if set.Empty() {
			continue
		}
		key := set.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		it.sets = append(it.sets, set)
	}
	return it
}

func maskSet(levels []int, mask int) *bit.Set {
	set := new(bit.Set)
	for j, l := range levels {
		if mask&(1<<j) != 0 {
			set.Add(l)
		}
	}
	return set
}

type factorIterator struct {
	covariate *FactorCovariate
	positions []int
	levels    []int
	sets      []*bit.Set
	next      int
}

func (it *factorIterator) Next() (Candidate, bool) {
	if it.next >= len(it.sets) {
		return Candidate{}, false
	}
	set := it.sets[it.next]
	it.next++
	var movers []int
	for i, l := range it.levels {
		if set.Contains(l) {
			movers = append(movers, it.positions[i])
		}
	}
	return Candidate{Rule: it.covariate.splitRule(set), Movers: movers, Full: true}, true
}
