package covariate

/*
Candidate is a split rule proposed by a covariate's generator along with the
positions of the rows it moves to the left hand.

When Full is false, Movers holds the positions that move from the right hand
to the left hand with respect to the previous candidate of the same iterator
(all rows start on the right hand). When Full is true, Movers holds the whole
left hand. Movers must not be modified.
*/
type Candidate struct {
	Rule   SplitRule
	Movers []int
	Full   bool
}

/*
SplitIterator is a finite, non-restartable sequence of candidates.
Next returns the next candidate and true, or false once the sequence is over.
*/
type SplitIterator interface {
	Next() (Candidate, bool)
}

type emptyIterator struct{}

func (emptyIterator) Next() (Candidate, bool) {
	return Candidate{}, false
}

type sliceIterator struct {
	candidates []Candidate
	next       int
}

func (it *sliceIterator) Next() (Candidate, bool) {
	if it.next >= len(it.candidates) {
		return Candidate{}, false
	}
	c := it.candidates[it.next]
	it.next++
	return c, true
}

/*
Collect takes a SplitIterator and drains it into a slice of candidates.
*/
func Collect(it SplitIterator) []Candidate {
	var result []Candidate
	for {
		c, ok := it.Next()
		if !ok {
			return result
		}
		result = append(result, c)
	}
}
