package dataset

import "math/rand"

/*
Bootstrap takes a slice of rows and a source of randomness and returns a
sample of the same size drawn with replacement, along with the rows that were
never drawn (out of bag), in their original order.
*/
func Bootstrap[Y any](rows []*Row[Y], rnd *rand.Rand) (inBag, outOfBag []*Row[Y]) {
	drawn := make([]bool, len(rows))
	inBag = make([]*Row[Y], len(rows))
	for i := range inBag {
		j := rnd.Intn(len(rows))
		drawn[j] = true
		inBag[i] = rows[j]
	}
	for i, r := range rows {
		if !drawn[i] {
			outOfBag = append(outOfBag, r)
		}
	}
	return inBag, outOfBag
}

/*
Split takes a slice of rows, a fraction between 0 and 1 and a source of
randomness and returns a random partition of the rows in two: the first with
round(fraction*len(rows)) rows and the second with the rest. Rows keep their
original relative order in both.
*/
func Split[Y any](rows []*Row[Y], fraction float64, rnd *rand.Rand) (first, second []*Row[Y]) {
	n := int(fraction*float64(len(rows)) + 0.5)
	if n > len(rows) {
		n = len(rows)
	}
	if n < 0 {
		n = 0
	}
	chosen := make([]bool, len(rows))
	for _, i := range rnd.Perm(len(rows))[:n] {
		chosen[i] = true
	}
	for i, r := range rows {
		if chosen[i] {
			first = append(first, r)
		} else {
			second = append(second, r)
		}
	}
	return first, second
}
