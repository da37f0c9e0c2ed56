package response

/*
ListCombiner is a ResponseCombiner that combines responses into the list of
them. It lets terminal nodes keep their members so that a forest level
combiner can merge them across trees.
*/
type ListCombiner[Y any] struct{}

// Combine returns a copy of the given responses
func (ListCombiner[Y]) Combine(responses []Y) []Y {
	return append([]Y(nil), responses...)
}

// StartIntermediateCombinedResponse returns an accumulator that lists its inputs
func (ListCombiner[Y]) StartIntermediateCombinedResponse(expected int) IntermediateCombinedResponse[Y, []Y] {
	if expected < 0 {
		expected = 0
	}
	return &listAccumulator[Y]{list: make([]Y, 0, expected)}
}

type listAccumulator[Y any] struct {
	list []Y
}

func (la *listAccumulator[Y]) ProcessNewInput(y Y) {
	la.list = append(la.list, y)
}

func (la *listAccumulator[Y]) TransformToOutput() []Y {
	return la.list
}
