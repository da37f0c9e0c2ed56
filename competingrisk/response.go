/*
Package competingrisk provides response combiners, group differentiators and
error calculators for forests over competing risk survival responses: an
observed time and the event that ended it, or censoring.
*/
package competingrisk

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pbanos/grove/dataset"
)

/*
Response is a competing risk observation: the time U at which it ended and the
event Delta that ended it, 0 meaning censored.
*/
type Response struct {
	Delta int     `json:"delta"`
	U     float64 `json:"u"`
}

// IsCensored returns whether the observation was censored
func (r Response) IsCensored() bool {
	return r.Delta == 0
}

func (r Response) String() string {
	return fmt.Sprintf("(%d, %g)", r.Delta, r.U)
}

/*
ResponseParser takes the names of the field holding the event and of the field
holding the time and returns a dataset.ResponseParser that reads Responses from
them. Events must be non negative integers and times non negative numbers.
*/
func ResponseParser(deltaField, timeField string) dataset.ResponseParser[Response] {
	return func(r dataset.Record) (Response, error) {
		rawDelta, ok := r[deltaField]
		if !ok {
			return Response{}, fmt.Errorf("record has no %s field", deltaField)
		}
		rawU, ok := r[timeField]
		if !ok {
			return Response{}, fmt.Errorf("record has no %s field", timeField)
		}
		delta, err := strconv.Atoi(strings.TrimSpace(rawDelta))
		if err != nil {
			return Response{}, fmt.Errorf("parsing event %q: %w", rawDelta, err)
		}
		if delta < 0 {
			return Response{}, fmt.Errorf("invalid negative event %d", delta)
		}
		u, err := strconv.ParseFloat(strings.TrimSpace(rawU), 64)
		if err != nil {
			return Response{}, fmt.Errorf("parsing time %q: %w", rawU, err)
		}
		if math.IsNaN(u) || u < 0 {
			return Response{}, fmt.Errorf("invalid time %g", u)
		}
		return Response{Delta: delta, U: u}, nil
	}
}
