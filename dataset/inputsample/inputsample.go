/*
Package inputsample provides an implementation of covariate.Sample whose
values are read from an io.Reader as they are needed.
*/
package inputsample

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/pbanos/grove/covariate"
)

/*
ValueRequester represents a way to ask for covariate values and reject the
given ones.
*/
type ValueRequester interface {
	RequestValueFor(covariate.Covariate) error
	RejectValueFor(covariate.Covariate, string, error) error
}

type readSample struct {
	id             int
	obtainedValues map[int]covariate.Value
	scanner        *bufio.Scanner
	requester      ValueRequester
	covariates     []covariate.Covariate
}

/*
New takes an id, an io.Reader, a slice of covariates and a ValueRequester and
returns a Sample.

The returned Sample ValueAt method reads the value for a covariate the first
time it is asked for, requesting it with the given ValueRequester and then
parsing the next line of the reader with the covariate's CreateValue method.
Lines that cannot be parsed are rejected with the ValueRequester's
RejectValueFor method and the next line is read instead. Empty lines and NA
tokens are missing values.

Asking for a covariate index not in the given slice fails with
covariate.ErrUnknownCovariate.
*/
func New(id int, r io.Reader, covariates []covariate.Covariate, requester ValueRequester) covariate.Sample {
	return &readSample{
		id:             id,
		obtainedValues: make(map[int]covariate.Value),
		scanner:        bufio.NewScanner(r),
		requester:      requester,
		covariates:     covariates,
	}
}

func (rs *readSample) ID() int {
	return rs.id
}

func (rs *readSample) ValueAt(index int) (covariate.Value, error) {
	value, ok := rs.obtainedValues[index]
	if ok {
		return value, nil
	}
	if index < 0 || index >= len(rs.covariates) {
		return nil, fmt.Errorf("sample has no covariate %d: %w", index, covariate.ErrUnknownCovariate)
	}
	c := rs.covariates[index]
	err := rs.requester.RequestValueFor(c)
	if err != nil {
		return nil, err
	}
	for rs.scanner.Scan() {
		line := rs.scanner.Text()
		value, err = c.CreateValue(line)
		if err == nil {
			rs.obtainedValues[index] = value
			return value, nil
		}
		var pe *covariate.ParseError
		if !errors.As(err, &pe) {
			return nil, err
		}
		err = rs.requester.RejectValueFor(c, line, err)
		if err != nil {
			return nil, err
		}
	}
	err = rs.scanner.Err()
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("EOF when requesting value for %s", c.Name())
}

/*
WriterValueRequester is a ValueRequester that writes its requests and
rejections on an io.Writer.
*/
type WriterValueRequester struct {
	W io.Writer
}

// RequestValueFor writes a prompt for the value of the given covariate
func (wvr WriterValueRequester) RequestValueFor(c covariate.Covariate) error {
	var hint string
	if fc, ok := c.(*covariate.FactorCovariate); ok {
		hint = fmt.Sprintf(" %v", fc.Levels())
	}
	_, err := fmt.Fprintf(wvr.W, "Value for %s (%s)%s? ", c.Name(), c.Kind(), hint)
	return err
}

// RejectValueFor writes why the given raw value was rejected
func (wvr WriterValueRequester) RejectValueFor(c covariate.Covariate, raw string, cause error) error {
	_, err := fmt.Fprintf(wvr.W, "Invalid value %q for %s: %v\n", raw, c.Name(), cause)
	return err
}
