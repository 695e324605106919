package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed payload")

// ParsePayload reads "<gas>,<distance>". Fields after the second are ignored.
func ParsePayload(payload []byte) (gas, distance int, err error) {
	fields := strings.Split(string(payload), ",")
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("%w: %q is not gas,distance", ErrMalformedPayload, payload)
	}
	if gas, err = parseField("gas", fields[0]); err != nil {
		return 0, 0, err
	}
	if distance, err = parseField("distance", fields[1]); err != nil {
		return 0, 0, err
	}
	return gas, distance, nil
}

func parseField(name, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformedPayload, name, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s %d is negative", ErrMalformedPayload, name, v)
	}
	return v, nil
}
