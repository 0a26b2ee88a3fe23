package binding

import (
	"bytes"
	"encoding/json"
)

// unmarshalNumber decodes JSON keeping numbers as json.Number so that large
// integers are not rounded through float64 before range checks.
func unmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// DecodeArgs turns raw JSON arguments into host values. Numbers stay as
// json.Number; every other JSON value decodes to its natural Go type.
func DecodeArgs(raw []json.RawMessage) ([]any, error) {
	args := make([]any, len(raw))
	for i, r := range raw {
		if err := unmarshalNumber(r, &args[i]); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// ParseArg decodes a single textual argument, e.g. from a command line.
// Text that is not valid JSON is passed through as a string so the boundary,
// not the parser, rejects it.
func ParseArg(s string) any {
	var v any
	if err := unmarshalNumber([]byte(s), &v); err != nil {
		return s
	}
	return v
}
