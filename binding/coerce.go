package binding

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/reglet-dev/native-starter/domain/entities"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
)

// Int32 coerces an untyped host value to an int32. Only values that represent
// an integer inside the int32 range are accepted; everything else, including
// nil (an absent argument), text, booleans, fractions, NaN and infinities, is
// rejected with a *errors.TypeMismatchError. The value is never truncated.
func Int32(v any) (int32, error) {
	switch n := v.(type) {
	case int32:
		return n, nil
	case int8:
		return int32(n), nil
	case int16:
		return int32(n), nil
	case uint8:
		return int32(n), nil
	case uint16:
		return int32(n), nil
	case int:
		return fromInt64(int64(n), v)
	case int64:
		return fromInt64(n, v)
	case uint:
		return fromUint64(uint64(n), v)
	case uint32:
		return fromUint64(uint64(n), v)
	case uint64:
		return fromUint64(n, v)
	case float32:
		return fromFloat64(float64(n), v)
	case float64:
		return fromFloat64(n, v)
	case json.Number:
		return fromNumberText(string(n), v)
	case json.RawMessage:
		return fromRaw(n, v)
	default:
		return 0, mismatch(v)
	}
}

func fromInt64(n int64, orig any) (int32, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, mismatch(orig)
	}
	return int32(n), nil
}

func fromUint64(n uint64, orig any) (int32, error) {
	if n > math.MaxInt32 {
		return 0, mismatch(orig)
	}
	return int32(n), nil
}

func fromFloat64(f float64, orig any) (int32, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, mismatch(orig)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, mismatch(orig)
	}
	return int32(f), nil
}

// fromNumberText accepts the JSON number grammar. Integral spellings such as
// "1e3" or "7.0" are accepted when their value is an in-range integer.
func fromNumberText(s string, orig any) (int32, error) {
	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, mismatch(orig)
	}
	return fromFloat64(f, orig)
}

func fromRaw(raw json.RawMessage, orig any) (int32, error) {
	var decoded any
	if len(raw) == 0 {
		return 0, mismatch(nil)
	}
	if err := unmarshalNumber(raw, &decoded); err != nil {
		return 0, mismatch(orig)
	}
	if num, ok := decoded.(json.Number); ok {
		return fromNumberText(string(num), orig)
	}
	return 0, mismatch(decoded)
}

func mismatch(v any) *domainerrors.TypeMismatchError {
	return &domainerrors.TypeMismatchError{
		Expected: entities.KindI32,
		Got:      describe(v),
	}
}

// describe names the host-side kind of v the way a dynamic host would.
func describe(v any) string {
	switch n := v.(type) {
	case nil:
		return "undefined"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32, float64:
		return "number " + fmt.Sprint(n)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("number %d", n)
	case json.Number:
		return "number " + n.String()
	case json.RawMessage:
		return "json " + string(n)
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
