package binding

import (
	"github.com/reglet-dev/native-starter/native"
	"github.com/reglet-dev/native-starter/wireformat"
)

// SumPacked is sum over the numeric WASM ABI. Arguments arrive as i64 so
// that values outside the i32 range are seen and rejected rather than
// silently truncated by the caller.
func SumPacked(a, b int64) uint64 {
	if !wireformat.InI32Range(a) || !wireformat.InI32Range(b) {
		return wireformat.PackSumResult(0, wireformat.StatusTypeMismatch)
	}
	sum, err := native.Sum(int32(a), int32(b))
	if err != nil {
		return wireformat.PackSumResult(0, wireformat.StatusFromError(err))
	}
	return wireformat.PackSumResult(sum, wireformat.StatusOK)
}
