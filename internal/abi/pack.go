// Package abi manages guest linear memory for values crossing into the host.
package abi

import (
	"fmt"

	"github.com/reglet-dev/native-starter/wireformat"
)

// PackPtrLen packs a guest pointer and length into a single uint64.
// Panics on a null pointer with a non-zero length.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return wireformat.PackPtrLen(ptr, length)
}

// UnpackPtrLen reverses PackPtrLen with the same null pointer check.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr, length = wireformat.UnpackPtrLen(packed)
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}
