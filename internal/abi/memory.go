//go:build wasip1

package abi

import (
	"fmt"
	"sync"
	"unsafe"
)

// MaxTotalAllocations caps the bytes the guest keeps pinned for the host.
const MaxTotalAllocations = 16 * 1024 * 1024

// pinned keeps a reference to every buffer handed to the host so the Go GC
// does not reclaim it before the host is done reading or writing.
var pinned = struct {
	sync.Mutex
	bufs  map[uint32][]byte
	total int
}{
	bufs: make(map[uint32][]byte),
}

// allocate reserves size bytes of linear memory and returns its address.
// The host calls it to place responses (the hello greeting, host function
// results) into guest memory.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	pinned.Lock()
	defer pinned.Unlock()

	if pinned.total+int(size) > MaxTotalAllocations {
		panic(fmt.Sprintf("abi: allocation of %d bytes exceeds limit (%d of %d in use)",
			size, pinned.total, MaxTotalAllocations))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))
	pinned.bufs[ptr] = buf
	pinned.total += int(size)
	return ptr
}

// deallocate unpins a buffer. Unknown pointers are ignored, and accounting
// uses the stored length rather than the caller's size.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	pinned.Lock()
	defer pinned.Unlock()

	buf, ok := pinned.bufs[ptr]
	if !ok {
		return
	}
	delete(pinned.bufs, ptr)
	pinned.total -= len(buf)
}

// FreeAllTracked unpins every buffer.
func FreeAllTracked() {
	pinned.Lock()
	defer pinned.Unlock()
	clear(pinned.bufs)
	pinned.total = 0
}

// Stats returns the number of pinned buffers and their total size.
func Stats() (count, bytes int) {
	pinned.Lock()
	defer pinned.Unlock()
	return len(pinned.bufs), pinned.total
}

// PtrFromBytes copies data into newly pinned memory and returns it packed.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data)) //nolint:gosec // G115: bounded by MaxTotalAllocations
	ptr := allocate(size)
	copy(memory(ptr, size), data)
	return PackPtrLen(ptr, size)
}

// BytesFromPtr copies the bytes a packed pointer refers to.
func BytesFromPtr(packed uint64) []byte {
	ptr, length := UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	out := make([]byte, length)
	copy(out, memory(ptr, length))
	return out
}

// DeallocatePacked unpins the buffer a packed pointer refers to.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		deallocate(ptr, length)
	}
}

func memory(ptr, length uint32) []byte {
	//nolint:gosec // G103: linear memory offsets are addresses in wasm32
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
}
