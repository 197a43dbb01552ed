package rowan

import "unsafe"

// float32Bytes returns a byte view of s without copying. The view aliases s
// and is only valid until the next append or Fat on the owning buffer.
func float32Bytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}

// uint32Bytes returns a byte view of s without copying.
func uint32Bytes(s []uint32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}
