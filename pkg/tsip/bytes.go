// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"encoding/binary"
	"math"
)

// Big-endian field readers. TSIP packet bodies are always big-endian,
// both generations. None of these check bounds: the dispatchers validate
// packet length before any decoder runs, so offsets here are trusted.

func beU8(b []byte, off int) uint8 {
	return b[off]
}

func beS8(b []byte, off int) int8 {
	return int8(b[off])
}

func beU16(b []byte, off int) uint16 {
	return binary.BigEndian.Uint16(b[off:])
}

func beS16(b []byte, off int) int16 {
	return int16(binary.BigEndian.Uint16(b[off:]))
}

func beU32(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off:])
}

func beS32(b []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(b[off:]))
}

func beU64(b []byte, off int) uint64 {
	return binary.BigEndian.Uint64(b[off:])
}

func beF32(b []byte, off int) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b[off:]))
}

func beF64(b []byte, off int) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b[off:]))
}
