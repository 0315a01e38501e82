// Package wirebuf implements the binary field encoding used inside frame
// payloads throughout fleetwatch: a growable write Buffer and a sequential
// read Reader, both operating in big-endian byte order to match the frame
// header defined in package wire.
package wirebuf

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when a Reader has fewer bytes than a decode
// operation requires.
var ErrShortBuffer = errors.New("wirebuf: insufficient data in buffer")

// Buffer is a growable byte buffer used for encoding message payloads.
// All multi-byte integers are written in big-endian byte order.
type Buffer struct {
	data []byte
}

// NewBuffer returns a Buffer pre-allocated with the given capacity.
func NewBuffer(cap int) *Buffer {
	return &Buffer{data: make([]byte, 0, cap)}
}

// Bytes returns the accumulated encoded bytes.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) grow(n int) int {
	off := len(b.data)
	need := off + n
	if need <= cap(b.data) {
		b.data = b.data[:need]
		return off
	}
	newCap := cap(b.data) * 2
	if newCap < need {
		newCap = need
	}
	tmp := make([]byte, need, newCap)
	copy(tmp, b.data)
	b.data = tmp
	return off
}

// WriteUint8 appends a single byte.
func (b *Buffer) WriteUint8(v uint8) {
	off := b.grow(1)
	b.data[off] = v
}

// WriteUint16 appends a 16-bit unsigned integer in big-endian order.
func (b *Buffer) WriteUint16(v uint16) {
	off := b.grow(2)
	binary.BigEndian.PutUint16(b.data[off:], v)
}

// WriteUint32 appends a 32-bit unsigned integer in big-endian order.
func (b *Buffer) WriteUint32(v uint32) {
	off := b.grow(4)
	binary.BigEndian.PutUint32(b.data[off:], v)
}

// WriteUint64 appends a 64-bit unsigned integer in big-endian order.
func (b *Buffer) WriteUint64(v uint64) {
	off := b.grow(8)
	binary.BigEndian.PutUint64(b.data[off:], v)
}

// WriteFloat32 appends a 32-bit IEEE 754 float in big-endian order.
func (b *Buffer) WriteFloat32(v float32) {
	b.WriteUint32(math.Float32bits(v))
}

// WriteString appends a length-prefixed UTF-8 string (uint16 length + bytes).
func (b *Buffer) WriteString(s string) {
	b.WriteUint16(uint16(len(s)))
	off := b.grow(len(s))
	copy(b.data[off:], s)
}

// WriteBytes appends a length-prefixed byte slice (uint16 length + bytes).
func (b *Buffer) WriteBytes(p []byte) {
	b.WriteUint16(uint16(len(p)))
	off := b.grow(len(p))
	copy(b.data[off:], p)
}

// WriteBool appends a single byte, 1 for true and 0 for false.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteUint8(1)
	} else {
		b.WriteUint8(0)
	}
}

// WriteList writes a uint16 element count header. The caller encodes each
// element immediately after this call.
func (b *Buffer) WriteList(count int) {
	b.WriteUint16(uint16(count))
}
