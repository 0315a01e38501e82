package wirebuf

import (
	"encoding/binary"
	"math"
)

// Reader provides sequential decoding of wirebuf-encoded data.
type Reader struct {
	data   []byte
	offset int
}

// NewReader wraps an existing byte slice for decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

func (r *Reader) need(n int) (int, error) {
	if r.offset+n > len(r.data) {
		return 0, ErrShortBuffer
	}
	off := r.offset
	r.offset += n
	return off, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	off, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return r.data[off], nil
}

// ReadUint16 reads a 16-bit unsigned integer in big-endian order.
func (r *Reader) ReadUint16() (uint16, error) {
	off, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.data[off:]), nil
}

// ReadUint32 reads a 32-bit unsigned integer in big-endian order.
func (r *Reader) ReadUint32() (uint32, error) {
	off, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.data[off:]), nil
}

// ReadUint64 reads a 64-bit unsigned integer in big-endian order.
func (r *Reader) ReadUint64() (uint64, error) {
	off, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(r.data[off:]), nil
}

// ReadFloat32 reads a 32-bit IEEE 754 float in big-endian order.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadBool reads a single byte and interprets it as a boolean.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadString reads a length-prefixed UTF-8 string (uint16 length + bytes).
func (r *Reader) ReadString() (string, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	off, err := r.need(int(length))
	if err != nil {
		return "", err
	}
	return string(r.data[off : off+int(length)]), nil
}

// ReadBytes reads a length-prefixed byte slice. The returned slice is a
// copy, safe to retain after the Reader is discarded.
func (r *Reader) ReadBytes() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	off, err := r.need(int(length))
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, r.data[off:off+int(length)])
	return out, nil
}

// ReadList reads a uint16 list element count. The caller then reads that
// many elements sequentially.
func (r *Reader) ReadList() (int, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
