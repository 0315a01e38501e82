package wirebuf

import (
	"math"
	"testing"
)

func TestUint16RoundTrip(t *testing.T) {
	buf := NewBuffer(16)
	values := []uint16{0, 1, 256, 0xFFFF}
	for _, v := range values {
		buf.WriteUint16(v)
	}

	r := NewReader(buf.Bytes())
	for _, want := range values {
		got, err := r.ReadUint16()
		if err != nil {
			t.Fatalf("ReadUint16: %v", err)
		}
		if got != want {
			t.Errorf("ReadUint16 = %d, want %d", got, want)
		}
	}
}

func TestUint64RoundTrip(t *testing.T) {
	buf := NewBuffer(16)
	values := []uint64{0, 1, 1 << 40, math.MaxUint64}
	for _, v := range values {
		buf.WriteUint64(v)
	}

	r := NewReader(buf.Bytes())
	for _, want := range values {
		got, err := r.ReadUint64()
		if err != nil {
			t.Fatalf("ReadUint64: %v", err)
		}
		if got != want {
			t.Errorf("ReadUint64 = %d, want %d", got, want)
		}
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	buf := NewBuffer(16)
	values := []float32{0, 37.5, -12.25, 100}
	for _, v := range values {
		buf.WriteFloat32(v)
	}

	r := NewReader(buf.Bytes())
	for _, want := range values {
		got, err := r.ReadFloat32()
		if err != nil {
			t.Fatalf("ReadFloat32: %v", err)
		}
		if got != want {
			t.Errorf("ReadFloat32 = %v, want %v", got, want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	buf := NewBuffer(16)
	values := []string{"", "n1", "a longer nickname with spaces"}
	for _, v := range values {
		buf.WriteString(v)
	}

	r := NewReader(buf.Bytes())
	for _, want := range values {
		got, err := r.ReadString()
		if err != nil {
			t.Fatalf("ReadString: %v", err)
		}
		if got != want {
			t.Errorf("ReadString = %q, want %q", got, want)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	buf := NewBuffer(16)
	want := []byte{1, 2, 3, 4, 5}
	buf.WriteBytes(want)

	r := NewReader(buf.Bytes())
	got, err := r.ReadBytes()
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadBytes len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReadBytes[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestListRoundTrip(t *testing.T) {
	buf := NewBuffer(16)
	buf.WriteList(3)
	buf.WriteUint16(10)
	buf.WriteUint16(20)
	buf.WriteUint16(30)

	r := NewReader(buf.Bytes())
	n, err := r.ReadList()
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if n != 3 {
		t.Fatalf("ReadList = %d, want 3", n)
	}
	for _, want := range []uint16{10, 20, 30} {
		got, err := r.ReadUint16()
		if err != nil {
			t.Fatalf("ReadUint16: %v", err)
		}
		if got != want {
			t.Errorf("element = %d, want %d", got, want)
		}
	}
}

func TestReadShortBuffer(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadUint32(); err != ErrShortBuffer {
		t.Fatalf("ReadUint32 on short buffer: got %v, want ErrShortBuffer", err)
	}
}
