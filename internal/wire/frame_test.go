package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	cases := []struct {
		id      uint16
		payload []byte
	}{
		{id: 0, payload: nil},
		{id: 1, payload: []byte("hello")},
		{id: 0xFFFF, payload: bytes.Repeat([]byte{0xAB}, MaxFrameLen)},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WriteFrame(&buf, c.id, c.payload); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if got.ID != c.id {
			t.Errorf("ID = %d, want %d", got.ID, c.id)
		}
		if !bytes.Equal(got.Payload, c.payload) {
			t.Errorf("Payload = %v, want %v", got.Payload, c.payload)
		}
	}
}

func TestWriteFrameOversize(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, 1, make([]byte, MaxFrameLen+1))
	if !errors.Is(err, ErrOversize) {
		t.Fatalf("WriteFrame oversize = %v, want ErrOversize", err)
	}
}

func TestReadFrameOversizeHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x01, 0x23, 0x00}) // declares length 0x2300 > MaxFrameLen
	_, err := ReadFrame(&buf)
	if !errors.Is(err, ErrOversize) {
		t.Fatalf("ReadFrame oversize header = %v, want ErrOversize", err)
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	var buf bytes.Buffer
	_, err := ReadFrame(&buf)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("ReadFrame on empty stream = %v, want io.EOF", err)
	}
}

func TestReadFramePeerResetMidHeader(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x01})
	_, err := ReadFrame(buf)
	if !errors.Is(err, ErrPeerReset) {
		t.Fatalf("ReadFrame mid-header = %v, want ErrPeerReset", err)
	}
}

func TestReadFramePeerResetMidPayload(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x01, 0x00, 0x05, 0x01, 0x02})
	_, err := ReadFrame(buf)
	if !errors.Is(err, ErrPeerReset) {
		t.Fatalf("ReadFrame mid-payload = %v, want ErrPeerReset", err)
	}
}
