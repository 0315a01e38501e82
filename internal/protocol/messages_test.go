package protocol

import (
	"reflect"
	"testing"
)

func TestHandshakeRoundTrip(t *testing.T) {
	orig := Response{
		Tag:       TagHandshake,
		Handshake: &Handshake{Nickname: "n1", ProtocolVersion: ProtocolVersion},
	}
	payload, err := EncodeResponse(orig)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	decoded, err := DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if *decoded.Handshake != *orig.Handshake {
		t.Errorf("Handshake = %+v, want %+v", decoded.Handshake, orig.Handshake)
	}
}

func TestCpuReportRoundTrip(t *testing.T) {
	orig := Response{
		Tag: TagCpu,
		Cpu: &CpuReport{Global: 37.5, PerCore: []float32{30.0, 45.0}},
	}
	payload, err := EncodeResponse(orig)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	decoded, err := DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if decoded.Tag != TagCpu {
		t.Fatalf("Tag = %s, want CPU", decoded.Tag)
	}
	if !reflect.DeepEqual(orig.Cpu, decoded.Cpu) {
		t.Errorf("Cpu = %+v, want %+v", decoded.Cpu, orig.Cpu)
	}
}

func TestTempReportNone(t *testing.T) {
	orig := Response{Tag: TagTemp, Temp: &TempReport{Celsius: nil}}
	payload, err := EncodeResponse(orig)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	decoded, err := DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if decoded.Temp.Celsius != nil {
		t.Errorf("Celsius = %v, want nil", *decoded.Temp.Celsius)
	}
}

func TestTempReportSome(t *testing.T) {
	val := float32(42.42)
	orig := Response{Tag: TagTemp, Temp: &TempReport{Celsius: &val}}
	payload, err := EncodeResponse(orig)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	decoded, err := DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if decoded.Temp.Celsius == nil || *decoded.Temp.Celsius != val {
		t.Errorf("Celsius = %v, want %v", decoded.Temp.Celsius, val)
	}
}

func TestMemReportRoundTrip(t *testing.T) {
	orig := Response{
		Tag: TagMem,
		Mem: &MemReport{
			RAM:  UsageData{Used: 1024, Total: 8192},
			Swap: UsageData{Used: 0, Total: 2048},
		},
	}
	payload, err := EncodeResponse(orig)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	decoded, err := DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if !reflect.DeepEqual(orig.Mem, decoded.Mem) {
		t.Errorf("Mem = %+v, want %+v", decoded.Mem, orig.Mem)
	}
}

func TestDiskReportRoundTrip(t *testing.T) {
	orig := Response{
		Tag: TagDisk,
		Disk: &DiskReport{Disks: []DiskEntry{
			{Name: "/dev/sda1", Mount: "/", Usage: UsageData{Used: 1000, Total: 2000}},
			{Name: "/dev/sdb1", Mount: "/data", Usage: UsageData{Used: 500, Total: 5000}},
		}},
	}
	payload, err := EncodeResponse(orig)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	decoded, err := DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if !reflect.DeepEqual(orig.Disk, decoded.Disk) {
		t.Errorf("Disk = %+v, want %+v", decoded.Disk, orig.Disk)
	}
}

func TestNetReportRoundTrip(t *testing.T) {
	orig := Response{Tag: TagNetIO, NetIO: &NetReport{Sent: 123456, Recv: 654321}}
	payload, err := EncodeResponse(orig)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	decoded, err := DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if !reflect.DeepEqual(orig.NetIO, decoded.NetIO) {
		t.Errorf("NetIO = %+v, want %+v", decoded.NetIO, orig.NetIO)
	}
}

func TestEncodeResponseNilValue(t *testing.T) {
	_, err := EncodeResponse(Response{Tag: TagCpu})
	if err == nil {
		t.Fatal("EncodeResponse with nil Cpu value: want error, got nil")
	}
}

func TestDecodeResponseUnknownTag(t *testing.T) {
	_, err := DecodeResponse([]byte{0xFE})
	if err == nil {
		t.Fatal("DecodeResponse with unknown tag: want error, got nil")
	}
}

func TestRequestTagRoundTrip(t *testing.T) {
	for _, tag := range []Tag{TagCpu, TagTemp, TagMem, TagDisk, TagNetIO} {
		payload := EncodeRequest(tag)
		got, err := DecodeRequestTag(payload)
		if err != nil {
			t.Fatalf("DecodeRequestTag: %v", err)
		}
		if got != tag {
			t.Errorf("DecodeRequestTag = %s, want %s", got, tag)
		}
	}
}

func TestTagCacheable(t *testing.T) {
	for _, tag := range []Tag{TagCpu, TagTemp, TagMem, TagDisk, TagNetIO} {
		if !tag.Cacheable() {
			t.Errorf("%s.Cacheable() = false, want true", tag)
		}
	}
	if TagHandshake.Cacheable() {
		t.Errorf("TagHandshake.Cacheable() = true, want false")
	}
}
