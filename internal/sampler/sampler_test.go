package sampler

import (
	"testing"

	gopsutilhost "github.com/shirou/gopsutil/v3/host"
)

func TestRoundTo2(t *testing.T) {
	cases := []struct {
		in   float64
		want float32
	}{
		{0, 0},
		{37.5, 37.5},
		{33.333333, 33.33},
		{99.995, 100.0},
	}
	for _, c := range cases {
		got := roundTo2(c.in)
		if got != c.want {
			t.Errorf("roundTo2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPickTemperatureSensorPrefersCoretempPackage(t *testing.T) {
	temps := []gopsutilhost.TemperatureStat{
		{SensorKey: "coretemp Core 0", Temperature: 40},
		{SensorKey: "coretemp Package id 0", Temperature: 55},
		{SensorKey: "coretemp Core 1", Temperature: 42},
	}
	got := pickTemperatureSensor(temps)
	if got == nil || got.Temperature != 55 {
		t.Fatalf("pickTemperatureSensor = %+v, want the Package sensor", got)
	}
}

func TestPickTemperatureSensorFallsBackToFirst(t *testing.T) {
	temps := []gopsutilhost.TemperatureStat{
		{SensorKey: "acpitz", Temperature: 30},
		{SensorKey: "nvme", Temperature: 35},
	}
	got := pickTemperatureSensor(temps)
	if got == nil || got.SensorKey != "acpitz" {
		t.Fatalf("pickTemperatureSensor = %+v, want first entry", got)
	}
}

func TestPickTemperatureSensorEmpty(t *testing.T) {
	if got := pickTemperatureSensor(nil); got != nil {
		t.Fatalf("pickTemperatureSensor(nil) = %+v, want nil", got)
	}
}

func TestDiskEntryNamePrefersDevice(t *testing.T) {
	if got := diskEntryName("/dev/sda1", "/"); got != "/dev/sda1" {
		t.Errorf("diskEntryName = %q, want /dev/sda1", got)
	}
}

func TestDiskEntryNameFallsBackToMountPath(t *testing.T) {
	if got := diskEntryName("", "/"); got != "/" {
		t.Errorf("diskEntryName = %q, want /", got)
	}
}
