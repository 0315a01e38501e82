// Package sampler reads CPU, memory, temperature, disk, and network
// metrics from the host the Agent runs on, using gopsutil in place of the
// platform-specific probing this system's predecessor did with Rust's
// sysinfo crate.
package sampler

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	gopsutilcpu "github.com/shirou/gopsutil/v3/cpu"
	gopsutildisk "github.com/shirou/gopsutil/v3/disk"
	gopsutilhost "github.com/shirou/gopsutil/v3/host"
	gopsutilmem "github.com/shirou/gopsutil/v3/mem"
	gopsutilnet "github.com/shirou/gopsutil/v3/net"

	"github.com/strand-protocol/fleetwatch/internal/protocol"
)

// coreTempSensorLabel is the thermal sensor label preferred for Temp when
// the host exposes it; package coretemp on Linux reports one entry per
// core plus one aggregate "Package" entry, which is the reading users
// expect to see on a dashboard.
const coreTempSensorLabel = "coretemp Package"

// roundTo2 rounds v to two decimal places, matching the precision the Hub
// UI assumes for every percentage and temperature value.
func roundTo2(v float64) float32 {
	return float32(math.Round(v*100) / 100)
}

// Set groups the samplers the agent exposes along with the mutual
// exclusion they need: the underlying counter state gopsutil maintains
// for CPU percentages is not safe for concurrent refresh, so every
// sampler call is serialized through one mutex, matching the "single
// mutual-exclusion primitive" the design calls for.
type Set struct {
	mu    sync.Mutex
	disks []string // allow-listed mount paths from the agent's config
}

// NewSet returns a Set that reports disk usage only for the given
// mount paths.
func NewSet(disks []string) *Set {
	return &Set{disks: disks}
}

// Cpu refreshes per-core usage and returns a CpuReport with every value
// rounded to two decimal places.
func (s *Set) Cpu(ctx context.Context) (*protocol.CpuReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	global, err := gopsutilcpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("sampler: cpu global: %w", err)
	}
	perCore, err := gopsutilcpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("sampler: cpu per-core: %w", err)
	}

	var g float32
	if len(global) > 0 {
		g = roundTo2(global[0])
	}
	cores := make([]float32, len(perCore))
	for i, v := range perCore {
		cores[i] = roundTo2(v)
	}
	return &protocol.CpuReport{Global: g, PerCore: cores}, nil
}

// Mem refreshes RAM and swap usage, in bytes.
func (s *Set) Mem(ctx context.Context) (*protocol.MemReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vm, err := gopsutilmem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("sampler: virtual memory: %w", err)
	}
	sw, err := gopsutilmem.SwapMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("sampler: swap memory: %w", err)
	}
	return &protocol.MemReport{
		RAM:  protocol.UsageData{Used: vm.Used, Total: vm.Total},
		Swap: protocol.UsageData{Used: sw.Used, Total: sw.Total},
	}, nil
}

// Temp enumerates thermal components and reports the one whose label
// contains coreTempSensorLabel, falling back to the first reported
// component. If the host exposes no thermal components at all, Temp
// returns a report with no value rather than an error.
func (s *Set) Temp(ctx context.Context) (*protocol.TempReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	temps, err := gopsutilhost.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		log.Printf("sampler: temp: %v (continuing with reported sensors, if any)", err)
	}
	chosen := pickTemperatureSensor(temps)
	if chosen == nil {
		return &protocol.TempReport{Celsius: nil}, nil
	}
	v := roundTo2(chosen.Temperature)
	return &protocol.TempReport{Celsius: &v}, nil
}

// pickTemperatureSensor implements the selection rule in isolation from
// gopsutil so it can be exercised directly: prefer a sensor whose key
// contains coreTempSensorLabel, else the first in the list, else none.
func pickTemperatureSensor(temps []gopsutilhost.TemperatureStat) *gopsutilhost.TemperatureStat {
	if len(temps) == 0 {
		return nil
	}
	for i := range temps {
		if strings.Contains(temps[i].SensorKey, coreTempSensorLabel) {
			return &temps[i]
		}
	}
	return &temps[0]
}

// Disk reports usage for each configured allow-listed mount path.
// Mounts that cannot be statted are logged and skipped rather than
// failing the whole report.
func (s *Set) Disk(ctx context.Context) (*protocol.DiskReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	partitions, err := gopsutildisk.PartitionsWithContext(ctx, false)
	if err != nil {
		log.Printf("sampler: disk: list partitions: %v (device names will be unavailable)", err)
	}
	deviceForMount := make(map[string]string, len(partitions))
	for _, p := range partitions {
		deviceForMount[p.Mountpoint] = p.Device
	}

	entries := make([]protocol.DiskEntry, 0, len(s.disks))
	for _, mount := range s.disks {
		usage, err := gopsutildisk.UsageWithContext(ctx, mount)
		if err != nil {
			log.Printf("sampler: disk: skipping %s: %v", mount, err)
			continue
		}
		entries = append(entries, protocol.DiskEntry{
			Name:  diskEntryName(deviceForMount[mount], usage.Path),
			Mount: mount,
			Usage: protocol.UsageData{Used: usage.Used, Total: usage.Total},
		})
	}
	return &protocol.DiskReport{Disks: entries}, nil
}

// diskEntryName picks the device name reported for DiskEntry.Name: the
// partition's device if gopsutil resolved one for this mount, else the
// mount path itself as a last resort.
func diskEntryName(device, fallbackPath string) string {
	if device != "" {
		return device
	}
	return fallbackPath
}

// Network sums sent/received byte counters across all interfaces. The
// counters are cumulative since the host booted (or the interface was
// brought up), not a delta since the previous call; a freshly attached
// interface may legitimately report 0 until traffic flows.
func (s *Set) Network(ctx context.Context) (*protocol.NetReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters, err := gopsutilnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("sampler: network: %w", err)
	}
	var sent, recv uint64
	for _, c := range counters {
		sent += c.BytesSent
		recv += c.BytesRecv
	}
	return &protocol.NetReport{Sent: sent, Recv: recv}, nil
}
