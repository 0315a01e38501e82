package protocol

import (
	"fmt"

	"github.com/strand-protocol/fleetwatch/internal/wirebuf"
)

// Allocation-bomb guards: cap collection sizes read from the wire so a
// malformed or hostile peer cannot exhaust memory with one crafted frame.
const (
	maxCoreCount = 1024
	maxDiskCount = 256
)

// Handshake is always the first frame an agent sends, with frame id 0.
// The Hub rejects the connection if ProtocolVersion does not exactly
// match its own.
type Handshake struct {
	Nickname        string
	ProtocolVersion uint32
}

func (h *Handshake) Encode(buf *wirebuf.Buffer) {
	buf.WriteString(h.Nickname)
	buf.WriteUint32(h.ProtocolVersion)
}

func (h *Handshake) Decode(r *wirebuf.Reader) error {
	var err error
	if h.Nickname, err = r.ReadString(); err != nil {
		return err
	}
	if h.ProtocolVersion, err = r.ReadUint32(); err != nil {
		return err
	}
	return nil
}

// UsageData reports bytes used out of a total, for memory, swap, and disk
// mounts alike.
type UsageData struct {
	Used  uint64
	Total uint64
}

func (u *UsageData) Encode(buf *wirebuf.Buffer) {
	buf.WriteUint64(u.Used)
	buf.WriteUint64(u.Total)
}

func (u *UsageData) Decode(r *wirebuf.Reader) error {
	var err error
	if u.Used, err = r.ReadUint64(); err != nil {
		return err
	}
	if u.Total, err = r.ReadUint64(); err != nil {
		return err
	}
	return nil
}

// CpuReport carries global and per-core usage percentages, 0-100, rounded
// to two decimal places by the sampler.
type CpuReport struct {
	Global  float32
	PerCore []float32
}

func (c *CpuReport) Encode(buf *wirebuf.Buffer) {
	buf.WriteFloat32(c.Global)
	buf.WriteList(len(c.PerCore))
	for _, v := range c.PerCore {
		buf.WriteFloat32(v)
	}
}

func (c *CpuReport) Decode(r *wirebuf.Reader) error {
	var err error
	if c.Global, err = r.ReadFloat32(); err != nil {
		return err
	}
	n, err := r.ReadList()
	if err != nil {
		return err
	}
	if n > maxCoreCount {
		return fmt.Errorf("protocol: per_core count %d exceeds max %d", n, maxCoreCount)
	}
	c.PerCore = make([]float32, n)
	for i := range c.PerCore {
		if c.PerCore[i], err = r.ReadFloat32(); err != nil {
			return err
		}
	}
	return nil
}

// TempReport carries a single temperature reading, or none if the host
// exposes no usable thermal component.
type TempReport struct {
	Celsius *float32
}

func (t *TempReport) Encode(buf *wirebuf.Buffer) {
	buf.WriteBool(t.Celsius != nil)
	if t.Celsius != nil {
		buf.WriteFloat32(*t.Celsius)
	}
}

func (t *TempReport) Decode(r *wirebuf.Reader) error {
	has, err := r.ReadBool()
	if err != nil {
		return err
	}
	if !has {
		t.Celsius = nil
		return nil
	}
	v, err := r.ReadFloat32()
	if err != nil {
		return err
	}
	t.Celsius = &v
	return nil
}

// MemReport carries RAM and swap usage.
type MemReport struct {
	RAM  UsageData
	Swap UsageData
}

func (m *MemReport) Encode(buf *wirebuf.Buffer) {
	m.RAM.Encode(buf)
	m.Swap.Encode(buf)
}

func (m *MemReport) Decode(r *wirebuf.Reader) error {
	if err := m.RAM.Decode(r); err != nil {
		return err
	}
	return m.Swap.Decode(r)
}

// DiskEntry is one mounted filesystem matched against the agent's
// configured allow-list.
type DiskEntry struct {
	Name  string
	Mount string
	Usage UsageData
}

func (d *DiskEntry) Encode(buf *wirebuf.Buffer) {
	buf.WriteString(d.Name)
	buf.WriteString(d.Mount)
	d.Usage.Encode(buf)
}

func (d *DiskEntry) Decode(r *wirebuf.Reader) error {
	var err error
	if d.Name, err = r.ReadString(); err != nil {
		return err
	}
	if d.Mount, err = r.ReadString(); err != nil {
		return err
	}
	return d.Usage.Decode(r)
}

// DiskReport carries one entry per allow-listed mount.
type DiskReport struct {
	Disks []DiskEntry
}

func (d *DiskReport) Encode(buf *wirebuf.Buffer) {
	buf.WriteList(len(d.Disks))
	for i := range d.Disks {
		d.Disks[i].Encode(buf)
	}
}

func (d *DiskReport) Decode(r *wirebuf.Reader) error {
	n, err := r.ReadList()
	if err != nil {
		return err
	}
	if n > maxDiskCount {
		return fmt.Errorf("protocol: disk count %d exceeds max %d", n, maxDiskCount)
	}
	d.Disks = make([]DiskEntry, n)
	for i := range d.Disks {
		if err := d.Disks[i].Decode(r); err != nil {
			return err
		}
	}
	return nil
}

// NetReport carries monotonic byte counters summed across interfaces,
// cumulative since the host booted (not since the agent process started).
type NetReport struct {
	Sent uint64
	Recv uint64
}

func (n *NetReport) Encode(buf *wirebuf.Buffer) {
	buf.WriteUint64(n.Sent)
	buf.WriteUint64(n.Recv)
}

func (n *NetReport) Decode(r *wirebuf.Reader) error {
	var err error
	if n.Sent, err = r.ReadUint64(); err != nil {
		return err
	}
	if n.Recv, err = r.ReadUint64(); err != nil {
		return err
	}
	return nil
}

// Response is the decoded form of an AgentResponse frame payload: exactly
// one of the pointer fields matching Tag is populated. Response is used
// both as the wire-decoded value and as the value stored in the
// ResponseCache, so its Tag must always equal the field that is set.
type Response struct {
	Tag       Tag
	Handshake *Handshake
	Cpu       *CpuReport
	Temp      *TempReport
	Mem       *MemReport
	Disk      *DiskReport
	NetIO     *NetReport
}

// EncodeResponse serialises a Response into a frame payload, tag byte
// first.
func EncodeResponse(resp Response) ([]byte, error) {
	buf := wirebuf.NewBuffer(64)
	buf.WriteUint8(byte(resp.Tag))
	switch resp.Tag {
	case TagHandshake:
		if resp.Handshake == nil {
			return nil, fmt.Errorf("protocol: encode response: Handshake tag with nil value")
		}
		resp.Handshake.Encode(buf)
	case TagCpu:
		if resp.Cpu == nil {
			return nil, fmt.Errorf("protocol: encode response: Cpu tag with nil value")
		}
		resp.Cpu.Encode(buf)
	case TagTemp:
		if resp.Temp == nil {
			return nil, fmt.Errorf("protocol: encode response: Temp tag with nil value")
		}
		resp.Temp.Encode(buf)
	case TagMem:
		if resp.Mem == nil {
			return nil, fmt.Errorf("protocol: encode response: Mem tag with nil value")
		}
		resp.Mem.Encode(buf)
	case TagDisk:
		if resp.Disk == nil {
			return nil, fmt.Errorf("protocol: encode response: Disk tag with nil value")
		}
		resp.Disk.Encode(buf)
	case TagNetIO:
		if resp.NetIO == nil {
			return nil, fmt.Errorf("protocol: encode response: NetIO tag with nil value")
		}
		resp.NetIO.Encode(buf)
	default:
		return nil, fmt.Errorf("protocol: encode response: unsupported tag %s", resp.Tag)
	}
	return buf.Bytes(), nil
}

// DecodeResponse reads a Response from a frame payload.
func DecodeResponse(payload []byte) (Response, error) {
	r := wirebuf.NewReader(payload)
	tagByte, err := r.ReadUint8()
	if err != nil {
		return Response{}, fmt.Errorf("protocol: decode response: %w", err)
	}
	tag := Tag(tagByte)
	resp := Response{Tag: tag}
	switch tag {
	case TagHandshake:
		h := &Handshake{}
		if err := h.Decode(r); err != nil {
			return Response{}, fmt.Errorf("protocol: decode handshake: %w", err)
		}
		resp.Handshake = h
	case TagCpu:
		v := &CpuReport{}
		if err := v.Decode(r); err != nil {
			return Response{}, fmt.Errorf("protocol: decode cpu: %w", err)
		}
		resp.Cpu = v
	case TagTemp:
		v := &TempReport{}
		if err := v.Decode(r); err != nil {
			return Response{}, fmt.Errorf("protocol: decode temp: %w", err)
		}
		resp.Temp = v
	case TagMem:
		v := &MemReport{}
		if err := v.Decode(r); err != nil {
			return Response{}, fmt.Errorf("protocol: decode mem: %w", err)
		}
		resp.Mem = v
	case TagDisk:
		v := &DiskReport{}
		if err := v.Decode(r); err != nil {
			return Response{}, fmt.Errorf("protocol: decode disk: %w", err)
		}
		resp.Disk = v
	case TagNetIO:
		v := &NetReport{}
		if err := v.Decode(r); err != nil {
			return Response{}, fmt.Errorf("protocol: decode net_io: %w", err)
		}
		resp.NetIO = v
	default:
		return Response{}, fmt.Errorf("protocol: decode response: unsupported tag %d", tagByte)
	}
	return resp, nil
}
