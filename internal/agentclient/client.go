// Package agentclient implements the Agent side of the wire protocol: it
// dials the Hub once, sends the handshake, and then serves inbound
// requests concurrently, dispatching each to a sampler on a bounded pool
// of goroutines so that OS-probing work never blocks the connection's
// I/O loop.
package agentclient

import (
	"context"
	"fmt"
	"log"
	"net"
	"runtime"
	"sync"

	"github.com/strand-protocol/fleetwatch/internal/protocol"
	"github.com/strand-protocol/fleetwatch/internal/wire"
)

// Sampler is the narrow interface Client dispatches requests to. *sampler.Set
// satisfies it; tests substitute a fake.
type Sampler interface {
	Cpu(ctx context.Context) (*protocol.CpuReport, error)
	Mem(ctx context.Context) (*protocol.MemReport, error)
	Temp(ctx context.Context) (*protocol.TempReport, error)
	Disk(ctx context.Context) (*protocol.DiskReport, error)
	Network(ctx context.Context) (*protocol.NetReport, error)
}

// outboxCapacity bounds how many completed responses may wait to be
// written before a sampler goroutine blocks handing its result back.
const outboxCapacity = 64

// Client owns one outbound TCP connection to the Hub.
type Client struct {
	conn     net.Conn
	nickname string
	samplers Sampler

	sem chan struct{}
	out chan frameOut
}

type frameOut struct {
	id      uint16
	payload []byte
}

// Dial connects to addr and returns a Client ready for Run. poolSize
// bounds the number of concurrent sampler goroutines; a value <= 0
// defaults to runtime.NumCPU().
func Dial(ctx context.Context, addr string, nickname string, samplers Sampler, poolSize int) (*Client, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("agentclient: connect: %w", err)
	}
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	return &Client{
		conn:     conn,
		nickname: nickname,
		samplers: samplers,
		sem:      make(chan struct{}, poolSize),
		out:      make(chan frameOut, outboxCapacity),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Run sends the handshake and then serves requests until the connection
// closes, ctx is cancelled, or a write fails. It returns the error that
// ended the loop; io.EOF-family errors indicate a clean Hub-initiated
// disconnect.
func (c *Client) Run(ctx context.Context) error {
	if err := c.sendHandshake(); err != nil {
		return err
	}

	frameCh := make(chan wire.Frame)
	errCh := make(chan error, 1)
	go func() {
		for {
			f, err := wire.ReadFrame(c.conn)
			if err != nil {
				errCh <- err
				return
			}
			frameCh <- f
		}
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case f := <-frameCh:
			c.dispatch(ctx, f, &wg)
		case out := <-c.out:
			if err := wire.WriteFrame(c.conn, out.id, out.payload); err != nil {
				return fmt.Errorf("agentclient: write response: %w", err)
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			c.conn.Close()
			return ctx.Err()
		}
	}
}

func (c *Client) sendHandshake() error {
	payload, err := protocol.EncodeResponse(protocol.Response{
		Tag:       protocol.TagHandshake,
		Handshake: &protocol.Handshake{Nickname: c.nickname, ProtocolVersion: protocol.ProtocolVersion},
	})
	if err != nil {
		return fmt.Errorf("agentclient: encode handshake: %w", err)
	}
	if err := wire.WriteFrame(c.conn, 0, payload); err != nil {
		return fmt.Errorf("agentclient: send handshake: %w", err)
	}
	return nil
}

// dispatch decodes a request frame and, if a worker slot is free, spawns a
// goroutine to sample it and queue the response. A request that arrives
// when every worker slot is taken is dropped and logged rather than
// queued unbounded; the Hub will simply see no response, and the caller's
// RequestHandle call returns only when its context ends or the connection
// tears down.
func (c *Client) dispatch(ctx context.Context, f wire.Frame, wg *sync.WaitGroup) {
	tag, err := protocol.DecodeRequestTag(f.Payload)
	if err != nil {
		log.Printf("agentclient: dropping undecodable request id=%d: %v", f.ID, err)
		return
	}

	select {
	case c.sem <- struct{}{}:
	default:
		log.Printf("agentclient: overloaded, dropping request id=%d tag=%s", f.ID, tag)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { <-c.sem }()

		resp, err := c.sample(ctx, tag)
		if err != nil {
			log.Printf("agentclient: sampler error for tag=%s: %v", tag, err)
			return
		}
		payload, err := protocol.EncodeResponse(resp)
		if err != nil {
			log.Printf("agentclient: encode response for tag=%s: %v", tag, err)
			return
		}
		select {
		case c.out <- frameOut{id: f.ID, payload: payload}:
		case <-ctx.Done():
		}
	}()
}

func (c *Client) sample(ctx context.Context, tag protocol.Tag) (protocol.Response, error) {
	switch tag {
	case protocol.TagCpu:
		v, err := c.samplers.Cpu(ctx)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Response{Tag: protocol.TagCpu, Cpu: v}, nil
	case protocol.TagTemp:
		v, err := c.samplers.Temp(ctx)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Response{Tag: protocol.TagTemp, Temp: v}, nil
	case protocol.TagMem:
		v, err := c.samplers.Mem(ctx)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Response{Tag: protocol.TagMem, Mem: v}, nil
	case protocol.TagDisk:
		v, err := c.samplers.Disk(ctx)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Response{Tag: protocol.TagDisk, Disk: v}, nil
	case protocol.TagNetIO:
		v, err := c.samplers.Network(ctx)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Response{Tag: protocol.TagNetIO, NetIO: v}, nil
	default:
		return protocol.Response{}, fmt.Errorf("agentclient: unsupported request tag %s", tag)
	}
}
