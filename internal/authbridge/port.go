package authbridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// ErrPortClosed reports a post on a closed port.
var ErrPortClosed = errors.New("authbridge: port closed")

// Inbound is a message received from the peer: the raw payload, the origin
// label of the sender, and a way to reply to that sender.
type Inbound struct {
	Origin  string
	Payload []byte
	Reply   func(ctx context.Context, msg Message) error
}

// Port is one end of a message channel between a host and an embedded
// client. Recv's channel is closed when the peer goes away.
type Port interface {
	// Post sends a message to the peer.
	Post(ctx context.Context, msg Message) error

	// Recv returns the stream of messages arriving from the peer.
	Recv() <-chan Inbound

	// Close releases the port. Posting on a closed port fails with ErrPortClosed.
	Close() error
}

// pipePort is one end of an in-process port pair.
type pipePort struct {
	origin string // label attributed to messages this end sends
	peer   *pipePort

	in     chan Inbound
	closed chan struct{}
	once   sync.Once
}

// Compile-time check to ensure pipePort implements Port
var _ Port = (*pipePort)(nil)

// Pipe returns two connected in-process ports. Messages posted on one end
// arrive on the other, attributed to the posting end's origin label.
func Pipe(originA, originB string) (Port, Port) {
	a := &pipePort{origin: originA, in: make(chan Inbound, 8), closed: make(chan struct{})}
	b := &pipePort{origin: originB, in: make(chan Inbound, 8), closed: make(chan struct{})}
	a.peer = b
	b.peer = a
	return a, b
}

func (p *pipePort) Post(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	inb := Inbound{
		Origin:  p.origin,
		Payload: payload,
		// Replies travel back through the receiving end's own port.
		Reply: p.peer.Post,
	}

	select {
	case p.peer.in <- inb:
		return nil
	case <-p.peer.closed:
		return ErrPortClosed
	case <-p.closed:
		return ErrPortClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipePort) Recv() <-chan Inbound {
	return p.in
}

func (p *pipePort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

// StreamPort frames messages as newline-delimited JSON over a byte stream,
// typically the stdin/stdout pair between an embedding host and the client
// process. Log output must go elsewhere when the stream is stdout.
type StreamPort struct {
	peerOrigin string
	r          io.Reader
	w          io.Writer
	wmu        sync.Mutex
	in         chan Inbound
}

// Compile-time check to ensure StreamPort implements Port
var _ Port = (*StreamPort)(nil)

// NewStreamPort creates a StreamPort reading peer messages from r and
// posting to w. Messages arriving on r are attributed to peerOrigin.
func NewStreamPort(r io.Reader, w io.Writer, peerOrigin string) *StreamPort {
	p := &StreamPort{
		peerOrigin: peerOrigin,
		r:          r,
		w:          w,
		in:         make(chan Inbound, 8),
	}
	go p.readLoop()
	return p
}

// readLoop delivers one Inbound per non-empty line until the reader ends.
func (p *StreamPort) readLoop() {
	defer close(p.in)

	scanner := bufio.NewScanner(p.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		payload := make([]byte, len(line))
		copy(payload, line)
		p.in <- Inbound{
			Origin:  p.peerOrigin,
			Payload: payload,
			Reply:   p.Post,
		}
	}
}

func (p *StreamPort) Post(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')

	p.wmu.Lock()
	defer p.wmu.Unlock()
	_, err = p.w.Write(payload)
	return err
}

func (p *StreamPort) Recv() <-chan Inbound {
	return p.in
}

// Close closes the underlying stream ends that support closing. Closing
// the reader ends the read loop and closes the Recv channel.
func (p *StreamPort) Close() error {
	var errs []error
	if c, ok := p.r.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := p.w.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
