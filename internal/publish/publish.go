package publish

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pebbe/zmq4"

	"kinect-show-go/internal/output"
	"kinect-show-go/internal/types"
)

// Publisher pushes encoded frames to downstream consumers over a ZMQ PUSH socket.
type Publisher struct {
	mu       sync.Mutex
	socket   *zmq4.Socket
	seriesID string
	sent     int
}

// NewPublisher binds a PUSH socket on endpoint, e.g. "tcp://*:31001".
func NewPublisher(endpoint string, seriesID string) (*Publisher, error) {
	if endpoint == "" {
		return nil, errors.New("publish endpoint is empty")
	}
	socket, err := zmq4.NewSocket(zmq4.PUSH)
	if err != nil {
		return nil, err
	}
	// Do not block Close on undelivered frames.
	if err := socket.SetLinger(0); err != nil {
		_ = socket.Close()
		return nil, err
	}
	if err := socket.Bind(endpoint); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("bind %s: %w", endpoint, err)
	}
	return &Publisher{socket: socket, seriesID: seriesID}, nil
}

// Publish encodes frame and sends it. It returns the encoded payload so the
// caller can also write it to a raw log.
func (p *Publisher) Publish(frame types.RecordingFrame) ([]byte, error) {
	payload, err := output.EncodeFrame(frame, p.seriesID)
	if err != nil {
		return nil, err
	}
	if err := p.Send(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Send pushes an already encoded payload.
func (p *Publisher) Send(payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.socket == nil {
		return errors.New("publisher is closed")
	}
	if _, err := p.socket.SendBytes(payload, 0); err != nil {
		return err
	}
	p.sent++
	return nil
}

func (p *Publisher) Sent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.socket == nil {
		return nil
	}
	err := p.socket.Close()
	p.socket = nil
	return err
}
