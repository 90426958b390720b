package simconnect

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eytandecker/vn-diagram/pkg/types"
)

// Config holds SimConnect client configuration.
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
	AppName string
}

// ConnectionState represents the client's connection lifecycle.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// Client manages a framed TCP connection to SimConnect.
type Client struct {
	config Config
	conn   net.Conn
	state  atomic.Int32
	mu     sync.Mutex
	sendID atomic.Uint32
}

// NewClient creates a new SimConnect client.
func NewClient(cfg Config) *Client {
	c := &Client{config: cfg}
	c.state.Store(int32(StateDisconnected))
	return c
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Connect dials SimConnect and sends the OPEN message. Dial failures are
// returned as recoverable *types.SimulatorError.
func (c *Client) Connect(ctx context.Context) error {
	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
	dialer := net.Dialer{Timeout: c.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &types.SimulatorError{
			Err:         fmt.Errorf("%w: %w", ErrConnectionRefused, err),
			Message:     "dial " + addr,
			Recoverable: true,
		}
	}
	if err := c.connectWithConn(ctx, conn); err != nil {
		_ = conn.Close()
		return err
	}
	return nil
}

// connectWithConn performs the OPEN handshake on an existing net.Conn.
func (c *Client) connectWithConn(ctx context.Context, conn net.Conn) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("simconnect connect: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(StateConnecting))
	c.conn = conn

	appName := append([]byte(c.config.AppName), 0)
	if _, err := c.sendLocked(MsgOpen, appName); err != nil {
		c.conn = nil
		c.state.Store(int32(StateDisconnected))
		return fmt.Errorf("simconnect open: %w", err)
	}

	c.state.Store(int32(StateConnected))
	return nil
}

// Close sends a CLOSE message and shuts down the TCP connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	// Best effort: the peer may already be gone.
	_, _ = c.sendLocked(MsgClose, nil)

	err := c.conn.Close()
	c.conn = nil
	c.state.Store(int32(StateDisconnected))
	return err
}

// sendMessage frames and writes one message, returning its send ID.
func (c *Client) sendMessage(msgType uint32, payload []byte) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendLocked(msgType, payload)
}

// sendLocked writes a message; caller must hold c.mu.
func (c *Client) sendLocked(msgType uint32, payload []byte) (uint32, error) {
	if c.conn == nil {
		return 0, ErrNotConnected
	}

	id := c.sendID.Add(1)
	frame := append(EncodeHeader(msgType, id, len(payload)), payload...)
	if _, err := c.conn.Write(frame); err != nil {
		return 0, fmt.Errorf("write message 0x%04x: %w", msgType, err)
	}
	return id, nil
}

// ReadNext reads the next complete framed message from the connection.
func (c *Client) ReadNext() (Header, []byte, error) {
	return c.readMessage()
}

func (c *Client) readMessage() (Header, []byte, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return Header{}, nil, ErrNotConnected
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(conn, headerBuf); err != nil {
		return Header{}, nil, fmt.Errorf("read header: %w", err)
	}

	h, err := DecodeHeader(headerBuf)
	if err != nil {
		return Header{}, nil, err
	}
	if h.Size < HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: size %d", ErrBadFrame, h.Size)
	}

	payloadSize := h.Size - HeaderSize
	if payloadSize == 0 {
		return h, nil, nil
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return Header{}, nil, fmt.Errorf("read payload: %w", err)
	}
	return h, payload, nil
}

// AddToDataDefinition registers simvar under the given definition ID.
//
// Payload: defID uint32, var name and unit name as NUL-terminated strings,
// data type uint32.
func (c *Client) AddToDataDefinition(defID uint32, simvar SimVarDef) error {
	if err := simvar.Validate(); err != nil {
		return err
	}
	payload := make([]byte, 0, 4+len(simvar.Name)+1+len(simvar.Unit)+1+4)
	payload = binary.LittleEndian.AppendUint32(payload, defID)
	payload = append(payload, simvar.Name...)
	payload = append(payload, 0)
	payload = append(payload, simvar.Unit...)
	payload = append(payload, 0)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(simvar.DataType)) //nolint:gosec // small enum

	_, err := c.sendMessage(MsgAddToDataDef, payload)
	return err
}

// RequestData asks for one SimObjectData response.
// Payload: requestID, defID, objectID, each uint32.
func (c *Client) RequestData(defID, objectID, requestID uint32) (uint32, error) {
	payload := make([]byte, 0, 12)
	payload = binary.LittleEndian.AppendUint32(payload, requestID)
	payload = binary.LittleEndian.AppendUint32(payload, defID)
	payload = binary.LittleEndian.AppendUint32(payload, objectID)

	return c.sendMessage(MsgRequestData, payload)
}
