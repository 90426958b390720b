package simconnect

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eytandecker/vn-diagram/pkg/types"
)

func defaultTestConfig() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    4500,
		Timeout: 5 * time.Second,
		AppName: "test-app",
	}
}

type frame struct {
	h       Header
	payload []byte
}

// drainOneMessage reads one framed message from conn.
func drainOneMessage(conn net.Conn) (Header, []byte, error) {
	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(conn, headerBuf); err != nil {
		return Header{}, nil, err
	}
	h, err := DecodeHeader(headerBuf)
	if err != nil {
		return Header{}, nil, err
	}
	payloadSize := h.Size - HeaderSize
	if payloadSize == 0 {
		return h, nil, nil
	}
	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return Header{}, nil, err
	}
	return h, payload, nil
}

// drainAsync reads the next message on a goroutine and delivers it on the returned channel.
func drainAsync(conn net.Conn) <-chan frame {
	ch := make(chan frame, 1)
	go func() {
		h, p, err := drainOneMessage(conn)
		if err == nil {
			ch <- frame{h, p}
		}
	}()
	return ch
}

// discard keeps reading from conn so client writes never block.
func discard(conn net.Conn) {
	go func() { _, _ = io.Copy(io.Discard, conn) }()
}

// connectAndDrainOpen connects c over a pipe and consumes the OPEN message.
func connectAndDrainOpen(t *testing.T, c *Client) (clientConn, serverConn net.Conn) {
	t.Helper()
	clientConn, serverConn = net.Pipe()
	t.Cleanup(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})

	open := drainAsync(serverConn)
	require.NoError(t, c.connectWithConn(context.Background(), clientConn))
	select {
	case <-open:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for OPEN message")
	}
	return clientConn, serverConn
}

func TestNewClient(t *testing.T) {
	cfg := defaultTestConfig()
	c := NewClient(cfg)
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, cfg.AppName, c.config.AppName)
}

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "unknown(7)", ConnectionState(7).String())
}

func TestConnectSendsOpenMessage(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()
	cfg := defaultTestConfig()
	c := NewClient(cfg)

	open := drainAsync(serverConn)
	require.NoError(t, c.connectWithConn(context.Background(), clientConn))

	select {
	case msg := <-open:
		assert.Equal(t, uint32(MsgOpen), msg.h.Type)
		assert.Equal(t, uint32(ProtocolVersion), msg.h.Version)
		assert.Equal(t, cfg.AppName+"\x00", string(msg.payload))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for OPEN message")
	}
	assert.Equal(t, StateConnected, c.State())
	clientConn.Close()
}

func TestConnectWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(defaultTestConfig())
	err := c.connectWithConn(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConnectRefusedIsRecoverable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	c := NewClient(Config{Host: "127.0.0.1", Port: addr.Port, Timeout: time.Second, AppName: "t"})
	err = c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionRefused)
	assert.True(t, types.IsRecoverable(err))
	assert.Contains(t, err.Error(), strconv.Itoa(addr.Port))
	assert.Equal(t, StateDisconnected, c.State())
}

func TestCloseSendsCloseMessage(t *testing.T) {
	c := NewClient(defaultTestConfig())
	_, serverConn := connectAndDrainOpen(t, c)

	closing := drainAsync(serverConn)
	require.NoError(t, c.Close())
	assert.Equal(t, StateDisconnected, c.State())

	select {
	case msg := <-closing:
		assert.Equal(t, uint32(MsgClose), msg.h.Type)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for CLOSE message")
	}
}

func TestDoubleCloseIsSafe(t *testing.T) {
	c := NewClient(defaultTestConfig())
	_, serverConn := connectAndDrainOpen(t, c)
	discard(serverConn)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestSendMessageWritesFrameAndIncrementsID(t *testing.T) {
	c := NewClient(defaultTestConfig())
	_, serverConn := connectAndDrainOpen(t, c)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	got := drainAsync(serverConn)

	id, err := c.sendMessage(0x9999, payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), id, "OPEN used send ID 1")

	select {
	case msg := <-got:
		assert.Equal(t, uint32(0x9999), msg.h.Type)
		assert.Equal(t, uint32(HeaderSize+4), msg.h.Size)
		assert.Equal(t, id, msg.h.ID)
		assert.Equal(t, payload, msg.payload)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestSendWithoutConnection(t *testing.T) {
	c := NewClient(defaultTestConfig())
	_, err := c.sendMessage(MsgRequestData, nil)
	assert.ErrorIs(t, err, ErrNotConnected)

	_, _, err = c.ReadNext()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestReadMessage(t *testing.T) {
	c := NewClient(defaultTestConfig())
	_, serverConn := connectAndDrainOpen(t, c)

	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, 0xCAFEBABEDEADBEEF)

	go func() {
		_, _ = serverConn.Write(append(EncodeHeader(MsgSimObjectData, 42, len(payload)), payload...))
	}()

	h, data, err := c.ReadNext()
	require.NoError(t, err)
	assert.Equal(t, uint32(MsgSimObjectData), h.Type)
	assert.Equal(t, uint32(42), h.ID)
	assert.Equal(t, payload, data)
}

func TestReadMessageRejectsUndersizedFrame(t *testing.T) {
	c := NewClient(defaultTestConfig())
	_, serverConn := connectAndDrainOpen(t, c)

	go func() {
		h := EncodeHeader(MsgSimObjectData, 1, 0)
		binary.LittleEndian.PutUint32(h[0:4], 4)
		_, _ = serverConn.Write(h)
	}()

	_, _, err := c.ReadNext()
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestAddToDataDefinition(t *testing.T) {
	c := NewClient(defaultTestConfig())
	_, serverConn := connectAndDrainOpen(t, c)

	got := drainAsync(serverConn)
	require.NoError(t, c.AddToDataDefinition(DefIDFlightLoad, GForce))

	select {
	case msg := <-got:
		assert.Equal(t, uint32(MsgAddToDataDef), msg.h.Type)

		p := msg.payload
		assert.Equal(t, DefIDFlightLoad, binary.LittleEndian.Uint32(p[0:4]))

		nameEnd := 4
		for nameEnd < len(p) && p[nameEnd] != 0 {
			nameEnd++
		}
		assert.Equal(t, "G FORCE", string(p[4:nameEnd]))

		unitStart := nameEnd + 1
		unitEnd := unitStart
		for unitEnd < len(p) && p[unitEnd] != 0 {
			unitEnd++
		}
		assert.Equal(t, "GForce", string(p[unitStart:unitEnd]))

		dt := binary.LittleEndian.Uint32(p[unitEnd+1 : unitEnd+5])
		assert.Equal(t, uint32(DataTypeFloat64), dt)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestAddToDataDefinitionRejectsInvalidDef(t *testing.T) {
	c := NewClient(defaultTestConfig())

	err := c.AddToDataDefinition(DefIDFlightLoad, SimVarDef{Name: "G FORCE"})
	assert.ErrorIs(t, err, ErrInvalidSimVar)
	assert.NotErrorIs(t, err, ErrNotConnected)
}

func TestRequestData(t *testing.T) {
	c := NewClient(defaultTestConfig())
	_, serverConn := connectAndDrainOpen(t, c)

	got := drainAsync(serverConn)
	_, err := c.RequestData(DefIDFlightLoad, ObjectIDUser, 100)
	require.NoError(t, err)

	select {
	case msg := <-got:
		assert.Equal(t, uint32(MsgRequestData), msg.h.Type)
		require.Len(t, msg.payload, 12)
		assert.Equal(t, uint32(100), binary.LittleEndian.Uint32(msg.payload[0:4]))
		assert.Equal(t, DefIDFlightLoad, binary.LittleEndian.Uint32(msg.payload[4:8]))
		assert.Equal(t, ObjectIDUser, binary.LittleEndian.Uint32(msg.payload[8:12]))
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}
