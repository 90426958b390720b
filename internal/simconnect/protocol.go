package simconnect

import (
	"encoding/binary"
	"fmt"
)

const (
	HeaderSize      = 16
	ProtocolVersion = 4
)

// Message types.
const (
	MsgOpen          = 0x0001
	MsgClose         = 0x0002
	MsgRequestData   = 0x0003
	MsgAddToDataDef  = 0x0005
	MsgSimObjectData = 0x0100
	MsgException     = 0x0101
)

// Header is the 16-byte little-endian frame header.
type Header struct {
	Size    uint32
	Version uint32
	Type    uint32
	ID      uint32
}

// EncodeHeader builds a header whose Size covers the header and payload.
func EncodeHeader(msgType, msgID uint32, payloadSize int) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(HeaderSize+payloadSize)) //nolint:gosec // frame sizes are small
	binary.LittleEndian.PutUint32(buf[4:8], ProtocolVersion)
	binary.LittleEndian.PutUint32(buf[8:12], msgType)
	binary.LittleEndian.PutUint32(buf[12:16], msgID)
	return buf
}

// DecodeHeader parses a header from the first HeaderSize bytes of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header has %d bytes, need %d", ErrBadFrame, len(data), HeaderSize)
	}
	return Header{
		Size:    binary.LittleEndian.Uint32(data[0:4]),
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Type:    binary.LittleEndian.Uint32(data[8:12]),
		ID:      binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}

// ExceptionSendID extracts the send ID of the message an exception refers to.
// The payload starts with the exception code followed by the send ID.
func ExceptionSendID(payload []byte) (code, sendID uint32, err error) {
	if len(payload) < 8 {
		return 0, 0, fmt.Errorf("%w: exception has %d bytes, need 8", ErrShortPayload, len(payload))
	}
	return binary.LittleEndian.Uint32(payload[0:4]), binary.LittleEndian.Uint32(payload[4:8]), nil
}
