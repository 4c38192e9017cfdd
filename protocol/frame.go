package protocol

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Frame layout: Length(1) | From(1) | To(1) | Type(1) | Seq(1) | Payload(0-22) | CRC32(4) | Terminal(1)
// Length counts everything AFTER the length byte (so full Frame minus 1).
// The CRC covers From through the end of Payload.

// EncodePacket serialises a packet into on-air bytes.
func EncodePacket(p *Packet) ([]byte, error) {
	if p == nil || p.Payload == nil {
		return nil, ErrInvalidFrame
	}

	body, err := p.Payload.marshal()
	if err != nil {
		return nil, err
	}
	if len(body) > MaxPayloadSize {
		return nil, ErrInvalidPayload
	}

	bodyLen := headerWithoutLen + len(body) + CRCSize + TerminalSize // bytes AFTER Length field
	totalLen := LengthFieldSize + bodyLen

	data := make([]byte, totalLen)
	data[0] = byte(bodyLen)
	data[1] = byte(p.From)
	data[2] = byte(p.To)
	data[3] = byte(p.Type())
	data[4] = p.Seq
	copy(data[FrameHeaderSize:], body)

	crcPos := FrameHeaderSize + len(body)
	binary.LittleEndian.PutUint32(data[crcPos:crcPos+CRCSize], crc32.ChecksumIEEE(data[LengthFieldSize:crcPos]))

	data[totalLen-1] = FrameTerminal

	return data, nil
}

// DecodePacket parses on-air bytes. Trailing bytes beyond the declared
// length are ignored.
func DecodePacket(data []byte) (*Packet, error) {
	// Must at least fit header + CRC + Terminal
	minLen := FrameHeaderSize + CRCSize + TerminalSize
	if len(data) < minLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidFrame, len(data))
	}

	bodyLen := int(data[0])
	if bodyLen < minLen-LengthFieldSize || LengthFieldSize+bodyLen > len(data) || LengthFieldSize+bodyLen > MaxFrameSize {
		return nil, fmt.Errorf("%w: length byte %d", ErrInvalidFrame, bodyLen)
	}

	if data[LengthFieldSize+bodyLen-1] != FrameTerminal {
		return nil, fmt.Errorf("%w: missing terminal", ErrInvalidFrame)
	}

	payloadLen := bodyLen - headerWithoutLen - CRCSize - TerminalSize
	crcPos := FrameHeaderSize + payloadLen

	recvCRC := binary.LittleEndian.Uint32(data[crcPos : crcPos+CRCSize])
	if recvCRC != crc32.ChecksumIEEE(data[LengthFieldSize:crcPos]) {
		return nil, ErrBadChecksum
	}

	payload, err := unmarshalPayload(Type(data[3]), data[FrameHeaderSize:crcPos])
	if err != nil {
		return nil, fmt.Errorf("type 0x%02x: %w", data[3], err)
	}

	return &Packet{
		From:    Address(data[1]),
		To:      Address(data[2]),
		Seq:     data[4],
		Payload: payload,
	}, nil
}
