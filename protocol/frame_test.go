package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"strings"
	"testing"
)

func TestPacketEncoding(t *testing.T) {
	tests := []struct {
		name        string
		packet      *Packet
		wantPayload []byte
	}{
		{
			name: "request with data",
			packet: &Packet{
				From:    CoordinatorAddress,
				To:      3,
				Seq:     42,
				Payload: &Request{Cmd: CmdWrite, Sensor: 1, Data: []byte{1}},
			},
			wantPayload: []byte{byte(CmdWrite), 1, 1},
		},
		{
			name: "response",
			packet: &Packet{
				From:    3,
				To:      CoordinatorAddress,
				Seq:     7,
				Payload: NewResponse(CmdRead, 2, []byte{0x50, 0x01, 0xA0}),
			},
			wantPayload: []byte{byte(CmdRead), 2, 3, 0x50, 0x01, 0xA0},
		},
		{
			name: "presentation request",
			packet: &Packet{
				From:    CoordinatorAddress,
				To:      2,
				Payload: &PresentationRequest{},
			},
			wantPayload: []byte{},
		},
		{
			name: "presentation",
			packet: &Packet{
				From:    2,
				To:      CoordinatorAddress,
				Payload: &Presentation{Count: 3, Types: [MaxSensors]byte{3, 0, 132}},
			},
			wantPayload: []byte{3, 3, 0, 132, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodePacket(tt.packet)
			if err != nil {
				t.Fatalf("EncodePacket() error = %v", err)
			}

			wantLen := FrameHeaderSize + len(tt.wantPayload) + CRCSize + TerminalSize
			if len(encoded) != wantLen {
				t.Fatalf("EncodePacket() size = %v, want %v", len(encoded), wantLen)
			}
			if encoded[0] != byte(len(encoded)-1) {
				t.Errorf("Length byte = %v, want %v", encoded[0], len(encoded)-1)
			}
			if Address(encoded[1]) != tt.packet.From || Address(encoded[2]) != tt.packet.To {
				t.Errorf("addresses = %d->%d, want %d->%d", encoded[1], encoded[2], tt.packet.From, tt.packet.To)
			}
			if Type(encoded[3]) != tt.packet.Type() {
				t.Errorf("Type = %v, want %v", Type(encoded[3]), tt.packet.Type())
			}
			if encoded[4] != tt.packet.Seq {
				t.Errorf("Seq = %v, want %v", encoded[4], tt.packet.Seq)
			}

			crcPos := FrameHeaderSize + len(tt.wantPayload)
			if got := encoded[FrameHeaderSize:crcPos]; !bytes.Equal(got, tt.wantPayload) {
				t.Errorf("payload = %v, want %v", got, tt.wantPayload)
			}
			gotCRC := binary.LittleEndian.Uint32(encoded[crcPos : crcPos+CRCSize])
			if want := crc32.ChecksumIEEE(encoded[1:crcPos]); gotCRC != want {
				t.Errorf("CRC = %v, want %v", gotCRC, want)
			}
			if encoded[len(encoded)-1] != FrameTerminal {
				t.Errorf("Terminal byte = %v, want %v", encoded[len(encoded)-1], FrameTerminal)
			}
		})
	}
}

func TestPacketRoundTrip(t *testing.T) {
	in := &Packet{
		From:    4,
		To:      CoordinatorAddress,
		Seq:     200,
		Payload: NewResponse(CmdCalibrationRead, 0, []byte{128}),
	}

	encoded, err := EncodePacket(in)
	if err != nil {
		t.Fatalf("EncodePacket() error = %v", err)
	}
	out, err := DecodePacket(encoded)
	if err != nil {
		t.Fatalf("DecodePacket() error = %v", err)
	}

	if out.From != in.From || out.To != in.To || out.Seq != in.Seq {
		t.Errorf("header = %v, want %v", out, in)
	}
	res, ok := out.Payload.(*Response)
	if !ok {
		t.Fatalf("payload type = %T, want *Response", out.Payload)
	}
	if res.Cmd != CmdCalibrationRead || res.Sensor != 0 || res.Len != 1 || !bytes.Equal(res.Payload(), []byte{128}) {
		t.Errorf("response = %+v", res)
	}
}

func TestEncodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		packet *Packet
	}{
		{name: "nil packet", packet: nil},
		{name: "nil payload", packet: &Packet{To: 2}},
		{
			name:   "oversized request data",
			packet: &Packet{To: 2, Payload: &Request{Data: bytes.Repeat([]byte{1}, MaxRequestData+1)}},
		},
		{
			name:   "oversized response data",
			packet: &Packet{To: 1, Payload: NewResponse(CmdRead, 0, bytes.Repeat([]byte{1}, MaxResponseData+1))},
		},
		{
			name:   "presentation count too large",
			packet: &Packet{To: 1, Payload: &Presentation{Count: MaxSensors + 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodePacket(tt.packet); err == nil {
				t.Errorf("EncodePacket() error = nil, want error")
			}
		})
	}
}

func TestDecodeInvalidFrames(t *testing.T) {
	valid := func() []byte {
		data, err := EncodePacket(&Packet{From: 1, To: 3, Seq: 1, Payload: &Request{Cmd: CmdRead, Sensor: 0}})
		if err != nil {
			t.Fatalf("EncodePacket() error = %v", err)
		}
		return data
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "nil data",
			data:    nil,
			wantErr: ErrInvalidFrame,
		},
		{
			name:    "too short",
			data:    []byte{0x01, 0x02},
			wantErr: ErrInvalidFrame,
		},
		{
			name: "bad length byte",
			data: func() []byte {
				data := valid()
				data[0] = 0xFF
				return data
			}(),
			wantErr: ErrInvalidFrame,
		},
		{
			name: "wrong terminal byte",
			data: func() []byte {
				data := valid()
				data[len(data)-1] = 0xAA
				return data
			}(),
			wantErr: ErrInvalidFrame,
		},
		{
			name: "corrupt CRC",
			data: func() []byte {
				data := valid()
				data[FrameHeaderSize+RequestHeaderSize] ^= 0xFF
				return data
			}(),
			wantErr: ErrBadChecksum,
		},
		{
			name: "corrupt header",
			data: func() []byte {
				data := valid()
				data[2] = 9
				return data
			}(),
			wantErr: ErrBadChecksum,
		},
		{
			name: "unknown type",
			data: func() []byte {
				data := valid()
				data[3] = 0x7F
				crcPos := FrameHeaderSize + RequestHeaderSize
				binary.LittleEndian.PutUint32(data[crcPos:], crc32.ChecksumIEEE(data[1:crcPos]))
				return data
			}(),
			wantErr: ErrUnknownType,
		},
		{
			name: "truncated response data",
			data: func() []byte {
				data, _ := EncodePacket(&Packet{From: 3, To: 1, Payload: NewResponse(CmdRead, 0, []byte{1})})
				data[FrameHeaderSize+2] = 5 // declared length beyond payload
				crcPos := FrameHeaderSize + ResponseHeaderSize + 1
				binary.LittleEndian.PutUint32(data[crcPos:], crc32.ChecksumIEEE(data[1:crcPos]))
				return data
			}(),
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodePacket(tt.data)
			if decoded != nil {
				t.Errorf("DecodePacket() = %v, want nil for invalid frame", decoded)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodePacket() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidNodeAddress(t *testing.T) {
	for _, a := range []Address{0, CoordinatorAddress} {
		if ValidNodeAddress(a) {
			t.Errorf("ValidNodeAddress(%d) = true, want false", a)
		}
	}
	for _, a := range []Address{FirstNodeAddress, 3, 254} {
		if !ValidNodeAddress(a) {
			t.Errorf("ValidNodeAddress(%d) = false, want true", a)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		want    Command
		wantErr bool
	}{
		{in: "read", want: CmdRead},
		{in: "WRITE", want: CmdWrite},
		{in: "cal-read", want: CmdCalibrationRead},
		{in: "CALIBRATION_WRITE", want: CmdCalibrationWrite},
		{in: "erase", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseCommand(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommand(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseCommand(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if err == nil && got.String() != strings.ToUpper(tt.in) && !strings.HasPrefix(tt.in, "cal-") {
			t.Errorf("%v.String() does not round trip %q", got, tt.in)
		}
	}
}
