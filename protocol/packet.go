package protocol

import "fmt"

// Packet is one logical message on the radio link. The type tag is derived
// from the payload variant, so the two can never disagree.
type Packet struct {
	From    Address
	To      Address
	Seq     uint8
	Payload Payload
}

// Payload is implemented by the four payload variants only.
type Payload interface {
	packetType() Type
	marshal() ([]byte, error)
}

// Type returns the tag of the packet's payload variant.
func (p *Packet) Type() Type {
	if p == nil || p.Payload == nil {
		return 0
	}
	return p.Payload.packetType()
}

func (p *Packet) String() string {
	return fmt.Sprintf("%s from=%d to=%d seq=%d", p.Type(), p.From, p.To, p.Seq)
}

// Request asks a node to run a command against one of its sensors.
type Request struct {
	Cmd    Command
	Sensor uint8
	Data   []byte
}

// Response answers a read-family request. Len is the declared data length.
type Response struct {
	Cmd    Command
	Sensor uint8
	Len    uint8
	Data   []byte
}

// PresentationRequest asks a node to enumerate its sensors.
type PresentationRequest struct{}

// Presentation lists the sensor type codes a node exposes. Entries beyond
// Count are zero.
type Presentation struct {
	Count uint8
	Types [MaxSensors]byte
}

func (*Request) packetType() Type             { return TypeRequest }
func (*Response) packetType() Type            { return TypeResponse }
func (*PresentationRequest) packetType() Type { return TypePresentationRequest }
func (*Presentation) packetType() Type        { return TypePresentationResponse }

// NewResponse builds a response whose declared length matches data.
func NewResponse(cmd Command, sensor uint8, data []byte) *Response {
	return &Response{Cmd: cmd, Sensor: sensor, Len: uint8(len(data)), Data: data}
}

// Payload returns the first Len data bytes.
func (r *Response) Payload() []byte {
	n := int(r.Len)
	if n > len(r.Data) {
		n = len(r.Data)
	}
	return r.Data[:n]
}

func (r *Request) marshal() ([]byte, error) {
	if len(r.Data) > MaxRequestData {
		return nil, ErrInvalidPayload
	}
	buf := make([]byte, RequestHeaderSize+len(r.Data))
	buf[0] = byte(r.Cmd)
	buf[1] = r.Sensor
	copy(buf[RequestHeaderSize:], r.Data)
	return buf, nil
}

func (r *Response) marshal() ([]byte, error) {
	data := r.Payload()
	if len(data) > MaxResponseData {
		return nil, ErrInvalidPayload
	}
	buf := make([]byte, ResponseHeaderSize+len(data))
	buf[0] = byte(r.Cmd)
	buf[1] = r.Sensor
	buf[2] = byte(len(data))
	copy(buf[ResponseHeaderSize:], data)
	return buf, nil
}

func (*PresentationRequest) marshal() ([]byte, error) { return []byte{}, nil }

func (p *Presentation) marshal() ([]byte, error) {
	if p.Count > MaxSensors {
		return nil, ErrInvalidPayload
	}
	buf := make([]byte, 1+MaxSensors)
	buf[0] = p.Count
	copy(buf[1:], p.Types[:])
	return buf, nil
}

func unmarshalPayload(t Type, b []byte) (Payload, error) {
	switch t {
	case TypeRequest:
		if len(b) < RequestHeaderSize {
			return nil, ErrInvalidPayload
		}
		data := make([]byte, len(b)-RequestHeaderSize)
		copy(data, b[RequestHeaderSize:])
		return &Request{Cmd: Command(b[0]), Sensor: b[1], Data: data}, nil

	case TypeResponse:
		if len(b) < ResponseHeaderSize {
			return nil, ErrInvalidPayload
		}
		n := int(b[2])
		if ResponseHeaderSize+n > len(b) {
			return nil, ErrInvalidPayload
		}
		data := make([]byte, n)
		copy(data, b[ResponseHeaderSize:ResponseHeaderSize+n])
		return &Response{Cmd: Command(b[0]), Sensor: b[1], Len: uint8(n), Data: data}, nil

	case TypePresentationRequest:
		return &PresentationRequest{}, nil

	case TypePresentationResponse:
		if len(b) < 1+MaxSensors || b[0] > MaxSensors {
			return nil, ErrInvalidPayload
		}
		p := &Presentation{Count: b[0]}
		copy(p.Types[:], b[1:1+MaxSensors])
		return p, nil
	}
	return nil, ErrUnknownType
}
