package usbip

import (
	"encoding/binary"
	"fmt"
)

// HeaderBasic is the common prefix of CmdSubmit/RetSubmit (and the
// unlink variants, which this emulator only reads enough of to log
// and ignore).
type HeaderBasic struct {
	Command   uint32
	Seqnum    uint32
	Devid     uint32
	Direction uint32
	Ep        uint32
}

const headerBasicSize = 20

func (h HeaderBasic) marshalInto(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], h.Command)
	binary.BigEndian.PutUint32(b[4:8], h.Seqnum)
	binary.BigEndian.PutUint32(b[8:12], h.Devid)
	binary.BigEndian.PutUint32(b[12:16], h.Direction)
	binary.BigEndian.PutUint32(b[16:20], h.Ep)
}

func unmarshalHeaderBasic(b []byte) HeaderBasic {
	return HeaderBasic{
		Command:   binary.BigEndian.Uint32(b[0:4]),
		Seqnum:    binary.BigEndian.Uint32(b[4:8]),
		Devid:     binary.BigEndian.Uint32(b[8:12]),
		Direction: binary.BigEndian.Uint32(b[12:16]),
		Ep:        binary.BigEndian.Uint32(b[16:20]),
	}
}

// Direction values carried in HeaderBasic.Direction.
const (
	DirOut = 0
	DirIn  = 1
)

// CmdSubmit is a USBIP_CMD_SUBMIT request: a URB submission from the
// client.
type CmdSubmit struct {
	Header               HeaderBasic
	TransferFlags        uint32
	TransferBufferLength uint32
	StartFrame           uint32
	NumberOfPackets       uint32
	Interval              uint32
	Setup                 uint64
	// TransferBuffer holds the OUT payload, if Header.Direction ==
	// DirOut and TransferBufferLength > 0. It is not part of the
	// fixed 48-byte CmdSubmit header and is read separately by the
	// caller.
	TransferBuffer []byte
}

// CmdSubmitHeaderSize is the fixed size of a CmdSubmit header, not
// including any trailing OUT data.
const CmdSubmitHeaderSize = headerBasicSize + 4 + 4 + 4 + 4 + 4 + 8

// UnmarshalCmdSubmitHeader decodes the fixed-size header of a
// CmdSubmit from b. Any OUT payload that follows must be read
// separately by the caller using the returned TransferBufferLength.
func UnmarshalCmdSubmitHeader(b []byte) (CmdSubmit, error) {
	if len(b) < CmdSubmitHeaderSize {
		return CmdSubmit{}, fmt.Errorf("usbip: short CmdSubmit header: got %d bytes, want %d", len(b), CmdSubmitHeaderSize)
	}
	cs := CmdSubmit{Header: unmarshalHeaderBasic(b[0:headerBasicSize])}
	off := headerBasicSize
	cs.TransferFlags = binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	cs.TransferBufferLength = binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	cs.StartFrame = binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	cs.NumberOfPackets = binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	cs.Interval = binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	cs.Setup = binary.BigEndian.Uint64(b[off : off+8])
	return cs, nil
}

// ControlSetup decodes Setup as a standard USB control request
// (bmRequestType, bRequest, wValue, wIndex, wLength), the form used
// whenever Header.Ep == 0.
type ControlSetup struct {
	BmRequestType uint8
	BRequest      uint8
	WValue        uint16
	WIndex        uint16
	WLength       uint16
}

// DecodeControlSetup extracts the control-request fields packed into
// a CmdSubmit's Setup field. Setup is carried big-endian in the
// CmdSubmit header itself, but wValue/wIndex/wLength are themselves
// little-endian USB fields smuggled through that big-endian container
// (CreateUsbControlRequest builds them with ntohs), so each needs an
// extra byte-swap on top of the big-endian reconstruction.
func DecodeControlSetup(setup uint64) ControlSetup {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, setup)
	return ControlSetup{
		BmRequestType: b[0],
		BRequest:      b[1],
		WValue:        binary.LittleEndian.Uint16(b[2:4]),
		WIndex:        binary.LittleEndian.Uint16(b[4:6]),
		WLength:       binary.LittleEndian.Uint16(b[6:8]),
	}
}

// DescriptorType extracts the high byte of wValue in a
// GET_DESCRIPTOR/SET_DESCRIPTOR request, identifying which descriptor
// type is requested.
func (c ControlSetup) DescriptorType() uint8 {
	return uint8(c.WValue >> 8)
}

// DescriptorIndex extracts the low byte of wValue in a
// GET_DESCRIPTOR/SET_DESCRIPTOR request.
func (c ControlSetup) DescriptorIndex() uint8 {
	return uint8(c.WValue & 0xff)
}

// RequestType extracts the request-type field (standard/class/vendor)
// from bmRequestType.
func (c ControlSetup) RequestType() uint8 {
	return (c.BmRequestType >> 5) & 0x03
}

// RetSubmit is a USBIP_RET_SUBMIT response: the server's reply to a
// CmdSubmit.
type RetSubmit struct {
	Header        HeaderBasic
	Status        int32
	ActualLength  uint32
	StartFrame    uint32
	NumberOfPackets uint32
	ErrorCount    uint32
	Setup         uint64
	// Payload holds the IN data returned to the client, appended
	// after the fixed RetSubmit header.
	Payload []byte
}

const retSubmitHeaderSize = headerBasicSize + 4 + 4 + 4 + 4 + 4 + 8

// NewRetSubmit builds a RetSubmit with command RET_SUBMIT, echoing the
// seqnum/devid/direction/ep fields of the CmdSubmit it answers, matching
// CreateUsbipRetSubmit's echo-the-request-header behavior.
func NewRetSubmit(req CmdSubmit) RetSubmit {
	return RetSubmit{
		Header: HeaderBasic{
			Command:   RetCodeSubmit,
			Seqnum:    req.Header.Seqnum,
			Devid:     req.Header.Devid,
			Direction: req.Header.Direction,
			Ep:        req.Header.Ep,
		},
	}
}

// Marshal encodes r into its wire form: the fixed 48-byte RetSubmit
// header followed by r.Payload.
func (r RetSubmit) Marshal() []byte {
	b := make([]byte, retSubmitHeaderSize, retSubmitHeaderSize+len(r.Payload))
	r.Header.marshalInto(b[0:headerBasicSize])
	off := headerBasicSize
	binary.BigEndian.PutUint32(b[off:off+4], uint32(r.Status))
	off += 4
	binary.BigEndian.PutUint32(b[off:off+4], r.ActualLength)
	off += 4
	binary.BigEndian.PutUint32(b[off:off+4], r.StartFrame)
	off += 4
	binary.BigEndian.PutUint32(b[off:off+4], r.NumberOfPackets)
	off += 4
	binary.BigEndian.PutUint32(b[off:off+4], r.ErrorCount)
	off += 4
	binary.BigEndian.PutUint64(b[off:off+8], r.Setup)
	b = append(b, r.Payload...)
	return b
}

// WithData returns a copy of r with ActualLength and Payload set from
// data, matching SendUsbDataResponse's behavior of stamping the
// response length from the data actually returned.
func (r RetSubmit) WithData(data []byte) RetSubmit {
	r.ActualLength = uint32(len(data))
	r.Payload = data
	return r
}
