package usbip

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func makeCmdSubmitHeaderBytes(cs CmdSubmit) []byte {
	b := make([]byte, CmdSubmitHeaderSize)
	binary.BigEndian.PutUint32(b[0:4], cs.Header.Command)
	binary.BigEndian.PutUint32(b[4:8], cs.Header.Seqnum)
	binary.BigEndian.PutUint32(b[8:12], cs.Header.Devid)
	binary.BigEndian.PutUint32(b[12:16], cs.Header.Direction)
	binary.BigEndian.PutUint32(b[16:20], cs.Header.Ep)
	binary.BigEndian.PutUint32(b[20:24], cs.TransferFlags)
	binary.BigEndian.PutUint32(b[24:28], cs.TransferBufferLength)
	binary.BigEndian.PutUint32(b[28:32], cs.StartFrame)
	binary.BigEndian.PutUint32(b[32:36], cs.NumberOfPackets)
	binary.BigEndian.PutUint32(b[36:40], cs.Interval)
	binary.BigEndian.PutUint64(b[40:48], cs.Setup)
	return b
}

func TestCmdSubmitRoundTrip(t *testing.T) {
	want := CmdSubmit{
		Header:               HeaderBasic{Command: CmdCodeSubmit, Seqnum: 7, Devid: 1, Direction: DirOut, Ep: 2},
		TransferFlags:        0,
		TransferBufferLength: 64,
		Setup:                0x0102030405060708,
	}
	got, err := UnmarshalCmdSubmitHeader(makeCmdSubmitHeaderBytes(want))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestUnmarshalCmdSubmitShort(t *testing.T) {
	if _, err := UnmarshalCmdSubmitHeader(make([]byte, 10)); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestDecodeControlSetup(t *testing.T) {
	// GET_DESCRIPTOR(DEVICE, index 0), wIndex 0, wLength 18: the exact
	// SETUP bytes from spec.md's worked example, 80 06 00 01 00 00 12 00.
	// wValue/wIndex/wLength are little-endian USB fields, so their low
	// byte comes first within the big-endian 8-byte setup buffer.
	setup := binary.BigEndian.Uint64([]byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x12, 0x00})
	cs := DecodeControlSetup(setup)
	if cs.BmRequestType != 0x80 || cs.BRequest != 0x06 {
		t.Errorf("bmRequestType/bRequest = %x/%x", cs.BmRequestType, cs.BRequest)
	}
	if cs.DescriptorType() != 0x01 {
		t.Errorf("DescriptorType() = %d, want 1", cs.DescriptorType())
	}
	if cs.WLength != 18 {
		t.Errorf("WLength = %d, want 18", cs.WLength)
	}
}

func TestNewRetSubmitEchoesRequest(t *testing.T) {
	req := CmdSubmit{Header: HeaderBasic{Command: CmdCodeSubmit, Seqnum: 42, Devid: 9, Direction: DirIn, Ep: 1}}
	ret := NewRetSubmit(req)
	if ret.Header.Command != RetCodeSubmit {
		t.Errorf("Command = %d, want RetCodeSubmit", ret.Header.Command)
	}
	if ret.Header.Seqnum != 42 || ret.Header.Devid != 9 || ret.Header.Direction != DirIn || ret.Header.Ep != 1 {
		t.Errorf("echoed fields mismatch: %+v", ret.Header)
	}
}

func TestRetSubmitWithDataMarshal(t *testing.T) {
	req := CmdSubmit{Header: HeaderBasic{Command: CmdCodeSubmit, Seqnum: 1, Devid: 1, Direction: DirIn, Ep: 1}}
	ret := NewRetSubmit(req).WithData([]byte{1, 2, 3})
	b := ret.Marshal()
	if len(b) != retSubmitHeaderSize+3 {
		t.Fatalf("len = %d, want %d", len(b), retSubmitHeaderSize+3)
	}
	gotActual := binary.BigEndian.Uint32(b[24:28])
	if gotActual != 3 {
		t.Errorf("actual_length = %d, want 3", gotActual)
	}
	if !reflect.DeepEqual(b[retSubmitHeaderSize:], []byte{1, 2, 3}) {
		t.Errorf("payload = %v, want [1 2 3]", b[retSubmitHeaderSize:])
	}
}
