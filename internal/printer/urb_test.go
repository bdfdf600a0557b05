package printer

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"testing"

	"github.com/cros-usb/virtualusbprinter/internal/escl"
	"github.com/cros-usb/virtualusbprinter/internal/ipp"
	"github.com/cros-usb/virtualusbprinter/internal/usbdesc"
	"github.com/cros-usb/virtualusbprinter/internal/usbip"
)

func testBundle() usbdesc.ConfigurationBundle {
	return usbdesc.ConfigurationBundle{
		Configuration: usbdesc.Configuration{BLength: 9, BDescriptorType: usbdesc.TypeConfiguration, BConfigurationValue: 1},
		Interfaces: []usbdesc.Interface{
			{BLength: 9, BDescriptorType: usbdesc.TypeInterface, BInterfaceNumber: 0, BInterfaceClass: 7, BInterfaceSubClass: 1, BInterfaceProtocol: 4, BNumEndpoints: 2},
			{BLength: 9, BDescriptorType: usbdesc.TypeInterface, BInterfaceNumber: 1, BInterfaceClass: 7, BInterfaceSubClass: 1, BInterfaceProtocol: 4, BNumEndpoints: 2},
		},
		Endpoints: map[uint8][]usbdesc.Endpoint{
			0: {
				{BLength: 7, BDescriptorType: usbdesc.TypeEndpoint, BEndpointAddress: usbdesc.EndpointAddress(1, false)},
				{BLength: 7, BDescriptorType: usbdesc.TypeEndpoint, BEndpointAddress: usbdesc.EndpointAddress(1, true)},
			},
		},
	}
}

func testPrinter(t *testing.T) *Printer {
	t.Helper()
	device := usbdesc.Device{BLength: 18, BDescriptorType: usbdesc.TypeDevice, IDVendor: 0x1234, IDProduct: 0x5678}
	bundle := testBundle()
	qualifier := usbdesc.DeviceQualifier{BLength: 10, BDescriptorType: usbdesc.TypeDeviceQualifier}
	strs := [][]byte{usbdesc.StringDescriptor("en-us")}
	deviceID := usbdesc.IEEEDeviceID{Message: "MFG:Test;MDL:Printer;"}

	ippHandler := NewIPPHandler([]ipp.Attribute{{Name: "printer-name", Type: ipp.TypeName, Strings: []string{"Test"}}}, nil, nil)
	esclMgr := escl.NewManager(escl.ScannerCapabilities{MakeAndModel: "Test"}, func() string { return "job-1" })

	return New(device, bundle, qualifier, strs, deviceID, ippHandler, esclMgr, nil)
}

func TestHandleURBGetDeviceDescriptor(t *testing.T) {
	p := testPrinter(t)
	setup := usbip.ControlSetup{BRequest: usbip.ReqGetDescriptor, WValue: uint16(usbdesc.TypeDevice) << 8, WLength: 18}
	cs := usbip.CmdSubmit{Header: usbip.HeaderBasic{Ep: 0}, Setup: encodeSetup(setup), TransferBufferLength: 18}

	ret := p.HandleURB(cs)
	if ret.Status != 0 {
		t.Fatalf("status = %d, want 0", ret.Status)
	}
	if !bytes.Equal(ret.Payload, p.Device.Marshal()) {
		t.Errorf("payload mismatch")
	}
}

func TestHandleURBGetDeviceIDClassRequest(t *testing.T) {
	p := testPrinter(t)
	setup := usbip.ControlSetup{BmRequestType: 1 << 5, BRequest: usbip.ReqGetDeviceID, WLength: 64}
	cs := usbip.CmdSubmit{Header: usbip.HeaderBasic{Ep: 0}, Setup: encodeSetup(setup), TransferBufferLength: 64}

	ret := p.HandleURB(cs)
	if ret.Status != 0 {
		t.Fatalf("status = %d, want 0", ret.Status)
	}
	if !bytes.Equal(ret.Payload, p.DeviceID.Marshal()) {
		t.Errorf("payload mismatch")
	}
}

func TestHandleURBBulkIppRoundTrip(t *testing.T) {
	p := testPrinter(t)

	body := ippRequestBody(ipp.OpGetPrinterAttributes, 7, nil)
	reqBytes := []byte("POST /ipp/print HTTP/1.1\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n")
	reqBytes = append(reqBytes, body...)

	outCs := usbip.CmdSubmit{
		Header:               usbip.HeaderBasic{Ep: 1, Direction: usbip.DirOut},
		TransferBuffer:       reqBytes,
		TransferBufferLength: uint32(len(reqBytes)),
	}
	retOut := p.HandleURB(outCs)
	if retOut.Status != 0 {
		t.Fatalf("OUT status = %d, want 0", retOut.Status)
	}

	inCs := usbip.CmdSubmit{
		Header:               usbip.HeaderBasic{Ep: 1, Direction: usbip.DirIn},
		TransferBufferLength: 4096,
	}
	retIn := p.HandleURB(inCs)
	if retIn.Status != 0 {
		t.Fatalf("IN status = %d, want 0", retIn.Status)
	}
	if !bytes.Contains(retIn.Payload, []byte("HTTP/1.1 200 OK")) {
		t.Errorf("response payload missing status line: %q", retIn.Payload)
	}
}

// fakeSink records each Write call, letting tests assert on both call
// count and content without touching disk.
type fakeSink struct {
	writes [][]byte
}

func (f *fakeSink) Write(data []byte) error {
	cp := append([]byte(nil), data...)
	f.writes = append(f.writes, cp)
	return nil
}

func TestHandleURBRawBulkOutReassemblesBeforeFlush(t *testing.T) {
	device := usbdesc.Device{BLength: 18, BDescriptorType: usbdesc.TypeDevice}
	bundle := usbdesc.ConfigurationBundle{
		Configuration: usbdesc.Configuration{BLength: 9, BDescriptorType: usbdesc.TypeConfiguration, BConfigurationValue: 1},
		Interfaces: []usbdesc.Interface{
			// Bidirectional (protocol 2), not ippusb (protocol 4).
			{BLength: 9, BDescriptorType: usbdesc.TypeInterface, BInterfaceNumber: 0, BInterfaceClass: 7, BInterfaceSubClass: 1, BInterfaceProtocol: 2, BNumEndpoints: 1},
		},
		Endpoints: map[uint8][]usbdesc.Endpoint{
			0: {{BLength: 7, BDescriptorType: usbdesc.TypeEndpoint, BEndpointAddress: usbdesc.EndpointAddress(1, false)}},
		},
	}
	qualifier := usbdesc.DeviceQualifier{BLength: 10, BDescriptorType: usbdesc.TypeDeviceQualifier}
	deviceID := usbdesc.IEEEDeviceID{Message: "MFG:Test;"}
	ippHandler := NewIPPHandler(nil, nil, nil)
	esclMgr := escl.NewManager(escl.ScannerCapabilities{}, func() string { return "job-1" })
	sink := &fakeSink{}
	p := New(device, bundle, qualifier, nil, deviceID, ippHandler, esclMgr, sink)

	chunks := [][]byte{[]byte("hello "), []byte("world")}
	for _, chunk := range chunks {
		cs := usbip.CmdSubmit{
			Header:               usbip.HeaderBasic{Ep: 1, Direction: usbip.DirOut},
			TransferBuffer:       chunk,
			TransferBufferLength: uint32(len(chunk)),
		}
		ret := p.HandleURB(cs)
		if ret.Status != 0 {
			t.Fatalf("bulk-out status = %d, want 0", ret.Status)
		}
	}
	if len(sink.writes) != 0 {
		t.Fatalf("sink received %d writes before Flush, want 0", len(sink.writes))
	}

	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(sink.writes) != 1 {
		t.Fatalf("sink received %d writes after Flush, want 1", len(sink.writes))
	}
	if got, want := string(sink.writes[0]), "hello world"; got != want {
		t.Errorf("reassembled document = %q, want %q", got, want)
	}
}

func TestHandleURBUnknownEndpointFails(t *testing.T) {
	p := testPrinter(t)
	cs := usbip.CmdSubmit{Header: usbip.HeaderBasic{Ep: 9, Direction: usbip.DirOut}}
	ret := p.HandleURB(cs)
	if ret.Status == 0 {
		t.Errorf("expected non-zero status for unknown endpoint")
	}
}

// encodeSetup packs a ControlSetup into the wire form DecodeControlSetup
// expects: wValue/wIndex/wLength are little-endian USB fields, so each
// is byte-swapped into the big-endian 8-byte setup buffer.
func encodeSetup(s usbip.ControlSetup) uint64 {
	b := make([]byte, 8)
	b[0] = s.BmRequestType
	b[1] = s.BRequest
	binary.LittleEndian.PutUint16(b[2:4], s.WValue)
	binary.LittleEndian.PutUint16(b[4:6], s.WIndex)
	binary.LittleEndian.PutUint16(b[6:8], s.WLength)
	return binary.BigEndian.Uint64(b)
}
