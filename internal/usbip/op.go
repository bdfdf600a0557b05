package usbip

import (
	"encoding/binary"
	"fmt"

	"github.com/cros-usb/virtualusbprinter/internal/usbdesc"
)

// OpHeader is the 8-byte header that begins every OpReq/OpRep message.
type OpHeader struct {
	Version uint16
	Command uint16
	Status  int32
}

const opHeaderSize = 8

// Marshal encodes h into its 8-byte wire form.
func (h OpHeader) Marshal() []byte {
	b := make([]byte, opHeaderSize)
	binary.BigEndian.PutUint16(b[0:2], h.Version)
	binary.BigEndian.PutUint16(b[2:4], h.Command)
	binary.BigEndian.PutUint32(b[4:8], uint32(h.Status))
	return b
}

// UnmarshalOpHeader decodes an OpHeader from b. b must be at least 8
// bytes.
func UnmarshalOpHeader(b []byte) (OpHeader, error) {
	if len(b) < opHeaderSize {
		return OpHeader{}, fmt.Errorf("usbip: short OpHeader: got %d bytes, want %d", len(b), opHeaderSize)
	}
	return OpHeader{
		Version: binary.BigEndian.Uint16(b[0:2]),
		Command: binary.BigEndian.Uint16(b[2:4]),
		Status:  int32(binary.BigEndian.Uint32(b[4:8])),
	}, nil
}

// DeviceInfo is the subset of a printer's descriptors OpRepDevice and
// OpRepImport report about the exported device.
type DeviceInfo struct {
	Device        usbdesc.Device
	Configuration usbdesc.Configuration
}

// 256(usb_path) + 32(bus_id) + 3*4(busnum,devnum,speed) + 3*2(idVendor,
// idProduct,bcdDevice) + 6*1(class,subclass,protocol,configValue,
// numConfigurations,numInterfaces) = 312 bytes.
const opRepDeviceSize = 256 + 32 + 3*4 + 3*2 + 6

// marshalOpRepDevice encodes the fixed usb_path/bus_id/identity block
// shared by OpRepDevlist entries and OpRepImport's single device,
// matching op_commands.cc's SetOpRepDevice.
func marshalOpRepDevice(info DeviceInfo, numInterfaces int) []byte {
	b := make([]byte, opRepDeviceSize)
	off := 0
	copy(b[off:off+256], UsbPath)
	off += 256
	copy(b[off:off+32], BusID)
	off += 32
	binary.BigEndian.PutUint32(b[off:off+4], Busnum)
	off += 4
	binary.BigEndian.PutUint32(b[off:off+4], Devnum)
	off += 4
	binary.BigEndian.PutUint32(b[off:off+4], Speed)
	off += 4
	binary.BigEndian.PutUint16(b[off:off+2], info.Device.IDVendor)
	off += 2
	binary.BigEndian.PutUint16(b[off:off+2], info.Device.IDProduct)
	off += 2
	binary.BigEndian.PutUint16(b[off:off+2], info.Device.BcdDevice)
	off += 2
	b[off] = info.Device.BDeviceClass
	off++
	b[off] = info.Device.BDeviceSubClass
	off++
	b[off] = info.Device.BDeviceProtocol
	off++
	b[off] = info.Configuration.BConfigurationValue
	off++
	b[off] = info.Device.BNumConfigurations
	off++
	b[off] = uint8(numInterfaces)
	return b
}

// InterfaceInfo is the class/subclass/protocol triple OpRepDevlist
// reports per exported interface.
type InterfaceInfo struct {
	Class, SubClass, Protocol uint8
}

const opRepDevlistInterfaceSize = 4

func marshalOpRepDevlistInterface(i InterfaceInfo) []byte {
	return []byte{i.Class, i.SubClass, i.Protocol, 0}
}

// MarshalOpRepDevlist builds the complete OP_REP_DEVLIST response: an
// 8-byte OpHeader, a 4-byte device count, the device identity block,
// then one 4-byte entry per interface. Unlike the original reference
// implementation, which builds this by malloc'ing an owned interfaces
// array the caller must remember to free, this returns a single
// caller-owned []byte with no further cleanup obligation.
func MarshalOpRepDevlist(info DeviceInfo, interfaces []InterfaceInfo) []byte {
	out := make([]byte, 0, opHeaderSize+4+opRepDeviceSize+len(interfaces)*opRepDevlistInterfaceSize)
	out = append(out, OpHeader{Version: Version, Command: OpRepDevlist, Status: 0}.Marshal()...)
	numDevices := make([]byte, 4)
	binary.BigEndian.PutUint32(numDevices, 1)
	out = append(out, numDevices...)
	out = append(out, marshalOpRepDevice(info, len(interfaces))...)
	for _, i := range interfaces {
		out = append(out, marshalOpRepDevlistInterface(i)...)
	}
	return out
}

// MarshalOpRepImport builds the OP_REP_IMPORT response for a
// successful attach: an 8-byte OpHeader followed by the device
// identity block (no trailing interface array — import reports only
// the single attached device).
func MarshalOpRepImport(info DeviceInfo, numInterfaces int) []byte {
	out := make([]byte, 0, opHeaderSize+opRepDeviceSize)
	out = append(out, OpHeader{Version: Version, Command: OpRepImport, Status: 0}.Marshal()...)
	out = append(out, marshalOpRepDevice(info, numInterfaces)...)
	return out
}

// UnmarshalOpReqImport decodes the OP_REQ_IMPORT payload that follows
// an OpHeader: a fixed 32-byte bus id field, not necessarily
// NUL-terminated if it fills the whole field.
func UnmarshalOpReqImport(b []byte) (string, error) {
	if len(b) < 32 {
		return "", fmt.Errorf("usbip: short OpReqImport body: got %d bytes, want 32", len(b))
	}
	n := 0
	for n < 32 && b[n] != 0 {
		n++
	}
	return string(b[:n]), nil
}
