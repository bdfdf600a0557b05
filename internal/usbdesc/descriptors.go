// Package usbdesc models the fixed-layout USB descriptors this
// emulator reports to a USB/IP client: device, configuration,
// interface, endpoint, and device-qualifier descriptors, plus the
// string descriptor table and IEEE-1284 device-id blob a printer
// class device advertises.
//
// All multi-byte fields are encoded little-endian, matching the wire
// layout of real USB descriptors (USB is a little-endian bus).
package usbdesc

import (
	"encoding/binary"

	"github.com/cros-usb/virtualusbprinter/internal/util"
)

// Descriptor type codes, from the USB 2.0 specification table 9-5.
const (
	TypeDevice          = 0x01
	TypeConfiguration   = 0x02
	TypeString          = 0x03
	TypeInterface       = 0x04
	TypeEndpoint        = 0x05
	TypeDeviceQualifier = 0x06
)

// Device describes a USB device descriptor (USB 2.0 spec table 9-8).
type Device struct {
	BLength            uint8
	BDescriptorType     uint8
	BcdUSB              uint16
	BDeviceClass        uint8
	BDeviceSubClass     uint8
	BDeviceProtocol     uint8
	BMaxPacketSize0     uint8
	IDVendor            uint16
	IDProduct           uint16
	BcdDevice           uint16
	IManufacturer       uint8
	IProduct            uint8
	ISerialNumber       uint8
	BNumConfigurations  uint8
}

// DeviceSize is the on-the-wire length of a Device descriptor.
const DeviceSize = 18

// Marshal encodes d into its 18-byte wire representation.
func (d Device) Marshal() []byte {
	b := make([]byte, DeviceSize)
	b[0] = d.BLength
	b[1] = d.BDescriptorType
	binary.LittleEndian.PutUint16(b[2:4], d.BcdUSB)
	b[4] = d.BDeviceClass
	b[5] = d.BDeviceSubClass
	b[6] = d.BDeviceProtocol
	b[7] = d.BMaxPacketSize0
	binary.LittleEndian.PutUint16(b[8:10], d.IDVendor)
	binary.LittleEndian.PutUint16(b[10:12], d.IDProduct)
	binary.LittleEndian.PutUint16(b[12:14], d.BcdDevice)
	b[14] = d.IManufacturer
	b[15] = d.IProduct
	b[16] = d.ISerialNumber
	b[17] = d.BNumConfigurations
	return b
}

// Configuration describes a USB configuration descriptor (USB 2.0
// spec table 9-10). It carries only the header; interface and
// endpoint descriptors are appended by the caller when building the
// full configuration block GET_DESCRIPTOR returns.
type Configuration struct {
	BLength             uint8
	BDescriptorType      uint8
	WTotalLength         uint16
	BNumInterfaces       uint8
	BConfigurationValue  uint8
	IConfiguration       uint8
	BmAttributes         uint8
	BMaxPower            uint8
}

// ConfigurationSize is the on-the-wire length of a Configuration
// descriptor header.
const ConfigurationSize = 9

// Marshal encodes c into its 9-byte wire representation.
func (c Configuration) Marshal() []byte {
	b := make([]byte, ConfigurationSize)
	b[0] = c.BLength
	b[1] = c.BDescriptorType
	binary.LittleEndian.PutUint16(b[2:4], c.WTotalLength)
	b[4] = c.BNumInterfaces
	b[5] = c.BConfigurationValue
	b[6] = c.IConfiguration
	b[7] = c.BmAttributes
	b[8] = c.BMaxPower
	return b
}

// Interface describes a USB interface descriptor (USB 2.0 spec table
// 9-12).
type Interface struct {
	BLength            uint8
	BDescriptorType     uint8
	BInterfaceNumber    uint8
	BAlternateSetting   uint8
	BNumEndpoints       uint8
	BInterfaceClass     uint8
	BInterfaceSubClass  uint8
	BInterfaceProtocol  uint8
	IInterface          uint8
}

// InterfaceSize is the on-the-wire length of an Interface descriptor.
const InterfaceSize = 9

// Marshal encodes i into its 9-byte wire representation.
func (i Interface) Marshal() []byte {
	b := make([]byte, InterfaceSize)
	b[0] = i.BLength
	b[1] = i.BDescriptorType
	b[2] = i.BInterfaceNumber
	b[3] = i.BAlternateSetting
	b[4] = i.BNumEndpoints
	b[5] = i.BInterfaceClass
	b[6] = i.BInterfaceSubClass
	b[7] = i.BInterfaceProtocol
	b[8] = i.IInterface
	return b
}

// IsIPPUSB reports whether i advertises the printer-class ippusb
// protocol (class 7 "printer", subclass 1, protocol 4).
func (i Interface) IsIPPUSB() bool {
	return i.BInterfaceClass == 7 && i.BInterfaceSubClass == 1 && i.BInterfaceProtocol == 4
}

// Endpoint describes a USB endpoint descriptor (USB 2.0 spec table
// 9-13).
type Endpoint struct {
	BLength            uint8
	BDescriptorType     uint8
	BEndpointAddress    uint8
	BmAttributes        uint8
	WMaxPacketSize      uint16
	BInterval           uint8
}

// EndpointSize is the on-the-wire length of an Endpoint descriptor.
const EndpointSize = 7

// Marshal encodes e into its 7-byte wire representation.
func (e Endpoint) Marshal() []byte {
	b := make([]byte, EndpointSize)
	b[0] = e.BLength
	b[1] = e.BDescriptorType
	b[2] = e.BEndpointAddress
	b[3] = e.BmAttributes
	binary.LittleEndian.PutUint16(b[4:6], e.WMaxPacketSize)
	b[6] = e.BInterval
	return b
}

// IsIn reports whether e is an IN endpoint (device-to-host): bit 7 of
// bEndpointAddress is the direction bit (USB 2.0 spec table 9-13).
func (e Endpoint) IsIn() bool {
	return util.GetBit(e.BEndpointAddress, 7)
}

// Number returns the endpoint number, stripping the direction bit.
func (e Endpoint) Number() uint8 {
	return e.BEndpointAddress & 0x0f
}

// EndpointAddress packs an endpoint number and direction into a
// bEndpointAddress byte.
func EndpointAddress(number uint8, isIn bool) uint8 {
	return util.SetBit(number&0x0f, 7, isIn)
}

// DeviceQualifier describes a USB device_qualifier descriptor (USB 2.0
// spec table 9-9), reported by high-speed-capable devices operating
// at full speed.
type DeviceQualifier struct {
	BLength            uint8
	BDescriptorType     uint8
	BcdUSB              uint16
	BDeviceClass        uint8
	BDeviceSubClass     uint8
	BDeviceProtocol     uint8
	BMaxPacketSize0     uint8
	BNumConfigurations  uint8
	BReserved           uint8
}

// DeviceQualifierSize is the on-the-wire length of a DeviceQualifier
// descriptor.
const DeviceQualifierSize = 10

// Marshal encodes q into its 10-byte wire representation.
func (q DeviceQualifier) Marshal() []byte {
	b := make([]byte, DeviceQualifierSize)
	b[0] = q.BLength
	b[1] = q.BDescriptorType
	binary.LittleEndian.PutUint16(b[2:4], q.BcdUSB)
	b[4] = q.BDeviceClass
	b[5] = q.BDeviceSubClass
	b[6] = q.BDeviceProtocol
	b[7] = q.BMaxPacketSize0
	b[8] = q.BNumConfigurations
	b[9] = q.BReserved
	return b
}

// ConfigurationBundle is a Configuration descriptor together with all
// of the interface and endpoint descriptors nested under it, in the
// order GET_DESCRIPTOR(CONFIGURATION) must emit them: configuration
// header, then for each interface its interface descriptor followed
// by its endpoint descriptors.
type ConfigurationBundle struct {
	Configuration Configuration
	Interfaces    []Interface
	// Endpoints maps an interface's BInterfaceNumber to its endpoint
	// descriptors, in emission order.
	Endpoints map[uint8][]Endpoint
}

// Marshal encodes the full configuration block: the configuration
// descriptor followed by each interface descriptor and its endpoints,
// in USB GET_DESCRIPTOR(CONFIGURATION) order. WTotalLength on the
// returned bytes reflects the bundle's actual total length rather than
// whatever value was set on cb.Configuration, matching the invariant
// that WTotalLength is always recomputed from the descriptor tree.
func (cb ConfigurationBundle) Marshal() []byte {
	total := ConfigurationSize
	for _, intf := range cb.Interfaces {
		total += InterfaceSize
		total += len(cb.Endpoints[intf.BInterfaceNumber]) * EndpointSize
	}
	cfg := cb.Configuration
	cfg.WTotalLength = uint16(total)
	cfg.BNumInterfaces = uint8(len(cb.Interfaces))

	out := make([]byte, 0, total)
	out = append(out, cfg.Marshal()...)
	for _, intf := range cb.Interfaces {
		out = append(out, intf.Marshal()...)
		for _, ep := range cb.Endpoints[intf.BInterfaceNumber] {
			out = append(out, ep.Marshal()...)
		}
	}
	return out
}
