package printer

import (
	"sync"

	"github.com/cros-usb/virtualusbprinter/internal/escl"
	"github.com/cros-usb/virtualusbprinter/internal/usbdesc"
	"github.com/cros-usb/virtualusbprinter/internal/usbip"
)

// Printer aggregates one virtual printer's descriptors, attribute
// tables, and protocol handlers, and answers URBs dispatched to it by
// internal/usbipserver. It mirrors the original's UsbPrinter, with the
// per-interface InterfaceManager map keyed by interface number instead
// of held as a parallel vector indexed by position.
type Printer struct {
	Device        usbdesc.Device
	ConfigBundle  usbdesc.ConfigurationBundle
	Qualifier     usbdesc.DeviceQualifier
	StringTable   [][]byte
	DeviceID      usbdesc.IEEEDeviceID

	IPP  *IPPHandler
	ESCL *escl.Manager

	docSink DocumentSink
	// rawDocMu guards rawDocBuf, the in-progress reassembly buffer for
	// a non-ippusb interface's raw bulk-OUT stream. Unlike Send-Document
	// (whose body arrives as a single already-reassembled HTTP request),
	// a raw printer-class bulk endpoint carries no document boundary of
	// its own, so chunks are accumulated here and written to docSink —
	// with its single length+CRC footer — only once, by Flush.
	rawDocMu  sync.Mutex
	rawDocBuf []byte

	interfaceManagers map[uint8]*InterfaceManager // keyed by interface number
	outEndpointIface  map[uint8]uint8              // OUT endpoint number -> interface number
	inEndpointIface   map[uint8]uint8              // IN endpoint number -> interface number
	ippusbInterfaces  map[uint8]bool
}

// New builds a Printer from its descriptor set and protocol handlers.
// sink, if non-nil, receives raw bulk-OUT data from any interface
// that is not an ippusb interface (a plain USB printer-class data
// endpoint), matching the Open Question resolution that such data is
// written through verbatim.
func New(device usbdesc.Device, bundle usbdesc.ConfigurationBundle, qualifier usbdesc.DeviceQualifier, strings [][]byte, deviceID usbdesc.IEEEDeviceID, ipp *IPPHandler, esclMgr *escl.Manager, sink DocumentSink) *Printer {
	p := &Printer{
		Device: device, ConfigBundle: bundle, Qualifier: qualifier,
		StringTable: strings, DeviceID: deviceID,
		IPP: ipp, ESCL: esclMgr, docSink: sink,
		interfaceManagers: make(map[uint8]*InterfaceManager),
		outEndpointIface:  make(map[uint8]uint8),
		inEndpointIface:   make(map[uint8]uint8),
		ippusbInterfaces:  make(map[uint8]bool),
	}
	ippusbCount := 0
	for _, intf := range bundle.Interfaces {
		if intf.IsIPPUSB() {
			ippusbCount++
		}
	}
	isIPPUSB := ippusbCount >= 2
	for _, intf := range bundle.Interfaces {
		p.interfaceManagers[intf.BInterfaceNumber] = NewInterfaceManager()
		if isIPPUSB && intf.IsIPPUSB() {
			p.ippusbInterfaces[intf.BInterfaceNumber] = true
		}
		for _, ep := range bundle.Endpoints[intf.BInterfaceNumber] {
			if ep.IsIn() {
				p.inEndpointIface[ep.Number()] = intf.BInterfaceNumber
			} else {
				p.outEndpointIface[ep.Number()] = intf.BInterfaceNumber
			}
		}
	}
	return p
}

// interfaceForEndpoint resolves the interface number and its
// InterfaceManager for a bulk endpoint number, given the transfer
// direction (usbip.DirOut or usbip.DirIn).
func (p *Printer) interfaceForEndpoint(epNumber uint8, direction uint32) (*InterfaceManager, uint8, bool) {
	table := p.outEndpointIface
	if direction == usbip.DirIn {
		table = p.inEndpointIface
	}
	num, ok := table[epNumber]
	if !ok {
		return nil, 0, false
	}
	return p.interfaceManagers[num], num, true
}

func (p *Printer) isIPPUSBInterface(num uint8) bool {
	return p.ippusbInterfaces[num]
}

// appendRawDoc buffers a chunk of raw, non-ippusb bulk-OUT data for
// later reassembly. It never touches docSink directly, so a document
// spanning many URBs never gets a footer written into the middle of
// its body.
func (p *Printer) appendRawDoc(data []byte) {
	p.rawDocMu.Lock()
	p.rawDocBuf = append(p.rawDocBuf, data...)
	p.rawDocMu.Unlock()
}

// Flush writes any buffered raw bulk-OUT document to docSink as a
// single call, so the sink's integrity footer covers the whole
// reassembled document rather than one URB-sized fragment of it. It is
// a no-op if nothing has been buffered or no sink is configured.
// Callers flush once a client connection ends, since a raw
// printer-class bulk endpoint has no in-band document boundary of its
// own to flush on.
func (p *Printer) Flush() error {
	p.rawDocMu.Lock()
	buf := p.rawDocBuf
	p.rawDocBuf = nil
	p.rawDocMu.Unlock()

	if p.docSink == nil || len(buf) == 0 {
		return nil
	}
	return p.docSink.Write(buf)
}

// DeviceInfo returns the subset of descriptors the USB/IP device-list
// and import exchange reports about this device.
func (p *Printer) DeviceInfo() usbip.DeviceInfo {
	return usbip.DeviceInfo{Device: p.Device, Configuration: p.ConfigBundle.Configuration}
}

// Interfaces returns the class/subclass/protocol triple for each of
// this device's interfaces, in descriptor order, for OP_REP_DEVLIST.
func (p *Printer) Interfaces() []usbip.InterfaceInfo {
	out := make([]usbip.InterfaceInfo, 0, len(p.ConfigBundle.Interfaces))
	for _, intf := range p.ConfigBundle.Interfaces {
		out = append(out, usbip.InterfaceInfo{
			Class: intf.BInterfaceClass, SubClass: intf.BInterfaceSubClass, Protocol: intf.BInterfaceProtocol,
		})
	}
	return out
}

// NumInterfaces returns the number of interfaces this device exports.
func (p *Printer) NumInterfaces() int {
	return len(p.ConfigBundle.Interfaces)
}
