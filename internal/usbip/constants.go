// Package usbip implements the USB/IP (v0x0111) wire codec: the
// OpReq/OpRep device-list and import negotiation exchanged once per
// connection, and the CmdSubmit/RetSubmit URB traffic that follows.
// All multi-byte fields are big-endian, per the USB/IP protocol.
package usbip

// Protocol version and TCP port, per the USB/IP specification.
const (
	Version = 0x0111
	Port    = 3240
)

// Operation codes sent in an OpHeader.Command.
const (
	OpReqDevlist = 0x8005
	OpRepDevlist = 0x0005
	OpReqImport  = 0x8003
	OpRepImport  = 0x0003
)

// URB command codes sent in a UsbipHeaderBasic.Command.
const (
	CmdCodeSubmit = 0x0001
	CmdCodeUnlink = 0x0002
	RetCodeSubmit = 0x0003
	RetCodeUnlink = 0x0004
)

// Fixed identity fields this emulator reports for its single exported
// device, matching the values the original reference server hardcodes
// (op_commands.cc).
const (
	UsbPath = "/sys/devices/pci0000:00/0000:00:01.2/usb1/1-1"
	BusID   = "1-1"
	Busnum  = 1
	Devnum  = 2
	Speed   = 3
)

// USB standard control-request bRequest values used when dispatching
// GET_DESCRIPTOR and friends (USB 2.0 spec table 9-4).
const (
	ReqGetStatus        = 0x00
	ReqClearFeature     = 0x01
	ReqSetFeature       = 0x03
	ReqSetAddress       = 0x05
	ReqGetDescriptor    = 0x06
	ReqSetDescriptor    = 0x07
	ReqGetConfiguration = 0x08
	ReqSetConfiguration = 0x09
	ReqGetInterface     = 0x0A
	ReqSetInterface     = 0x0B
	ReqSetFrame         = 0x0C
)

// Printer class-specific control requests (USB Printer Class spec
// 1.1, section 4.2).
const (
	ReqGetDeviceID   = 0x00
	ReqGetPortStatus = 0x01
	ReqSoftReset     = 0x02
)

// bmRequestType recipient/type/direction bit layout (USB 2.0 spec
// table 9-2).
const (
	ReqTypeStandard = 0
	ReqTypeClass    = 1
	ReqTypeVendor   = 2
	ReqTypeReserved = 3
)
