package printer

import (
	"strings"

	"github.com/cros-usb/virtualusbprinter/internal/httpframe"
	"github.com/cros-usb/virtualusbprinter/internal/usbdesc"
	"github.com/cros-usb/virtualusbprinter/internal/usbip"
)

// HandleURB answers one USBIP_CMD_SUBMIT, dispatching control transfers
// (Header.Ep == 0) to descriptor/status handling and bulk transfers to
// the ippusb interfaces' HTTP tunnel or, for a non-ippusb interface, to
// the raw document sink. It mirrors UsbPrinter::HandleUsbRequest,
// folded into a single request/response call since this emulator has
// no separate async URB completion path.
func (p *Printer) HandleURB(cs usbip.CmdSubmit) usbip.RetSubmit {
	ret := usbip.NewRetSubmit(cs)
	if cs.Header.Ep == 0 {
		return p.handleControl(cs, ret)
	}
	return p.handleBulk(cs, ret)
}

func (p *Printer) handleControl(cs usbip.CmdSubmit, ret usbip.RetSubmit) usbip.RetSubmit {
	setup := usbip.DecodeControlSetup(cs.Setup)
	switch setup.RequestType() {
	case usbip.ReqTypeStandard:
		return p.handleStandardRequest(setup, ret)
	case usbip.ReqTypeClass:
		return p.handleClassRequest(setup, ret)
	default:
		ret.Status = -1
		return ret
	}
}

func (p *Printer) handleStandardRequest(setup usbip.ControlSetup, ret usbip.RetSubmit) usbip.RetSubmit {
	switch setup.BRequest {
	case usbip.ReqGetDescriptor:
		return p.handleGetDescriptor(setup, ret)
	case usbip.ReqGetStatus:
		return ret.WithData(truncate([]byte{0x00, 0x00}, int(setup.WLength)))
	case usbip.ReqGetConfiguration:
		return ret.WithData([]byte{p.ConfigBundle.Configuration.BConfigurationValue})
	case usbip.ReqSetConfiguration, usbip.ReqSetInterface:
		return ret.WithData(nil)
	default:
		ret.Status = -1
		return ret
	}
}

func (p *Printer) handleGetDescriptor(setup usbip.ControlSetup, ret usbip.RetSubmit) usbip.RetSubmit {
	var data []byte
	switch setup.DescriptorType() {
	case usbdesc.TypeDevice:
		data = p.Device.Marshal()
	case usbdesc.TypeConfiguration:
		data = p.ConfigBundle.Marshal()
	case usbdesc.TypeDeviceQualifier:
		data = p.Qualifier.Marshal()
	case usbdesc.TypeString:
		idx := int(setup.DescriptorIndex())
		if idx < 0 || idx >= len(p.StringTable) {
			ret.Status = -1
			return ret
		}
		data = p.StringTable[idx]
	default:
		ret.Status = -1
		return ret
	}
	return ret.WithData(truncate(data, int(setup.WLength)))
}

func (p *Printer) handleClassRequest(setup usbip.ControlSetup, ret usbip.RetSubmit) usbip.RetSubmit {
	switch setup.BRequest {
	case usbip.ReqGetDeviceID:
		return ret.WithData(truncate(p.DeviceID.Marshal(), int(setup.WLength)))
	case usbip.ReqSoftReset:
		return ret.WithData(nil)
	default:
		ret.Status = -1
		return ret
	}
}

// truncate returns data capped to at most wLength bytes, matching a
// host's ability to request fewer bytes than a descriptor's full size.
func truncate(data []byte, wLength int) []byte {
	if wLength >= 0 && wLength < len(data) {
		return data[:wLength]
	}
	return data
}

func (p *Printer) handleBulk(cs usbip.CmdSubmit, ret usbip.RetSubmit) usbip.RetSubmit {
	epNumber := uint8(cs.Header.Ep)
	im, ifaceNum, ok := p.interfaceForEndpoint(epNumber, cs.Header.Direction)
	if !ok {
		ret.Status = -1
		return ret
	}

	if cs.Header.Direction == usbip.DirOut {
		return p.handleBulkOut(cs, ret, im, ifaceNum)
	}
	return p.handleBulkIn(cs, ret, im)
}

func (p *Printer) handleBulkOut(cs usbip.CmdSubmit, ret usbip.RetSubmit, im *InterfaceManager, ifaceNum uint8) usbip.RetSubmit {
	ret.ActualLength = cs.TransferBufferLength

	if !p.isIPPUSBInterface(ifaceNum) {
		if len(cs.TransferBuffer) > 0 {
			p.appendRawDoc(cs.TransferBuffer)
		}
		return ret
	}

	req, complete, err := im.FeedOut(cs.TransferBuffer)
	if err != nil {
		ret.Status = -1
		return ret
	}
	if !complete {
		return ret
	}

	resp, err := p.routeHTTP(req)
	if err != nil {
		ret.Status = -1
		return ret
	}
	im.Enqueue(resp.Serialize())
	return ret
}

func (p *Printer) handleBulkIn(cs usbip.CmdSubmit, ret usbip.RetSubmit, im *InterfaceManager) usbip.RetSubmit {
	fragment, ok := im.NextFragment(int(cs.TransferBufferLength))
	if !ok {
		return ret.WithData(nil)
	}
	return ret.WithData(fragment)
}

// routeHTTP sends a reassembled ippusb HTTP request to the IPP handler
// or the eSCL manager, keyed on URI prefix the way the original's
// IppUsbBridge::HandleIppUsbData picks a handler off the request path.
func (p *Printer) routeHTTP(req httpframe.Request) (httpframe.Response, error) {
	if strings.HasPrefix(req.URI, "/eSCL/") {
		return p.ESCL.Handle(req)
	}
	return p.IPP.Handle(req)
}
