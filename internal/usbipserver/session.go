package usbipserver

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/cros-usb/virtualusbprinter/internal/printer"
	"github.com/cros-usb/virtualusbprinter/internal/usbip"
)

// session holds the per-connection state HandleOpRequest/HandleUsbRequest
// need: whether the device has been attached yet, and the printer being
// served. This mirrors the attached bool HandleConnection threads
// through HandleOpRequest in the original.
type session struct {
	printer  *printer.Printer
	conn     net.Conn
	attached bool
}

func newSession(p *printer.Printer, conn net.Conn) *session {
	return &session{printer: p, conn: conn}
}

// handleOpRequest reads one OP_REQ_DEVLIST or OP_REQ_IMPORT message and
// answers it. It reports whether the connection should remain open, and
// sets s.attached on a successful import.
func (s *session) handleOpRequest() (bool, error) {
	hdrBytes := make([]byte, 0)
	if err := s.readFull(&hdrBytes, 8); err != nil {
		return false, err
	}
	hdr, err := usbip.UnmarshalOpHeader(hdrBytes)
	if err != nil {
		return false, err
	}

	switch hdr.Command {
	case usbip.OpReqDevlist:
		out := usbip.MarshalOpRepDevlist(s.printer.DeviceInfo(), s.printer.Interfaces())
		if _, err := s.conn.Write(out); err != nil {
			return false, err
		}
		return true, nil
	case usbip.OpReqImport:
		body := make([]byte, 0)
		if err := s.readFull(&body, 32); err != nil {
			return false, err
		}
		if _, err := usbip.UnmarshalOpReqImport(body); err != nil {
			return false, err
		}
		out := usbip.MarshalOpRepImport(s.printer.DeviceInfo(), s.printer.NumInterfaces())
		if _, err := s.conn.Write(out); err != nil {
			return false, err
		}
		s.attached = true
		return true, nil
	default:
		return false, fmt.Errorf("usbipserver: unexpected op command %#x before attach", hdr.Command)
	}
}

// handleUsbRequest reads one CmdSubmit or CmdUnlink message from an
// attached session and answers it. CMD_UNLINK is read and ignored and
// draws no response, per SPEC_FULL.md's resolution; every CmdSubmit is
// answered before the next message is read, so no URB is in flight.
func (s *session) handleUsbRequest() (bool, error) {
	hdrBytes := make([]byte, 0)
	if err := s.readFull(&hdrBytes, 4); err != nil {
		return false, err
	}
	command := binary.BigEndian.Uint32(hdrBytes)

	rest := make([]byte, 0)
	if err := s.readFull(&rest, usbip.CmdSubmitHeaderSize-4); err != nil {
		return false, err
	}
	full := append(hdrBytes, rest...)

	switch command {
	case usbip.CmdCodeUnlink:
		return true, nil
	case usbip.CmdCodeSubmit:
		return s.handleCmdSubmit(full)
	default:
		return false, fmt.Errorf("usbipserver: unexpected command %#x", command)
	}
}

func (s *session) handleCmdSubmit(headerBytes []byte) (bool, error) {
	cs, err := usbip.UnmarshalCmdSubmitHeader(headerBytes)
	if err != nil {
		return false, err
	}
	if cs.Header.Direction == usbip.DirOut && cs.TransferBufferLength > 0 {
		buf := make([]byte, 0)
		if err := s.readFull(&buf, int(cs.TransferBufferLength)); err != nil {
			return false, err
		}
		cs.TransferBuffer = buf
	}

	ret := s.printer.HandleURB(cs)
	if _, err := s.conn.Write(ret.Marshal()); err != nil {
		return false, err
	}
	return true, nil
}

// readFull reads exactly n bytes from the connection into *buf,
// growing it from empty.
func (s *session) readFull(buf *[]byte, n int) error {
	b := make([]byte, n)
	if _, err := io.ReadFull(s.conn, b); err != nil {
		return err
	}
	*buf = b
	return nil
}
