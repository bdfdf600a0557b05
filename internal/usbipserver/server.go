// Package usbipserver runs the USB/IP TCP server: an accept loop that
// hands each connection to a per-connection session implementing the
// not-attached/attached state machine from the USB/IP protocol.
package usbipserver

import (
	"errors"
	"io"
	"log"
	"net"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/cros-usb/virtualusbprinter/internal/printer"
)

// Server accepts USB/IP connections and serves them against a single
// exported Printer, mirroring RunServer/HandleConnection from
// _examples/original_source/server.cc.
type Server struct {
	Printer *printer.Printer
}

// New returns a Server exporting p as its one USB/IP device.
func New(p *printer.Printer) *Server {
	return &Server{Printer: p}
}

// Serve accepts connections on ln until it returns a permanent error or
// ln is closed. Each connection is served in its own goroutine. A
// transient Accept error (one that isn't net.ErrClosed) is retried with
// an exponential backoff, the same pattern comm.RemoteDevice.Open uses
// to avoid thrashing a flaky connection.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := s.acceptWithBackoff(ln)
		if err != nil {
			return err
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) acceptWithBackoff(ln net.Listener) (net.Conn, error) {
	var conn net.Conn
	op := func() error {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return backoff.Permanent(err)
			}
			log.Printf("usbipserver: accept error, retrying: %v", err)
			return err
		}
		conn = c
		return nil
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock,
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// handleConnection loops on conn, first handling OpReq negotiation
// until the device is attached, then servicing CmdSubmit/CmdUnlink
// traffic, closing conn when the session ends. Any raw bulk-OUT
// document reassembled over the connection's lifetime is flushed to
// the document sink once the connection ends, since a non-ippusb
// printer-class endpoint carries no in-band document boundary.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if err := s.Printer.Flush(); err != nil {
			log.Printf("usbipserver: flushing document sink: %v", err)
		}
	}()
	session := newSession(s.Printer, conn)
	for {
		var keepOpen bool
		var err error
		if !session.attached {
			keepOpen, err = session.handleOpRequest()
		} else {
			keepOpen, err = session.handleUsbRequest()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("usbipserver: connection %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
		if !keepOpen {
			return
		}
	}
}
