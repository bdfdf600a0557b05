// Package printer aggregates a virtual printer's descriptors and
// attribute tables into the object that answers USB/IP URBs: control
// transfers (GET_DESCRIPTOR and friends), and bulk transfers carrying
// ippusb-tunneled HTTP (IPP and eSCL) or raw print data.
package printer

import (
	"github.com/cros-usb/virtualusbprinter/internal/httpframe"
)

// InterfaceManager holds the per-interface state an ippusb interface
// needs across many CmdSubmit calls: an in-progress inbound HTTP
// request assembler, and a FIFO queue of outbound response bytes
// waiting to be delivered, fragmented, to bulk-IN requests. This
// mirrors the original's InterfaceManager (usb_printer.h), translated
// from its exit-on-empty-queue PopMessage into ordinary (value, bool)
// returns.
type InterfaceManager struct {
	assembler *httpframe.Assembler

	pending [][]byte // queued complete response bytes, oldest first
	inFlight []byte  // the response currently being fragmented to the host
}

// NewInterfaceManager returns an empty InterfaceManager.
func NewInterfaceManager() *InterfaceManager {
	return &InterfaceManager{assembler: httpframe.NewAssembler()}
}

// FeedOut appends OUT data to the in-progress request and reports
// whether a complete HTTP request is now assembled.
func (im *InterfaceManager) FeedOut(data []byte) (httpframe.Request, bool, error) {
	complete, err := im.assembler.Feed(data)
	if err != nil {
		return httpframe.Request{}, false, err
	}
	if !complete {
		return httpframe.Request{}, false, nil
	}
	req := im.assembler.Request()
	im.assembler.Reset()
	return req, true, nil
}

// Enqueue appends a fully-serialized response to the outbound queue.
func (im *InterfaceManager) Enqueue(data []byte) {
	im.pending = append(im.pending, data)
}

// QueueEmpty reports whether there is nothing left to deliver: no
// data in flight and nothing queued behind it.
func (im *InterfaceManager) QueueEmpty() bool {
	return len(im.inFlight) == 0 && len(im.pending) == 0
}

// NextFragment returns up to maxLen bytes of the response currently
// being delivered, advancing past them. If nothing is in flight it
// pulls the next queued response first. It reports ok == false if
// there is nothing left to deliver.
func (im *InterfaceManager) NextFragment(maxLen int) (fragment []byte, ok bool) {
	if len(im.inFlight) == 0 {
		if len(im.pending) == 0 {
			return nil, false
		}
		im.inFlight = im.pending[0]
		im.pending = im.pending[1:]
	}
	if maxLen <= 0 || maxLen > len(im.inFlight) {
		maxLen = len(im.inFlight)
	}
	fragment = im.inFlight[:maxLen]
	im.inFlight = im.inFlight[maxLen:]
	return fragment, true
}
