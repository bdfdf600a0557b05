package httpframe

import (
	"fmt"
	"strings"

	"github.com/cros-usb/virtualusbprinter/internal/wire"
)

// Assembler reassembles one HTTP/1.1 request out of bytes delivered
// piecemeal across multiple bulk-OUT URBs, handling both
// Content-Length-delimited and chunked-transfer-encoded bodies. Each
// ippusb interface keeps its own Assembler (see internal/printer),
// matching the per-interface InterfaceManager/request-buffer pair in
// the reference design.
type Assembler struct {
	buf         *wire.Buffer
	headParsed  bool
	req         Request
	done        bool
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{buf: wire.New()}
}

// Reset discards any in-progress message, preparing the Assembler to
// start assembling the next request.
func (a *Assembler) Reset() {
	a.buf = wire.New()
	a.headParsed = false
	a.req = Request{}
	a.done = false
}

// Feed appends data (one bulk-OUT URB's payload) to the
// in-progress message and reports whether the message is now
// complete. Once Feed returns true, call Request to retrieve it, then
// Reset before feeding the next message's bytes.
func (a *Assembler) Feed(data []byte) (complete bool, err error) {
	if a.done {
		return true, nil
	}
	a.buf.Append(data)

	if !a.headParsed {
		if err := a.tryParseHead(); err != nil {
			return false, err
		}
		if !a.headParsed {
			return false, nil
		}
	}

	return a.tryCompleteBody()
}

// Request returns the fully assembled request. Only valid after Feed
// has reported complete == true.
func (a *Assembler) Request() Request {
	return a.req
}

const headSep = "\r\n\r\n"

func (a *Assembler) tryParseHead() error {
	idx := a.buf.Index([]byte(headSep), 0)
	if idx < 0 {
		return nil
	}
	head := string(a.buf.Bytes()[:idx])
	a.buf.EraseRange(0, idx+len(headSep))

	lines := strings.Split(head, "\r\n")
	if len(lines) == 0 {
		return fmt.Errorf("httpframe: empty request head")
	}
	requestLine := strings.SplitN(lines[0], " ", 3)
	if len(requestLine) < 2 {
		return fmt.Errorf("httpframe: malformed request line %q", lines[0])
	}
	req := Request{Method: requestLine[0], URI: requestLine[1]}
	if len(requestLine) == 3 {
		req.Version = requestLine[2]
	}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		req.Headers = append(req.Headers, Header{Name: name, Value: value})
	}
	a.req = req
	a.headParsed = true
	return nil
}

func (a *Assembler) tryCompleteBody() (bool, error) {
	if a.req.IsChunked() {
		data, consumed, ok, err := decodeChunks(a.buf.Bytes())
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		a.buf.EraseRange(0, consumed)
		a.req.Body = data
		a.done = true
		return true, nil
	}

	n := a.req.ContentLength()
	if n <= 0 {
		// No body declared: the message is complete as soon as the
		// head has been parsed.
		a.done = true
		return true, nil
	}
	if a.buf.Len() < n {
		return false, nil
	}
	a.req.Body = append([]byte(nil), a.buf.Bytes()[:n]...)
	a.buf.EraseRange(0, n)
	a.done = true
	return true, nil
}
