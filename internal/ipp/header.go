package ipp

import (
	"encoding/binary"
	"fmt"
)

// IPP operation IDs this emulator dispatches on, per RFC 8011.
const (
	OpValidateJob          = 0x0004
	OpCreateJob            = 0x0005
	OpSendDocument         = 0x0006
	OpGetJobAttributes     = 0x0009
	OpGetPrinterAttributes = 0x000B
)

// Header is the fixed 8-byte IPP message header: version, operation
// or status code, and request id.
type Header struct {
	VersionMajor uint8
	VersionMinor uint8
	// OperationOrStatus holds the operation-id on a request and the
	// status-code on a response; IPP reuses the same wire field for
	// both.
	OperationOrStatus uint16
	RequestID         int32
}

// HeaderSize is the fixed wire length of an IPP header.
const HeaderSize = 8

// Marshal encodes h into its 8-byte wire form.
func (h Header) Marshal() []byte {
	b := make([]byte, HeaderSize)
	b[0] = h.VersionMajor
	b[1] = h.VersionMinor
	binary.BigEndian.PutUint16(b[2:4], h.OperationOrStatus)
	binary.BigEndian.PutUint32(b[4:8], uint32(h.RequestID))
	return b
}

// UnmarshalHeader decodes an IPP header from the first 8 bytes of b.
func UnmarshalHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("ipp: short header: got %d bytes, want %d", len(b), HeaderSize)
	}
	return Header{
		VersionMajor:      b[0],
		VersionMinor:      b[1],
		OperationOrStatus: binary.BigEndian.Uint16(b[2:4]),
		RequestID:         int32(binary.BigEndian.Uint32(b[4:8])),
	}, nil
}

// ExtractFromHTTPBody locates and decodes the IPP header embedded in
// an HTTP message that still carries its raw preamble, returning the
// header and the offset immediately following it (where
// attribute-group data begins). Matches ipp_util.cc's GetIppHeader for
// a single unchunked buffer: the header begins right after the blank
// line separating HTTP headers from body, so attribute data begins 8
// bytes after that line. A buffer with no blank line is an error.
func ExtractFromHTTPBody(body []byte) (Header, int, error) {
	const sep = "\r\n\r\n"
	idx := indexOf(body, []byte(sep))
	if idx < 0 {
		return Header{}, 0, fmt.Errorf("ipp: no header/body separator found")
	}
	start := idx + len(sep)
	h, err := UnmarshalHeader(body[start:])
	if err != nil {
		return Header{}, 0, err
	}
	return h, start + HeaderSize, nil
}

func indexOf(haystack, needle []byte) int {
	n, m := len(haystack), len(needle)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if string(haystack[i:i+m]) == string(needle) {
			return i
		}
	}
	return -1
}
