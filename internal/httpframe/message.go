// Package httpframe implements a from-scratch HTTP/1.1 request and
// response framer: deserializing a request out of raw bytes collected
// across multiple bulk-OUT URBs (including reassembling chunked
// transfer-encoded bodies), and serializing a response for delivery
// fragmented across bulk-IN URBs. This does not use net/http's own
// message parser, which assumes a real io.Reader over a socket; here
// the bytes arrive piecemeal from USB bulk transfers and must be
// reassembled by hand before anything resembling a net/http.Request
// can be built (internal/escl does that bridging once a message is
// complete).
package httpframe

import (
	"fmt"
	"strconv"
	"strings"
)

// Header is a single HTTP header field. Request and Response keep
// their fields as an ordered slice of Header, preserving duplicates
// and original casing the way the wire message carried them.
type Header struct {
	Name, Value string
}

// Request is a deserialized HTTP/1.1 request line plus headers and
// body.
type Request struct {
	Method  string
	URI     string
	Version string
	Headers []Header
	Body    []byte
}

// Get returns the value of the first header matching name
// case-insensitively, and whether one was found.
func (r Request) Get(name string) (string, bool) {
	return getHeader(r.Headers, name)
}

// IsChunked reports whether the request declares a chunked
// Transfer-Encoding.
func (r Request) IsChunked() bool {
	v, ok := r.Get("Transfer-Encoding")
	return ok && strings.Contains(strings.ToLower(v), "chunked")
}

// ContentLength returns the parsed Content-Length header value, or -1
// if absent or unparseable.
func (r Request) ContentLength() int {
	v, ok := r.Get("Content-Length")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return -1
	}
	return n
}

func getHeader(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Response is an HTTP/1.1 status line plus headers and body, ready to
// serialize onto a bulk-IN queue.
type Response struct {
	StatusCode int
	StatusText string
	Headers    []Header
	Body       []byte
}

// reasonPhrases covers the handful of status codes this emulator
// ever emits.
var reasonPhrases = map[int]string{
	200: "OK",
	201: "Created",
	204: "No Content",
	400: "Bad Request",
	404: "Not Found",
	405: "Method Not Allowed",
	415: "Unsupported Media Type",
	500: "Internal Server Error",
}

// NewResponse builds a Response with a canned reason phrase for
// status, Content-Type ct, and body.
func NewResponse(status int, ct string, body []byte) Response {
	reason, ok := reasonPhrases[status]
	if !ok {
		reason = "Unknown"
	}
	return Response{
		StatusCode: status,
		StatusText: reason,
		Headers: []Header{
			{Name: "Content-Type", Value: ct},
			{Name: "Content-Length", Value: strconv.Itoa(len(body))},
			{Name: "Connection", Value: "close"},
		},
		Body: body,
	}
}

// Serialize encodes r as a full HTTP/1.1 response message.
func (r Response) Serialize() []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "HTTP/1.1 %d %s\r\n", r.StatusCode, r.StatusText)
	for _, h := range r.Headers {
		fmt.Fprintf(&sb, "%s: %s\r\n", h.Name, h.Value)
	}
	sb.WriteString("\r\n")
	out := make([]byte, 0, sb.Len()+len(r.Body))
	out = append(out, sb.String()...)
	out = append(out, r.Body...)
	return out
}
