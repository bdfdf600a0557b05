package httpframe

import (
	"bytes"
	"testing"
)

func TestAssemblerContentLength(t *testing.T) {
	a := NewAssembler()
	msg := "POST /ipp/print HTTP/1.1\r\nContent-Length: 5\r\nContent-Type: application/ipp\r\n\r\nhello"
	complete, err := a.Feed([]byte(msg[:20]))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if complete {
		t.Fatal("expected incomplete after partial head")
	}
	complete, err = a.Feed([]byte(msg[20:]))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !complete {
		t.Fatal("expected complete after full message")
	}
	req := a.Request()
	if req.Method != "POST" || req.URI != "/ipp/print" {
		t.Errorf("method/uri = %q/%q", req.Method, req.URI)
	}
	if !bytes.Equal(req.Body, []byte("hello")) {
		t.Errorf("body = %q, want %q", req.Body, "hello")
	}
}

func TestAssemblerChunkedAcrossFragments(t *testing.T) {
	a := NewAssembler()
	head := "POST /eSCL/ScanJobs HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n"
	chunk1 := "5\r\nhello\r\n"
	chunk2 := "6\r\n world\r\n"
	final := "0\r\n\r\n"

	if complete, err := a.Feed([]byte(head)); err != nil || complete {
		t.Fatalf("head-only feed: complete=%v err=%v", complete, err)
	}
	if complete, err := a.Feed([]byte(chunk1)); err != nil || complete {
		t.Fatalf("chunk1 feed: complete=%v err=%v", complete, err)
	}
	if complete, err := a.Feed([]byte(chunk2)); err != nil || complete {
		t.Fatalf("chunk2 feed: complete=%v err=%v", complete, err)
	}
	complete, err := a.Feed([]byte(final))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !complete {
		t.Fatal("expected complete after final chunk")
	}
	req := a.Request()
	if !bytes.Equal(req.Body, []byte("hello world")) {
		t.Errorf("body = %q, want %q", req.Body, "hello world")
	}
}

func TestAssemblerNoBody(t *testing.T) {
	a := NewAssembler()
	msg := "GET /eSCL/ScannerCapabilities HTTP/1.1\r\nHost: localhost\r\n\r\n"
	complete, err := a.Feed([]byte(msg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !complete {
		t.Fatal("expected complete for bodyless GET")
	}
	if len(a.Request().Body) != 0 {
		t.Errorf("body = %q, want empty", a.Request().Body)
	}
}

func TestResponseSerializeRoundTrippableFields(t *testing.T) {
	resp := NewResponse(200, "application/ipp", []byte{1, 2, 3})
	b := resp.Serialize()
	if !bytes.Contains(b, []byte("HTTP/1.1 200 OK\r\n")) {
		t.Errorf("missing status line in %q", b)
	}
	if !bytes.Contains(b, []byte("Content-Length: 3\r\n")) {
		t.Errorf("missing content-length in %q", b)
	}
	if !bytes.HasSuffix(b, []byte{1, 2, 3}) {
		t.Errorf("missing body in %q", b)
	}
}
