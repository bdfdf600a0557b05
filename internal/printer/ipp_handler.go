package printer

import (
	"fmt"
	"sync"

	"github.com/cros-usb/virtualusbprinter/internal/httpframe"
	"github.com/cros-usb/virtualusbprinter/internal/ipp"
)

// IPP status codes this emulator returns, per RFC 8011 section 4.1.6.
const (
	StatusSuccessfulOK               = 0x0000
	StatusServerErrorOperationNotSupported = 0x0501
)

// IPPHandler dispatches IPP-over-HTTP requests received on the
// /ipp/print resource, answering from a canned, configuration-driven
// attribute table rather than modeling real print-job state beyond
// what the protocol requires a client to see.
type IPPHandler struct {
	mu sync.Mutex

	PrinterAttributes    []ipp.Attribute
	JobAttributeTemplate []ipp.Attribute
	// OperationAttributes is appended to the operation-attributes group
	// of every response, matching ipp_manager.cc's AddPrinterAttributes
	// call with kOperationAttributes on every reply it builds. If empty,
	// the handler falls back to the bare attributes-charset/
	// attributes-natural-language pair RFC 8011 requires at minimum.
	OperationAttributes []ipp.Attribute

	sink      DocumentSink
	nextJobID int32
	jobs      map[int32][]ipp.Attribute
}

// NewIPPHandler returns a handler reporting printerAttrs for
// Get-Printer-Attributes and cloning jobAttrs as the base attribute
// set for every job it creates. sink may be nil, in which case
// Send-Document's document data is discarded rather than recorded
// (the --record_doc_path flag is optional).
func NewIPPHandler(printerAttrs, jobAttrs []ipp.Attribute, sink DocumentSink) *IPPHandler {
	return &IPPHandler{
		PrinterAttributes:    printerAttrs,
		JobAttributeTemplate: jobAttrs,
		sink:                 sink,
		jobs:                 make(map[int32][]ipp.Attribute),
	}
}

// Handle parses req's IPP body and returns the HTTP response carrying
// the IPP reply. Before interpreting the request body for any
// operation, it strips the attribute section to confirm it is
// well-formed; a malformed attribute section produces an HTTP 415
// response rather than dispatching to an operation handler.
func (h *IPPHandler) Handle(req httpframe.Request) (httpframe.Response, error) {
	hdr, err := ipp.UnmarshalHeader(req.Body)
	if err != nil {
		return httpframe.Response{}, fmt.Errorf("printer: parsing ipp request: %w", err)
	}
	if _, err := ipp.SkipAttributeGroups(req.Body, ipp.HeaderSize); err != nil {
		return httpframe.NewResponse(415, "text/plain", nil), nil
	}

	switch hdr.OperationOrStatus {
	case ipp.OpGetPrinterAttributes:
		return h.respond(hdr, StatusSuccessfulOK, ipp.TagPrinterAttributes, h.PrinterAttributes)
	case ipp.OpValidateJob:
		return h.respond(hdr, StatusSuccessfulOK, ipp.TagJobAttributes, nil)
	case ipp.OpCreateJob:
		return h.handleCreateJob(hdr)
	case ipp.OpSendDocument:
		return h.handleSendDocument(hdr, req.Body)
	case ipp.OpGetJobAttributes:
		return h.handleGetJobAttributes(hdr, req.Body)
	default:
		return h.respond(hdr, StatusServerErrorOperationNotSupported, ipp.TagOperationAttributes, nil)
	}
}

func (h *IPPHandler) handleCreateJob(hdr ipp.Header) (httpframe.Response, error) {
	h.mu.Lock()
	h.nextJobID++
	id := h.nextJobID
	attrs := cloneAttributes(h.JobAttributeTemplate)
	attrs = append(attrs,
		ipp.Attribute{Name: "job-id", Type: ipp.TypeInteger, Ints: []int32{id}},
		ipp.Attribute{Name: "job-state", Type: ipp.TypeEnum, Ints: []int32{3}}, // pending
	)
	h.jobs[id] = attrs
	h.mu.Unlock()
	return h.respond(hdr, StatusSuccessfulOK, ipp.TagJobAttributes, attrs)
}

func (h *IPPHandler) handleSendDocument(hdr ipp.Header, body []byte) (httpframe.Response, error) {
	docOffset, err := ipp.SkipAttributeGroups(body, ipp.HeaderSize)
	if err != nil {
		return httpframe.Response{}, fmt.Errorf("printer: parsing send-document request: %w", err)
	}
	docData := body[docOffset:]
	if h.sink != nil && len(docData) > 0 {
		if err := h.sink.Write(docData); err != nil {
			return httpframe.Response{}, fmt.Errorf("printer: writing document: %w", err)
		}
	}

	h.mu.Lock()
	var attrs []ipp.Attribute
	for id, jobAttrs := range h.jobs {
		attrs = append(jobAttrs,
			ipp.Attribute{Name: "job-id", Type: ipp.TypeInteger, Ints: []int32{id}},
			ipp.Attribute{Name: "job-state", Type: ipp.TypeEnum, Ints: []int32{9}}, // completed
		)
		h.jobs[id] = attrs
		break
	}
	h.mu.Unlock()

	return h.respond(hdr, StatusSuccessfulOK, ipp.TagJobAttributes, attrs)
}

func (h *IPPHandler) handleGetJobAttributes(hdr ipp.Header, body []byte) (httpframe.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, attrs := range h.jobs {
		return h.respond(hdr, StatusSuccessfulOK, ipp.TagJobAttributes, attrs)
	}
	return h.respond(hdr, StatusServerErrorOperationNotSupported, ipp.TagJobAttributes, nil)
}

// respond builds the canned IPP response body for status, with an
// operation-attributes group (h.OperationAttributes, or the
// attributes-charset/attributes-natural-language pair when that is
// empty), an optional attribute group tagged
// groupTag (ipp.TagPrinterAttributes for Get-Printer-Attributes,
// ipp.TagJobAttributes for every job-scoped operation, per spec.md
// §4.6's per-operation group-tag table), and the end-of-attributes
// marker, then wraps it in an HTTP 200 response with the canonical
// application/ipp content type.
func (h *IPPHandler) respond(req ipp.Header, status uint16, groupTag ipp.Tag, groupAttrs []ipp.Attribute) (httpframe.Response, error) {
	respHdr := ipp.Header{VersionMajor: 2, VersionMinor: 0, OperationOrStatus: status, RequestID: req.RequestID}
	out := respHdr.Marshal()

	opAttrs := h.OperationAttributes
	if len(opAttrs) == 0 {
		opAttrs = []ipp.Attribute{
			{Name: "attributes-charset", Type: ipp.TypeCharset, Strings: []string{"utf-8"}},
			{Name: "attributes-natural-language", Type: ipp.TypeNaturalLanguage, Strings: []string{"en"}},
		}
	}
	opGroup, err := ipp.EncodeGroup(ipp.TagOperationAttributes, opAttrs)
	if err != nil {
		return httpframe.Response{}, err
	}
	out = append(out, opGroup...)

	if len(groupAttrs) > 0 {
		group, err := ipp.EncodeGroup(groupTag, groupAttrs)
		if err != nil {
			return httpframe.Response{}, err
		}
		out = append(out, group...)
	}
	out = append(out, ipp.EndOfAttributes()...)

	return httpframe.NewResponse(200, "application/ipp", out), nil
}

func cloneAttributes(attrs []ipp.Attribute) []ipp.Attribute {
	out := make([]ipp.Attribute, len(attrs))
	copy(out, attrs)
	return out
}
