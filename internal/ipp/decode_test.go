package ipp

import "testing"

func TestSkipAttributeGroupsFindsDocumentData(t *testing.T) {
	h := Header{VersionMajor: 2, VersionMinor: 0, OperationOrStatus: OpSendDocument, RequestID: 1}
	msg := h.Marshal()
	group, err := EncodeGroup(TagOperationAttributes, []Attribute{
		{Name: "attributes-charset", Type: TypeCharset, Strings: []string{"utf-8"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg = append(msg, group...)
	msg = append(msg, EndOfAttributes()...)
	doc := []byte("%PDF-1.4 fake document body")
	msg = append(msg, doc...)

	offset, err := SkipAttributeGroups(msg, HeaderSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(msg[offset:]) != string(doc) {
		t.Errorf("document data = %q, want %q", msg[offset:], doc)
	}
}

func TestSkipAttributeGroupsTruncated(t *testing.T) {
	msg := []byte{byte(TagOperationAttributes), byte(TagInteger), 0, 5}
	if _, err := SkipAttributeGroups(msg, 0); err == nil {
		t.Error("expected error for truncated message")
	}
}
