package escl

import (
	"strings"
	"testing"

	"github.com/cros-usb/virtualusbprinter/internal/httpframe"
)

func testManager() *Manager {
	n := 0
	return NewManager(ScannerCapabilities{MakeAndModel: "Test Printer"}, func() string {
		n++
		return "job-" + string(rune('0'+n))
	})
}

func TestManagerCapabilities(t *testing.T) {
	m := testManager()
	resp, err := m.Handle(httpframe.Request{Method: "GET", URI: "/eSCL/ScannerCapabilities"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "Test Printer") {
		t.Errorf("body missing make/model: %s", resp.Body)
	}
}

func TestManagerJobLifecycle(t *testing.T) {
	m := testManager()

	createResp, err := m.Handle(httpframe.Request{
		Method: "POST",
		URI:    "/eSCL/ScanJobs",
		Body:   []byte(`<scan:ScanSettings xmlns:scan="` + nsScan + `"><scan:InputSource>Platen</scan:InputSource></scan:ScanSettings>`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createResp.StatusCode != 201 {
		t.Fatalf("create status = %d, want 201", createResp.StatusCode)
	}
	loc, ok := headerValue(createResp.Headers, "Location")
	if !ok {
		t.Fatal("missing Location header")
	}

	getResp, err := m.Handle(httpframe.Request{Method: "GET", URI: loc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if getResp.StatusCode != 200 {
		t.Fatalf("get status = %d, want 200", getResp.StatusCode)
	}

	delResp, err := m.Handle(httpframe.Request{Method: "DELETE", URI: loc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delResp.StatusCode != 200 {
		t.Fatalf("delete status = %d, want 200", delResp.StatusCode)
	}

	getAfterDelete, err := m.Handle(httpframe.Request{Method: "GET", URI: loc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if getAfterDelete.StatusCode != 404 {
		t.Errorf("get after delete status = %d, want 404", getAfterDelete.StatusCode)
	}
}

func TestManagerCreateJobRejectsInvalidColorMode(t *testing.T) {
	m := testManager()
	resp, err := m.Handle(httpframe.Request{
		Method: "POST",
		URI:    "/eSCL/ScanJobs",
		Body:   []byte(`<scan:ScanSettings xmlns:scan="` + nsScan + `"><scan:ColorMode>Bogus</scan:ColorMode></scan:ScanSettings>`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func headerValue(headers []httpframe.Header, name string) (string, bool) {
	for _, h := range headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}
