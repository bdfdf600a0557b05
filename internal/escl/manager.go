package escl

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	goji "goji.io"
	"goji.io/pat"

	"github.com/cros-usb/virtualusbprinter/internal/httpframe"
)

// Manager owns this printer's scan-capability set and in-progress job
// map, and dispatches eSCL requests against them. It embeds a mutex
// the way comm.RemoteDevice does, guarding the job map the same way
// that type guards its connection state across concurrent callers.
type Manager struct {
	sync.Mutex

	Capabilities ScannerCapabilities

	jobs   map[string]JobInfo
	nextID int
	newUUID func() string
	mux     *goji.Mux
}

// NewManager returns a Manager advertising caps. newUUID generates
// job identifiers; callers in production pass a real UUID generator,
// tests pass a deterministic one.
func NewManager(caps ScannerCapabilities, newUUID func() string) *Manager {
	m := &Manager{
		Capabilities: caps,
		jobs:         make(map[string]JobInfo),
		newUUID:      newUUID,
	}
	m.mux = m.buildRoutes()
	return m
}

func (m *Manager) buildRoutes() *goji.Mux {
	mux := goji.NewMux()
	mux.HandleFunc(pat.Get("/eSCL/ScannerCapabilities"), m.handleCapabilities)
	mux.HandleFunc(pat.Get("/eSCL/ScannerStatus"), m.handleStatus)
	mux.HandleFunc(pat.Post("/eSCL/ScanJobs"), m.handleCreateJob)
	mux.HandleFunc(pat.Get("/eSCL/ScanJobs/:id"), m.handleGetJob)
	mux.HandleFunc(pat.Delete("/eSCL/ScanJobs/:id"), m.handleDeleteJob)
	mux.HandleFunc(pat.Get("/eSCL/ScanJobs/:id/NextDocument"), m.handleNextDocument)
	return mux
}

// Handle routes req through the eSCL mux and returns the resulting
// response. Because req never arrived over a real listening socket —
// it was reassembled from bulk-OUT URB fragments by
// internal/httpframe — a synthetic *http.Request and
// httptest.ResponseRecorder bridge it into goji's real routing
// machinery rather than net/http's.
func (m *Manager) Handle(req httpframe.Request) (httpframe.Response, error) {
	httpReq, err := http.NewRequest(req.Method, req.URI, strings.NewReader(string(req.Body)))
	if err != nil {
		return httpframe.Response{}, err
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}
	rec := httptest.NewRecorder()
	m.mux.ServeHTTP(rec, httpReq)
	result := rec.Result()
	defer result.Body.Close()
	body, err := ioutil.ReadAll(result.Body)
	if err != nil {
		return httpframe.Response{}, err
	}
	resp := httpframe.Response{StatusCode: result.StatusCode, StatusText: http.StatusText(result.StatusCode), Body: body}
	for name, values := range result.Header {
		for _, v := range values {
			resp.Headers = append(resp.Headers, httpframe.Header{Name: name, Value: v})
		}
	}
	return resp, nil
}

func (m *Manager) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	w.Write(ScannerCapabilitiesAsXml(m.Capabilities))
}

func (m *Manager) handleStatus(w http.ResponseWriter, r *http.Request) {
	m.Lock()
	status := ScannerStatus{State: StateIdle, Jobs: m.jobList()}
	m.Unlock()
	w.Header().Set("Content-Type", "text/xml")
	w.Write(ScannerStatusAsXml(status, func(j JobInfo) int { return j.Age(time.Now()) }))
}

func (m *Manager) jobList() []JobInfo {
	out := make([]JobInfo, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out
}

func (m *Manager) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := ScanSettingsFromXml(body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.Lock()
	id := m.newUUID()
	m.jobs[id] = JobInfo{UUID: id, State: JobPending, CreatedAt: time.Now()}
	m.Unlock()

	w.Header().Set("Location", "/eSCL/ScanJobs/"+id)
	w.WriteHeader(http.StatusCreated)
}

func (m *Manager) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := pat.Param(r, "id")
	m.Lock()
	job, ok := m.jobs[id]
	m.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.Write(ScannerStatusAsXml(ScannerStatus{State: StateIdle, Jobs: []JobInfo{job}}, func(j JobInfo) int { return j.Age(time.Now()) }))
}

func (m *Manager) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := pat.Param(r, "id")
	m.Lock()
	_, ok := m.jobs[id]
	if ok {
		delete(m.jobs, id)
	}
	m.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleNextDocument returns the next page of a completed scan. This
// emulator has no real scan hardware, so it always returns a
// zero-length placeholder image and marks the job completed,
// matching the Non-goal that scanned image content is opaque bytes.
func (m *Manager) handleNextDocument(w http.ResponseWriter, r *http.Request) {
	id := pat.Param(r, "id")
	m.Lock()
	job, ok := m.jobs[id]
	if ok {
		job.State = JobCompleted
		m.jobs[id] = job
	}
	m.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
}
