package e2etest

import (
	"encoding/json"
	"github.com/google/uuid"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/sashabaranov/go-openai"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"time"
)

const maxFakeUploadSize = 32 << 20

// FakeBackend is an in-memory stand-in for the report REST backend.
type FakeBackend struct {
	*httptest.Server

	mu         sync.Mutex
	reports    []models.Report
	uploads    map[string][]byte
	failCreate bool
	failUpdate bool
}

// NewFakeBackend starts a fake backend seeded with reports. Close it when done.
func NewFakeBackend(reports ...models.Report) *FakeBackend {
	f := &FakeBackend{ //nolint:exhaustruct // zero values are fine.
		reports: slices.Clone(reports),
		uploads: make(map[string][]byte),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reports", f.listReports)
	mux.HandleFunc("GET /report/{id}", f.getReport)
	mux.HandleFunc("POST /register", f.register)
	mux.HandleFunc("PUT /reports/{id}/status", f.updateStatus)
	f.Server = httptest.NewServer(mux)
	return f
}

// FailCreate makes POST /register respond with 500.
func (f *FakeBackend) FailCreate(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCreate = fail
}

// FailUpdate makes PUT /reports/{id}/status respond with 500.
func (f *FakeBackend) FailUpdate(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpdate = fail
}

// Reports returns a snapshot of the stored reports.
func (f *FakeBackend) Reports() []models.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.reports)
}

// Upload returns the evidence stored for a report with the tracking id.
func (f *FakeBackend) Upload(trackingID string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads[trackingID]
}

func (f *FakeBackend) listReports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, f.Reports())
}

func (f *FakeBackend) getReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, report := range f.Reports() {
		if report.UniqueID == id {
			writeJSON(w, http.StatusOK, report)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Report not found"})
}

func (f *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	fail := f.failCreate
	f.mu.Unlock()
	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "create failed"})
		return
	}
	if err := r.ParseMultipartForm(maxFakeUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	report := models.Report{
		ID:           uuid.NewString(),
		UniqueID:     r.FormValue("uniqueId"),
		Name:         r.FormValue("name"),
		Age:          models.Text(r.FormValue("age")),
		Mobile:       r.FormValue("mobile"),
		Residence:    r.FormValue("residence"),
		Crime:        r.FormValue("crime"),
		HasProof:     models.Flag(strings.EqualFold(r.FormValue("hasProof"), "yes")),
		Proof:        "",
		Traits:       r.FormValue("traits"),
		LocationType: r.FormValue("locationType"),
		Location:     r.FormValue("location"),
		Status:       models.Status(r.FormValue("status")),
		Timestamp:    time.Now().UTC(),
	}
	if file, header, err := r.FormFile("file"); err == nil {
		data, _ := io.ReadAll(file)
		_ = file.Close()
		report.Proof = header.Filename
		f.mu.Lock()
		f.uploads[report.UniqueID] = data
		f.mu.Unlock()
	}
	f.mu.Lock()
	f.reports = append(f.reports, report)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, report)
}

func (f *FakeBackend) updateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "update failed"})
		return
	}
	id := r.PathValue("id")
	for i := range f.reports {
		if f.reports[i].ID == id {
			f.reports[i].Status = body.Status
			writeJSON(w, http.StatusOK, f.reports[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Report not found"})
}

// FakeOpenAI answers chat completions like the crime classifier model would.
//
// By default descriptions with fewer than three words are rejected with "No".
type FakeOpenAI struct {
	*httptest.Server

	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	reply    func(prompt string) string
	fail     bool
}

func NewFakeOpenAI() *FakeOpenAI {
	f := &FakeOpenAI{ //nolint:exhaustruct // zero values are fine.
		reply: func(prompt string) string {
			_, description, _ := strings.Cut(prompt, ":")
			if len(strings.Fields(description)) < 3 { //nolint:mnd // three words
				return "No"
			}
			return "Yes"
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", f.chatCompletions)
	f.Server = httptest.NewServer(mux)
	return f
}

// SetReply overrides the reply for every user prompt.
func (f *FakeOpenAI) SetReply(reply func(prompt string) string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

// Fail makes the API respond with 500.
func (f *FakeOpenAI) Fail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

// Requests returns the received completion requests.
func (f *FakeOpenAI) Requests() []openai.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

func (f *FakeOpenAI) chatCompletions(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]string{"message": err.Error()}})
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fail, reply := f.fail, f.reply
	f.mu.Unlock()
	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": map[string]string{"message": "model overloaded", "type": "server_error"},
		})
		return
	}
	prompt := ""
	for _, m := range req.Messages {
		if m.Role == openai.ChatMessageRoleUser {
			prompt = m.Content
		}
	}
	writeJSON(w, http.StatusOK, openai.ChatCompletionResponse{ //nolint:exhaustruct // minimal response.
		ID:      "chatcmpl-fake",
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []openai.ChatCompletionChoice{{ //nolint:exhaustruct // minimal response.
			Index: 0,
			Message: openai.ChatCompletionMessage{ //nolint:exhaustruct // minimal response.
				Role:    openai.ChatMessageRoleAssistant,
				Content: reply(prompt),
			},
			FinishReason: "stop",
		}},
	})
}

// FakeNominatim answers reverse geocoding requests with a fixed display name.
type FakeNominatim struct {
	*httptest.Server

	mu          sync.Mutex
	displayName string
	fail        bool
	userAgents  []string
}

func NewFakeNominatim(displayName string) *FakeNominatim {
	f := &FakeNominatim{displayName: displayName} //nolint:exhaustruct // zero values are fine.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reverse", f.reverse)
	f.Server = httptest.NewServer(mux)
	return f
}

// Fail makes the endpoint respond with 503.
func (f *FakeNominatim) Fail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

// UserAgents returns the User-Agent headers of the received requests.
func (f *FakeNominatim) UserAgents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.userAgents)
}

func (f *FakeNominatim) reverse(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.userAgents = append(f.userAgents, r.UserAgent())
	fail, name := f.fail, f.displayName
	f.mu.Unlock()
	if fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" || q.Get("format") != "json" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing parameters"})
		return
	}
	if name == "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Unable to geocode"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"display_name": name, "lat": q.Get("lat"), "lon": q.Get("lon")})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
