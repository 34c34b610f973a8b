package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/localrivet/textsummarizer/internal/service"
	"github.com/localrivet/textsummarizer/internal/signlang"
)

func newTestHTTPServer(t *testing.T, maxUpload int64) *httptest.Server {
	t.Helper()
	s := NewHTTPServer(newTestService(t), ":0", maxUpload, nil)
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHTTPSummarizeText(t *testing.T) {
	ts := newTestHTTPServer(t, 0)

	resp := postJSON(t, ts.URL+"/summarize/text", `{"text":`+quote(riverText)+`,"num_sentences":2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
	body := decode[service.Response](t, resp)
	if body.OriginalText != riverText || len(body.Sentences) != 2 {
		t.Errorf("body = %+v", body)
	}
	if body.SignLanguageData["gestures"] != signlang.PlaceholderGestures {
		t.Errorf("sign_language_data = %v", body.SignLanguageData)
	}

	// num_sentences defaults to 3.
	resp = postJSON(t, ts.URL+"/summarize/text", `{"text":`+quote(riverText)+`}`)
	if body := decode[service.Response](t, resp); len(body.Sentences) != 3 {
		t.Errorf("default count gave %d sentences", len(body.Sentences))
	}
}

func TestHTTPSummarizeTopic(t *testing.T) {
	ts := newTestHTTPServer(t, 0)

	resp := postJSON(t, ts.URL+"/summarize/topic", `{"topic":"rivers","num_sentences":1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[service.Response](t, resp)
	if body.OriginalText != riverText || len(body.Sentences) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestHTTPErrors(t *testing.T) {
	ts := newTestHTTPServer(t, 64)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "no text", path: "/summarize/text", body: `{"text":""}`, wantStatus: http.StatusBadRequest, wantCode: ErrorCodeInvalidRequest},
		{name: "zero sentences", path: "/summarize/text", body: `{"text":"A. B.","num_sentences":0}`, wantStatus: http.StatusBadRequest, wantCode: ErrorCodeInvalidRequest},
		{name: "bad json", path: "/summarize/text", body: `{`, wantStatus: http.StatusBadRequest, wantCode: ErrorCodeInvalidRequest},
		{name: "no topic", path: "/summarize/topic", body: `{}`, wantStatus: http.StatusBadRequest, wantCode: ErrorCodeInvalidRequest},
		{name: "bad order", path: "/summarize/text", body: `{"text":"A cat.","order":"x"}`, wantStatus: http.StatusBadRequest, wantCode: ErrorCodeInvalidRequest},
		{name: "too large", path: "/summarize/text", body: `{"text":"` + strings.Repeat("a", 100) + `"}`, wantStatus: http.StatusRequestEntityTooLarge, wantCode: ErrorCodeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if body := decode[ErrorResponse](t, resp); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHTTPSummarizeFile(t *testing.T) {
	ts := newTestHTTPServer(t, 0)

	body, contentType := multipartBody(t, "rivers.html", "<p>"+riverText+"</p>")
	resp, err := http.Post(ts.URL+"/summarize/file?num_sentences=2", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decode[service.Response](t, resp); len(got.Sentences) != 2 {
		t.Errorf("got %d sentences", len(got.Sentences))
	}

	body, contentType = multipartBody(t, "paper.pdf", "%PDF-1.4")
	resp, err = http.Post(ts.URL+"/summarize/file", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf status = %d, want 400", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, resp); got.Code != ErrorCodeUnsupported {
		t.Errorf("pdf code = %q", got.Code)
	}

	resp = postJSON(t, ts.URL+"/summarize/file", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing file status = %d, want 400", resp.StatusCode)
	}
}

func TestHTTPHistory(t *testing.T) {
	ts := newTestHTTPServer(t, 0)

	created := decode[service.Response](t, postJSON(t, ts.URL+"/summarize/text", `{"text":`+quote(riverText)+`,"num_sentences":1}`))
	if created.ID == "" {
		t.Fatal("expected a stored id")
	}

	resp, err := http.Get(ts.URL + "/summaries/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/summaries?q=fresh+water&limit=5")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	search := decode[struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}](t, resp)
	if len(search.Results) != 1 || search.Results[0].ID != created.ID {
		t.Errorf("search results = %+v", search.Results)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/summaries/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/summaries/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/summaries", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("clear without confirmation status = %d, want 400", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/summaries?confirmation=confirm", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("clear status = %d", resp.StatusCode)
	}
}

func TestHTTPHealthAndCORS(t *testing.T) {
	ts := newTestHTTPServer(t, 0)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	report := decode[map[string]any](t, resp)
	if report["status"] != "healthy" {
		t.Errorf("health = %v", report)
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/summarize/text", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("preflight status = %d, headers = %v", resp.StatusCode, resp.Header)
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
