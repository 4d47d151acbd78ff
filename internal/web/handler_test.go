package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ii-tuitions/mocktest/internal/ai"
	"github.com/ii-tuitions/mocktest/internal/archive"
	"github.com/ii-tuitions/mocktest/internal/curriculum"
	"github.com/ii-tuitions/mocktest/internal/quiz"
	"github.com/ii-tuitions/mocktest/internal/session"
)

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	mock     *ai.MockProvider
	sessions *session.MemoryStore
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	catalog, err := curriculum.Load("")
	if err != nil {
		t.Fatalf("curriculum.Load() error = %v", err)
	}
	mock := ai.NewDemoProvider()
	svc := quiz.NewService(catalog, mock, quiz.WithArchive(archive.NewMemoryStore()))
	sessions := session.NewMemoryStore(time.Hour)

	h, err := NewHandler(svc, sessions, opts...)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{srv: srv, client: client, mock: mock, sessions: sessions}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (e *testEnv) navigate(t *testing.T, action session.Action) *http.Response {
	t.Helper()
	resp, _ := e.postForm(t, "/navigate", url.Values{"action": {string(action)}})
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(b)
}

func validCreateForm() url.Values {
	return url.Values{
		"board":        {"CBSE"},
		"grade":        {"8"},
		"subject":      {"Science"},
		"topic":        {"Force and Pressure"},
		"paper_type":   {"Paper 2 (23 Mixed)"},
		"show_answers": {"on"},
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"healthz returns 200", "/healthz", http.StatusOK, `{"status":"ok"}`},
		{"readyz returns 200", "/readyz", http.StatusOK, `{"status":"ready"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.get(t, tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestReadyz_FailedCheck(t *testing.T) {
	env := newTestEnv(t,
		WithReadinessCheck("archive", func(context.Context) error { return nil }),
		WithReadinessCheck("sessions", func(context.Context) error { return errors.New("connection refused") }),
	)

	resp, body := env.get(t, "/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	var got struct {
		Status string            `json:"status"`
		Failed map[string]string `json:"failed"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.Failed["sessions"] != "connection refused" {
		t.Errorf("failed = %v, want sessions entry", got.Failed)
	}
	if _, ok := got.Failed["archive"]; ok {
		t.Error("archive reported as failed")
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/healthz")
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Error("response has no request id")
	}

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/healthz", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}
}

func TestHomePage(t *testing.T) {
	env := newTestEnv(t, WithKeyStatus(KeyStatus{Configured: true, Preview: "sk-ant-api03-ab...23456789"}))

	resp, body := env.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{"Create Mock Test", "API Key configured: sk-ant-api03-ab...23456789", "Provider: mock"} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if strings.Contains(body, "View last test") {
		t.Error("home page offers the last test before one exists")
	}

	var cookie bool
	for _, c := range resp.Cookies() {
		if c.Name == "mocktest_session" && c.HttpOnly {
			cookie = true
		}
	}
	if !cookie {
		t.Error("no HttpOnly session cookie set")
	}
}

func TestHomePage_KeyMissing(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.get(t, "/")
	if !strings.Contains(body, "API Key not configured") {
		t.Error("home page does not report the missing key")
	}
}

func TestNavigation(t *testing.T) {
	env := newTestEnv(t)

	steps := []struct {
		action       session.Action
		wantStatus   int
		wantLocation string
	}{
		{session.ActionCreateTest, http.StatusSeeOther, "/create"},
		{session.ActionBackHome, http.StatusSeeOther, "/"},
		{session.ActionGenerateNew, http.StatusConflict, ""},
		{session.ActionCreateTest, http.StatusSeeOther, "/create"},
		{session.ActionViewTest, http.StatusSeeOther, "/test"},
		{session.ActionBackToCreate, http.StatusSeeOther, "/create"},
	}

	for _, s := range steps {
		resp := env.navigate(t, s.action)
		if resp.StatusCode != s.wantStatus {
			t.Fatalf("%s: status = %d, want %d", s.action, resp.StatusCode, s.wantStatus)
		}
		if s.wantLocation != "" && resp.Header.Get("Location") != s.wantLocation {
			t.Errorf("%s: Location = %q, want %q", s.action, resp.Header.Get("Location"), s.wantLocation)
		}
	}
}

func TestPagesFollowSession(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/create")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Errorf("GET /create on home = %d %q, want 303 /", resp.StatusCode, resp.Header.Get("Location"))
	}

	env.navigate(t, session.ActionCreateTest)
	resp, _ = env.get(t, "/")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/create" {
		t.Errorf("GET / on create = %d %q, want 303 /create", resp.StatusCode, resp.Header.Get("Location"))
	}
	resp, _ = env.get(t, "/test")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/create" {
		t.Errorf("GET /test on create = %d %q, want 303 /create", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestCreatePage_Selection(t *testing.T) {
	env := newTestEnv(t)
	env.navigate(t, session.ActionCreateTest)

	resp, body := env.get(t, "/create")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "Please select a board") {
		t.Error("empty form summary missing board prompt")
	}
	if !strings.Contains(body, "Select board and grade first") {
		t.Error("subject select should wait for board and grade")
	}

	_, body = env.get(t, "/create?board=CBSE&grade=8")
	if !strings.Contains(body, `<option value="Science"`) {
		t.Error("subjects for CBSE grade 8 not offered")
	}

	// The selection is kept in the session.
	_, body = env.get(t, "/create")
	if !strings.Contains(body, `<option value="CBSE" selected>`) {
		t.Error("board selection not kept")
	}
}

func TestCreate_GeneratesAndShowsTest(t *testing.T) {
	env := newTestEnv(t)
	env.navigate(t, session.ActionCreateTest)

	resp, _ := env.postForm(t, "/create", validCreateForm())
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/test" {
		t.Fatalf("Location = %q, want /test", loc)
	}
	if env.mock.Calls != 1 {
		t.Errorf("provider calls = %d, want 1", env.mock.Calls)
	}

	resp, body := env.get(t, "/test")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /test status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{
		"Science Mock Test",
		"Question 1:",
		"A force of 50 N acts on an area of 0.5 m^2",
		"Correct Answer: B",
		"Sample Answer: The weight of the liquid column",
		"/test/questions.pdf",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("test page missing %q", want)
		}
	}

	env.navigate(t, session.ActionBackHome)
	_, body = env.get(t, "/")
	if !strings.Contains(body, "View last test") {
		t.Error("home page should offer the last test")
	}
	if !strings.Contains(body, "<strong>1</strong> tests generated") {
		t.Error("generated count not shown")
	}
}

func TestCreate_HidesAnswers(t *testing.T) {
	env := newTestEnv(t)
	env.navigate(t, session.ActionCreateTest)

	form := validCreateForm()
	form.Del("show_answers")
	env.postForm(t, "/create", form)

	_, body := env.get(t, "/test")
	if strings.Contains(body, "Correct Answer:") {
		t.Error("answers shown although show_answers was off")
	}
}

func TestCreate_ValidationError(t *testing.T) {
	env := newTestEnv(t)
	env.navigate(t, session.ActionCreateTest)

	form := validCreateForm()
	form.Set("topic", "  ")
	resp, body := env.postForm(t, "/create", form)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, "topic is a required field") {
		t.Error("field error not rendered")
	}
	if env.mock.Calls != 0 {
		t.Errorf("provider calls = %d, want 0", env.mock.Calls)
	}

	// Still on the create page.
	resp, _ = env.get(t, "/")
	if resp.Header.Get("Location") != "/create" {
		t.Errorf("Location = %q, want /create", resp.Header.Get("Location"))
	}
}

func TestCreate_OffSubjectTopic(t *testing.T) {
	env := newTestEnv(t)
	env.navigate(t, session.ActionCreateTest)

	form := validCreateForm()
	form.Set("topic", "Shakespeare sonnets")
	resp, body := env.postForm(t, "/create", form)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, "Try topics related to Science") {
		t.Error("suggestions not rendered")
	}
}

func TestCreate_BackendErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not configured", ai.ErrNotConfigured, http.StatusServiceUnavailable},
		{"rate limited", ai.ErrRateLimited, http.StatusTooManyRequests},
		{"auth", ai.ErrAuthentication, http.StatusBadGateway},
		{"api", &ai.APIError{Provider: "mock", StatusCode: 500, Message: "boom"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mock.Err = tt.err
			env.navigate(t, session.ActionCreateTest)

			resp, _ := env.postForm(t, "/create", validCreateForm())
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			resp, _ = env.get(t, "/")
			if resp.Header.Get("Location") != "/create" {
				t.Errorf("session moved to %q after a failed generation", resp.Header.Get("Location"))
			}
		})
	}
}

func TestTestPage_NoPaper(t *testing.T) {
	env := newTestEnv(t)
	env.navigate(t, session.ActionViewTest)

	resp, body := env.get(t, "/test")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "No test generated yet") {
		t.Error("no_test page not rendered")
	}
}

func TestExports(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/test/questions.pdf")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status without a paper = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "No test generated yet") {
		t.Errorf("body = %q", body)
	}

	env.navigate(t, session.ActionCreateTest)
	env.postForm(t, "/create", validCreateForm())

	tests := []struct {
		path        string
		contentType string
		filename    string
		magic       string
	}{
		{"/test/questions.pdf", "application/pdf", "mock_test_questions_Science_grade_8.pdf", "%PDF-"},
		{"/test/answers.pdf", "application/pdf", "mock_test_answers_Science_grade_8.pdf", "%PDF-"},
		{"/test/answer-key.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "mock_test_answer_key_Science_grade_8.xlsx", "PK"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := env.get(t, tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, tt.filename) {
				t.Errorf("Content-Disposition = %q, want filename %q", cd, tt.filename)
			}
			if !strings.HasPrefix(body, tt.magic) {
				t.Errorf("body does not start with %q", tt.magic)
			}
		})
	}
}

func TestCatalogAPI(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"boards", "/api/catalog/boards", http.StatusOK, `"CBSE"`},
		{"subjects", "/api/catalog/subjects?board=CBSE&grade=8", http.StatusOK, `"Science"`},
		{"subjects unknown grade", "/api/catalog/subjects?board=CBSE&grade=13", http.StatusOK, `"subjects":[]`},
		{"subjects missing grade", "/api/catalog/subjects?board=CBSE", http.StatusBadRequest, "required"},
		{"topics", "/api/catalog/topics?board=CBSE&subject=Science&grade=8", http.StatusOK, `"topics"`},
		{"topics missing subject", "/api/catalog/topics?board=CBSE&grade=8", http.StatusBadRequest, "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.get(t, tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", body, tt.wantBody)
			}
		})
	}
}

func TestTopicCheckAPI(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantRelevant bool
		wantMessage  string
	}{
		{"relevant", `{"topic":"Force and Pressure","subject":"Science"}`, http.StatusOK, true, "Topic 'Force and Pressure' is relevant to Science"},
		{"off subject", `{"topic":"Shakespeare sonnets","subject":"Science"}`, http.StatusOK, false, "Topic 'Shakespeare sonnets' doesn't seem to match Science"},
		{"no subject", `{"topic":"Anything","subject":""}`, http.StatusOK, true, "Please select a subject first"},
		{"bad json", `{`, http.StatusBadRequest, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.client.Post(env.srv.URL+"/api/topic-check", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST error = %v", err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got topicCheckResponse
			if err := json.Unmarshal([]byte(body), &got); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if got.Relevant != tt.wantRelevant {
				t.Errorf("relevant = %v, want %v", got.Relevant, tt.wantRelevant)
			}
			if !strings.Contains(got.Message, tt.wantMessage) {
				t.Errorf("message = %q, want %q", got.Message, tt.wantMessage)
			}
			if !tt.wantRelevant && len(got.Suggestions) == 0 {
				t.Error("off-subject topic returned no suggestions")
			}
		})
	}
}

func TestConnectionTestAPI(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Post(env.srv.URL+"/api/connection-test", "application/json", nil)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	var got struct {
		OK       bool   `json:"ok"`
		Message  string `json:"message"`
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	resp.Body.Close()
	if !got.OK || got.Message != quiz.MsgConnectionOK || got.Provider != "mock" {
		t.Errorf("response = %+v", got)
	}

	env.mock.Err = ai.ErrAuthentication
	resp, _ = env.client.Post(env.srv.URL+"/api/connection-test", "application/json", nil)
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.OK {
		t.Error("ok = true with a failing provider")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &quiz.ValidationError{Fields: map[string]string{"topic": "required"}}, http.StatusUnprocessableEntity},
		{"not configured", ai.ErrNotConfigured, http.StatusServiceUnavailable},
		{"rate limited", ai.ErrRateLimited, http.StatusTooManyRequests},
		{"auth", ai.ErrAuthentication, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormFromValues(t *testing.T) {
	fallback := quiz.Form{Board: "CBSE", Grade: 8, Subject: "Science", Topic: "Light", ShowAnswers: true}

	tests := []struct {
		name   string
		values url.Values
		want   quiz.Form
	}{
		{
			name:   "absent fields keep fallback",
			values: url.Values{"grade": {"10"}, "show_answers": {"off"}},
			want:   quiz.Form{Board: "CBSE", Grade: 10, Subject: "Science", Topic: "Light"},
		},
		{
			name:   "invalid grade keeps fallback",
			values: url.Values{"grade": {"ten"}},
			want:   fallback,
		},
		{
			name:   "empty values clear fields",
			values: url.Values{"subject": {""}, "topic": {""}, "grade": {""}},
			want:   quiz.Form{Board: "CBSE", ShowAnswers: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formFromValues(tt.values, fallback); got != tt.want {
				t.Errorf("formFromValues() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCreatePage_BoardChangeDropsSubject(t *testing.T) {
	env := newTestEnv(t)
	env.navigate(t, session.ActionCreateTest)

	_, body := env.get(t, "/create?board=CBSE&grade=8&subject=Science")
	if !strings.Contains(body, `<option value="Science" selected>`) {
		t.Fatal("subject selection not shown")
	}

	// ICSE grade 8 has no Science.
	env.get(t, "/create?board=ICSE&grade=8")

	_, body = env.get(t, "/create?board=CBSE&grade=8")
	if strings.Contains(body, `<option value="Science" selected>`) {
		t.Error("subject not offered by the new board was kept")
	}
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
