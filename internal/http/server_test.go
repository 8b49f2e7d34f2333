package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"outreach/internal/auth"
	"outreach/internal/budget"
	"outreach/internal/cache"
	"outreach/internal/core"
	"outreach/internal/log"
	"outreach/internal/region"
	"outreach/internal/services"
	"outreach/internal/store"
	"outreach/internal/store/memory"
)

func newTestServer(t *testing.T, opts Options) (*Server, *store.Live) {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	backend := memory.New()
	live := store.NewLive(backend, logger, "test")
	records := services.NewRecords(live, logger)
	dash := services.NewDashboard(live,
		cache.NewLRUCache[services.DashboardView](16, time.Minute),
		cache.NewLRUCache[budget.Summary](16, time.Minute))
	live.OnChange(dash.Invalidate)

	if opts.RateLimitPerMinute == 0 {
		opts.RateLimitPerMinute = 1000
	}
	srv := NewServer(":0", Deps{
		Live:      live,
		Records:   records,
		Importer:  services.NewImporter(live, records, logger),
		Dashboard: dash,
		Auth:      auth.NewService(backend, "admin123", logger),
		Sessions:  auth.NewSessions("0123456789abcdef", time.Hour, false),
		Logger:    logger,
	}, opts)
	t.Cleanup(srv.limiter.Stop)
	return srv, live
}

func do(t *testing.T, srv *Server, method, target string, body io.Reader, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"admin123"}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func notification(t *testing.T, rec *httptest.ResponseRecorder) Notification {
	t.Helper()
	raw := rec.Header().Get(NotificationHeader)
	if raw == "" {
		t.Fatal("no notification header")
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		t.Fatalf("unescape %q: %v", raw, err)
	}
	var n Notification
	if err := json.Unmarshal([]byte(decoded), &n); err != nil {
		t.Fatalf("decode %q: %v", decoded, err)
	}
	return n
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	if rec := do(t, srv, http.MethodGet, "/healthz", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/readyz", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz %d", rec.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := do(t, srv, http.MethodGet, "/api/organizations", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("Cache-Control %q", rec.Header().Get("Cache-Control"))
	}
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"wrong"}`), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	if n := notification(t, rec); n.Type != NotificationError || n.Duration != 5000 {
		t.Fatalf("notification %+v", n)
	}

	cookie := login(t, srv)
	rec = do(t, srv, http.MethodGet, "/api/session", nil, cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"admin"`) {
		t.Fatalf("session %d %s", rec.Code, rec.Body.String())
	}
}

func TestOrganizationLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	cookie := login(t, srv)

	rec := do(t, srv, http.MethodPost, "/api/organizations/",
		strings.NewReader(`{"city":"고양시","organizationName":"고양FC","contactPerson":"김","phoneNumber":"010-1"}`), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %d: %s", rec.Code, rec.Body.String())
	}
	n := notification(t, rec)
	if n.Type != NotificationSuccess || n.Title != "등록 완료" || n.Duration != 3000 {
		t.Fatalf("notification %+v", n)
	}
	var org core.Organization
	if err := json.Unmarshal(rec.Body.Bytes(), &org); err != nil {
		t.Fatal(err)
	}

	rec = do(t, srv, http.MethodPatch, "/api/organizations/"+org.ID, strings.NewReader(`{"contactPerson":"이"}`), cookie)
	if rec.Code != http.StatusOK || notification(t, rec).Title != "수정 완료" {
		t.Fatalf("update %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodDelete, "/api/organizations/"+org.ID, nil, cookie)
	if rec.Code != http.StatusNoContent || notification(t, rec).Title != "삭제 완료" {
		t.Fatalf("delete %d", rec.Code)
	}

	rec = do(t, srv, http.MethodDelete, "/api/organizations/"+org.ID, nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete %d, want 404", rec.Code)
	}
}

func TestCreateRejectsInvalidBodies(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	cookie := login(t, srv)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing fields", `{"city":"고양시"}`, http.StatusUnprocessableEntity},
		{"unknown field", `{"city":"고양시","nickname":"x"}`, http.StatusBadRequest},
		{"not json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/organizations/", strings.NewReader(tt.body), cookie)
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if n := notification(t, rec); n.Title != "입력 오류" {
				t.Fatalf("notification %+v", n)
			}
		})
	}
}

func TestImportOrganizationsUpload(t *testing.T) {
	srv, live := newTestServer(t, Options{})
	cookie := login(t, srv)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "orgs.csv")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(fw, "시/군,단체명,담당자명,연락처,이메일\n수원시,A,kim,010-1\n파주시,B\n")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/organizations/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	n := notification(t, rec)
	if n.Type != NotificationWarning || n.Message != "1건 성공, 1건 실패" {
		t.Fatalf("notification %+v", n)
	}
	orgs, _ := live.ListOrganizations(req.Context())
	if len(orgs) != 1 {
		t.Fatalf("%d organizations stored", len(orgs))
	}
}

func TestImportWithoutFile(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	cookie := login(t, srv)
	rec := do(t, srv, http.MethodPost, "/api/performances/import", strings.NewReader("{}"), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestExportPerformancesCSV(t *testing.T) {
	srv, live := newTestServer(t, Options{})
	cookie := login(t, srv)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	if _, err := live.AddPerformance(ctx, core.PerformanceRecord{
		Date: core.NewDate(2024, 5, 1), OrganizationName: "A", City: "고양시",
		Program: core.ProgramClass, Male: 3, Female: 4,
	}); err != nil {
		t.Fatal(err)
	}

	rec := do(t, srv, http.MethodGet, "/api/performances/export.csv?start=2024-01-01", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "\ufeff날짜,") {
		t.Fatalf("body %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("Content-Disposition %q", cd)
	}

	for _, path := range []string{
		"/api/performances/export.csv?start=yesterday",
		"/api/performances/export.xlsx?end=2024-13-40",
	} {
		rec = do(t, srv, http.MethodGet, path, nil, cookie)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: bad date status %d", path, rec.Code)
		}
		if n := notification(t, rec); n.Title != "입력 오류" {
			t.Fatalf("%s: toast %+v", path, n)
		}
	}
}

func TestReorderBudgetItems(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	cookie := login(t, srv)

	var ids []string
	for i := 0; i < 3; i++ {
		rec := do(t, srv, http.MethodPost, "/api/budget-items/", nil, cookie)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: %s", rec.Code, rec.Body.String())
		}
		var item core.BudgetItem
		json.Unmarshal(rec.Body.Bytes(), &item)
		ids = append(ids, item.ID)
	}

	rec := do(t, srv, http.MethodPut, "/api/budget-items/order", strings.NewReader(`{"from":2,"to":0}`), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder %d: %s", rec.Code, rec.Body.String())
	}
	var items []core.BudgetItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	got := []string{items[0].ID, items[1].ID, items[2].ID}
	want := []string{ids[2], ids[0], ids[1]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}

	rec = do(t, srv, http.MethodPut, "/api/budget-items/order", strings.NewReader(`{}`), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty reorder %d", rec.Code)
	}
}

func TestDashboardAndBudgetSummary(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	cookie := login(t, srv)

	rec := do(t, srv, http.MethodGet, "/api/dashboard?region="+url.QueryEscape("북부"), nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard %d: %s", rec.Code, rec.Body.String())
	}
	var view services.DashboardView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Region != "북부" {
		t.Fatalf("region %q", view.Region)
	}
	for _, c := range view.Cities {
		if c.Region != region.North {
			t.Fatalf("city %s tagged %q on the north board", c.Name, c.Region)
		}
	}

	rec = do(t, srv, http.MethodGet, "/api/dashboard?city="+url.QueryEscape("서울시"), nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown city %d", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/api/budget/summary", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOptions(t *testing.T) {
	srv, live := newTestServer(t, Options{})
	cookie := login(t, srv)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	for _, name := range []string{"B", "A", "B"} {
		if _, err := live.AddOrganization(ctx, core.Organization{City: "수원시", Name: name, ContactPerson: "k", Phone: "1"}); err != nil {
			t.Fatal(err)
		}
	}

	rec := do(t, srv, http.MethodGet, "/api/options", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("options %d: %s", rec.Code, rec.Body.String())
	}
	var got optionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Regions[region.North]) != 10 || len(got.Regions[region.South]) != 21 {
		t.Fatalf("regions %v", got.Regions)
	}
	if len(got.Programs) != len(core.Programs()) {
		t.Fatalf("programs %v", got.Programs)
	}
	if len(got.Organizations) != 2 || got.Organizations[0] != "A" {
		t.Fatalf("organizations %v", got.Organizations)
	}
}

func TestChangePassword(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	cookie := login(t, srv)

	rec := do(t, srv, http.MethodPost, "/api/password",
		strings.NewReader(`{"currentPassword":"nope","newPassword":"secret1","confirmPassword":"secret1"}`), cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("wrong current password %d", rec.Code)
	}

	long := strings.Repeat("x", auth.MaxPasswordLength+1)
	rec = do(t, srv, http.MethodPost, "/api/password",
		strings.NewReader(`{"currentPassword":"admin123","newPassword":"`+long+`","confirmPassword":"`+long+`"}`), cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overlong password %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/api/password",
		strings.NewReader(`{"currentPassword":"admin123","newPassword":"secret1","confirmPassword":"secret1"}`), cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("change %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"admin123"}`), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password still accepted: %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMinute: 1})
	do(t, srv, http.MethodGet, "/api/session", nil, nil)
	rec := do(t, srv, http.MethodGet, "/api/session", nil, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestLiveRejectsUnknownCollection(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	cookie := login(t, srv)
	rec := do(t, srv, http.MethodGet, "/api/live/users", nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestLiveStreamsSnapshots(t *testing.T) {
	srv, live := newTestServer(t, Options{})
	cookie := login(t, srv)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	header := http.Header{}
	header.Add("Cookie", cookie.Name+"="+cookie.Value)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live/organizations"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v (resp %v)", err, resp)
	}

	read := func() liveSnapshot {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg liveSnapshot
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	first := read()
	if first.Collection != store.CollectionOrganizations || len(first.Items) != 0 {
		t.Fatalf("initial snapshot %+v", first)
	}

	rec := do(t, srv, http.MethodPost, "/api/organizations/",
		strings.NewReader(`{"city":"고양시","organizationName":"A","contactPerson":"kim","phoneNumber":"010"}`), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %d: %s", rec.Code, rec.Body.String())
	}
	second := read()
	if len(second.Items) != 1 || second.Items[0].Name != "A" {
		t.Fatalf("pushed snapshot %+v", second)
	}

	_ = conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for live.Subscribers(store.CollectionOrganizations) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription outlived the connection")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type liveSnapshot struct {
	Collection string              `json:"collection"`
	Items      []core.Organization `json:"items"`
}
