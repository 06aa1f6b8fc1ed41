package route_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"checkin/src-server/checkin"
	"checkin/src-server/model"
	"checkin/src-server/route"
	"checkin/src-server/utils"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Notices []route.Notice  `json:"notices"`
}

type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T) (*httptest.Server, *utils.AppState) {
	t.Helper()
	for _, key := range []string{"PORT", "REDIS_URL", "SESSION_TTL", "METRIC_COLLECTION_INTERVAL", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("DEV", "true")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "admin-pw")

	as, err := utils.NewAppState()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := model.CreateSchema(ctx, as.BunDB); err != nil {
		t.Fatal(err)
	}
	if err := as.BootstrapAdmin(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&model.User{Email: "staff@example.com", Password: "staff-pw"}).Upsert(ctx, as.BunDB); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(route.NewHandler(as))
	t.Cleanup(func() {
		server.Close()
		as.GracefulShutdown()
	})
	return server, as
}

func newTestClient(t *testing.T, server *httptest.Server) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testClient{
		t:      t,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(method, path string, body any) (*http.Response, envelope) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.client.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer res.Body.Close()

	var env envelope
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
			c.t.Fatal(err)
		}
	}
	return res, env
}

func (c *testClient) login(email, password string) *http.Response {
	c.t.Helper()
	res, _ := c.do(http.MethodPost, "/auth", map[string]string{"email": email, "password": password})
	return res
}

func expectRedirect(t *testing.T, res *http.Response, location string) {
	t.Helper()
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.StatusCode)
	}
	if got := res.Header.Get("Location"); got != location {
		t.Errorf("expected redirect to %q, got %q", location, got)
	}
}

func hasNotice(notices []route.Notice, kind route.Kind) bool {
	for _, n := range notices {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestAuth(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("wrong password goes home with a notice", func(t *testing.T) {
		c := newTestClient(t, server)
		expectRedirect(t, c.login("staff@example.com", "nope"), "/")

		res, env := c.do(http.MethodGet, "/", nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		if !hasNotice(env.Notices, route.KindError) {
			t.Errorf("expected an error notice, got %+v", env.Notices)
		}

		// the flash is spent
		_, env = c.do(http.MethodGet, "/", nil)
		if len(env.Notices) != 0 {
			t.Errorf("notices shown twice: %+v", env.Notices)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, server)
		req, _ := http.NewRequest(http.MethodPost, server.URL+"/auth", strings.NewReader("{"))
		res, err := c.client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", res.StatusCode)
		}
	})

	t.Run("staff lands inside", func(t *testing.T) {
		c := newTestClient(t, server)
		expectRedirect(t, c.login("staff@example.com", "staff-pw"), "/inside")

		res, env := c.do(http.MethodGet, "/inside", nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		if !hasNotice(env.Notices, route.KindSuccess) {
			t.Errorf("expected the login notice, got %+v", env.Notices)
		}
		type inside struct {
			Email   string `json:"email"`
			IsAdmin bool   `json:"isAdmin"`
		}
		if got := decode[inside](t, env.Data); got.Email != "staff@example.com" || got.IsAdmin {
			t.Errorf("unexpected body %+v", got)
		}

		res, _ = c.do(http.MethodGet, "/admin/attendees?q=a", nil)
		expectRedirect(t, res, "/inside")
	})

	t.Run("admin lands on attendees", func(t *testing.T) {
		c := newTestClient(t, server)
		expectRedirect(t, c.login("admin@example.com", "admin-pw"), "/admin/attendees")
	})

	t.Run("logout", func(t *testing.T) {
		c := newTestClient(t, server)
		expectRedirect(t, c.login("staff@example.com", "staff-pw"), "/inside")

		res, env := c.do(http.MethodDelete, "/auth", nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		if !hasNotice(env.Notices, route.KindInfo) {
			t.Errorf("expected a logout notice, got %+v", env.Notices)
		}

		res, _ = c.do(http.MethodGet, "/inside", nil)
		expectRedirect(t, res, "/")
	})

	t.Run("anonymous is turned away", func(t *testing.T) {
		c := newTestClient(t, server)
		for _, path := range []string{"/inside", "/codes/ABCD1234", "/admin/attendees"} {
			res, _ := c.do(http.MethodGet, path, nil)
			expectRedirect(t, res, "/")
		}
		res, _ := c.do(http.MethodPost, "/codes/ABCD1234/pass", nil)
		expectRedirect(t, res, "/")
	})
}

func TestCheckinFlow(t *testing.T) {
	server, _ := newTestServer(t)
	admin := newTestClient(t, server)
	expectRedirect(t, admin.login("admin@example.com", "admin-pw"), "/admin/attendees")
	staff := newTestClient(t, server)
	expectRedirect(t, staff.login("staff@example.com", "staff-pw"), "/inside")

	// register
	res, env := admin.do(http.MethodPost, "/admin/attendees", map[string]string{"first_name": " grace ", "last_name": "hopper"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", res.StatusCode)
	}
	record := decode[checkin.AttendeeRecord](t, env.Data)
	if record.FirstName != "Grace" || record.LastName != "Hopper" || record.Status != "not_passed" {
		t.Fatalf("unexpected record %+v", record)
	}

	res, _ = admin.do(http.MethodPost, "/admin/attendees", map[string]string{"first_name": "", "last_name": "x"})
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("blank name: expected 400, got %d", res.StatusCode)
	}

	// lookup
	res, env = staff.do(http.MethodGet, "/codes/"+strings.ToLower(record.Code), nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("lookup: expected 200, got %d", res.StatusCode)
	}
	if view := decode[checkin.AttendeeView](t, env.Data); view.Code != record.Code || view.Status != "not_passed" {
		t.Errorf("unexpected view %+v", view)
	}
	if !hasNotice(env.Notices, route.KindNotPassed) {
		t.Errorf("expected a not-passed notice, got %+v", env.Notices)
	}

	res, _ = staff.do(http.MethodGet, "/codes/ZZZZ9999", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("unknown code: expected 404, got %d", res.StatusCode)
	}

	// mark passed, twice
	res, env = staff.do(http.MethodPost, "/codes/"+record.Code+"/pass", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("pass: expected 200, got %d", res.StatusCode)
	}
	if tr := decode[checkin.Transition](t, env.Data); !tr.Changed || tr.Attendee.Status != "passed" {
		t.Errorf("first pass: unexpected transition %+v", tr)
	}
	res, env = staff.do(http.MethodPost, "/codes/"+record.Code+"/pass", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("second pass: expected 200, got %d", res.StatusCode)
	}
	if tr := decode[checkin.Transition](t, env.Data); tr.Changed {
		t.Errorf("second pass reported a change")
	}

	_, env = staff.do(http.MethodGet, "/codes/"+record.Code, nil)
	if !hasNotice(env.Notices, route.KindPassed) {
		t.Errorf("expected a passed notice, got %+v", env.Notices)
	}

	// search
	res, env = admin.do(http.MethodGet, "/admin/attendees?q=HOP", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", res.StatusCode)
	}
	if found := decode[[]checkin.AttendeeRecord](t, env.Data); len(found) != 1 || found[0].ID != record.ID {
		t.Errorf("unexpected search result %+v", found)
	}
	_, env = admin.do(http.MethodGet, "/admin/attendees", nil)
	if found := decode[[]checkin.AttendeeRecord](t, env.Data); len(found) != 0 {
		t.Errorf("blank search returned %d rows", len(found))
	}

	// override
	path := "/admin/attendees/" + strconv.FormatInt(record.ID, 10) + "/status"
	res, env = admin.do(http.MethodPut, path, map[string]string{"status": "NotPassed"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("override: expected 200, got %d", res.StatusCode)
	}
	if updated := decode[checkin.AttendeeRecord](t, env.Data); updated.Status != "not_passed" {
		t.Errorf("override not applied: %+v", updated)
	}

	for _, tc := range []struct {
		path   string
		body   map[string]string
		status int
	}{
		{path, map[string]string{"status": "vip"}, http.StatusNotFound},
		{path, map[string]string{"status": ""}, http.StatusBadRequest},
		{"/admin/attendees/abc/status", map[string]string{"status": "passed"}, http.StatusBadRequest},
		{"/admin/attendees/999999/status", map[string]string{"status": "passed"}, http.StatusNotFound},
	} {
		res, _ := admin.do(http.MethodPut, tc.path, tc.body)
		if res.StatusCode != tc.status {
			t.Errorf("PUT %s %v: expected %d, got %d", tc.path, tc.body, tc.status, res.StatusCode)
		}
	}

	// staff can't override
	res, _ = staff.do(http.MethodPut, path, map[string]string{"status": "passed"})
	expectRedirect(t, res, "/inside")
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	c := newTestClient(t, server)
	c.login("staff@example.com", "staff-pw")

	res, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	for _, name := range []string{"checkin_logins_total", "checkin_http_request_duration_seconds"} {
		if !bytes.Contains(body, []byte(name)) {
			t.Errorf("%s missing from /metrics", name)
		}
	}
}
