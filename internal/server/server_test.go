package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rolodex/internal/remote"
	"github.com/mesh-intelligence/rolodex/internal/sqlite"
	"github.com/mesh-intelligence/rolodex/internal/transport"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTable(t *testing.T) *sqlite.ContactsTable {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(t.TempDir()))
	t.Cleanup(func() { _ = b.Detach() })
	table, err := b.Contacts()
	require.NoError(t, err)
	return table
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *sqlite.ContactsTable) {
	t.Helper()
	table := newTable(t)
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	ts := httptest.NewServer(New(table, opts))
	t.Cleanup(ts.Close)
	return ts, table
}

type response struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func call(t *testing.T, method, url, body string, headers ...string) (int, response) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

func TestCreateAndGet(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	code, resp := call(t, http.MethodPost, ts.URL+"/contact",
		`{"fullName":" Ada ","email":"ada@x.com","phone":"1","category":"work"}`)
	require.Equal(t, http.StatusCreated, code)

	var created types.Contact
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ada", created.FullName)

	code, resp = call(t, http.MethodGet, ts.URL+"/contact/"+created.ID, "")
	require.Equal(t, http.StatusOK, code)
	var got types.Contact
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "work", got.Category)
}

func TestCreateValidation(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	code, resp := call(t, http.MethodPost, ts.URL+"/contact", `{"fullName":"Ada"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields: email, phone", resp.Message)

	code, resp = call(t, http.MethodPost, ts.URL+"/contact", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, MsgInvalidBody, resp.Message)
}

func TestListQuery(t *testing.T) {
	ts, table := newTestServer(t, Options{})
	ctx := context.Background()
	for _, f := range []types.ContactFields{
		{FullName: "Alice", Email: "alice@x.com", Phone: "1", Category: "friends"},
		{FullName: "Bob", Email: "bob@x.com", Phone: "2", Category: "work"},
		{FullName: "Carol", Email: "carol@x.com", Phone: "3", Category: "work"},
	} {
		_, err := table.Create(ctx, f)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"default descending", "", []string{"Carol", "Bob", "Alice"}},
		{"ascending", "?sortOrder=asc", []string{"Alice", "Bob", "Carol"}},
		{"long form sort order", "?sortOrder=ascending", []string{"Alice", "Bob", "Carol"}},
		{"category", "?category=work&sortOrder=asc", []string{"Bob", "Carol"}},
		{"search", "?search=CAR", []string{"Carol"}},
		{"unknown keys ignored", "?page=2&search=bob", []string{"Bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := call(t, http.MethodGet, ts.URL+"/contact"+tt.query, "")
			require.Equal(t, http.StatusOK, code)
			var contacts []types.Contact
			require.NoError(t, json.Unmarshal(resp.Data, &contacts))
			got := make([]string, len(contacts))
			for i, c := range contacts {
				got[i] = c.FullName
			}
			assert.Equal(t, tt.want, got)
		})
	}

	code, resp := call(t, http.MethodGet, ts.URL+"/contact?sortOrder=sideways", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid sort order", resp.Message)
}

func TestUpdateAndDelete(t *testing.T) {
	ts, table := newTestServer(t, Options{})
	c, err := table.Create(context.Background(), types.ContactFields{FullName: "Ada", Email: "ada@x.com", Phone: "1"})
	require.NoError(t, err)

	code, resp := call(t, http.MethodPatch, ts.URL+"/contact/"+c.ID, `{"phone":" 555 "}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"phone":"555"}`, string(resp.Data))

	code, resp = call(t, http.MethodPatch, ts.URL+"/contact/"+c.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "nothing to update")

	code, _ = call(t, http.MethodDelete, ts.URL+"/contact/"+c.ID, "")
	require.Equal(t, http.StatusOK, code)

	code, resp = call(t, http.MethodDelete, ts.URL+"/contact/"+c.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, MsgNotFound, resp.Message)

	code, resp = call(t, http.MethodGet, ts.URL+"/contact/"+c.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, MsgNotFound, resp.Message)
}

// brokenCollection fails every call with an internal error.
type brokenCollection struct{}

var errDisk = errors.New("disk on fire")

func (brokenCollection) List(context.Context, types.FilterCriteria) ([]types.Contact, error) {
	return nil, errDisk
}
func (brokenCollection) Get(context.Context, string) (types.Contact, error) {
	return types.Contact{}, errDisk
}
func (brokenCollection) Create(context.Context, types.ContactFields) (types.Contact, error) {
	return types.Contact{}, errDisk
}
func (brokenCollection) Update(context.Context, string, types.ContactPatch) (types.ContactPatch, error) {
	return types.ContactPatch{}, errDisk
}
func (brokenCollection) Delete(context.Context, string) error { return errDisk }

func TestInternalErrorsUseFallbackMessages(t *testing.T) {
	ts := httptest.NewServer(New(brokenCollection{}, Options{Logger: quietLogger()}))
	defer ts.Close()

	tests := []struct {
		method, path, body, want string
	}{
		{http.MethodGet, "/contact", "", "Failed to fetch contacts"},
		{http.MethodGet, "/contact/1", "", "Failed to fetch contact"},
		{http.MethodPost, "/contact", `{"fullName":"A","email":"a@x.com","phone":"1"}`, "Failed to create contact"},
		{http.MethodPatch, "/contact/1", `{"phone":"2"}`, "Failed to update contact"},
		{http.MethodDelete, "/contact/1", "", "Failed to delete contact"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			code, resp := call(t, tt.method, ts.URL+tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, code)
			assert.Equal(t, tt.want, resp.Message)
			assert.NotContains(t, resp.Message, "disk")
		})
	}
}

func TestAuthorization(t *testing.T) {
	ts, _ := newTestServer(t, Options{Token: "s3cret"})

	code, resp := call(t, http.MethodGet, ts.URL+"/contact", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, MsgUnauthorized, resp.Message)

	code, _ = call(t, http.MethodGet, ts.URL+"/contact", "", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, http.MethodGet, ts.URL+"/contact", "", "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, http.MethodGet, ts.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, code, "metrics are not behind auth")
}

func TestRateLimit(t *testing.T) {
	srv := New(newTable(t), Options{RateLimit: 1, Burst: 2, Logger: quietLogger()})
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return fixed }

	do := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/contact", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001").Code)
	limited := do("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), MsgTooManyRequests)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code, "other clients have their own bucket")

	fixed = fixed.Add(time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1003").Code, "bucket refills")
}

func TestMetricsAndRequestID(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts, _ := newTestServer(t, Options{Registry: reg})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/contact/missing", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc", resp.Header.Get("X-Request-ID"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() != "rolodex_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["route"] == "GET /contact/{id}" && labels["code"] == "404" {
				found = true
				assert.Equal(t, float64(1), m.GetCounter().GetValue())
			}
		}
	}
	assert.True(t, found, "request counter for GET /contact/{id} 404")

	body, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer body.Body.Close()
	raw, err := io.ReadAll(body.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "rolodex_http_request_duration_seconds")
}

// TestRemoteClientRoundTrip drives the server through the same client stack
// the CLI uses.
func TestRemoteClientRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t, Options{Token: "tok"})
	tc, err := transport.New(types.Config{BaseURL: ts.URL, Token: "tok"}, transport.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer tc.Close()
	client := remote.New(tc)
	ctx := context.Background()

	created, err := client.Create(ctx, types.ContactFields{FullName: "Ada", Email: "ada@x.com", Phone: "1"})
	require.NoError(t, err)

	changed, err := client.Update(ctx, created.ID, types.ContactPatch{JobTitle: types.String(" Engineer ")})
	require.NoError(t, err)
	require.NotNil(t, changed.JobTitle)
	assert.Equal(t, "Engineer", *changed.JobTitle)

	list, err := client.List(ctx, types.FilterCriteria{Search: "ada", SortOrder: types.SortDescending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Engineer", list[0].JobTitle)

	require.NoError(t, client.Delete(ctx, created.ID))
	_, err = client.Get(ctx, created.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, MsgNotFound, types.MessageFor(err, "fallback"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := New(newTable(t), Options{Logger: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, h, time.Second, quietLogger())
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/contact")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestClientLimiter(t *testing.T) {
	assert.Nil(t, newClientLimiter(0, 1, 0))
	var nilLimiter *clientLimiter
	assert.True(t, nilLimiter.allow("x", time.Now()))

	l := newClientLimiter(1, 1, time.Minute)
	now := time.Now()
	assert.True(t, l.allow("", now), "empty key is never limited")
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
	assert.Equal(t, 1, l.size())
}
