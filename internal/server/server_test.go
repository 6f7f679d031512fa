package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/observation/internal/suspect"
)

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *suspect.Store) {
	t.Helper()
	store := suspect.Seed()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	ts := httptest.NewServer(New(store, opts...))
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("%s %s Content-Type = %q", method, url, ct)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	var body map[string]string
	if status := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestListAndGet(t *testing.T) {
	ts, _ := newTestServer(t)

	var list []suspect.Snapshot
	if status := doJSON(t, http.MethodGet, ts.URL+"/suspects", "", &list); status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	want := []suspect.Snapshot{
		{ID: "glib", Name: "Glib Butler", Suspiciousness: 33},
		{ID: "jimmy", Name: "Jimmy The Shrimp", Suspiciousness: 10},
	}
	if len(list) != len(want) || list[0] != want[0] || list[1] != want[1] {
		t.Errorf("list = %+v, want %+v", list, want)
	}

	var one suspect.Snapshot
	if status := doJSON(t, http.MethodGet, ts.URL+"/suspects/jimmy", "", &one); status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	if one != want[1] {
		t.Errorf("get = %+v", one)
	}

	var errBody map[string]string
	if status := doJSON(t, http.MethodGet, ts.URL+"/suspects/nobody", "", &errBody); status != http.StatusNotFound {
		t.Errorf("unknown suspect status = %d, want 404", status)
	}
	if !strings.Contains(errBody["error"], "E220") {
		t.Errorf("error body = %v", errBody)
	}
}

func TestPatch(t *testing.T) {
	ts, store := newTestServer(t)

	var got suspect.Snapshot
	status := doJSON(t, http.MethodPatch, ts.URL+"/suspects/glib", `{"suspiciousness": 2}`, &got)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got.Name != "Glib Butler" || got.Suspiciousness != 2 {
		t.Errorf("patched = %+v", got)
	}

	status = doJSON(t, http.MethodPatch, ts.URL+"/suspects/glib", `{"name": "Glib"}`, &got)
	if status != http.StatusOK || got.Name != "Glib" || got.Suspiciousness != 2 {
		t.Errorf("patched = %+v (status %d)", got, status)
	}

	glib, _ := store.Get("glib")
	if glib.Name() != "Glib" {
		t.Errorf("store not updated: %q", glib.Name())
	}

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name": `},
		{"wrong type", `{"suspiciousness": "very"}`},
		{"unknown field", `{"alibi": "none"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errBody map[string]string
			status := doJSON(t, http.MethodPatch, ts.URL+"/suspects/glib", tt.body, &errBody)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if !strings.Contains(errBody["error"], "E221") {
				t.Errorf("error body = %v", errBody)
			}
		})
	}
}

func TestReport(t *testing.T) {
	ts, _ := newTestServer(t)

	var got reportResponse
	if status := doJSON(t, http.MethodGet, ts.URL+"/suspects/jimmy/report", "", &got); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	want := "Report on Jimmy The Shrimp: HELP I'M TRAPPED IN A SUSPICIOUSNESS FACTORY"
	if got.ID != "jimmy" || got.Report != want {
		t.Errorf("report = %+v", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "metrics here")
	})
	ts, _ := newTestServer(t, WithMetricsHandler(h, "/metrics"))

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "metrics here" {
		t.Errorf("body = %q", body)
	}
}

func dialWatch(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/suspects/" + id + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one equals want.
func readUntil(t *testing.T, conn *websocket.Conn, want string) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if string(msg) == want {
			return
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWatchStreamsReportChanges(t *testing.T) {
	ts, store := newTestServer(t)
	glib, _ := store.Get("glib")

	conn := dialWatch(t, ts, "glib")
	readUntil(t, conn, "Report on Glib Butler: HELP I'M TRAPPED IN A SUSPICIOUSNESS FACTORY")

	waitFor(t, "watch registration", func() bool {
		return glib.Registrar().WatchCount() == 1
	})

	glib.SetSuspiciousness(2)
	readUntil(t, conn, "Report on Glib Butler: They're definitely hiding something")

	doJSON(t, http.MethodPatch, ts.URL+"/suspects/glib", `{"name": "Glib"}`, nil)
	readUntil(t, conn, "Report on Glib: They're definitely hiding something")

	// A mutation of another suspect does not touch glib's registrar.
	jimmy, _ := store.Get("jimmy")
	jimmy.SetName("Jim")
	if n := jimmy.Registrar().WatchCount(); n != 0 {
		t.Errorf("jimmy WatchCount() = %d, want 0", n)
	}
}

func TestWatchCancelsOnClose(t *testing.T) {
	ts, store := newTestServer(t)
	jimmy, _ := store.Get("jimmy")

	conn := dialWatch(t, ts, "jimmy")
	readUntil(t, conn, "Report on Jimmy The Shrimp: HELP I'M TRAPPED IN A SUSPICIOUSNESS FACTORY")
	waitFor(t, "watch registration", func() bool {
		return jimmy.Registrar().WatchCount() == 1
	})

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitFor(t, "watch cancellation", func() bool {
		return jimmy.Registrar().WatchCount() == 0
	})
}

func TestWatchUnknownSuspect(t *testing.T) {
	ts, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/suspects/nobody/watch"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %v, want 404", resp)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	store := suspect.Seed()
	srv := New(store, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	waitFor(t, "server start", func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/suspects/glib/watch", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("first frame: %v", err)
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(ShutdownTimeout):
		t.Fatal("Serve did not return after cancel")
	}

	glib, _ := store.Get("glib")
	waitFor(t, "watch cancellation", func() bool {
		return glib.Registrar().WatchCount() == 0
	})
}
