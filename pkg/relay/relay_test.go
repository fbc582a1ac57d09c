package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendPostsCommandAndReturnsRawReply(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"done","extra":42}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	reply, err := client.Send(context.Background(), "restart the pod")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	var payload struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if payload.Command != "restart the pod" {
		t.Fatalf("command = %q", payload.Command)
	}

	if string(reply.Raw) != `{"reply":"done","extra":42}` {
		t.Fatalf("raw reply modified: %s", reply.Raw)
	}
	if reply.Text() != "done" {
		t.Fatalf("Text() = %q, want done", reply.Text())
	}
}

func TestSendNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, time.Second)
	reply, err := client.Send(context.Background(), "anything")
	if reply != nil {
		t.Fatalf("expected no reply on network failure, got %s", reply.Raw)
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v (%T), want *NetworkError", err, err)
	}
	if netErr.Status != 0 {
		t.Fatalf("status = %d, want 0 for transport failure", netErr.Status)
	}
}

func TestSendNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Send(context.Background(), "anything")

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v (%T), want *NetworkError", err, err)
	}
	if netErr.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", netErr.Status)
	}
}

func TestSendInvalidJSONBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Send(context.Background(), "anything")

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v (%T), want *ParseError", err, err)
	}
}

func TestSendSerializesOverlappingCalls(t *testing.T) {
	t.Parallel()

	var inFlight, maxInFlight int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.Write([]byte(`{"reply":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := client.Send(context.Background(), "cmd")
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-done; err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Fatalf("max in-flight requests = %d, want 1 (serialized)", got)
	}
}

func TestReplyText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{`"plain string"`, "plain string"},
		{`{"reply":"from reply"}`, "from reply"},
		{`{"response":"from response"}`, "from response"},
		{`{"status":"ok"}`, `{"status":"ok"}`},
		{`[1,2,3]`, "[1,2,3]"},
	}
	for _, tt := range tests {
		r := &Reply{Raw: json.RawMessage(tt.raw)}
		if got := r.Text(); got != tt.want {
			t.Fatalf("Text(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
