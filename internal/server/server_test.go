// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func postAsk(t *testing.T, h http.Handler, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v (%s)", err, rec.Body.String())
	}
	return out
}

// =============================================================================
// ANSWER TESTS
// =============================================================================

func TestHandleAsk_ReplyFields(t *testing.T) {
	tests := []struct {
		field string
	}{
		{"answer"},
		{"message"},
		{"text"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			srv := NewServer("").WithReplyField(tt.field).WithResponder(StaticResponder("hi"))
			rec := postAsk(t, srv.Handler(), "/", `{"query":"q","user_id":"chat_a_1"}`, nil)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := decodeBody(t, rec)
			if body[tt.field] != "hi" {
				t.Errorf("%s = %v, want hi", tt.field, body[tt.field])
			}
			if body["user_id"] != "chat_a_1" {
				t.Errorf("user_id = %v", body["user_id"])
			}
		})
	}
}

func TestHandleAsk_FieldNone(t *testing.T) {
	srv := NewServer("").WithReplyField(FieldNone)
	rec := postAsk(t, srv.Handler(), "/api/chat", `{"query":"q","user_id":"u"}`, nil)

	body := decodeBody(t, rec)
	for _, f := range []string{"answer", "message", "text"} {
		if _, ok := body[f]; ok {
			t.Errorf("field %q present with FieldNone", f)
		}
	}
}

func TestHandleAsk_ForcedStatus(t *testing.T) {
	srv := NewServer("").WithStatus(http.StatusBadGateway)
	rec := postAsk(t, srv.Handler(), "/", `{"query":"q","user_id":"u"}`, nil)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if got := srv.Stats().Rejected; got != 1 {
		t.Errorf("Rejected = %d, want 1", got)
	}
}

func TestHandleAsk_BadRequests(t *testing.T) {
	srv := NewServer("")
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"empty query", `{"query":"  ","user_id":"u"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAsk(t, srv.Handler(), "/", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleAsk_Auth(t *testing.T) {
	srv := NewServer("").WithToken("s3cret")
	h := srv.Handler()

	rec := postAsk(t, h, "/", `{"query":"q","user_id":"u"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	rec = postAsk(t, h, "/", `{"query":"q","user_id":"u"}`, map[string]string{"Authorization": "Bearer wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rec.Code)
	}

	rec = postAsk(t, h, "/", `{"query":"q","user_id":"u"}`, map[string]string{"Authorization": "Bearer s3cret"})
	if rec.Code != http.StatusOK {
		t.Errorf("right token: status = %d, want 200", rec.Code)
	}

	// health stays open
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	hrec := httptest.NewRecorder()
	h.ServeHTTP(hrec, req)
	if hrec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", hrec.Code)
	}
}

func TestEchoResponder(t *testing.T) {
	out := EchoResponder(AskRequest{Query: "a*b", UserID: "chat_x_1"})

	for _, want := range []string{`a\*b`, "| session | `chat_x_1` |", "```go"} {
		if !strings.Contains(out, want) {
			t.Errorf("echo reply missing %q:\n%s", want, out)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		srv     *Server
		wantErr bool
	}{
		{"defaults", NewServer(""), false},
		{"bad field", NewServer("").WithReplyField("reply"), true},
		{"bad status", NewServer("").WithStatus(42), true},
		{"negative delay", NewServer("").WithDelay(-time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.srv.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBearerToken(t *testing.T) {
	if ValidateBearerToken("", "") {
		t.Error("empty tokens must not validate")
	}
	if !ValidateBearerToken("abc", "abc") {
		t.Error("equal tokens must validate")
	}
	if ValidateBearerToken("abc", "abd") {
		t.Error("different tokens must not validate")
	}
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestServeListener_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}

	srv := NewServer(ln.Addr().String())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + ln.Addr().String() + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeListener returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
