// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/askterm/internal/client"
	"github.com/jeranaias/askterm/internal/model"
	"github.com/jeranaias/askterm/internal/server"
	"github.com/jeranaias/askterm/internal/session"
)

// fakeTransport records requests and answers with a fixed response.
type fakeTransport struct {
	mu    sync.Mutex
	calls []client.Request
	resp  client.Response
	err   error
	gate  chan struct{}
}

func (f *fakeTransport) Ask(ctx context.Context, req client.Request) (client.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resp, f.err
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func respond(t *testing.T, body string) client.Response {
	t.Helper()
	var r client.Response
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return r
}

func newDispatcher(tr Transport, opts ...Option) *Dispatcher {
	return New(session.New(model.DefaultGreeting), tr, opts...)
}

// =============================================================================
// STATE MACHINE TESTS
// =============================================================================

func TestSend_AnswerField(t *testing.T) {
	tr := &fakeTransport{resp: respond(t, `{"answer":"42"}`)}
	d := newDispatcher(tr)

	res, ok := d.Send(context.Background(), "what is six times seven?")
	require.True(t, ok)

	assert.Equal(t, "42", res.Reply.Text)
	assert.Equal(t, model.KindReply, res.Reply.Kind)
	assert.Equal(t, model.RoleAssistant, res.Reply.Role)
	assert.Equal(t, StateResolved, res.State)
	assert.Equal(t, StateIdle, d.State())
	assert.False(t, d.Pending())
	assert.NoError(t, res.Err)
}

func TestSend_GrowsTranscriptByTwo(t *testing.T) {
	tests := []struct {
		name string
		tr   *fakeTransport
	}{
		{"success", &fakeTransport{resp: client.Response{"answer": json.RawMessage(`"hi"`)}}},
		{"no reply field", &fakeTransport{resp: client.Response{}}},
		{"transport error", &fakeTransport{err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(tt.tr)
			before := d.Session().Transcript().Len()

			_, ok := d.Send(context.Background(), "hello")
			require.True(t, ok)

			assert.Equal(t, before+2, d.Session().Transcript().Len())
			snap := d.Snapshot()
			assert.Equal(t, model.RoleUser, snap[len(snap)-2].Role)
			assert.Equal(t, "hello", snap[len(snap)-2].Text)
			assert.Equal(t, model.RoleAssistant, snap[len(snap)-1].Role)
			assert.Equal(t, StateIdle, d.State())
		})
	}
}

func TestSend_EmptyReplyObject(t *testing.T) {
	d := newDispatcher(&fakeTransport{resp: respond(t, `{}`)})

	res, ok := d.Send(context.Background(), "hi")
	require.True(t, ok)

	assert.Equal(t, model.DefaultNoReply, res.Reply.Text)
	assert.Equal(t, model.KindNoReply, res.Reply.Kind)
	assert.Equal(t, StateResolved, res.State, "a reply without text is not a failure")
}

func TestSend_NonObjectBodyIsNoReply(t *testing.T) {
	for _, body := range []string{`[]`, `"hello"`, `42`} {
		t.Run(body, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			}))
			defer ts.Close()

			d := newDispatcher(client.New(ts.URL).WithTimeout(5 * time.Second))
			res, ok := d.Send(context.Background(), "hi")
			require.True(t, ok)

			assert.NoError(t, res.Err)
			assert.Equal(t, model.KindNoReply, res.Reply.Kind)
			assert.Equal(t, StateResolved, res.State)
		})
	}
}

func TestSend_NullBodyIsFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer ts.Close()

	d := newDispatcher(client.New(ts.URL).WithTimeout(5 * time.Second))
	res, ok := d.Send(context.Background(), "hi")
	require.True(t, ok)

	assert.ErrorIs(t, res.Err, client.ErrNullResponse)
	assert.Equal(t, model.KindFallback, res.Reply.Kind)
	assert.Equal(t, StateFailed, res.State)
}

func TestSend_TransportFailure(t *testing.T) {
	var hooked []Failure
	tr := &fakeTransport{err: &client.StatusError{Status: 503}}
	d := newDispatcher(tr, WithDiagnosticHook(func(f Failure) { hooked = append(hooked, f) }))

	res, ok := d.Send(context.Background(), "hi")
	require.True(t, ok)

	assert.Equal(t, model.DefaultApology, res.Reply.Text)
	assert.Equal(t, model.KindFallback, res.Reply.Kind)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StateFailed, d.LastOutcome())
	assert.Equal(t, StateIdle, d.State())

	require.Len(t, hooked, 1)
	assert.Equal(t, "hi", hooked[0].Query)
	assert.Equal(t, d.Session().ID(), hooked[0].SessionID)
	var se *client.StatusError
	assert.ErrorAs(t, hooked[0].Err, &se)
}

func TestSend_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := &fakeTransport{gate: make(chan struct{})} // never opens
	d := newDispatcher(tr)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, ok := d.Send(ctx, "hi")
	require.True(t, ok)
	assert.Equal(t, model.DefaultApology, res.Reply.Text)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Equal(t, StateIdle, d.State())
}

func TestSend_CustomNotices(t *testing.T) {
	d := newDispatcher(&fakeTransport{err: errors.New("boom")},
		WithNotices(Notices{Apology: "sorry"}))

	res, _ := d.Send(context.Background(), "hi")
	assert.Equal(t, "sorry", res.Reply.Text)

	d = newDispatcher(&fakeTransport{resp: client.Response{}}, WithNotices(Notices{Apology: "sorry"}))
	res, _ = d.Send(context.Background(), "hi")
	assert.Equal(t, model.DefaultNoReply, res.Reply.Text, "empty NoReply keeps the default")
}

func TestSend_PanickingTransport(t *testing.T) {
	tr := TransportFunc(func(ctx context.Context, req client.Request) (client.Response, error) {
		panic("decoder exploded")
	})
	d := newDispatcher(tr)

	res, ok := d.Send(context.Background(), "hi")
	require.True(t, ok)
	assert.Equal(t, StateFailed, res.State)
	assert.ErrorIs(t, res.Err, ErrExchangePanic)
	assert.Equal(t, StateIdle, d.State())
	assert.False(t, d.Pending())
}

func TestSend_NilTransport(t *testing.T) {
	d := newDispatcher(nil)

	res, ok := d.Send(context.Background(), "hi")
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, ErrNoTransport)
	assert.Equal(t, model.DefaultApology, res.Reply.Text)
}

func TestSend_HookPanicIsContained(t *testing.T) {
	d := newDispatcher(&fakeTransport{err: errors.New("x")},
		WithDiagnosticHook(func(Failure) { panic("hook") }))

	res, ok := d.Send(context.Background(), "hi")
	require.True(t, ok)
	assert.Equal(t, model.DefaultApology, res.Reply.Text)
	assert.Equal(t, StateIdle, d.State())
}

// =============================================================================
// SUBMIT REFUSAL TESTS
// =============================================================================

func TestResolve_PanicAfterReplyKeepsOutcome(t *testing.T) {
	// The logger blows up on the entry written after the reply is stored.
	core := zapcore.RegisterHooks(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(io.Discard), zapcore.DebugLevel),
		func(e zapcore.Entry) error {
			if e.Message == "reply" {
				panic("log sink failed")
			}
			return nil
		})
	d := newDispatcher(&fakeTransport{resp: respond(t, `{"answer":"42"}`)}, WithLogger(zap.New(core)))

	res, ok := d.Send(context.Background(), "q")
	require.True(t, ok)

	assert.Equal(t, "42", res.Reply.Text)
	assert.Equal(t, model.KindReply, res.Reply.Kind)
	assert.Equal(t, StateResolved, d.LastOutcome())
	assert.Equal(t, StateIdle, d.State())
	assert.Len(t, d.Snapshot(), 3)
}

func TestSubmit_BlankIsRefused(t *testing.T) {
	tr := &fakeTransport{resp: client.Response{}}
	d := newDispatcher(tr)
	before := d.Session().Transcript().Len()

	for _, text := range []string{"", " ", "\n\t  \r\n"} {
		ex, ok := d.Submit(text)
		assert.False(t, ok, "submit(%q) accepted", text)
		assert.Nil(t, ex)
	}

	assert.Equal(t, before, d.Session().Transcript().Len())
	assert.Equal(t, 0, tr.count())
	assert.Equal(t, StateIdle, d.State())
}

func TestSubmit_WhilePendingIsRefused(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := &fakeTransport{resp: respond(t, `{"message":"done"}`), gate: make(chan struct{})}
	d := newDispatcher(tr)
	before := d.Session().Transcript().Len()

	ex, ok := d.Submit("first")
	require.True(t, ok)
	assert.True(t, d.Pending())
	assert.Equal(t, StateSending, d.State())
	assert.Equal(t, before+1, d.Session().Transcript().Len(), "user message is appended optimistically")

	results := make(chan Outcome, 1)
	go func() { results <- ex.Run(context.Background()) }()

	// A second submit while the first is in flight changes nothing.
	ex2, ok := d.Submit("second")
	assert.False(t, ok)
	assert.Nil(t, ex2)
	assert.Equal(t, before+1, d.Session().Transcript().Len())

	close(tr.gate)
	out := <-results
	msg, ok := d.Resolve(ex, out)
	require.True(t, ok)
	assert.Equal(t, "done", msg.Text)

	assert.Equal(t, 1, tr.count(), "exactly one outbound request")
	assert.Equal(t, before+2, d.Session().Transcript().Len())
	assert.False(t, d.Pending())
}

func TestRun_OnlyOnce(t *testing.T) {
	tr := &fakeTransport{resp: client.Response{}}
	d := newDispatcher(tr)

	ex, _ := d.Submit("hi")
	ex.Run(context.Background())
	out := ex.Run(context.Background())

	assert.ErrorIs(t, out.Err, ErrAlreadyRun)
	assert.Equal(t, 1, tr.count())
}

func TestResolve_StaleExchangeIgnored(t *testing.T) {
	d := newDispatcher(&fakeTransport{resp: client.Response{}})

	ex, _ := d.Submit("hi")
	_, ok := d.Resolve(ex, ex.Run(context.Background()))
	require.True(t, ok)
	n := d.Session().Transcript().Len()

	_, ok = d.Resolve(ex, Outcome{Reply: "again", Found: true})
	assert.False(t, ok)
	assert.Equal(t, n, d.Session().Transcript().Len())

	_, ok = d.Resolve(nil, Outcome{})
	assert.False(t, ok)
}

// =============================================================================
// SESSION IDENTITY TESTS
// =============================================================================

func TestSessionIDStableAcrossRequests(t *testing.T) {
	tr := &fakeTransport{resp: client.Response{}}
	d := newDispatcher(tr)

	for _, q := range []string{"one", "two", "three"} {
		_, ok := d.Send(context.Background(), q)
		require.True(t, ok)
	}

	require.Equal(t, 3, tr.count())
	for i, req := range tr.calls {
		assert.Equal(t, d.Session().ID(), req.UserID, "request %d", i)
	}

	other := newDispatcher(tr)
	assert.NotEqual(t, d.Session().ID(), other.Session().ID())
}

func TestRequestCarriesRawQuery(t *testing.T) {
	tr := &fakeTransport{resp: client.Response{}}
	d := newDispatcher(tr)

	_, ok := d.Send(context.Background(), "  keep  **raw** <b>text</b>\n")
	require.True(t, ok)
	assert.Equal(t, "  keep  **raw** <b>text</b>\n", tr.calls[0].Query)
}

// =============================================================================
// END-TO-END WITH HTTP CLIENT
// =============================================================================

func TestSend_ThroughHTTP(t *testing.T) {
	tests := []struct {
		name      string
		srv       *server.Server
		wantText  string
		wantState State
	}{
		{"answer", server.NewServer("").WithResponder(server.StaticResponder("from answer")), "from answer", StateResolved},
		{"text field", server.NewServer("").WithReplyField("text").WithResponder(server.StaticResponder("from text")), "from text", StateResolved},
		{"no field", server.NewServer("").WithReplyField(server.FieldNone), model.DefaultNoReply, StateResolved},
		{"server error", server.NewServer("").WithStatus(http.StatusInternalServerError), model.DefaultApology, StateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.srv.Handler())
			defer ts.Close()

			d := newDispatcher(client.New(ts.URL).WithTimeout(5 * time.Second))
			res, ok := d.Send(context.Background(), "hello")
			require.True(t, ok)

			assert.Equal(t, tt.wantText, res.Reply.Text)
			assert.Equal(t, tt.wantState, res.State)
		})
	}
}

func TestSend_UnreachableEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	var failures atomic.Int32
	d := newDispatcher(client.New(url).WithTimeout(2*time.Second),
		WithDiagnosticHook(func(Failure) { failures.Add(1) }))

	res, ok := d.Send(context.Background(), "hello")
	require.True(t, ok)
	assert.Equal(t, model.DefaultApology, res.Reply.Text)
	assert.Equal(t, int32(1), failures.Load())
}
