// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/askterm/internal/client"
	"github.com/jeranaias/askterm/internal/model"
	"github.com/jeranaias/askterm/internal/session"
)

// =============================================================================
// STATE
// =============================================================================

// State is the dispatcher's position in the exchange cycle.
type State int

const (
	StateIdle State = iota
	StateSending
	StateResolved
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// =============================================================================
// TRANSPORT
// =============================================================================

// Transport performs one request/response exchange with the answering
// service. *client.Client satisfies it.
type Transport interface {
	Ask(ctx context.Context, req client.Request) (client.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req client.Request) (client.Response, error)

// Ask calls f.
func (f TransportFunc) Ask(ctx context.Context, req client.Request) (client.Response, error) {
	return f(ctx, req)
}

// Error variables for exchange failures that do not come from the transport.
var (
	// ErrNoTransport indicates the dispatcher was built without a transport.
	ErrNoTransport = errors.New("no transport configured")

	// ErrExchangePanic wraps a panic recovered while running an exchange.
	ErrExchangePanic = errors.New("exchange panicked")

	// ErrAlreadyRun indicates Run was called twice on one exchange.
	ErrAlreadyRun = errors.New("exchange already run")
)

// =============================================================================
// NOTICES AND DIAGNOSTICS
// =============================================================================

// Notices are the fixed texts the dispatcher appends in place of a reply.
type Notices struct {
	// NoReply is used when the service answered without reply text.
	NoReply string
	// Apology is used when the exchange failed.
	Apology string
}

// DefaultNotices returns the built-in notice texts.
func DefaultNotices() Notices {
	return Notices{
		NoReply: model.DefaultNoReply,
		Apology: model.DefaultApology,
	}
}

// Failure describes a failed exchange for diagnostics.
type Failure struct {
	SessionID string
	Query     string
	Err       error
	Elapsed   time.Duration
}

// DiagnosticHook receives every failed exchange. It runs on the goroutine
// that called Resolve and must not block.
type DiagnosticHook func(Failure)

// =============================================================================
// EXCHANGE
// =============================================================================

// Outcome is the result of running an exchange.
type Outcome struct {
	// Reply is the extracted reply text when Found is true.
	Reply string
	Found bool
	// Err is non-nil when the exchange failed.
	Err     error
	Elapsed time.Duration
}

// Failed reports whether the outcome is a transport failure.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Exchange is one in-flight submission. Its fields are fixed at Submit and
// Run reads nothing else, so Run may execute on any goroutine.
type Exchange struct {
	Request client.Request
	User    model.Message

	transport Transport
	ran       atomic.Bool
}

// Run issues the exchange's single request and extracts the reply. It
// blocks until the transport returns; any timeout belongs to the transport
// or ctx. Panics are recovered and reported as failures.
func (e *Exchange) Run(ctx context.Context) (out Outcome) {
	if !e.ran.CompareAndSwap(false, true) {
		return Outcome{Err: ErrAlreadyRun}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("%w: %v", ErrExchangePanic, r)}
		}
		out.Elapsed = time.Since(start)
	}()

	if e.transport == nil {
		return Outcome{Err: ErrNoTransport}
	}

	resp, err := e.transport.Ask(ctx, e.Request)
	if err != nil {
		return Outcome{Err: err}
	}

	out.Reply, out.Found = ExtractReply(resp)
	return out
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher owns a session's transcript and pending flag.
type Dispatcher struct {
	sess      *session.Session
	transport Transport
	notices   Notices
	hook      DiagnosticHook
	log       *zap.Logger

	state    State
	last     State
	inflight *Exchange
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithNotices overrides the notice texts. Empty fields keep their defaults.
func WithNotices(n Notices) Option {
	return func(d *Dispatcher) {
		if n.NoReply != "" {
			d.notices.NoReply = n.NoReply
		}
		if n.Apology != "" {
			d.notices.Apology = n.Apology
		}
	}
}

// WithDiagnosticHook registers a hook for failed exchanges.
func WithDiagnosticHook(h DiagnosticHook) Option {
	return func(d *Dispatcher) {
		d.hook = h
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log.Named("dispatch")
		}
	}
}

// New creates a dispatcher for sess that sends through transport.
func New(sess *session.Session, transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sess:      sess,
		transport: transport,
		notices:   DefaultNotices(),
		log:       zap.NewNop(),
		state:     StateIdle,
		last:      StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Session returns the dispatched session.
func (d *Dispatcher) Session() *session.Session {
	return d.sess
}

// State returns the current state.
func (d *Dispatcher) State() State {
	return d.state
}

// Pending reports whether an exchange is in flight.
func (d *Dispatcher) Pending() bool {
	return d.state == StateSending
}

// LastOutcome returns the terminal state (Resolved or Failed) of the most
// recently settled exchange, or Idle if none has settled.
func (d *Dispatcher) LastOutcome() State {
	return d.last
}

// Snapshot returns a copy of the transcript.
func (d *Dispatcher) Snapshot() []model.Message {
	return d.sess.Transcript().Snapshot()
}

// Submit starts an exchange for text. It is refused (nil, false) when text
// is blank or another exchange is pending; a refused submit changes
// nothing. Otherwise the user message is appended before Submit returns.
func (d *Dispatcher) Submit(text string) (*Exchange, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	if d.state == StateSending {
		d.log.Debug("submit refused", zap.String("reason", "pending"))
		return nil, false
	}

	msg := model.NewUserMessage(text)
	d.sess.Transcript().Append(msg)
	d.sess.RecordActivity()

	ex := &Exchange{
		Request:   client.Request{Query: text, UserID: d.sess.ID()},
		User:      msg,
		transport: d.transport,
	}
	d.inflight = ex
	d.transition(StateSending)
	return ex, true
}

// Resolve settles ex with its outcome: it appends the assistant message and
// returns to Idle. Resolving anything other than the in-flight exchange is
// ignored and reports false.
func (d *Dispatcher) Resolve(ex *Exchange, out Outcome) (msg model.Message, ok bool) {
	if ex == nil || ex != d.inflight || d.state != StateSending {
		d.log.Warn("resolve ignored", zap.String("state", d.state.String()), zap.Bool("stale", ex != d.inflight))
		return model.Message{}, false
	}

	appended := false
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("resolve panicked", zap.Any("panic", r))
			if !appended {
				msg = model.NewAssistantMessage(model.KindFallback, d.notices.Apology)
				d.sess.Transcript().Append(msg)
				d.transition(StateFailed)
			}
			ok = true
		}
		d.inflight = nil
		d.transition(StateIdle)
	}()

	switch {
	case out.Err != nil:
		msg = model.NewAssistantMessage(model.KindFallback, d.notices.Apology)
		d.sess.Transcript().Append(msg)
		appended = true
		d.transition(StateFailed)
		d.diagnose(ex, out)

	case !out.Found:
		msg = model.NewAssistantMessage(model.KindNoReply, d.notices.NoReply)
		d.sess.Transcript().Append(msg)
		appended = true
		d.log.Info("reply without text", zap.String("session", ex.Request.UserID), zap.Duration("elapsed", out.Elapsed))
		d.transition(StateResolved)

	default:
		msg = model.NewAssistantMessage(model.KindReply, out.Reply)
		d.sess.Transcript().Append(msg)
		appended = true
		d.log.Debug("reply", zap.Int("chars", len([]rune(out.Reply))), zap.Duration("elapsed", out.Elapsed))
		d.transition(StateResolved)
	}

	d.sess.RecordActivity()
	return msg, true
}

// Result is the settled outcome of a synchronous Send.
type Result struct {
	User  model.Message
	Reply model.Message
	State State
	Err   error
}

// Send runs a complete exchange on the calling goroutine: Submit, Run and
// Resolve. It reports false when the submit was refused.
func (d *Dispatcher) Send(ctx context.Context, text string) (Result, bool) {
	ex, ok := d.Submit(text)
	if !ok {
		return Result{}, false
	}
	out := ex.Run(ctx)
	reply, _ := d.Resolve(ex, out)
	return Result{
		User:  ex.User,
		Reply: reply,
		State: d.last,
		Err:   out.Err,
	}, true
}

// transition moves to state and remembers terminal states.
func (d *Dispatcher) transition(to State) {
	if to == StateResolved || to == StateFailed {
		d.last = to
	}
	d.log.Debug("transition", zap.Stringer("from", d.state), zap.Stringer("to", to))
	d.state = to
}

// diagnose reports a failed exchange without changing what the user sees.
func (d *Dispatcher) diagnose(ex *Exchange, out Outcome) {
	d.log.Warn("exchange failed",
		zap.String("session", ex.Request.UserID),
		zap.Duration("elapsed", out.Elapsed),
		zap.Error(out.Err))

	if d.hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("diagnostic hook panicked", zap.Any("panic", r))
		}
	}()
	d.hook(Failure{
		SessionID: ex.Request.UserID,
		Query:     ex.Request.Query,
		Err:       out.Err,
		Elapsed:   out.Elapsed,
	})
}
