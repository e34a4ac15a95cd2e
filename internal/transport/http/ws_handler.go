package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shovanNITS/Quiz-Generator-App/internal/app"
	"github.com/shovanNITS/Quiz-Generator-App/internal/auth"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"github.com/sirupsen/logrus"
)

const sendBuffer = 32

// sessionToucher is implemented by registries that keep a liveness marker.
type sessionToucher interface {
	Touch(ctx context.Context, id string) error
}

// WSHandler serves one quiz session per WebSocket connection.
type WSHandler struct {
	source   app.QuestionSource
	tokens   *auth.TokenService
	sessions app.SessionRepository
	upgrader websocket.Upgrader
	log      logrus.FieldLogger

	controllerOpts []app.Option
	gateOpts       []auth.GateOption
}

// HandlerOption configures a WSHandler.
type HandlerOption func(*WSHandler)

// WithLogger sets the handler logger.
func WithLogger(log logrus.FieldLogger) HandlerOption {
	return func(h *WSHandler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithControllerOptions is applied to every controller the handler creates.
func WithControllerOptions(opts ...app.Option) HandlerOption {
	return func(h *WSHandler) { h.controllerOpts = append(h.controllerOpts, opts...) }
}

// WithGateOptions is applied to every auth gate the handler creates.
func WithGateOptions(opts ...auth.GateOption) HandlerOption {
	return func(h *WSHandler) { h.gateOpts = append(h.gateOpts, opts...) }
}

func NewWSHandler(source app.QuestionSource, tokens *auth.TokenService, sessions app.SessionRepository, opts ...HandlerOption) *WSHandler {
	h := &WSHandler{
		source:   source,
		tokens:   tokens,
		sessions: sessions,
		log:      logrus.StandardLogger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type signInPayload struct {
	Token string `json:"token"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type quitPayload struct {
	Confirmed bool `json:"confirmed"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type tickPayload struct {
	Elapsed string `json:"elapsed"`
}

type messagePayload struct {
	Message string `json:"message"`
}

// Routes returns the mux serving the socket, the topic vocabulary and health checks.
func (h *WSHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/topics", ServeTopics)
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("GET /sessions/{id}", h.ServeSession)
	return mux
}

// ServeSession writes a snapshot of a live session's view.
func (h *WSHandler) ServeSession(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, domain.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(controller.View())
}

// ServeTopics writes the topic vocabulary as JSON.
func ServeTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(opentdb.Topics())
}

// ServeWS upgrades the request and runs a quiz session until the socket closes.
// An optional ?token= signs the tab in right away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log := h.log.WithField("session", id)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan outboundMessage, sendBuffer)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write failed")
				return
			}
		}
	}()

	presenter := &wsPresenter{send: send, done: writerDone}
	gate := auth.NewGate(auth.NewTokenProvider(h.tokens), presenter,
		append(append([]auth.GateOption{}, h.gateOpts...), auth.WithGateLogger(log))...)
	controller := app.NewController(id, h.source, presenter,
		append(append([]app.Option{}, h.controllerOpts...), app.WithAuth(gate), app.WithLogger(h.log))...)
	s := &wsSession{ctx: ctx, log: log, gate: gate, controller: controller, presenter: presenter}

	h.sessions.Put(controller)
	log.WithField("active", h.sessions.Len()).Info("session connected")

	statuses, unsubscribe := gate.Subscribe()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		watchSignOut(statuses, controller)
	}()

	gate.Start()
	if token := r.URL.Query().Get("token"); token != "" {
		_ = gate.SignIn(ctx, token)
	}
	controller.Refresh()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if toucher, ok := h.sessions.(sessionToucher); ok {
			_ = toucher.Touch(ctx, id)
		}
		if err := s.dispatch(inbound); err != nil {
			presenter.report(err)
		}
	}

	cancel()
	controller.Close()
	unsubscribe()
	gate.Stop()
	s.wg.Wait()
	h.sessions.Delete(id)
	close(send)
	<-writerDone
	log.Info("session disconnected")
}

// wsSession is the per-connection state the read loop dispatches into.
type wsSession struct {
	ctx        context.Context
	log        logrus.FieldLogger
	gate       *auth.Gate
	controller *app.Controller
	presenter  *wsPresenter
	wg         sync.WaitGroup
}

func (s *wsSession) dispatch(msg inboundMessage) error {
	switch msg.Type {
	case "signIn":
		var payload signInPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return err
		}
		// The gate already notified the user on failure.
		_ = s.gate.SignIn(s.ctx, payload.Token)
		return nil
	case "signOut":
		if err := s.gate.SignOut(s.ctx); err != nil {
			return err
		}
		// The watcher may only see the next sign-in, so drop the quiz here too.
		if err := s.controller.Abandon(); err != nil && !errors.Is(err, domain.ErrSessionClosed) {
			return err
		}
		return nil
	case "submitConfig":
		var cfg domain.QuizConfig
		if err := decodePayload(msg.Payload, &cfg); err != nil {
			return err
		}
		// Off the read loop so sign-out and reset stay responsive during a slow fetch.
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.controller.SubmitConfig(s.ctx, cfg); err != nil && !alreadyShown(err) {
				s.log.WithError(err).Debug("submit rejected")
				s.presenter.report(err)
			}
		}()
		return nil
	case "select":
		var payload selectPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return err
		}
		return s.controller.Select(payload.Option)
	case "next":
		return s.controller.Advance()
	case "quit":
		var payload quitPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return err
		}
		_, err := s.controller.Quit(payload.Confirmed)
		return err
	case "retake":
		return s.controller.Retake()
	case "newQuiz":
		return s.controller.NewQuiz()
	default:
		return errUnsupported
	}
}

var errUnsupported = errors.New("unsupported message type")

var errInvalidPayload = errors.New("invalid payload")

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidPayload
	}
	return nil
}

// alreadyShown reports errors the controller surfaced as a notice or that
// belong to a session nobody is looking at anymore.
func alreadyShown(err error) bool {
	var fetchErr *domain.FetchError
	return errors.As(err, &fetchErr) ||
		errors.Is(err, domain.ErrNoQuestions) ||
		errors.Is(err, domain.ErrInvalidConfig) ||
		errors.Is(err, domain.ErrStaleSession) ||
		errors.Is(err, domain.ErrSessionClosed)
}

type abandoner interface {
	Abandon() error
}

// watchSignOut abandons the session whenever the gate closes after being open
// or a different user takes over the tab. Statuses are latest-only, so a
// sign-out followed quickly by a sign-in shows up as a user change.
func watchSignOut(statuses <-chan auth.Status, session abandoner) {
	var current auth.Status
	for status := range statuses {
		signedOut := current.Authenticated && !status.Authenticated
		switched := current.Authenticated && status.Authenticated && current.User.ID != status.User.ID
		if signedOut || switched {
			_ = session.Abandon()
		}
		current = status
	}
}
