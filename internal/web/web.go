// Package web implements the browser-facing HTTP surface of spotweb.
//
// # Routes
//
//	GET  /                      → login page, or the download page for an authenticated session
//	POST /                      → form field "token"; success starts a session and renders the download page
//	GET  /download/stream       → Server-Sent Events relay of one downloader run (?url=&mode=)
//	*    anything else          → 404 "404 Not Found"
//
// # Authentication
//
// A single shared token, checked by [Gate] in constant time. A successful login stores a server-side session and
// sets a signed cookie (see the session package). Protected routes answer 404 rather than 401/403 so the service
// does not advertise itself to unauthenticated clients.
//
// # Streaming
//
// The stream handler consumes the runner's event channel and writes each event as one "data: <json>" frame.
// Comment frames keep idle proxies from dropping long runs. When the client goes away the request context is
// cancelled, which stops the runner and kills the tool.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotweb/internal/downloader"
	"github.com/desertthunder/spotweb/internal/server"
	"github.com/desertthunder/spotweb/internal/session"
	"github.com/desertthunder/spotweb/internal/shared"
)

// DefaultKeepAlive is the interval between comment frames on an idle stream.
const DefaultKeepAlive = 15 * time.Second

// Streamer runs downloads. [downloader.Runner] is the production implementation.
type Streamer interface {
	Stream(ctx context.Context, req downloader.Request) <-chan downloader.Event
}

// AppOpts configures an [App].
type AppOpts struct {
	Gate      *Gate
	Sessions  *session.Manager
	Runner    Streamer
	Templates *server.TemplateManager
	Logger    *log.Logger
	KeepAlive time.Duration // 0 uses DefaultKeepAlive, negative disables
}

// App holds the web handlers and their dependencies.
type App struct {
	gate      *Gate
	sessions  *session.Manager
	runner    Streamer
	templates *server.TemplateManager
	logger    *log.Logger
	keepAlive time.Duration
}

// NewApp creates an App from opts.
func NewApp(opts AppOpts) *App {
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	keepAlive := opts.KeepAlive
	if keepAlive == 0 {
		keepAlive = DefaultKeepAlive
	}
	return &App{
		gate:      opts.Gate,
		sessions:  opts.Sessions,
		runner:    opts.Runner,
		templates: opts.Templates,
		logger:    logger,
		keepAlive: keepAlive,
	}
}

// Register adds every route to router.
func (a *App) Register(router server.Router) {
	router.Handle(http.MethodGet, "/{$}", http.HandlerFunc(a.handleIndex))
	router.Handle(http.MethodPost, "/{$}", http.HandlerFunc(a.handleLogin))
	router.Handle(http.MethodGet, "/download/stream", http.HandlerFunc(a.handleStream))
	router.Handler(NotFoundHandler{})
}

// Routes builds a router with the standard middleware stack and every route registered.
func (a *App) Routes() *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(server.Recovery(a.logger), server.RequestLogger(a.logger), server.SecurityHeaders)
	a.Register(router)
	return router
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	if a.sessions.Authenticated(r) {
		a.render(w, server.PageIndex, nil)
		return
	}
	a.render(w, server.PageLogin, map[string]any{"Error": false})
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	token := r.PostFormValue("token")
	if !a.gate.Allow(token) {
		a.logger.Warn("rejected login", "remote", r.RemoteAddr)
		a.render(w, server.PageLogin, map[string]any{"Error": true})
		return
	}

	if _, err := a.sessions.Login(w, r); err != nil {
		a.logger.Error("failed to create session", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.render(w, server.PageIndex, nil)
}

func (a *App) handleStream(w http.ResponseWriter, r *http.Request) {
	if !a.sessions.Authenticated(r) {
		notFound(w)
		return
	}

	q := r.URL.Query()
	mode := q.Get("mode")
	if mode == "" {
		mode = string(downloader.ModeTrack)
	}
	req := downloader.NewRequest(q.Get("url"), mode)

	sse, err := NewSSEWriter(w)
	if err != nil {
		a.logger.Error("cannot stream", "err", err)
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var ping <-chan time.Time
	if a.keepAlive > 0 {
		ticker := time.NewTicker(a.keepAlive)
		defer ticker.Stop()
		ping = ticker.C
	}

	events := a.runner.Stream(ctx, req)
	broken := false
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if broken {
				continue
			}
			if err := sse.Send(ev); err != nil {
				a.logger.Warn("client went away", "err", err)
				broken = true
				cancel()
			}
		case <-ping:
			if !broken && sse.Ping() != nil {
				broken = true
				cancel()
			}
		}
	}
}

func (a *App) render(w http.ResponseWriter, page string, data any) {
	if err := a.templates.Render(w, http.StatusOK, page, data); err != nil {
		a.logger.Error("failed to render page", "page", page, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// NotFoundHandler answers every request with a plain 404.
type NotFoundHandler struct{}

func (NotFoundHandler) Routes() []string { return []string{"/"} }

func (NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { notFound(w) }

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("404 Not Found"))
}
