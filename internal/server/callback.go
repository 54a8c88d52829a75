package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/spotify-backup/internal/shared"
)

const shutdownGrace = 2 * time.Second

// CallbackResult is the outcome of the authorization redirect.
//
// Exactly one of Code or Reason is set.
type CallbackResult struct {
	Code   string
	Reason string
}

// OK reports whether the redirect carried an authorization code.
func (r CallbackResult) OK() bool {
	return r.Code != ""
}

// Err returns the failure as an error wrapping [shared.ErrAuthFailed], or nil on success.
func (r CallbackResult) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s", shared.ErrAuthFailed, r.Reason)
}

// CallbackHandler handles the provider's redirect back to the local listener.
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	path       string
	resultChan chan CallbackResult
	once       sync.Once
	handled    bool
	mu         sync.Mutex
}

// NewCallbackHandler creates a handler serving the redirect at path.
func NewCallbackHandler(path string) *CallbackHandler {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &CallbackHandler{
		path:       path,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the redirect request.
//
// An error parameter wins over a code. Only the first redirect is processed.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()

	if reason := query.Get("error"); reason != "" {
		writePage(w, http.StatusBadRequest, "Authorization failed", "Error: "+reason)
		h.Send(CallbackResult{Reason: reason})
		return
	}

	code := query.Get("code")
	if code == "" {
		writePage(w, http.StatusBadRequest, "Authorization failed", "Error: "+shared.ErrMissingCode.Error())
		h.Send(CallbackResult{Reason: shared.ErrMissingCode.Error()})
		return
	}

	writePage(w, http.StatusOK, "Authorization successful", "You can close this window and return to the terminal.")
	h.Send(CallbackResult{Code: code})
}

// Send sends the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
    <script>window.close();</script>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(message))
}

// CallbackListener is a short-lived local HTTP server that receives a single authorization redirect.
type CallbackListener struct {
	addr     string
	handler  *CallbackHandler
	srv      *http.Server
	ln       net.Listener
	serveErr chan error
	close    sync.Once
}

// NewCallbackListener creates a listener for addr (host:port) serving the redirect at path.
//
// Nothing is bound until [CallbackListener.Start].
func NewCallbackListener(addr, path string) *CallbackListener {
	return &CallbackListener{
		addr:     addr,
		handler:  NewCallbackHandler(path),
		serveErr: make(chan error, 1),
	}
}

// Start binds the address and begins serving in the background.
//
// Bind failures wrap [shared.ErrListenerBind].
func (l *CallbackListener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrListenerBind, l.addr, err)
	}

	router := NewBasicRouter()
	router.Use(NoStore)
	router.Handler(l.handler)

	l.ln = ln
	l.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(io.Discard, "", 0),
	}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.serveErr <- err
		}
	}()

	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (l *CallbackListener) Addr() string {
	if l.ln != nil {
		return l.ln.Addr().String()
	}
	return l.addr
}

// RedirectURI returns the URI the provider must redirect to.
//
// The host is the configured one, so it matches the URI registered with the provider. The bound
// port is only substituted when the configured port is 0.
func (l *CallbackListener) RedirectURI() string {
	host, port, err := net.SplitHostPort(l.addr)
	if err != nil {
		return "http://" + l.Addr() + l.handler.path
	}
	if host == "" {
		host = "127.0.0.1"
	}
	if (port == "" || port == "0") && l.ln != nil {
		if _, bound, err := net.SplitHostPort(l.ln.Addr().String()); err == nil {
			port = bound
		}
	}
	return "http://" + net.JoinHostPort(host, port) + l.handler.path
}

// Wait blocks until the redirect arrives, the server fails, or ctx ends.
//
// The listener is closed before Wait returns in every case.
func (l *CallbackListener) Wait(ctx context.Context) (CallbackResult, error) {
	if l.srv == nil {
		return CallbackResult{}, shared.ErrListenerClosed
	}
	defer l.Close()

	select {
	case res := <-l.handler.Result():
		return res, nil
	case err := <-l.serveErr:
		return CallbackResult{}, fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return CallbackResult{}, fmt.Errorf("%w: no redirect received", shared.ErrTimeout)
		}
		return CallbackResult{}, ctx.Err()
	}
}

// Close shuts the server down. It is safe to call more than once.
func (l *CallbackListener) Close() error {
	if l.srv == nil {
		return nil
	}

	var err error
	l.close.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		if err = l.srv.Shutdown(ctx); err != nil {
			err = l.srv.Close()
		}
	})
	return err
}
