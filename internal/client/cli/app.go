package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/client/client"
	"github.com/dmitrijs2005/evently-client/internal/client/config"
	"github.com/dmitrijs2005/evently-client/internal/client/services"
	"github.com/dmitrijs2005/evently-client/internal/client/session"
	"github.com/dmitrijs2005/evently-client/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = "connecting"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	auth   *services.AuthService
	client client.Client
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer

	mu       sync.RWMutex
	mode     Mode
	userName string

	outMu sync.Mutex
}

func NewApp(c *config.Config, auth *services.AuthService, api client.Client, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		auth:   auth,
		client: api,
		log:    log.With("component", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
		mode:   ModeUnknown,
	}
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.printf("Switched to %s mode\n", mode)
	}
}

// trackSession keeps the prompt's user name in step with the session.
func (a *App) trackSession(s session.Snapshot) {
	name := ""
	if s.User != nil {
		name = s.User.Name
	}
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	return a.auth.Session().Snapshot().LoggedIn
}

func (a *App) getStatus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := string(a.mode)
	if a.userName != "" {
		s = a.userName + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher probes the server right away and then every
// interval, switching the mode whenever reachability changes.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	if err := a.client.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		a.log.Debug(ctx, "server probe failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// printf and println serialize output, since the watcher prints from its
// own goroutine.
func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}
