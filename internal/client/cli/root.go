package cli

import (
	"context"
	"sync"
)

// Root restores the stored session, starts the connectivity watcher and
// runs the REPL until the user exits or ctx ends.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.auth.Session().Subscribe(a.trackSession)
	defer unsubscribe()

	a.println("Welcome to Evently CLI (type 'help' for commands)")

	res := a.auth.Bootstrap(ctx)
	switch {
	case res.Success:
		a.printf("Welcome back, %s!\n", a.auth.Session().Snapshot().User.Name)
	case res.Message != "":
		a.println(res.Message)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
}
