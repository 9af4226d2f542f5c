// FILE: lixenwraith/logsink/signal.go
package logsink

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	exitMu    sync.Mutex
	exitHooks []func()

	// osExit is swapped in tests
	osExit = os.Exit
)

// RegisterExitHook adds a function run by Exit before the process terminates.
// Hooks run once, most recently registered first.
func RegisterExitHook(fn func()) {
	exitMu.Lock()
	defer exitMu.Unlock()
	exitHooks = append(exitHooks, fn)
}

// RunExitHooks runs and clears the registered hooks. A panicking hook does not
// prevent the others from running.
func RunExitHooks() {
	exitMu.Lock()
	hooks := exitHooks
	exitHooks = nil
	exitMu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		func() {
			defer func() {
				_ = recover()
			}()
			hooks[i]()
		}()
	}
}

// Exit runs the exit hooks and terminates the process with code
func Exit(code int) {
	RunExitHooks()
	osExit(code)
}

// HandleTerminationSignal drains every accepted entry, stops the writer and
// exits the process with status 0
func (p *Pipeline) HandleTerminationSignal(sig os.Signal) {
	name := "unknown"
	if sig != nil {
		name = sig.String()
	}
	p.Echo(SeverityInfo, "Received signal "+name+", flushing pending log entries before exit")

	if err := p.Shutdown(); err != nil {
		p.reportFailure("shutdown completed with errors", err, "")
	}

	p.exit(0)
}

// RegisterSignalHandlers installs SIGINT and SIGTERM handling once per pipeline.
// The beforeDrain functions run first, typically stopping listeners so no
// new entries arrive. Signals received while the drain is in progress are
// reported and ignored; the process always exits 0 after a full drain.
// Installation failures are reported to the console and otherwise ignored.
func (p *Pipeline) RegisterSignalHandlers(beforeDrain ...func()) {
	p.signalOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				p.console.Warn().Interface("panic", r).Msg("signal handler registration failed")
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		go func() {
			sig := <-sigChan

			// Later signals are reported, never acted on
			go func() {
				for extra := range sigChan {
					p.Echo(SeverityWarning, "Received signal "+extra.String()+" while shutting down, still flushing")
				}
			}()

			for _, fn := range beforeDrain {
				func() {
					defer func() {
						_ = recover()
					}()
					fn()
				}()
			}

			p.HandleTerminationSignal(sig)
		}()
	})
}
