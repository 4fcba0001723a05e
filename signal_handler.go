// Package msort holds process level helpers shared by the msort commands.
package msort

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
)

var (
	onlyOneSignalHandler = make(chan struct{})
	shutdownSignals      = []os.Signal{os.Interrupt, syscall.SIGTERM}
)

// Stopper is a long running component released on shutdown.
type Stopper interface {
	Stop()
}

// SetupSignalHandler creates and returns a channel. The channel will be closed up on receiving
// an interrupt or terminate signal, if a second signal is received, the calling program is forced to terminate.
func SetupSignalHandler() (stopCh <-chan struct{}) {
	close(onlyOneSignalHandler) // panics when called twice

	return notifyOn(shutdownSignals...)
}

func notifyOn(signals ...os.Signal) <-chan struct{} {
	stop := make(chan struct{})
	c := make(chan os.Signal, 2)
	signal.Notify(c, signals...)
	go func() {
		s := <-c
		glog.Infof("received signal %s, shutting down", s)
		close(stop)
		<-c
		os.Exit(1)
	}()

	return stop
}

// RunUntilStopped blocks until stopCh is closed, then stops stoppers in reverse order.
func RunUntilStopped(stopCh <-chan struct{}, stoppers ...Stopper) {
	<-stopCh
	for i := len(stoppers) - 1; i >= 0; i-- {
		stoppers[i].Stop()
	}
}
