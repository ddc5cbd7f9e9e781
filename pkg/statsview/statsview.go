// Package statsview serves live runtime statistics of the emulator process
// over HTTP using github.com/go-echarts/statsview.
//
// After launch, graphs are viewable at
//
//	localhost:12600/debug/statsview
//
// and the standard pprof handlers at
//
//	localhost:12600/debug/pprof/
package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/log"
)

// DefaultAddress is the listen address used when none is given.
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"

// URL returns the page address for a listen address.
func URL(addr string) string {
	if addr == "" {
		addr = DefaultAddress
	}
	return "http://" + addr + url
}

// Launch starts the stats server in a new goroutine. The returned function
// stops it.
func Launch(logger *log.Logger, addr string) (stop func()) {
	if addr == "" {
		addr = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()

	logger.Info("Stats server started", log.String("url", URL(addr)))
	return mgr.Stop
}
