// Package logging configures the process-wide apex/log handler.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

// Init sets up apex/log with a compact handler and a level taken from the
// ASKCACHE_LOG environment variable (default info).
func Init() {
	level := strings.ToLower(os.Getenv("ASKCACHE_LOG"))
	if level == "" {
		level = "info"
	}
	log.SetHandler(&handler{})
	log.SetLevelFromString(level)
}

// handler writes "2006-01-02 15:04:05 I message key=value" lines to stderr.
type handler struct{}

func (h *handler) HandleLog(e *log.Entry) error {
	ts := time.Now().Format("2006-01-02 15:04:05")
	lvl := strings.ToUpper(e.Level.String())

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", ts, lvl, e.Message)
	for _, f := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", f, e.Fields.Get(f))
	}
	fmt.Fprintln(os.Stderr, b.String())
	return nil
}
