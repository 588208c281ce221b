// Package logging holds the diagnostic loggers. These never write to the event
// log; they exist to debug dirwatch itself.
package logging

import (
	"io"
	"log"
	"os"
)

// DebugFile is where diagnostic output goes when enabled
const DebugFile = "dirwatch-debug.log"

var (
	Debug   *log.Logger
	Watch   *log.Logger
	Enabled bool
)

func init() {
	// Only enable logging if DIRWATCH_DEBUG environment variable is set
	Setup(os.Getenv("DIRWATCH_DEBUG") != "")
}

// Setup (re)configures the diagnostic loggers. When disabled they discard
// everything.
func Setup(enabled bool) {
	if !enabled {
		Debug = log.New(io.Discard, "", 0)
		Watch = log.New(io.Discard, "", 0)
		Enabled = false
		return
	}

	Enabled = true

	// Open the debug file once for all loggers
	debugFile, err := os.OpenFile(DebugFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Fallback to stderr if we can't open the file
		Debug = log.New(os.Stderr, "[DEBUG] ", log.Ldate|log.Ltime)
		Watch = log.New(os.Stderr, "[WATCH] ", log.Ldate|log.Ltime)
		return
	}

	Debug = log.New(debugFile, "[DEBUG] ", log.Lmicroseconds)
	Watch = log.New(debugFile, "[WATCH] ", log.Lmicroseconds)
}
