// Package logger defines the small logging interface used throughout this
// module, mirroring the teacher's saml/logger package: an injectable
// Interface plus a package-level DefaultLogger so callers that don't care
// get sane stderr output for free.
package logger

import (
	"log"
	"os"
)

// Interface is satisfied by *log.Logger and anything else that can format
// and print a line. Components that log (metadata refresh, filter
// decisions, encryption recipient skips) take one of these, defaulting to
// DefaultLogger.
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// DefaultLogger is used whenever a caller does not supply its own logger.
var DefaultLogger Interface = log.New(os.Stderr, "saml: ", log.LstdFlags)

// Discard silently drops everything logged to it; useful in tests.
var Discard Interface = discard{}

type discard struct{}

func (discard) Printf(string, ...interface{}) {}
func (discard) Println(...interface{})        {}
