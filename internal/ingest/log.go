package ingest

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logMu sync.RWMutex
	log   logrus.FieldLogger = logrus.StandardLogger().WithField("component", "ingest")
)

// SetLogger replaces the package logger. Passing nil mutes it. It is safe to
// call while frames are being decoded.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		muted := logrus.New()
		muted.SetOutput(io.Discard)
		l = muted
	}
	logMu.Lock()
	log = l
	logMu.Unlock()
}

func logger() logrus.FieldLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}
