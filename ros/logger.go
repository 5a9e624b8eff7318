package ros

import (
	modular "github.com/edwinhayes/logrus-modular"
	"github.com/sirupsen/logrus"
)

// Logger is the leveled-logging surface every ros package component takes
// instead of talking to logrus directly, so an embedding program can
// supply its own sink through SetLogger.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

// moduleLogger adapts a *modular.ModuleLogger to the Logger interface for
// the TCPROS/XMLRPC goroutines.
type moduleLogger struct {
	modular.ModuleLogger
}

// NewDefaultLogger returns the root logger a Node falls back to when no
// Logger is supplied via SetLogger. It logs at Info level to stderr.
func NewDefaultLogger() Logger {
	root := logrus.New()
	root.SetLevel(logrus.InfoLevel)
	ml := modular.NewRootLogger(root)
	return &moduleLogger{ModuleLogger: ml}
}
