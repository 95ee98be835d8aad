// Package logging defines the logging contract shared by every exporter
// component and a no-op default for tests and quiet embedders.
package logging

// Logger is the structured logging contract. Implementations accept
// alternating key/value pairs after the message.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// Provider hands out named child loggers for the module's components.
type Provider interface {
	GetLogger(name string) Logger
}

type noop struct{}

func (noop) Trace(string, ...any) {}
func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}
func (noop) Fatal(string, ...any) {}

// NoOp returns a logger that discards everything.
func NoOp() Logger {
	return noop{}
}

type noopProvider struct{}

func (noopProvider) GetLogger(string) Logger { return noop{} }

// NoOpProvider returns a provider whose loggers discard everything.
func NoOpProvider() Provider {
	return noopProvider{}
}
