package core

// Logger is any leveled logging service.
// Implementations decide what to do with the trailing args
// (structured context, errors, the acting learner...).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
