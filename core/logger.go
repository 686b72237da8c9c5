package core

// Logger is any service that can report messages and errors.
// args may hold errors, map[string]interface{} extras or the request's access.Session.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
