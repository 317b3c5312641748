package logger

import (
	"log"
)

// Levels order from most to least verbose. SILENCE suppresses everything,
// which the test helpers rely on.
const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

var levelTags = map[int]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARN",
	ERROR:   "ERROR",
}

// Logger is the leveled printf-style logger carried in the request context.
type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
}

// NewLogger returns a logger that writes tagged lines to the standard log
// output, dropping everything below the given level.
func NewLogger(level int) *defaultLogger {
	return &defaultLogger{level: level}
}

func (l *defaultLogger) printf(level int, msg string, a ...any) {
	if l.level > level {
		return
	}

	log.Printf(levelTags[level]+" | "+msg+"\n", a...)
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	l.printf(DEBUG, msg, a...)
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	l.printf(INFO, msg, a...)
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	l.printf(WARNING, msg, a...)
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	l.printf(ERROR, msg, a...)
}
