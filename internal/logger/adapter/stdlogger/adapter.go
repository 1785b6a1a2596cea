// Package stdlogger adapts the global zerolog logger to printf style logger interfaces
// such as the one gorm expects.
package stdlogger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
}

// New returns a Logger for the global zerolog logger.
func New() *Logger {
	return &Logger{}
}

// NewComponent returns a Logger tagging every line with component.
func NewComponent(component string) *Logger {
	return &Logger{component: component}
}

// Printf implements gorm's logger.Writer. Lines go out at debug level.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.event(log.Debug(), format, v...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.event(log.Debug(), format, v...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.event(log.Info(), format, v...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, v ...interface{}) {
	l.event(log.Warn(), format, v...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.event(log.Error(), format, v...)
}

func (l *Logger) event(e *zerolog.Event, format string, v ...interface{}) {
	if l.component != "" {
		e = e.Str("component", l.component)
	}

	// gorm prefixes multi line output with a newline
	e.Msgf(strings.TrimSpace(format), v...)
}
