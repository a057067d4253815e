package logger

import (
	"fmt"
	"io"
	"log"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

type Conf struct {
	Level  string
	Format string
	Out    io.Writer
}

func New(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

// NewFromConf builds a logrus-backed Logger. Unknown levels fall back to info.
func NewFromConf(conf Conf) *Logger {
	base := logrus.New()

	if conf.Out != nil {
		base.SetOutput(conf.Out)
	}

	level, err := logrus.ParseLevel(conf.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	base.SetLevel(level)

	if conf.Format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		//nolint:exhaustruct
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return New(base)
}

// Discard is used by tests.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)

	return New(base)
}

// StdLogger adapts the logger for APIs that take a *log.Logger, such as http.Server.
func (l *Logger) StdLogger() *log.Logger {
	if w, ok := l.l.(interface{ WriterLevel(logrus.Level) *io.PipeWriter }); ok {
		return log.New(w.WriterLevel(logrus.ErrorLevel), "", 0)
	}

	return log.New(io.Discard, "", 0)
}

func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{l: l.l.WithField(key, value)}
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.l.Error(fmt.Sprintf(format, v...))
}

func (l *Logger) LogWarnf(format string, v ...any) {
	l.l.Warn(fmt.Sprintf(format, v...))
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.l.Info(fmt.Sprintf(format, v...))
}

func (l *Logger) LogDebugf(format string, v ...any) {
	l.l.Debug(fmt.Sprintf(format, v...))
}
