// Package log is the process-wide logger. Everything goes through a single
// logrus instance so the level and output format are set in one place.
package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type Level logrus.Level

const (
	FatalLevel = Level(logrus.FatalLevel)
	ErrorLevel = Level(logrus.ErrorLevel)
	WarnLevel  = Level(logrus.WarnLevel)
	InfoLevel  = Level(logrus.InfoLevel)
	DebugLevel = Level(logrus.DebugLevel)
	TraceLevel = Level(logrus.TraceLevel)
)

func (l Level) String() string {
	return logrus.Level(l).String()
}

type Fields = logrus.Fields

const timestampFormat = "2006/01/02 15:04:05"

var Logger = logrus.New()

func init() {
	Logger.Formatter = textFormatter()
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        timestampFormat,
		FullTimestamp:          true,
	}
}

// Setup applies the configured level name and output format ("text" or
// "json").
func Setup(levelName, format string) error {
	level, err := ParseLevel(levelName)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		Logger.SetFormatter(textFormatter())
	case "json":
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	SetLevel(level)
	return nil
}

// ParseLevel accepts the logrus level names ("info", "debug", ...).
func ParseLevel(name string) (Level, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
	return Level(lvl), err
}

func SetLevel(level Level) {
	Logger.SetLevel(logrus.Level(level))
}

func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

func WithFields(fields Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

func Logf(level Level, fmt string, args ...any) {
	Logger.Logf(logrus.Level(level), fmt, args...)
}
func Log(level Level, args ...any) {
	Logger.Logln(logrus.Level(level), args...)
}

func Debugf(fmt string, args ...any) {
	Logger.Debugf(fmt, args...)
}
func Debug(args ...any) {
	Logger.Debugln(args...)
}

func Infof(fmt string, args ...any) {
	Logger.Infof(fmt, args...)
}
func Info(args ...any) {
	Logger.Infoln(args...)
}

func Warnf(fmt string, args ...any) {
	Logger.Warnf(fmt, args...)
}

func Errorf(fmt string, args ...any) {
	Logger.Errorf(fmt, args...)
}
func Error(args ...any) {
	Logger.Errorln(args...)
}

func Fatal(args ...any) {
	Logger.Fatalln(args...)
}
