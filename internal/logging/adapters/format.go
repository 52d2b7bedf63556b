package adapters

import (
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"resume-parser/internal/logging/types"
)

// newFormatter builds the logrus formatter for the "json" or "text" format names
func newFormatter(format string, colorized bool) logrus.Formatter {
	if strings.ToLower(format) == "text" {
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			ForceColors:     colorized,
			DisableColors:   !colorized,
		}
	}

	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "message",
		},
	}
}

// newSink returns a logrus logger that writes every level to out; level filtering
// happens in MultiLogger before entries reach an adapter.
func newSink(out io.Writer, formatter logrus.Formatter) *logrus.Logger {
	sink := logrus.New()
	sink.SetOutput(out)
	sink.SetFormatter(formatter)
	sink.SetLevel(logrus.TraceLevel)
	sink.ExitFunc = func(int) {}
	return sink
}

// emit writes entry through sink
func emit(sink *logrus.Logger, entry *types.LogEntry) {
	e := sink.WithFields(logrus.Fields(entry.Fields)).WithTime(entry.Timestamp)
	if entry.Context != nil {
		e = e.WithContext(entry.Context)
	}
	e.Log(entry.Level.Logrus(), entry.Message)
}
