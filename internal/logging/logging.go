package logging

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// New returns a JSON logger writing to out.
func New(level logrus.Level, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Level = level
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = out
	return log
}

// TraceFields returns the trace and span ids of the span in ctx, if any.
func TraceFields(ctx context.Context) logrus.Fields {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logrus.Fields{}
	}
	return logrus.Fields{
		"trace_id": sc.TraceID().String(),
		"span_id":  sc.SpanID().String(),
	}
}
