package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level           string
	LogstashTCPAddr string
	Output          io.Writer
}

// New builds the process logger. Entries are JSON, written to Output
// (stdout by default) and mirrored to Logstash when an address is set.
// The returned closer releases the Logstash connection.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, err
		}
		level = parsed
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	var closer io.Closer = nopCloser{}
	if opts.LogstashTCPAddr != "" {
		shipper, err := NewLogstashShipper(LogstashConfig{Addr: opts.LogstashTCPAddr})
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(out, shipper)
		closer = shipper
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "@timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
