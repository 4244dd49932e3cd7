package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// JSON selects JSON lines on Out instead of the console format.
	JSON bool
	// File, when set, receives JSON lines through a rotating writer.
	File string
	Out  io.Writer
}

// New builds the process logger. The returned closer flushes the log file
// and is safe to call when no file is configured.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	var out io.Writer = io.Discard
	if opts.Out != nil {
		out = opts.Out
		if !opts.JSON {
			out = zerolog.ConsoleWriter{Out: opts.Out, TimeFormat: time.TimeOnly, NoColor: true}
		}
	}
	var closer io.Closer = nopCloser{}
	if strings.TrimSpace(opts.File) != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

func ParseLevel(value string) (zerolog.Level, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", value)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
