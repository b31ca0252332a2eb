package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeFormat = "2006-01-02 15:04:05"

	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

// Options configures a ZerologLogger.
type Options struct {
	// Verbose enables Verbose() output (zerolog debug level).
	Verbose bool

	// LogFile receives a copy of every line. Empty disables file output.
	LogFile string

	// Console defaults to os.Stderr. Color is used only when it is a terminal.
	Console io.Writer

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// ZerologLogger implements shopload.Logger with zerolog. Every line carries
// the process id and a run id shared by all lines of one invocation.
type ZerologLogger struct {
	log   zerolog.Logger
	file  io.Closer
	runID string
}

// New builds a ZerologLogger writing to the console and, when configured,
// to a size-rotated log file.
func New(opts Options) (*ZerologLogger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: timeFormat,
		NoColor:    !isTerminal(console),
	}}

	var file *lumberjack.Logger
	if opts.LogFile != "" {
		if err := ensureLogDir(opts.LogFile); err != nil {
			return nil, err
		}
		file = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    orDefault(opts.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: orDefault(opts.MaxBackups, DefaultMaxBackups),
			MaxAge:     orDefault(opts.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   opts.Compress,
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: timeFormat,
			NoColor:    true,
		})
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	runID := uuid.NewString()
	l := &ZerologLogger{
		log: zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(level).
			With().
			Timestamp().
			Int("pid", os.Getpid()).
			Str("run_id", runID).
			Logger(),
		runID: runID,
	}
	if file != nil {
		l.file = file
	}
	return l, nil
}

func (l *ZerologLogger) Verbose(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Info(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warn(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Error(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

// RunID identifies this invocation in the log file.
func (l *ZerologLogger) RunID() string {
	return l.runID
}

// Close flushes and closes the log file, if any.
func (l *ZerologLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
