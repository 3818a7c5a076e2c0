package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	closer io.Closer
)

// InitLogger configures the global logger. Output always goes to stdout and,
// when file is set, to a size-rotated log file.
func InitLogger(file string, maxSizeMB, maxBackups, maxAgeDays int, compress bool, level string) {
	var w io.Writer = os.Stdout
	var c io.Closer

	if file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   compress,
		}
		w = zerolog.MultiLevelWriter(os.Stdout, rotator)
		c = rotator
	}

	l := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))

	mu.Lock()
	if closer != nil {
		_ = closer.Close()
	}
	logger = l
	closer = c
	mu.Unlock()
}

// InitConsoleLogger sends log output to stderr so command output on stdout
// stays clean
func InitConsoleLogger(level string) {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger().Level(parseLevel(level))

	mu.Lock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	logger = l
	mu.Unlock()
}

// SetLogLevel changes the level of the global logger. Unknown levels fall back to info.
func SetLogLevel(level string) {
	mu.Lock()
	logger = logger.Level(parseLevel(level))
	mu.Unlock()
}

// SetLoggerForTest replaces the global logger
func SetLoggerForTest(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logger returns a copy of the global logger
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Close flushes and closes the rotating log file, if any
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func Debug(msg string, kv ...any) { log(zerolog.DebugLevel, msg, kv) }
func Info(msg string, kv ...any)  { log(zerolog.InfoLevel, msg, kv) }
func Warn(msg string, kv ...any)  { log(zerolog.WarnLevel, msg, kv) }
func Error(msg string, kv ...any) { log(zerolog.ErrorLevel, msg, kv) }

func log(level zerolog.Level, msg string, kv []any) {
	l := Logger()
	event := l.WithLevel(level)
	if event == nil {
		return
	}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		// dangling key without value
		if i+1 >= len(kv) {
			event = event.Interface(key, nil)
			break
		}
		switch v := kv[i+1].(type) {
		case error:
			event = event.Str(key, v.Error())
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
