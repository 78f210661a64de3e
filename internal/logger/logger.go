// Package logger holds the zap logger shared by the tridim library and its
// commands.
//
// The library logs through the package functions from the start, but the
// logger discards everything until a command calls Init. Programs that embed
// tridim and never call Init get no output.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log receives every entry. Replace it with Set, not by assignment.
var Log = zap.NewNop()

// Options selects where entries go.
type Options struct {
	Level string
	// Console writes colored lines to stderr.
	Console bool
	// File, when set, also writes JSON lines to a rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// CommandOptions are the options of the tridim commands: console output and
// an optional log file rotated at 20 MB, keeping a week of compressed
// backups.
func CommandOptions(level, logFile string) Options {
	return Options{
		Level:      level,
		Console:    true,
		File:       logFile,
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Init starts logging for a command at level, to stderr and to logFile when
// it is not empty.
func Init(level string, logFile string) error {
	return InitWith(CommandOptions(level, logFile))
}

// InitWith starts logging with explicit options. With neither console nor
// file output the logger stays silent.
func InitWith(opts Options) error {
	lvl := ParseLevel(opts.Level)

	var cores []zapcore.Core
	if opts.Console {
		encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl))
	}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
			LocalTime:  true,
		}
		encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:      "time",
			LevelKey:     "level",
			MessageKey:   "msg",
			CallerKey:    "caller",
			EncodeTime:   zapcore.ISO8601TimeEncoder,
			EncodeLevel:  zapcore.LowercaseLevelEncoder,
			EncodeCaller: zapcore.ShortCallerEncoder,
		})
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), lvl))
	}
	if len(cores) == 0 {
		Set(nil)
		return nil
	}

	Set(zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)))
	return nil
}

// Set swaps the logger. nil goes back to discarding.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Log = l
}

// ParseLevel maps the level names of the scene config. Anything unknown is
// info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func Sync() {
	_ = Log.Sync()
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}
