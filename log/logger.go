package log

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Invicton-Labs/go-powerix/collections"
	"github.com/Invicton-Labs/go-stackerr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
	Panicf(template string, args ...interface{})

	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Fatalw(msg string, keysAndValues ...interface{})
	Panicw(msg string, keysAndValues ...interface{})

	Error(err error)
	Panic(err error)
	Fatal(err error)

	With(args ...interface{}) Logger
	WithOptions(opts ...zap.Option) Logger
	WithError(err error) Logger

	// WithAdditionalSkippedFrames will return a new logger that skips additional
	// frames when finding the caller and the stack trace.
	WithAdditionalSkippedFrames(skippedFrames int) Logger

	// Sync flushes any buffered log entries.
	Sync() error

	// Config gets the config values that can be used to re-create this logger
	Config() NewInput

	// Clone returns a copy of the logger
	Clone() Logger
}

type logger struct {
	*zap.SugaredLogger
	config NewInput
}

func (l logger) Clone() Logger {
	return logger{
		SugaredLogger: l.SugaredLogger.With(),
		config:        l.config.Clone(),
	}
}

func (l logger) Config() NewInput {
	return l.config.Clone()
}

func (l logger) getLoggerWithErrAndFields(err error, additionalFrameSkips int) (logger, []any) {
	// Convert it to a stackerr if it isn't one already
	serr := stackerr.WrapWithFrameSkipsWithoutExtraStack(err, 1+additionalFrameSkips)
	l = l.withErrorSkipFrames(serr, 1+additionalFrameSkips, false).(logger).WithOptions(zap.AddCallerSkip(additionalFrameSkips)).(logger)
	kvp := make([]any, 0, 2*len(serr.Fields()))
	for k, v := range serr.Fields() {
		kvp = append(kvp, k, v)
	}
	return l, kvp
}

// Error will add the error fields as log fields, will add a stack trace if one isn't already
// set in the error, and will then log it at the Error level.
func (l logger) Error(err error) {
	l, f := l.getLoggerWithErrAndFields(err, 1)
	l.Errorw(err.Error(), f...)
}

// Panic will add the error fields as log fields, will add a stack trace if one isn't already
// set in the error, and will then log it at the Panic level.
func (l logger) Panic(err error) {
	l, f := l.getLoggerWithErrAndFields(err, 1)
	l.Panicw(err.Error(), f...)
}

// Fatal will add the error fields as log fields, will add a stack trace if one isn't already
// set in the error, and will then log it at the Fatal level.
func (l logger) Fatal(err error) {
	l, f := l.getLoggerWithErrAndFields(err, 1)
	l.Fatalw(err.Error(), f...)
}

func (l logger) With(args ...interface{}) Logger {
	return logger{l.SugaredLogger.With(args...), l.config.Clone()}
}

func (l logger) WithOptions(opts ...zap.Option) Logger {
	return logger{l.SugaredLogger.WithOptions(opts...), l.config.Clone()}
}

// withErrorSkipFrames will return a new logger with the error added. If addErrField is true,
// the error message will be added to the "error" field. The stack traces of the error are
// always added to the "stacktraces" field.
func (l logger) withErrorSkipFrames(err error, skippedFrames int, addErrField bool) Logger {
	if err == nil {
		err = fmt.Errorf("")
		addErrField = false
	}
	if serr, ok := err.(stackerr.Error); ok || errors.As(err, &serr) {
		fields := []any{}
		if addErrField {
			fields = append(fields, zap.String("error", serr.Error()))
		}
		if stacks := serr.Stacks(); len(stacks) > 0 {
			fields = append(fields, zap.Any("stacktraces", stacks))
		}
		return l.With(fields...)
	}

	return l.withErrorSkipFrames(stackerr.WrapWithFrameSkips(err, 1+skippedFrames), 1+skippedFrames, addErrField)
}

func (l logger) WithError(err error) Logger {
	return l.withErrorSkipFrames(err, 1, true)
}

func (l logger) WithAdditionalSkippedFrames(skippedFrames int) Logger {
	return l.WithOptions(zap.AddCallerSkip(skippedFrames))
}

type NewInput struct {
	Name          string
	Level         zapcore.Level
	IsDevelopment bool
	InitialFields map[string]any
	SkippedFrames int

	// Output is where entries are written. It defaults to stdout.
	Output zapcore.WriteSyncer
}

func (ni *NewInput) Clone() NewInput {
	return NewInput{
		Name:          ni.Name,
		Level:         ni.Level,
		IsDevelopment: ni.IsDevelopment,
		InitialFields: collections.CopyMap(ni.InitialFields),
		SkippedFrames: ni.SkippedFrames,
		Output:        ni.Output,
	}
}

// ParseLevel converts a level name such as "debug" or "WARN" to a zap level.
func ParseLevel(level string) (zapcore.Level, stackerr.Error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return l, stackerr.Wrap(err)
	}
	return l, nil
}

func New(input NewInput) Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder

	if input.IsDevelopment {
		// If it's development mode, modify some settings
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	if input.Output == nil {
		input.Output = zapcore.Lock(os.Stdout)
	}

	buildOpts := []zap.Option{
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	}

	if input.IsDevelopment {
		buildOpts = append(buildOpts, zap.Development())
	}

	// Add the caller field
	buildOpts = append(buildOpts, zap.AddCaller())

	// Errors carry their own stack traces, so only add one from the logger
	// for entries above the error level.
	buildOpts = append(buildOpts, zap.AddStacktrace(zap.DPanicLevel))

	if !input.IsDevelopment {
		buildOpts = append(buildOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
		}))
	}

	if input.InitialFields == nil {
		input.InitialFields = map[string]any{}
	}

	// Add any initial field as a build option
	if len(input.InitialFields) > 0 {
		fs := make([]zap.Field, 0, len(input.InitialFields))
		for _, k := range collections.MapKeysAscending(input.InitialFields) {
			if f, ok := input.InitialFields[k].(zap.Field); ok {
				f.Key = k
				fs = append(fs, f)
			} else {
				fs = append(fs, zap.Any(k, input.InitialFields[k]))
			}
		}
		buildOpts = append(buildOpts, zap.Fields(fs...))
	}

	if input.SkippedFrames != 0 {
		buildOpts = append(buildOpts, zap.AddCallerSkip(input.SkippedFrames))
	}

	core := zapcore.NewCore(encoder, input.Output, zap.NewAtomicLevelAt(input.Level))
	zapLogger := zap.New(core, buildOpts...)
	if input.Name != "" {
		zapLogger = zapLogger.Named(input.Name)
	}

	return logger{zapLogger.Sugar(), input}
}
