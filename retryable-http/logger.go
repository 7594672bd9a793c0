package retryablehttp

import (
	"context"
	"errors"

	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/hashicorp/go-retryablehttp"
)

type retryhttpLeveledLogger struct {
	ddl log.DynamicDefaultLogger
}

// demoteError reports whether an error entry from the retrying client is
// routine enough to log at the debug level: cancelled requests, and failed
// attempts at a URL that will be retried.
func demoteError(keysAndValues []interface{}) bool {
	hasError, hasUrl := false, false
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		switch keysAndValues[i] {
		case "error":
			hasError = true
			if err, ok := keysAndValues[i+1].(error); ok && errors.Is(err, context.Canceled) {
				return true
			}
		case "url":
			hasUrl = true
		}
	}
	return hasError && hasUrl
}

func (l *retryhttpLeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	if demoteError(keysAndValues) {
		l.ddl.Logger().Debugw(msg, keysAndValues...)
		return
	}
	l.ddl.Logger().Errorw(msg, keysAndValues...)
}
func (l *retryhttpLeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.ddl.Logger().Infow(msg, keysAndValues...)
}
func (l *retryhttpLeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.ddl.Logger().Debugw(msg, keysAndValues...)
}
func (l *retryhttpLeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.ddl.Logger().Warnw(msg, keysAndValues...)
}

// GetRetryhttpLeveledLogger adapts the default logger for the retrying
// client. It follows the default logger when that is re-initialized.
func GetRetryhttpLeveledLogger(loggerConfigFunc func(log.NewInput) log.NewInput) retryablehttp.LeveledLogger {
	return &retryhttpLeveledLogger{
		ddl: log.NewDynamicDefaultLogger(func(input log.NewInput) log.NewInput {
			if input.InitialFields == nil {
				input.InitialFields = map[string]any{}
			}
			input.InitialFields["retryable_http"] = true
			input.SkippedFrames += 1
			if loggerConfigFunc != nil {
				input = loggerConfigFunc(input)
			}
			return input
		}),
	}
}
