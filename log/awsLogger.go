package log

import (
	"github.com/aws/smithy-go/logging"
)

// awsLogger routes AWS SDK log output through the current default logger, so
// clients built before InitDefault still pick up the configured level and sink.
type awsLogger struct {
	ddl DynamicDefaultLogger
}

func (l *awsLogger) Logf(classification logging.Classification, template string, args ...interface{}) {
	logger := l.ddl.Logger().With("source", "aws-sdk")
	switch classification {
	case logging.Debug:
		logger.Debugf(template, args...)
	case logging.Warn:
		logger.Warnf(template, args...)
	default:
		logger.Infof(template, args...)
	}
}

// GetAwsLogger returns a smithy-go logger for aws.Config.Logger.
func GetAwsLogger() logging.Logger {
	return &awsLogger{
		ddl: NewDynamicDefaultLogger(func(in NewInput) NewInput {
			// One frame for Logf itself.
			in.SkippedFrames++
			return in
		}),
	}
}
