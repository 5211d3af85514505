package diagnostics

import "go.uber.org/zap"

// zapLogger adapts Logger to a zap.Logger, giving callers console/JSON
// structured output instead of the silent default.
type zapLogger struct {
	z *zap.Logger
}

// NewZapLogger wraps a zap.Logger as a diagnostics Logger. Pass
// zap.NewProduction() or zap.NewDevelopment() (or any configured logger) to
// get leveled, structured output for onStartFile/onWarning/onFinishFile.
func NewZapLogger(z *zap.Logger) Logger {
	if z == nil {
		return SilentLogger()
	}
	return &zapLogger{z: z}
}

func (l *zapLogger) OnStartFile(path string) {
	l.z.Info("parse started", zap.String("path", path))
}

func (l *zapLogger) OnWarning(w Warning) {
	fields := []zap.Field{
		zap.String("code", string(w.Code)),
		zap.String("session", w.SessionID.String()),
	}
	if w.RecordID != "" {
		fields = append(fields, zap.String("record_id", w.RecordID))
	}
	if w.FeatureID != "" {
		fields = append(fields, zap.String("feature_id", w.FeatureID))
	}
	switch w.Severity {
	case Error:
		l.z.Error(w.Message, fields...)
	case Warn:
		l.z.Warn(w.Message, fields...)
	default:
		l.z.Info(w.Message, fields...)
	}
}

func (l *zapLogger) OnFinishFile(path string, warnings []Warning) {
	l.z.Info("parse finished", zap.String("path", path), zap.Int("warning_count", len(warnings)))
}
