package realtime

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventLogger provides structured logging for realtime events
type EventLogger struct {
	logger *zap.Logger
}

// NewEventLogger creates a new realtime event logger
func NewEventLogger() *EventLogger {
	return &EventLogger{
		logger: zap.L().With(zap.String("component", "realtime")),
	}
}

// Info logs info level event
func (l *EventLogger) Info(event string, userID uuid.UUID, clientID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
	}, fields...)
	l.logger.Info("realtime_event", allFields...)
}

// Error logs error level event
func (l *EventLogger) Error(event string, userID uuid.UUID, clientID string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
		zap.Error(err),
	}, fields...)
	l.logger.Error("realtime_error", allFields...)
}

// Warn logs warning level event
func (l *EventLogger) Warn(event string, userID uuid.UUID, clientID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
	}, fields...)
	l.logger.Warn("realtime_warning", allFields...)
}
