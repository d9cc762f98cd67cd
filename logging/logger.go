package logging

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// InitLogger initializes the structured logger with JSON format
func InitLogger() *logrus.Logger {
	log = logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	log.SetOutput(os.Stdout)

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	log.WithFields(logrus.Fields{
		"event": "logger_initialized",
		"level": log.Level.String(),
	}).Info("Structured logging initialized")

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if log == nil {
		return InitLogger()
	}
	return log
}

// NewCorrelationID generates a new correlation ID for request tracing
func NewCorrelationID() string {
	return uuid.New().String()
}

// Event types as constants
const (
	EventOrderReceived  = "order_received"
	EventOrderRejected  = "order_rejected"
	EventOrderModified  = "order_modified"
	EventOrderCancelled = "order_cancelled"
	EventTradeExecuted  = "trade_executed"
	EventServerStarted  = "server_started"
	EventServerStopped  = "server_stopped"
)

// LogOrderReceived logs an admitted order
func LogOrderReceived(correlationID string, orderID uint64, market, side, orderType, price, quantity string) {
	fields := logrus.Fields{
		"event":    EventOrderReceived,
		"order_id": orderID,
		"market":   market,
		"side":     side,
		"type":     orderType,
		"price":    price,
		"quantity": quantity,
	}
	if correlationID != "" {
		fields["correlation_id"] = correlationID
	}
	GetLogger().WithFields(fields).Info("Order received")
}

// LogOrderRejected logs a validation failure
func LogOrderRejected(correlationID, market, reason string) {
	fields := logrus.Fields{
		"event":  EventOrderRejected,
		"market": market,
		"reason": reason,
	}
	if correlationID != "" {
		fields["correlation_id"] = correlationID
	}
	GetLogger().WithFields(fields).Warn("Order rejected")
}

// LogOrderModified logs a successful modify
func LogOrderModified(correlationID string, orderID uint64, market, side string) {
	fields := logrus.Fields{
		"event":    EventOrderModified,
		"order_id": orderID,
		"market":   market,
		"side":     side,
	}
	if correlationID != "" {
		fields["correlation_id"] = correlationID
	}
	GetLogger().WithFields(fields).Info("Order modified")
}

// LogOrderCancelled logs a successful cancel
func LogOrderCancelled(correlationID string, orderID uint64, market, side string) {
	fields := logrus.Fields{
		"event":    EventOrderCancelled,
		"order_id": orderID,
		"market":   market,
		"side":     side,
	}
	if correlationID != "" {
		fields["correlation_id"] = correlationID
	}
	GetLogger().WithFields(fields).Info("Order cancelled")
}

// LogTradeExecuted logs one executed trade
func LogTradeExecuted(correlationID, market string, makerOrderID, takerOrderID uint64, price, quantity string) {
	fields := logrus.Fields{
		"event":          EventTradeExecuted,
		"market":         market,
		"maker_order_id": makerOrderID,
		"taker_order_id": takerOrderID,
		"price":          price,
		"quantity":       quantity,
	}
	if correlationID != "" {
		fields["correlation_id"] = correlationID
	}
	GetLogger().WithFields(fields).Info("Trade executed")
}

// LogServerStarted logs server startup
func LogServerStarted(port int, market string) {
	GetLogger().WithFields(logrus.Fields{
		"event":  EventServerStarted,
		"port":   port,
		"market": market,
	}).Info("Trade engine server started")
}
