package service

import (
	"context"
	"log"
)

// SMSSender is the interface for an SMS delivery gateway.
type SMSSender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// LogSMSSender is a gateway stand-in that writes messages to the log
// instead of sending them. Used in development and tests.
type LogSMSSender struct{}

// NewLogSMSSender creates a new log-backed SMS sender.
func NewLogSMSSender() *LogSMSSender {
	return &LogSMSSender{}
}

// Send logs the message instead of delivering it.
func (s *LogSMSSender) Send(ctx context.Context, phoneNumber, message string) error {
	log.Printf("SMS to %s: %s", phoneNumber, message)
	return nil
}
