package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormAdapter_TraceError(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewGormAdapter(New(Config{Output: &buf, MinLevel: LevelDebug}), "info")

	ctx := ContextWithRequestID(context.Background(), "req-9")
	adapter.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM console_states", 0
	}, errors.New("no such table"))

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}
	if entry.Level != LevelError {
		t.Errorf("expected level ERROR, got %s", entry.Level)
	}
	if entry.Context["sql"] != "SELECT * FROM console_states" {
		t.Errorf("expected sql in context, got %v", entry.Context["sql"])
	}
	if entry.RequestID != "req-9" {
		t.Errorf("expected request_id 'req-9', got %q", entry.RequestID)
	}
}

func TestGormAdapter_IgnoresRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewGormAdapter(New(Config{Output: &buf, MinLevel: LevelDebug}), "info")

	adapter.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, gorm.ErrRecordNotFound)

	if buf.Len() != 0 {
		t.Errorf("expected no output for record not found, got %s", buf.String())
	}
}

func TestGormAdapter_SlowQuery(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewGormAdapter(New(Config{Output: &buf, MinLevel: LevelDebug}), "info").
		WithSlowThreshold(time.Millisecond)

	adapter.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "UPDATE edit_logs SET status = 'success'", 1
	}, nil)

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}
	if entry.Level != LevelWarn || entry.Message != "slow query" {
		t.Errorf("expected slow query warning, got %s %q", entry.Level, entry.Message)
	}
}

func TestGormAdapter_Silent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewGormAdapter(New(Config{Output: &buf, MinLevel: LevelDebug}), "debug").
		LogMode(gormlogger.Silent)

	adapter.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, errors.New("boom"))

	if buf.Len() != 0 {
		t.Errorf("expected silent adapter to log nothing, got %s", buf.String())
	}
}

func TestMapToGormLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"debug":  gormlogger.Info,
		"info":   gormlogger.Warn,
		"warn":   gormlogger.Warn,
		"error":  gormlogger.Error,
		"silent": gormlogger.Silent,
		"":       gormlogger.Warn,
	}
	for input, want := range tests {
		if got := mapToGormLevel(input); got != want {
			t.Errorf("mapToGormLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
