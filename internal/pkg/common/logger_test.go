package common

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, mode string) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prevLogger, prevMode := Logger, LogMode
	Logger, LogMode = zap.New(core), mode
	t.Cleanup(func() { Logger, LogMode = prevLogger, prevMode })
	return logs
}

func TestLogFiltersSensitiveFields(t *testing.T) {
	logs := observe(t, "")

	LogInfo("使用者登入", zap.String("username", "chef"), zap.String("password", "secret"), zap.String("Authorization", "Bearer x"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if _, ok := fields["password"]; ok {
		t.Error("password should be filtered")
	}
	if _, ok := fields["Authorization"]; ok {
		t.Error("authorization should be filtered")
	}
	if fields["username"] != "chef" {
		t.Errorf("username = %v", fields["username"])
	}
}

func TestConciseModeKeepsLifecycleMessages(t *testing.T) {
	logs := observe(t, "concise")

	LogInfo("食譜已建立")
	LogInfo(MsgRequestCompleted)
	LogInfo(MsgShuttingDown)
	LogWarn("讀取快取失敗")

	if logs.Len() != 3 {
		t.Errorf("concise mode logged %d entries, want 3", logs.Len())
	}
	if n := logs.FilterMessage("食譜已建立").Len(); n != 0 {
		t.Error("concise mode should drop ordinary info messages")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
