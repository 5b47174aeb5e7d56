package obslog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestObserverCoreFiltersBelowInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := zap.New(core)
	obs.Debug("should be filtered")
	obs.Info("should pass")
	if len(logs.All()) != 1 {
		t.Fatalf("expected 1 log entry past the info-level filter, got %d", len(logs.All()))
	}
}

func TestInitDefaultsToInfoLevel(t *testing.T) {
	logger := Init(Config{}, nopSyncer{})
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Errorf("expected info level enabled by default")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("expected debug level filtered out by default")
	}
}

func TestInitReturnsRetrievableViaL(t *testing.T) {
	logger := Init(Config{ServiceName: "inoda-test"}, nopSyncer{})
	if L() != logger {
		t.Errorf("expected L() to return the just-Init'd logger")
	}
}

type nopSyncer struct{}

func (nopSyncer) Write(p []byte) (int, error) { return len(p), nil }
func (nopSyncer) Sync() error                 { return nil }
