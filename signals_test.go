package pantry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitArchiveOpened(_ *testing.T) {
	// Should not panic
	emitArchiveOpened(context.Background(), "application/json", "save")
}

func TestEmitArchiveClosed_Success(_ *testing.T) {
	emitArchiveClosed(context.Background(), "application/json", "save", 3, nil)
}

func TestEmitArchiveClosed_Error(_ *testing.T) {
	emitArchiveClosed(context.Background(), "application/json", "load", 0, errors.New("test error"))
}

func TestEmitSaveStart(_ *testing.T) {
	emitSaveStart(context.Background(), "application/json", 2)
}

func TestEmitSaveComplete_Success(_ *testing.T) {
	emitSaveComplete(context.Background(), "application/json", 2, 1, 100*time.Millisecond, nil)
}

func TestEmitSaveComplete_Error(_ *testing.T) {
	emitSaveComplete(context.Background(), "application/json", 2, 0, 100*time.Millisecond, errors.New("test error"))
}

func TestEmitLoadStart(_ *testing.T) {
	emitLoadStart(context.Background(), "application/xml", 1)
}

func TestEmitLoadComplete_Success(_ *testing.T) {
	emitLoadComplete(context.Background(), "application/xml", 1, 4, 100*time.Millisecond, nil)
}

func TestEmitLoadComplete_Error(_ *testing.T) {
	emitLoadComplete(context.Background(), "application/xml", 1, 0, 100*time.Millisecond, errors.New("test error"))
}

func TestEmitClassRegistered(_ *testing.T) {
	emitClassRegistered(context.Background(), "circle", "*shapes.Circle")
}

func TestSignalVariables(t *testing.T) {
	// Verify signals are properly initialized
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalArchiveOpened", SignalArchiveOpened},
		{"SignalArchiveClosed", SignalArchiveClosed},
		{"SignalSaveStart", SignalSaveStart},
		{"SignalSaveComplete", SignalSaveComplete},
		{"SignalLoadStart", SignalLoadStart},
		{"SignalLoadComplete", SignalLoadComplete},
		{"SignalClassRegistered", SignalClassRegistered},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyContentType", KeyContentType},
		{"KeyDirection", KeyDirection},
		{"KeyClassID", KeyClassID},
		{"KeyTypeName", KeyTypeName},
		{"KeyValueCount", KeyValueCount},
		{"KeyObjectCount", KeyObjectCount},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
