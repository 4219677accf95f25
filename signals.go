package pantry

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for archive events.
var (
	SignalArchiveOpened   = capitan.NewSignal("pantry.archive.opened", "Archive bound to a format backend")
	SignalArchiveClosed   = capitan.NewSignal("pantry.archive.closed", "Archive finished")
	SignalSaveStart       = capitan.NewSignal("pantry.save.start", "Save operation beginning")
	SignalSaveComplete    = capitan.NewSignal("pantry.save.complete", "Save operation finished")
	SignalLoadStart       = capitan.NewSignal("pantry.load.start", "Load operation beginning")
	SignalLoadComplete    = capitan.NewSignal("pantry.load.complete", "Load operation finished")
	SignalClassRegistered = capitan.NewSignal("pantry.class.registered", "Class ID registered")
)

// Keys for typed event data.
var (
	KeyContentType = capitan.NewStringKey("content_type")
	KeyDirection   = capitan.NewStringKey("direction")
	KeyClassID     = capitan.NewStringKey("class_id")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyValueCount  = capitan.NewIntKey("value_count")
	KeyObjectCount = capitan.NewIntKey("object_count")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitArchiveOpened emits an event when an archive is created.
func emitArchiveOpened(ctx context.Context, contentType, direction string) {
	capitan.Emit(ctx, SignalArchiveOpened,
		KeyContentType.Field(contentType),
		KeyDirection.Field(direction),
	)
}

// emitArchiveClosed emits an event when an archive is closed.
func emitArchiveClosed(ctx context.Context, contentType, direction string, objects int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyDirection.Field(direction),
		KeyObjectCount.Field(objects),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalArchiveClosed, fields...)
	} else {
		capitan.Emit(ctx, SignalArchiveClosed, fields...)
	}
}

// emitSaveStart emits an event when save begins.
func emitSaveStart(ctx context.Context, contentType string, values int) {
	capitan.Emit(ctx, SignalSaveStart,
		KeyContentType.Field(contentType),
		KeyValueCount.Field(values),
	)
}

// emitSaveComplete emits an event when save finishes.
func emitSaveComplete(ctx context.Context, contentType string, values, objects int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyValueCount.Field(values),
		KeyObjectCount.Field(objects),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSaveComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSaveComplete, fields...)
	}
}

// emitLoadStart emits an event when load begins.
func emitLoadStart(ctx context.Context, contentType string, values int) {
	capitan.Emit(ctx, SignalLoadStart,
		KeyContentType.Field(contentType),
		KeyValueCount.Field(values),
	)
}

// emitLoadComplete emits an event when load finishes.
func emitLoadComplete(ctx context.Context, contentType string, values, objects int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyValueCount.Field(values),
		KeyObjectCount.Field(objects),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalLoadComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalLoadComplete, fields...)
	}
}

// emitClassRegistered emits an event when a class ID is added to a registry.
func emitClassRegistered(ctx context.Context, classID, typeName string) {
	capitan.Emit(ctx, SignalClassRegistered,
		KeyClassID.Field(classID),
		KeyTypeName.Field(typeName),
	)
}
