package pantry

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError_Is(t *testing.T) {
	err := newConfigError(ErrDuplicateClass, "circle", "*shapes.Circle")

	if !errors.Is(err, ErrDuplicateClass) {
		t.Error("ConfigError should unwrap to ErrDuplicateClass")
	}

	if errors.Is(err, ErrInvalidName) {
		t.Error("ConfigError should not match ErrInvalidName")
	}
}

func TestConfigError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "full context",
			err:  newConfigError(ErrDuplicateClass, "circle", "*shapes.Circle"),
			want: `duplicate class "circle" (type *shapes.Circle)`,
		},
		{
			name: "class only",
			err:  &ConfigError{Err: ErrDuplicateClass, ClassID: "circle"},
			want: `duplicate class "circle"`,
		},
		{
			name: "type only",
			err:  &ConfigError{Err: ErrUnsupportedType, Type: "chan int"},
			want: `unsupported type (type chan int)`,
		},
		{
			name: "bare",
			err:  &ConfigError{Err: ErrInvalidName},
			want: `invalid name`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArchiveError_Is(t *testing.T) {
	cause := errors.New("disk full")
	err := newArchiveError(ErrIO, "save", "value0.d", cause)

	if !errors.Is(err, ErrIO) {
		t.Error("ArchiveError should unwrap to ErrIO")
	}
	if !errors.Is(err, cause) {
		t.Error("ArchiveError should unwrap to its cause")
	}
	if errors.Is(err, ErrMalformed) {
		t.Error("ArchiveError should not match ErrMalformed")
	}

	var ae *ArchiveError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find *ArchiveError")
	}
	if ae.Path != "value0.d" {
		t.Errorf("Path = %q, want %q", ae.Path, "value0.d")
	}
}

func TestArchiveError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "with cause",
			err:  newArchiveError(ErrIO, "save", "value0", errors.New("disk full")),
			want: "save value0: stream error: disk full",
		},
		{
			name: "cause wraps sentinel",
			err:  newArchiveError(ErrUnknownClass, "load", "value0.focus", fmt.Errorf("%w: %q", ErrUnknownClass, "hexagon")),
			want: `load value0.focus: unknown class: "hexagon"`,
		},
		{
			name: "no path",
			err:  newArchiveError(ErrMalformed, "close", "", nil),
			want: "close: malformed input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewFormatError("application/json", cause)

	if !errors.Is(err, ErrMalformed) {
		t.Error("FormatError should unwrap to ErrMalformed")
	}

	want := "malformed input: application/json: unexpected EOF"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &FormatError{ContentType: "text/plain"}
	if got := bare.Error(); got != "malformed input: text/plain" {
		t.Errorf("Error() = %q, want %q", got, "malformed input: text/plain")
	}
}

func TestMissingField(t *testing.T) {
	err := MissingField("radius")
	if !errors.Is(err, ErrMissingField) {
		t.Error("MissingField() should wrap ErrMissingField")
	}
	if got := err.Error(); got != `missing field "radius"` {
		t.Errorf("Error() = %q, want %q", got, `missing field "radius"`)
	}
}

func TestWrapError(t *testing.T) {
	t.Run("keeps archive errors", func(t *testing.T) {
		inner := newArchiveError(ErrOverflow, "load", "value0.x", nil)
		if got := wrapError("load", "value0", inner, ErrMalformed); got != inner {
			t.Errorf("wrapError() = %v, want the original error", got)
		}
	})

	t.Run("classifies known sentinels", func(t *testing.T) {
		err := wrapError("load", "value0", MissingField("x"), ErrMalformed)
		var ae *ArchiveError
		if !errors.As(err, &ae) {
			t.Fatal("wrapError() should return *ArchiveError")
		}
		if ae.Err != ErrMissingField {
			t.Errorf("Err = %v, want ErrMissingField", ae.Err)
		}
	})

	t.Run("falls back", func(t *testing.T) {
		err := wrapError("save", "value1", errors.New("broken pipe"), ErrIO)
		if !errors.Is(err, ErrIO) {
			t.Errorf("wrapError() = %v, want ErrIO", err)
		}
	})
}

func TestHookError(t *testing.T) {
	if hookError(nil) != nil {
		t.Error("hookError(nil) should be nil")
	}

	cause := errors.New("bad state")
	err := hookError(cause)
	if !errors.Is(err, ErrHook) || !errors.Is(err, cause) {
		t.Errorf("hookError() = %v, want ErrHook wrapping the cause", err)
	}

	ae := newArchiveError(ErrOverflow, "load", "x", nil)
	if hookError(ae) != ae {
		t.Error("hookError() should pass archive errors through")
	}
}
