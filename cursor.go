package pantry

import (
	"errors"
	"strconv"
	"strings"
)

// cursor tracks the position of an archive inside the document: the enclosing
// objects and arrays, their positional counters, and the path used in errors.
type cursor struct {
	frames []frame
	path   []string
}

// frame is one open object or array.
type frame struct {
	array bool
	next  int // positional counter: next valueN name, or next item index
}

func newCursor() cursor {
	return cursor{frames: []frame{{}}}
}

// member resolves the name of the next value in the innermost frame and returns
// it with the path segment for that value. Unnamed object members get positional
// names; array items are unnamed.
func (c *cursor) member(explicit string) (name, segment string) {
	f := &c.frames[len(c.frames)-1]
	if f.array {
		segment = "[" + strconv.Itoa(f.next) + "]"
		f.next++
		return "", segment
	}
	if explicit != "" {
		return explicit, explicit
	}
	name = "value" + strconv.Itoa(f.next)
	f.next++
	return name, name
}

func (c *cursor) open(array bool) {
	c.frames = append(c.frames, frame{array: array})
}

func (c *cursor) close() {
	if len(c.frames) > 1 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

func (c *cursor) enter(segment string) {
	c.path = append(c.path, segment)
}

func (c *cursor) leave() {
	if len(c.path) > 0 {
		c.path = c.path[:len(c.path)-1]
	}
}

// where returns the dotted path of the current value.
func (c *cursor) where() string {
	var b strings.Builder
	for i, seg := range c.path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// knownErrors are the sentinels preserved when wrapping backend errors.
var knownErrors = []error{
	ErrUnsupportedType,
	ErrNotPointer,
	ErrMalformed,
	ErrMissingField,
	ErrSizeMismatch,
	ErrOverflow,
	ErrUnsupportedVersion,
	ErrUnregisteredClass,
	ErrUnknownClass,
	ErrClassMismatch,
	ErrInvalidPointer,
	ErrPointerType,
	ErrMissingConstructor,
	ErrConstruct,
	ErrMissingLoader,
	ErrMissingSaver,
	ErrInvalidName,
	ErrHook,
	ErrClosed,
}

// wrapError attaches op and path to err unless it already carries them.
func wrapError(op, path string, err, fallback error) error {
	var ae *ArchiveError
	if errors.As(err, &ae) {
		return err
	}
	for _, sentinel := range knownErrors {
		if errors.Is(err, sentinel) {
			return newArchiveError(sentinel, op, path, err)
		}
	}
	return newArchiveError(fallback, op, path, err)
}
