// Package pantry archives Go object graphs into several wire formats and restores them.
//
// The package offers a pair of archives, OArchive for writing and IArchive for
// reading, driven by a format backend (Writer and Reader). Archives walk values by
// reflection or through hook interfaces, preserve pointer identity, rebuild the
// dynamic type of interface values through an explicit Registry, and tag every
// class-like value with a version number.
//
// # Basic Usage
//
//	type Point struct {
//	    X int `pantry:"x"`
//	    Y int `pantry:"y"`
//	}
//
//	var buf bytes.Buffer
//	oa := pantry.Output(json.New(), &buf)
//	if err := oa.Save(ctx, pantry.Named("origin", &Point{1, 2})); err != nil {
//	    return err
//	}
//	if err := oa.Close(); err != nil {
//	    return err
//	}
//
//	ia, err := pantry.Input(json.New(), &buf)
//	if err != nil {
//	    return err
//	}
//	var p Point
//	err = ia.Load(ctx, pantry.Named("origin", &p))
//
// Arguments to Save, Load and Process are addresses of the values to archive.
// Save also accepts non-pointer values, which are archived by value. The order of
// Load calls must match the order of Save calls.
//
// # Hooks
//
// Types take over their own serialization by implementing one of:
//
//   - Saver and Loader: split save/load methods
//   - Serializable: one Serialize method driving both directions
//   - Versioned: supplies the class version
//   - ConstructSaver: writes constructor arguments for types rebuilt by a
//     constructor registered with RegisterConstructor
//
// Plain structs without hooks are walked field by field. Field names come from the
// `pantry:"name"` tag and default to the Go field name. `pantry:"-"` skips a field.
//
// # Pointers
//
// Every non-nil pointer is tracked by address. The first occurrence carries the
// pointee; later occurrences carry only its id, so aliases and cycles survive a round
// trip. Weak wraps a weak.Pointer so it resolves against the same table.
//
// # Polymorphism
//
// Interface-typed values are written together with the class ID of their dynamic
// type. The ID must be registered on the Registry passed with WithRegistry:
//
//	reg := pantry.NewRegistry()
//	pantry.MustRegister[*Circle](reg, "shapes.circle")
//	oa := pantry.Output(xml.New(), w, pantry.WithRegistry(reg))
//
// # Formats
//
// The following formats are available as subpackages:
//
//   - json - pretty printed JSON (application/json)
//   - xml - XML with a <serialization> root (application/xml)
//   - yaml - YAML (application/yaml)
//   - binary - compact varint binary (application/octet-stream)
//   - text - space separated tokens (text/plain)
//   - msgpack - MessagePack (application/msgpack)
//   - bson - one BSON document (application/bson)
//
// The seal subpackage wraps any format with authenticated encryption.
package pantry

// Writer is the format backend of an OArchive.
//
// Names are the member names of the enclosing object. Array items receive an empty
// name; positional formats ignore names entirely.
type Writer interface {
	// ContentType returns the MIME type of the produced document.
	ContentType() string

	// BeginObject opens a named group of members.
	BeginObject(name string) error

	// EndObject closes the innermost object.
	EndObject() error

	// BeginArray opens a sequence of size unnamed items.
	BeginArray(name string, size int) error

	// EndArray closes the innermost array.
	EndArray() error

	WriteBool(name string, v bool) error
	WriteInt(name string, v int64) error
	WriteUint(name string, v uint64) error

	// WriteFloat writes v with the precision of the given bit width (32 or 64).
	WriteFloat(name string, v float64, bits int) error

	WriteString(name string, v string) error
	WriteBytes(name string, v []byte) error

	// Close finishes the document and flushes buffered output.
	// It does not close the underlying io.Writer.
	Close() error
}

// Reader is the format backend of an IArchive.
//
// Self-describing readers look members up by name; positional readers consume
// values in order and ignore names.
type Reader interface {
	// ContentType returns the MIME type of the consumed document.
	ContentType() string

	BeginObject(name string) error
	EndObject() error

	// BeginArray opens a sequence and returns its size.
	BeginArray(name string) (int, error)
	EndArray() error

	ReadBool(name string) (bool, error)
	ReadInt(name string) (int64, error)
	ReadUint(name string) (uint64, error)
	ReadFloat(name string, bits int) (float64, error)
	ReadString(name string) (string, error)
	ReadBytes(name string) ([]byte, error)

	// Close releases the reader.
	Close() error
}

// Archive is the view of an OArchive or IArchive handed to Serializable types.
type Archive interface {
	// Loading reports whether the archive restores values.
	Loading() bool

	// Process saves or loads the values, depending on the direction of the archive.
	// Values are addresses; wrap them with Named to give them a member name.
	Process(values ...any) error

	// ContentType returns the MIME type of the underlying format.
	ContentType() string
}
