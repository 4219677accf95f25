package pantry

import (
	"context"
	"encoding"
	"fmt"
	"reflect"
	"time"
	"unsafe"
)

// OArchive writes values to a format backend.
//
// An OArchive is a single-pass cursor: values appear in the document in the order
// they are saved. It is not safe for concurrent use. After the first error the
// archive refuses further values and returns that error.
type OArchive struct {
	cursor
	w        Writer
	registry *Registry
	objects  map[objectKey]uint32
	nextID   uint32
	err      error
	closed   bool
}

// objectKey identifies a pointee by address and pointer type. The address is held
// as an unsafe.Pointer so tracked objects stay alive, and their addresses cannot be
// reused, for the life of the archive.
type objectKey struct {
	addr unsafe.Pointer
	typ  reflect.Type
}

// NewOArchive returns an OArchive writing to w.
func NewOArchive(w Writer, opts ...Option) *OArchive {
	cfg := newConfig(opts)
	oa := &OArchive{
		cursor:   newCursor(),
		w:        w,
		registry: cfg.registry,
		objects:  make(map[objectKey]uint32),
		nextID:   1,
	}
	emitArchiveOpened(context.Background(), w.ContentType(), "save")
	return oa
}

// Loading reports false: an OArchive only writes.
func (oa *OArchive) Loading() bool { return false }

// ContentType returns the MIME type of the backend.
func (oa *OArchive) ContentType() string { return oa.w.ContentType() }

// Registry returns the registry used by the archive.
func (oa *OArchive) Registry() *Registry { return oa.registry }

// Save writes each value as a top-level entry of the document.
func (oa *OArchive) Save(ctx context.Context, values ...any) error {
	if oa.closed {
		return ErrClosed
	}

	start := time.Now()
	emitSaveStart(ctx, oa.ContentType(), len(values))

	err := oa.Process(values...)
	emitSaveComplete(ctx, oa.ContentType(), len(values), len(oa.objects), time.Since(start), err)
	return err
}

// Process writes values as members of the innermost object.
// Hooks call it to write their members.
func (oa *OArchive) Process(values ...any) error {
	if oa.err != nil {
		return oa.err
	}
	if oa.closed {
		return ErrClosed
	}
	for _, v := range values {
		if err := oa.processOne(v); err != nil {
			oa.err = err
			return err
		}
	}
	return nil
}

func (oa *OArchive) processOne(v any) error {
	var explicit string
	if nvp, ok := v.(NVP); ok {
		explicit, v = nvp.Name, nvp.Value
	}

	if sa, ok := v.(selfArchiver); ok {
		name, seg := oa.member(explicit)
		oa.enter(seg)
		defer oa.leave()
		if err := sa.saveSelf(oa, name); err != nil {
			return wrapError("save", oa.where(), err, ErrIO)
		}
		return nil
	}

	if v == nil {
		_, seg := oa.member(explicit)
		return newArchiveError(ErrUnsupportedType, "save", joinPath(oa.where(), seg), fmt.Errorf("untyped nil"))
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			_, seg := oa.member(explicit)
			return newArchiveError(ErrNotPointer, "save", joinPath(oa.where(), seg), nil)
		}
		rv = rv.Elem()
	} else {
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		rv = cp
	}
	return oa.value(explicit, rv)
}

// BeginSequence opens an array of n items for hooks writing their own containers.
// Each item is then written with one Process call.
func (oa *OArchive) BeginSequence(name string, n int) error {
	if oa.err != nil {
		return oa.err
	}
	name, seg := oa.member(name)
	oa.enter(seg)
	if err := oa.w.BeginArray(name, n); err != nil {
		oa.err = wrapError("save", oa.where(), err, ErrIO)
		oa.leave()
		return oa.err
	}
	oa.open(true)
	return nil
}

// EndSequence closes the array opened by BeginSequence.
func (oa *OArchive) EndSequence() error {
	if oa.err != nil {
		return oa.err
	}
	oa.close()
	defer oa.leave()
	if err := oa.w.EndArray(); err != nil {
		oa.err = wrapError("save", oa.where(), err, ErrIO)
		return oa.err
	}
	return nil
}

// Close finishes the document. It does not close the underlying stream.
func (oa *OArchive) Close() error {
	if oa.closed {
		return nil
	}
	oa.closed = true
	err := oa.w.Close()
	if err != nil {
		err = wrapError("close", "", err, ErrIO)
	}
	emitArchiveClosed(context.Background(), oa.ContentType(), "save", len(oa.objects), err)
	return err
}

// value writes v, an addressable value, as the next member.
func (oa *OArchive) value(explicit string, v reflect.Value) error {
	name, seg := oa.member(explicit)
	oa.enter(seg)
	defer oa.leave()
	if err := oa.save(name, v); err != nil {
		return wrapError("save", oa.where(), err, ErrIO)
	}
	return nil
}

func (oa *OArchive) save(name string, v reflect.Value) error {
	t := v.Type()

	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface && v.CanAddr() && v.Addr().CanInterface() {
		handled, err := oa.saveHooks(name, v)
		if handled || err != nil {
			return err
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		return oa.w.WriteBool(name, v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return oa.w.WriteInt(name, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return oa.w.WriteUint(name, v.Uint())
	case reflect.Float32:
		return oa.w.WriteFloat(name, v.Float(), 32)
	case reflect.Float64:
		return oa.w.WriteFloat(name, v.Float(), 64)
	case reflect.Complex64, reflect.Complex128:
		return oa.saveComplex(name, v)
	case reflect.String:
		return oa.w.WriteString(name, v.String())
	case reflect.Slice:
		if t.Elem() == byteType {
			return oa.w.WriteBytes(name, v.Bytes())
		}
		return oa.saveSequence(name, v)
	case reflect.Array:
		return oa.saveSequence(name, v)
	case reflect.Map:
		return oa.saveMap(name, v)
	case reflect.Struct:
		plan := planFor(t)
		if plan.opaque {
			return unarchivable(t)
		}
		return oa.saveClass(name, v, func(uint32) error {
			return oa.saveFields(v, plan)
		})
	case reflect.Ptr:
		return oa.savePointer(name, v)
	case reflect.Interface:
		return oa.savePolymorphic(name, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// saveHooks dispatches to hook interfaces. It reports whether v was handled.
func (oa *OArchive) saveHooks(name string, v reflect.Value) (bool, error) {
	ptr := v.Addr().Interface()
	saver, isSaver := ptr.(Saver)
	serializable, isSerializable := ptr.(Serializable)
	_, isLoader := ptr.(Loader)

	switch {
	case isSaver:
		if !isLoader && !isSerializable {
			return true, fmt.Errorf("%w: %s", ErrMissingLoader, v.Type())
		}
		return true, oa.saveClass(name, v, func(version uint32) error {
			return hookError(saver.SaveArchive(oa, version))
		})
	case isSerializable:
		return true, oa.saveClass(name, v, func(version uint32) error {
			return hookError(serializable.Serialize(oa, version))
		})
	case isLoader:
		return true, fmt.Errorf("%w: %s", ErrMissingSaver, v.Type())
	}

	if m, ok := ptr.(encoding.TextMarshaler); ok {
		if _, ok := ptr.(encoding.TextUnmarshaler); ok {
			text, err := m.MarshalText()
			if err != nil {
				return true, hookError(err)
			}
			return true, oa.w.WriteString(name, string(text))
		}
	}
	return false, nil
}

// saveClass writes a class-like value: an object whose first member is the version.
func (oa *OArchive) saveClass(name string, v reflect.Value, body func(version uint32) error) error {
	version := classVersion(oa.registry, v)
	if err := oa.w.BeginObject(name); err != nil {
		return err
	}
	oa.open(false)
	if err := oa.w.WriteUint("version", uint64(version)); err != nil {
		return err
	}
	if err := body(version); err != nil {
		return err
	}
	oa.close()
	return oa.w.EndObject()
}

func (oa *OArchive) saveFields(v reflect.Value, plan *structPlan) error {
	for _, field := range plan.fields {
		if err := oa.value(field.name, v.FieldByIndex(field.index)); err != nil {
			return err
		}
	}
	return nil
}

func (oa *OArchive) saveComplex(name string, v reflect.Value) error {
	bits := 64
	if v.Kind() == reflect.Complex64 {
		bits = 32
	}
	c := v.Complex()
	if err := oa.w.BeginArray(name, 2); err != nil {
		return err
	}
	if err := oa.w.WriteFloat("", real(c), bits); err != nil {
		return err
	}
	if err := oa.w.WriteFloat("", imag(c), bits); err != nil {
		return err
	}
	return oa.w.EndArray()
}

func (oa *OArchive) saveSequence(name string, v reflect.Value) error {
	n := v.Len()
	if err := oa.w.BeginArray(name, n); err != nil {
		return err
	}
	oa.open(true)
	for i := 0; i < n; i++ {
		if err := oa.value("", v.Index(i)); err != nil {
			return err
		}
	}
	oa.close()
	return oa.w.EndArray()
}

// saveMap writes a map as an array of {key, value} entries.
func (oa *OArchive) saveMap(name string, v reflect.Value) error {
	keys := sortedKeys(v)
	if err := oa.w.BeginArray(name, len(keys)); err != nil {
		return err
	}
	oa.open(true)
	t := v.Type()
	for _, k := range keys {
		key := reflect.New(t.Key()).Elem()
		key.Set(k)
		val := reflect.New(t.Elem()).Elem()
		val.Set(v.MapIndex(k))

		if err := oa.entry(key, val); err != nil {
			return err
		}
	}
	oa.close()
	return oa.w.EndArray()
}

func (oa *OArchive) entry(key, val reflect.Value) error {
	_, seg := oa.member("")
	oa.enter(seg)
	defer oa.leave()

	if err := oa.w.BeginObject(""); err != nil {
		return wrapError("save", oa.where(), err, ErrIO)
	}
	oa.open(false)
	if err := oa.value("key", key); err != nil {
		return err
	}
	if err := oa.value("value", val); err != nil {
		return err
	}
	oa.close()
	if err := oa.w.EndObject(); err != nil {
		return wrapError("save", oa.where(), err, ErrIO)
	}
	return nil
}

// savePointer writes {id, data} for the first occurrence of a pointee and {id}
// for later ones. nil pointers are {id: 0}.
func (oa *OArchive) savePointer(name string, v reflect.Value) error {
	if err := oa.w.BeginObject(name); err != nil {
		return err
	}
	oa.open(false)

	if err := oa.pointee(v); err != nil {
		return err
	}

	oa.close()
	return oa.w.EndObject()
}

func (oa *OArchive) pointee(v reflect.Value) error {
	if v.IsNil() {
		return oa.w.WriteUint("id", 0)
	}

	key := objectKey{addr: v.UnsafePointer(), typ: v.Type()}
	if id, ok := oa.objects[key]; ok {
		return oa.w.WriteUint("id", uint64(id))
	}

	// Record the slot before writing the pointee so cycles become back-references.
	id := oa.nextID
	oa.nextID++
	oa.objects[key] = id
	if err := oa.w.WriteUint("id", uint64(id)); err != nil {
		return err
	}

	if v.CanInterface() {
		if cs, ok := v.Interface().(ConstructSaver); ok {
			if err := oa.saveConstruct(cs); err != nil {
				return err
			}
			if !hasMemberHooks(v) {
				return nil
			}
		}
	}
	return oa.value("data", v.Elem())
}

func (oa *OArchive) saveConstruct(cs ConstructSaver) error {
	oa.enter("construct")
	defer oa.leave()

	if err := oa.w.BeginObject("construct"); err != nil {
		return err
	}
	oa.open(false)
	if err := cs.SaveConstruct(oa); err != nil {
		return hookError(err)
	}
	oa.close()
	return oa.w.EndObject()
}

// savePolymorphic writes an interface value as {class, data}.
func (oa *OArchive) savePolymorphic(name string, v reflect.Value) error {
	if err := oa.w.BeginObject(name); err != nil {
		return err
	}
	oa.open(false)

	if v.IsNil() {
		if err := oa.w.WriteString("class", ""); err != nil {
			return err
		}
	} else {
		dyn := v.Elem()
		classID, ok := oa.registry.ClassID(dyn.Type())
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnregisteredClass, dyn.Type())
		}
		if err := oa.w.WriteString("class", classID); err != nil {
			return err
		}
		cp := reflect.New(dyn.Type()).Elem()
		cp.Set(dyn)
		if err := oa.value("data", cp); err != nil {
			return err
		}
	}

	oa.close()
	return oa.w.EndObject()
}

func joinPath(path, segment string) string {
	if path == "" || (len(segment) > 0 && segment[0] == '[') {
		return path + segment
	}
	return path + "." + segment
}
