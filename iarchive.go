package pantry

import (
	"context"
	"encoding"
	"fmt"
	"reflect"
	"time"
)

// maxPrealloc bounds the capacity reserved from a stored length before the
// items are actually read.
const maxPrealloc = 1024

// IArchive restores values from a format backend.
//
// Values must be loaded in the order they were saved. An IArchive is not safe for
// concurrent use. After the first error the archive refuses further values and
// returns that error.
type IArchive struct {
	cursor
	r        Reader
	registry *Registry
	objects  []reflect.Value // slot table: objects[id-1]
	err      error
	closed   bool
}

// NewIArchive returns an IArchive reading from r.
func NewIArchive(r Reader, opts ...Option) *IArchive {
	cfg := newConfig(opts)
	ia := &IArchive{
		cursor:   newCursor(),
		r:        r,
		registry: cfg.registry,
	}
	emitArchiveOpened(context.Background(), r.ContentType(), "load")
	return ia
}

// Loading reports true: an IArchive only reads.
func (ia *IArchive) Loading() bool { return true }

// ContentType returns the MIME type of the backend.
func (ia *IArchive) ContentType() string { return ia.r.ContentType() }

// Registry returns the registry used by the archive.
func (ia *IArchive) Registry() *Registry { return ia.registry }

// Load reads the next top-level entries of the document into ptrs.
func (ia *IArchive) Load(ctx context.Context, ptrs ...any) error {
	if ia.closed {
		return ErrClosed
	}

	start := time.Now()
	emitLoadStart(ctx, ia.ContentType(), len(ptrs))

	err := ia.Process(ptrs...)
	emitLoadComplete(ctx, ia.ContentType(), len(ptrs), len(ia.objects), time.Since(start), err)
	return err
}

// Process reads the next members of the innermost object into ptrs.
// Hooks call it to read their members.
func (ia *IArchive) Process(ptrs ...any) error {
	if ia.err != nil {
		return ia.err
	}
	if ia.closed {
		return ErrClosed
	}
	for _, p := range ptrs {
		if err := ia.processOne(p); err != nil {
			ia.err = err
			return err
		}
	}
	return nil
}

func (ia *IArchive) processOne(p any) error {
	var explicit string
	if nvp, ok := p.(NVP); ok {
		explicit, p = nvp.Name, nvp.Value
	}

	if sa, ok := p.(selfArchiver); ok {
		name, seg := ia.member(explicit)
		ia.enter(seg)
		defer ia.leave()
		if err := sa.loadSelf(ia, name); err != nil {
			return wrapError("load", ia.where(), err, ErrMalformed)
		}
		return nil
	}

	rv := reflect.ValueOf(p)
	if p == nil || rv.Kind() != reflect.Ptr || rv.IsNil() {
		_, seg := ia.member(explicit)
		return newArchiveError(ErrNotPointer, "load", joinPath(ia.where(), seg), fmt.Errorf("got %T", p))
	}
	return ia.value(explicit, rv.Elem())
}

// BeginSequence opens an array for hooks reading their own containers and returns
// its length. Each item is then read with one Process call.
func (ia *IArchive) BeginSequence(name string) (int, error) {
	if ia.err != nil {
		return 0, ia.err
	}
	name, seg := ia.member(name)
	ia.enter(seg)
	n, err := ia.r.BeginArray(name)
	if err == nil && n < 0 {
		err = fmt.Errorf("%w: negative length %d", ErrMalformed, n)
	}
	if err != nil {
		ia.err = wrapError("load", ia.where(), err, ErrMalformed)
		ia.leave()
		return 0, ia.err
	}
	ia.open(true)
	return n, nil
}

// EndSequence closes the array opened by BeginSequence.
func (ia *IArchive) EndSequence() error {
	if ia.err != nil {
		return ia.err
	}
	ia.close()
	defer ia.leave()
	if err := ia.r.EndArray(); err != nil {
		ia.err = wrapError("load", ia.where(), err, ErrMalformed)
		return ia.err
	}
	return nil
}

// Close releases the backend.
func (ia *IArchive) Close() error {
	if ia.closed {
		return nil
	}
	ia.closed = true
	err := ia.r.Close()
	if err != nil {
		err = wrapError("close", "", err, ErrMalformed)
	}
	emitArchiveClosed(context.Background(), ia.ContentType(), "load", len(ia.objects), err)
	return err
}

// value reads the next member into v, a settable value.
func (ia *IArchive) value(explicit string, v reflect.Value) error {
	name, seg := ia.member(explicit)
	ia.enter(seg)
	defer ia.leave()
	if err := ia.load(name, v); err != nil {
		return wrapError("load", ia.where(), err, ErrMalformed)
	}
	return nil
}

func (ia *IArchive) load(name string, v reflect.Value) error {
	t := v.Type()

	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface && v.CanAddr() && v.Addr().CanInterface() {
		handled, err := ia.loadHooks(name, v)
		if handled || err != nil {
			return err
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		b, err := ia.r.ReadBool(name)
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := ia.r.ReadInt(name)
		if err != nil {
			return err
		}
		if v.OverflowInt(n) {
			return fmt.Errorf("%w: %d into %s", ErrOverflow, n, t)
		}
		v.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := ia.r.ReadUint(name)
		if err != nil {
			return err
		}
		if v.OverflowUint(n) {
			return fmt.Errorf("%w: %d into %s", ErrOverflow, n, t)
		}
		v.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := ia.r.ReadFloat(name, t.Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
		return nil
	case reflect.Complex64, reflect.Complex128:
		return ia.loadComplex(name, v)
	case reflect.String:
		s, err := ia.r.ReadString(name)
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	case reflect.Slice:
		if t.Elem() == byteType {
			b, err := ia.r.ReadBytes(name)
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		}
		return ia.loadSlice(name, v)
	case reflect.Array:
		return ia.loadArray(name, v)
	case reflect.Map:
		return ia.loadMap(name, v)
	case reflect.Struct:
		plan := planFor(t)
		if plan.opaque {
			return unarchivable(t)
		}
		return ia.loadClass(name, v, func(uint32) error {
			return ia.loadFields(v, plan)
		})
	case reflect.Ptr:
		return ia.loadPointer(name, v)
	case reflect.Interface:
		return ia.loadPolymorphic(name, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// loadHooks dispatches to hook interfaces. It reports whether v was handled.
func (ia *IArchive) loadHooks(name string, v reflect.Value) (bool, error) {
	ptr := v.Addr().Interface()
	loader, isLoader := ptr.(Loader)
	serializable, isSerializable := ptr.(Serializable)
	_, isSaver := ptr.(Saver)

	switch {
	case isLoader:
		if !isSaver && !isSerializable {
			return true, fmt.Errorf("%w: %s", ErrMissingSaver, v.Type())
		}
		return true, ia.loadClass(name, v, func(version uint32) error {
			return hookError(loader.LoadArchive(ia, version))
		})
	case isSerializable:
		return true, ia.loadClass(name, v, func(version uint32) error {
			return hookError(serializable.Serialize(ia, version))
		})
	case isSaver:
		return true, fmt.Errorf("%w: %s", ErrMissingLoader, v.Type())
	}

	if u, ok := ptr.(encoding.TextUnmarshaler); ok {
		if _, ok := ptr.(encoding.TextMarshaler); ok {
			s, err := ia.r.ReadString(name)
			if err != nil {
				return true, err
			}
			return true, hookError(u.UnmarshalText([]byte(s)))
		}
	}
	return false, nil
}

// loadClass reads a class-like value and checks its stored version.
func (ia *IArchive) loadClass(name string, v reflect.Value, body func(version uint32) error) error {
	if err := ia.r.BeginObject(name); err != nil {
		return err
	}
	ia.open(false)

	stored, err := ia.r.ReadUint("version")
	if err != nil {
		return err
	}
	current := classVersion(ia.registry, v)
	if stored > uint64(current) {
		return fmt.Errorf("%w: %s stored as %d, current %d", ErrUnsupportedVersion, v.Type(), stored, current)
	}
	if err := body(uint32(stored)); err != nil {
		return err
	}

	ia.close()
	return ia.r.EndObject()
}

func (ia *IArchive) loadFields(v reflect.Value, plan *structPlan) error {
	for _, field := range plan.fields {
		if err := ia.value(field.name, v.FieldByIndex(field.index)); err != nil {
			return err
		}
	}
	return nil
}

func (ia *IArchive) loadComplex(name string, v reflect.Value) error {
	bits := 64
	if v.Kind() == reflect.Complex64 {
		bits = 32
	}
	n, err := ia.r.BeginArray(name)
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("%w: complex number with %d parts", ErrSizeMismatch, n)
	}
	re, err := ia.r.ReadFloat("", bits)
	if err != nil {
		return err
	}
	im, err := ia.r.ReadFloat("", bits)
	if err != nil {
		return err
	}
	v.SetComplex(complex(re, im))
	return ia.r.EndArray()
}

// length opens an array and validates the stored length.
func (ia *IArchive) length(name string) (int, error) {
	n, err := ia.r.BeginArray(name)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d", ErrMalformed, n)
	}
	return n, nil
}

func (ia *IArchive) loadSlice(name string, v reflect.Value) error {
	n, err := ia.length(name)
	if err != nil {
		return err
	}
	t := v.Type()
	s := reflect.MakeSlice(t, 0, min(n, maxPrealloc))

	ia.open(true)
	for i := 0; i < n; i++ {
		item := reflect.New(t.Elem()).Elem()
		if err := ia.value("", item); err != nil {
			return err
		}
		s = reflect.Append(s, item)
	}
	ia.close()

	v.Set(s)
	return ia.r.EndArray()
}

func (ia *IArchive) loadArray(name string, v reflect.Value) error {
	n, err := ia.length(name)
	if err != nil {
		return err
	}
	if n != v.Len() {
		return fmt.Errorf("%w: stored %d items, %s holds %d", ErrSizeMismatch, n, v.Type(), v.Len())
	}

	ia.open(true)
	for i := 0; i < n; i++ {
		if err := ia.value("", v.Index(i)); err != nil {
			return err
		}
	}
	ia.close()
	return ia.r.EndArray()
}

func (ia *IArchive) loadMap(name string, v reflect.Value) error {
	n, err := ia.length(name)
	if err != nil {
		return err
	}
	t := v.Type()
	m := reflect.MakeMapWithSize(t, min(n, maxPrealloc))

	ia.open(true)
	for i := 0; i < n; i++ {
		key := reflect.New(t.Key()).Elem()
		val := reflect.New(t.Elem()).Elem()
		if err := ia.entry(key, val); err != nil {
			return err
		}
		m.SetMapIndex(key, val)
	}
	ia.close()

	v.Set(m)
	return ia.r.EndArray()
}

func (ia *IArchive) entry(key, val reflect.Value) error {
	_, seg := ia.member("")
	ia.enter(seg)
	defer ia.leave()

	if err := ia.r.BeginObject(""); err != nil {
		return wrapError("load", ia.where(), err, ErrMalformed)
	}
	ia.open(false)
	if err := ia.value("key", key); err != nil {
		return err
	}
	if err := ia.value("value", val); err != nil {
		return err
	}
	ia.close()
	if err := ia.r.EndObject(); err != nil {
		return wrapError("load", ia.where(), err, ErrMalformed)
	}
	return nil
}

// loadPointer reads {id, data}. A new id reconstructs the pointee once; a known id
// aliases the object already rebuilt for it.
func (ia *IArchive) loadPointer(name string, v reflect.Value) error {
	if err := ia.r.BeginObject(name); err != nil {
		return err
	}
	ia.open(false)

	if err := ia.pointee(v); err != nil {
		return err
	}

	ia.close()
	return ia.r.EndObject()
}

func (ia *IArchive) pointee(v reflect.Value) error {
	t := v.Type()
	id, err := ia.r.ReadUint("id")
	if err != nil {
		return err
	}

	known := uint64(len(ia.objects))
	switch {
	case id == 0:
		v.Set(reflect.Zero(t))
		return nil
	case id <= known:
		obj := ia.objects[id-1]
		if !obj.IsValid() {
			return fmt.Errorf("%w: %d refers to an object still under construction", ErrInvalidPointer, id)
		}
		if obj.Type() != t {
			return fmt.Errorf("%w: id %d is %s, want %s", ErrPointerType, id, obj.Type(), t)
		}
		v.Set(obj)
		return nil
	case id != known+1:
		return fmt.Errorf("%w: %d, expected at most %d", ErrInvalidPointer, id, known+1)
	}

	if ctor, ok := ia.registry.constructor(t.Elem()); ok {
		return ia.construct(v, ctor)
	}
	if t.Implements(constructSaverType) {
		return fmt.Errorf("%w: %s", ErrMissingConstructor, t.Elem())
	}

	p := reflect.New(t.Elem())
	ia.objects = append(ia.objects, p)
	v.Set(p)
	return ia.value("data", p.Elem())
}

// construct rebuilds a pointee through its registered constructor.
func (ia *IArchive) construct(v reflect.Value, ctor constructor) error {
	t := v.Type()

	// Reserve the slot so pointers nested in the construct data keep their ids.
	slot := len(ia.objects)
	ia.objects = append(ia.objects, reflect.Value{})

	p, err := ia.constructData(ctor)
	if err != nil {
		return err
	}
	if p.Type() != t {
		return fmt.Errorf("%w: constructor built %s, want %s", ErrPointerType, p.Type(), t)
	}
	ia.objects[slot] = p
	v.Set(p)

	if hasMemberHooks(p) {
		return ia.value("data", p.Elem())
	}
	return nil
}

func (ia *IArchive) constructData(ctor constructor) (reflect.Value, error) {
	ia.enter("construct")
	defer ia.leave()

	if err := ia.r.BeginObject("construct"); err != nil {
		return reflect.Value{}, err
	}
	ia.open(false)

	p, err := ctor(ia)
	if err != nil {
		if ia.err != nil {
			// The constructor failed while reading its arguments.
			return reflect.Value{}, err
		}
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrConstruct, err)
	}

	ia.close()
	return p, ia.r.EndObject()
}

// loadPolymorphic reads {class, data} and rebuilds the registered dynamic type.
func (ia *IArchive) loadPolymorphic(name string, v reflect.Value) error {
	if err := ia.r.BeginObject(name); err != nil {
		return err
	}
	ia.open(false)

	classID, err := ia.r.ReadString("class")
	if err != nil {
		return err
	}
	if classID == "" {
		v.Set(reflect.Zero(v.Type()))
	} else {
		typ, ok := ia.registry.Type(classID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownClass, classID)
		}
		if !typ.AssignableTo(v.Type()) {
			return fmt.Errorf("%w: %s is not %s", ErrClassMismatch, typ, v.Type())
		}
		dyn := reflect.New(typ).Elem()
		if err := ia.value("data", dyn); err != nil {
			return err
		}
		v.Set(dyn)
	}

	ia.close()
	return ia.r.EndObject()
}
