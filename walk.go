package pantry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	byteType           = reflect.TypeFor[byte]()
	constructSaverType = reflect.TypeFor[ConstructSaver]()
)

// selfArchiver is implemented by wrappers that write and read themselves without
// the class envelope, such as Weak.
type selfArchiver interface {
	saveSelf(oa *OArchive, name string) error
	loadSelf(ia *IArchive, name string) error
}

// classVersion returns the current version of v's type: Versioned first, then the
// registry, then 0.
func classVersion(r *Registry, v reflect.Value) uint32 {
	if v.CanAddr() && v.Addr().CanInterface() {
		if vv, ok := v.Addr().Interface().(Versioned); ok {
			return vv.ArchiveVersion()
		}
	}
	if version, ok := r.version(v.Type()); ok {
		return version
	}
	return 0
}

// hasMemberHooks reports whether the pointee of p archives its own members.
func hasMemberHooks(p reflect.Value) bool {
	if !p.CanInterface() {
		return false
	}
	switch p.Interface().(type) {
	case Saver, Loader, Serializable:
		return true
	}
	return false
}

// hookError marks an error returned by user code, keeping archive errors intact.
func hookError(err error) error {
	if err == nil {
		return nil
	}
	var ae *ArchiveError
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrHook, err)
}

// unarchivable reports a struct whose state lives only in unexported fields.
func unarchivable(t reflect.Type) error {
	if t.PkgPath() == "weak" {
		return fmt.Errorf("%w: %s cannot be a plain member, archive it with Weak from a hook", ErrUnsupportedType, t)
	}
	return fmt.Errorf("%w: %s has no exported fields", ErrUnsupportedType, t)
}

// sortedKeys returns the keys of a map, ordered when the key kind has a natural order.
func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	if len(keys) < 2 {
		return keys
	}

	var less func(a, b reflect.Value) bool
	switch m.Type().Key().Kind() {
	case reflect.String:
		less = func(a, b reflect.Value) bool { return a.String() < b.String() }
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		less = func(a, b reflect.Value) bool { return a.Int() < b.Int() }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		less = func(a, b reflect.Value) bool { return a.Uint() < b.Uint() }
	case reflect.Float32, reflect.Float64:
		less = func(a, b reflect.Value) bool { return a.Float() < b.Float() }
	case reflect.Bool:
		less = func(a, b reflect.Value) bool { return !a.Bool() && b.Bool() }
	default:
		return keys
	}

	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}
