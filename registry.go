package pantry

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// Registry maps class IDs to concrete types for interface-typed values, and holds
// class versions and constructors set outside the types themselves.
//
// A Registry is built at program start and handed to archives with WithRegistry.
// Both sides of a round trip must register the same IDs. Registries are safe for
// concurrent use; archives only read from them.
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]reflect.Type
	byType   map[reflect.Type]string
	versions map[reflect.Type]uint32
	ctors    map[reflect.Type]constructor
}

// constructor rebuilds a pointee from construct data and returns a pointer to it.
type constructor func(ia *IArchive) (reflect.Value, error)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]reflect.Type),
		byType:   make(map[reflect.Type]string),
		versions: make(map[reflect.Type]uint32),
		ctors:    make(map[reflect.Type]constructor),
	}
}

// Register maps classID to the dynamic type of sample.
// Registering the same pair twice is a no-op.
func (r *Registry) Register(classID string, sample any) error {
	if sample == nil {
		return newConfigError(ErrUnsupportedType, classID, "nil")
	}
	return r.register(classID, reflect.TypeOf(sample))
}

// Register maps classID to T. T is usually a pointer type such as *Circle.
func Register[T any](r *Registry, classID string) error {
	return r.register(classID, reflect.TypeFor[T]())
}

// MustRegister is like Register but panics on error.
// It is meant for registrations performed while wiring a program.
func MustRegister[T any](r *Registry, classID string) {
	if err := Register[T](r, classID); err != nil {
		panic(err)
	}
}

func (r *Registry) register(classID string, typ reflect.Type) error {
	if classID == "" {
		return newConfigError(ErrInvalidName, classID, typ.String())
	}

	r.mu.Lock()
	if existing, ok := r.byID[classID]; ok {
		r.mu.Unlock()
		if existing == typ {
			return nil
		}
		return newConfigError(ErrDuplicateClass, classID, typ.String())
	}
	if id, ok := r.byType[typ]; ok {
		r.mu.Unlock()
		return newConfigError(ErrDuplicateClass, id, typ.String())
	}
	r.byID[classID] = typ
	r.byType[typ] = classID
	r.mu.Unlock()

	emitClassRegistered(context.Background(), classID, typ.String())
	return nil
}

// SetVersion sets the class version of T for types that do not implement Versioned.
func SetVersion[T any](r *Registry, version uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[reflect.TypeFor[T]()] = version
}

// RegisterConstructor installs the load side of the construct-data hook for T.
// fn runs with the archive positioned on the data written by T's SaveConstruct
// and returns the new object. An error from fn aborts the load with ErrConstruct.
func RegisterConstructor[T any](r *Registry, fn func(ia *IArchive) (*T, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[reflect.TypeFor[T]()] = func(ia *IArchive) (reflect.Value, error) {
		p, err := fn(ia)
		if err != nil {
			return reflect.Value{}, err
		}
		if p == nil {
			return reflect.Value{}, errors.New("constructor returned nil")
		}
		return reflect.ValueOf(p), nil
	}
}

// ClassID returns the class ID registered for typ.
func (r *Registry) ClassID(typ reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byType[typ]
	return id, ok
}

// Type returns the type registered under classID.
func (r *Registry) Type(classID string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	typ, ok := r.byID[classID]
	return typ, ok
}

func (r *Registry) version(typ reflect.Type) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.versions[typ]
	return v, ok
}

func (r *Registry) constructor(typ reflect.Type) (constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.ctors[typ]
	return fn, ok
}
