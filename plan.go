package pantry

import (
	"reflect"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

// tagName is the struct tag carrying member names.
const tagName = "pantry"

func init() {
	sentinel.Tag(tagName)
}

// structPlan lists the archived fields of a struct type in declaration order.
type structPlan struct {
	typeName string
	fields   []fieldPlan
	opaque   bool // fields exist but none is exported
}

// fieldPlan describes one archived field.
type fieldPlan struct {
	index []int  // reflect.Value.FieldByIndex access path
	name  string // member name
}

var (
	plans   = make(map[reflect.Type]*structPlan)
	plansMu sync.RWMutex
)

// Prepare scans T ahead of its first use so the first archive touching it does
// not pay for the scan. Non-struct types are ignored.
func Prepare[T any]() {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return
	}
	meta := sentinel.Scan[T]()
	if !describes(meta, rt) {
		meta = scanType(rt)
	}
	plan := buildPlan(rt, meta)

	plansMu.Lock()
	defer plansMu.Unlock()
	plans[rt] = plan
}

// ResetPlans clears the struct plan cache.
// This is primarily useful for test isolation.
func ResetPlans() {
	plansMu.Lock()
	defer plansMu.Unlock()
	plans = make(map[reflect.Type]*structPlan)
}

// planFor returns a cached plan or builds a new one.
func planFor(rt reflect.Type) *structPlan {
	// Fast path: read-lock cache check
	plansMu.RLock()
	if cached, ok := plans[rt]; ok {
		plansMu.RUnlock()
		return cached
	}
	plansMu.RUnlock()

	// Slow path: build and cache with write-lock
	plansMu.Lock()
	defer plansMu.Unlock()

	// Double-check pattern
	if cached, ok := plans[rt]; ok {
		return cached
	}

	plan := buildPlan(rt, scanType(rt))
	plans[rt] = plan
	return plan
}

// buildPlan turns scanned metadata into field plans.
func buildPlan(rt reflect.Type, meta sentinel.Metadata) *structPlan {
	plan := &structPlan{
		typeName: rt.String(),
		fields:   make([]fieldPlan, 0, len(meta.Fields)),
		opaque:   rt.NumField() > 0 && len(meta.Fields) == 0,
	}

	for _, field := range meta.Fields {
		name, skip := memberName(field)
		if skip {
			continue
		}
		plan.fields = append(plan.fields, fieldPlan{
			index: append([]int{}, field.Index...),
			name:  name,
		})
	}
	return plan
}

// memberName reads the member name from the pantry tag.
func memberName(field sentinel.FieldMetadata) (string, bool) {
	tag, ok := field.Tags[tagName]
	if !ok {
		return field.Name, false
	}
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return field.Name, false
}

// describes reports whether meta was extracted from rt. Sentinel caches by bare
// type name, so a type of the same name from another package can occupy the slot.
func describes(meta sentinel.Metadata, rt reflect.Type) bool {
	return rt.Name() != "" && meta.TypeName == rt.Name() && meta.PackageName == rt.PkgPath()
}

// scanType returns sentinel metadata for rt, scanning it directly when sentinel
// has not seen the type.
func scanType(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.Name()); ok && describes(meta, rt) {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val := sf.Tag.Get(tagName); val != "" {
			fm.Tags[tagName] = val
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta
}
