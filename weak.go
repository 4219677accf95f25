package pantry

import (
	"reflect"
	"weak"
)

// Weak wraps a weak pointer for Save, Load and Process.
//
// A live target is archived through the shared-object table, so it resolves to the
// same object as strong pointers saved in the same archive. A collected target is
// archived as nil. On load, the weak pointer refers to the object rebuilt for its id;
// it only stays alive while a strong pointer loaded alongside it holds it.
func Weak[T any](p *weak.Pointer[T]) any {
	return weakRef[T]{p: p}
}

type weakRef[T any] struct {
	p *weak.Pointer[T]
}

func (w weakRef[T]) saveSelf(oa *OArchive, name string) error {
	var target *T
	if w.p != nil {
		target = w.p.Value()
	}
	return oa.savePointer(name, reflect.ValueOf(&target).Elem())
}

func (w weakRef[T]) loadSelf(ia *IArchive, name string) error {
	if w.p == nil {
		return ErrNotPointer
	}
	var target *T
	if err := ia.loadPointer(name, reflect.ValueOf(&target).Elem()); err != nil {
		return err
	}
	if target == nil {
		*w.p = weak.Pointer[T]{}
		return nil
	}
	*w.p = weak.Make(target)
	return nil
}
