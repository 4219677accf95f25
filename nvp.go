package pantry

// NVP is a name-value pair. Self-describing formats use the name as the member
// name; positional formats ignore it.
type NVP struct {
	Name  string
	Value any
}

// Named pairs a member name with the address of a value.
func Named(name string, v any) NVP {
	return NVP{Name: name, Value: v}
}
