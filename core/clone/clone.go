// Package clone copies the dynamic values carried by configurations and
// instance states.
//
// Maps and slices are rebuilt recursively so a copy never aliases the
// caller's containers. Every other value, including structs with unexported
// fields such as time.Time, is copied by assignment and kept intact.
package clone

import "reflect"

// Value returns a copy of v with its maps and slices rebuilt.
func Value(v any) any {
	if v == nil {
		return nil
	}
	return copyValue(reflect.ValueOf(v)).Interface()
}

// Map returns a copy of m with every entry passed through Value. A nil map
// stays nil.
func Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Value(v)
	}
	return out
}

func copyValue(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(copyValue(rv.Elem()))
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), copyValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := range rv.Len() {
			out.Index(i).Set(copyValue(rv.Index(i)))
		}
		return out
	default:
		return rv
	}
}
