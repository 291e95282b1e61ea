package bencode

import (
	"fmt"
	"math"
	"reflect"
)

// ToNative converts v to plain Go values: byte strings become string,
// integers int64, lists []interface{} and dicts map[string]interface{}.
// These are the shapes produced by reflection-free bencode decoders such as
// github.com/jackpal/bencode-go. Dict order is lost in the map.
func ToNative(v Value) interface{} {
	switch v.kind {
	case IntegerKind:
		return v.num
	case ListKind:
		list := make([]interface{}, len(v.list))
		for i, item := range v.list {
			list[i] = ToNative(item)
		}
		return list
	case DictKind:
		dict := make(map[string]interface{}, len(v.dict))
		for _, p := range v.dict {
			dict[p.Key] = ToNative(p.Value)
		}
		return dict
	default:
		return v.str
	}
}

// FromNative converts plain Go values to a Value. It accepts Value, string,
// []byte, the integer types, slices and arrays of convertible values, and
// maps keyed by string.
func FromNative(x interface{}) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case string:
		return NewString(t), nil
	case []byte:
		return NewBytes(t), nil
	case int:
		return NewInteger(int64(t)), nil
	case int64:
		return NewInteger(t), nil
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: ListKind, list: items}, nil
	case map[string]interface{}:
		pairs := make([]Pair, 0, len(t))
		for k, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
		return NewDict(pairs...)
	case nil:
		return Value{}, fmt.Errorf("bencode: cannot convert nil")
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInteger(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d", IntegerOverflow, u)
		}
		return NewInteger(int64(u)), nil
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return NewBytes(b), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			v, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: ListKind, list: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("bencode: cannot convert map with %s keys", rv.Type().Key())
		}
		pairs := make([]Pair, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			v, err := FromNative(iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair{Key: iter.Key().String(), Value: v})
		}
		return NewDict(pairs...)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Value{}, fmt.Errorf("bencode: cannot convert nil %s", rv.Type())
		}
		return FromNative(rv.Elem().Interface())
	}
	return Value{}, fmt.Errorf("bencode: cannot convert %s", rv.Type())
}
