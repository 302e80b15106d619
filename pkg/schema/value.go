package schema

import "fmt"

// ValueKind tags the concrete variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
)

// Value is the narrow runtime value type flowing through key/value
// extraction. It mirrors the handful of primitive shapes the schema and
// codec layers need to reason about; richer expression evaluation is an
// external concern this package does not implement.
type Value struct {
	Kind ValueKind
	B    bool
	I    int64
	F    float64
	S    string
	L    []Value
}

func Null() Value                { return Value{Kind: KindNull} }
func Bool(b bool) Value          { return Value{Kind: KindBool, B: b} }
func Int(i int64) Value          { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value      { return Value{Kind: KindFloat, F: f} }
func Str(s string) Value         { return Value{Kind: KindString, S: s} }
func List(vs ...Value) Value     { return Value{Kind: KindList, L: vs} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.B)
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindString:
		return v.S
	case KindList:
		return fmt.Sprintf("%v", v.L)
	default:
		return "?"
	}
}

// MatchesTyping reports whether v is an acceptable value for t: either its
// kind lines up with a primitive/list typing, or t is nullable and v is
// Null. List typings are checked recursively, element by element.
func (v Value) MatchesTyping(t Typing) bool {
	if v.IsNull() {
		return t.IsNullable()
	}
	if t.IsList() {
		if v.Kind != KindList {
			return false
		}
		elem := t.Elem()
		for _, e := range v.L {
			if !e.MatchesTyping(elem) {
				return false
			}
		}
		return true
	}
	name, ok := t.PrimitiveName()
	if !ok {
		return false
	}
	switch name {
	case "Int":
		return v.Kind == KindInt
	case "Float":
		return v.Kind == KindFloat
	case "String":
		return v.Kind == KindString
	case "Bool":
		return v.Kind == KindBool
	default:
		// An unrecognized primitive name resolved from the environment is
		// accepted structurally; narrower checking belongs to whatever
		// registered the primitive.
		return true
	}
}
