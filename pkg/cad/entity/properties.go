package entity

import (
	"errors"
	"fmt"
	"sort"
)

// Property names shared across entity kinds
const (
	PropStart             = "start"
	PropEnd               = "end"
	PropCenter            = "center"
	PropRadius            = "radius"
	PropStartAngle        = "startAngle"
	PropEndAngle          = "endAngle"
	PropCCW               = "isCCW"
	PropLocation          = "location"
	PropDefinitionPoint   = "definitionPoint"
	PropMiddleOfText      = "middleOfText"
	PropTextAngle         = "textAngle"
	PropLineSpacingFactor = "lineSpacingFactor"
	PropExplicitValue     = "explicitValue"
	PropDefinitionPoint2  = "definitionPoint2"
	PropLeader            = "leader"
)

var (
	// ErrPropertyType is wrapped by every *PropertyTypeError
	ErrPropertyType = errors.New("entity: property type mismatch")
	// ErrInvalidGeometry is returned when an edit or builder would produce
	// an entity that cannot exist (e.g. a non-positive radius)
	ErrInvalidGeometry = errors.New("entity: invalid geometry")
)

// Properties maps property names to values. Values are geo.Coordinate,
// float64, string or bool depending on the property.
type Properties map[string]any

// Keys returns the property names in sorted order
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PropertyTypeError reports a property value whose Go type does not match
// the field it targets
type PropertyTypeError struct {
	Kind  Kind
	Key   string
	Want  string
	Value any
}

func (e *PropertyTypeError) Error() string {
	return fmt.Sprintf("%s property %q: want %s, got %T", e.Kind, e.Key, e.Want, e.Value)
}

func (e *PropertyTypeError) Unwrap() error {
	return ErrPropertyType
}

// readProperty overwrites *dst with props[key] when present. The value
// must have exactly type T; no numeric coercion is attempted.
func readProperty[T any](props Properties, kind Kind, key string, dst *T) error {
	v, ok := props[key]
	if !ok {
		return nil
	}
	typed, ok := v.(T)
	if !ok {
		return &PropertyTypeError{Kind: kind, Key: key, Want: fmt.Sprintf("%T", *dst), Value: v}
	}
	*dst = typed
	return nil
}
