package sexpfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/sexp"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// Upper bound on list length walked through Head/Tail
const maxListItems = 1 << 20

// items converts an s-expression list to a slice
func items(s sexp.Sexp) []sexp.Sexp {
	var out []sexp.Sexp
	if s == nil || s.IsLeaf() {
		return out
	}

	for i := 0; i < maxListItems; i++ {
		if s == nil {
			break
		}
		count := s.LeafCount()
		if count == 0 {
			break
		}
		if head := s.Head(); head != nil {
			out = append(out, head)
		}
		if count <= 1 {
			break
		}
		s = s.Tail()
		if s == nil || s.IsLeaf() {
			break
		}
	}
	return out
}

// atom returns the text of a leaf with surrounding quotes removed
func atom(s sexp.Sexp) string {
	text := strings.TrimSpace(fmt.Sprint(s))
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		if unquoted, err := strconv.Unquote(text); err == nil {
			return unquoted
		}
		return text[1 : len(text)-1]
	}
	return text
}

// nodeName returns the leading symbol of a list, "" for leaves
func nodeName(s sexp.Sexp) string {
	if s == nil || s.IsLeaf() {
		return ""
	}
	list := items(s)
	if len(list) == 0 || !list[0].IsLeaf() {
		return ""
	}
	return atom(list[0])
}

// findNode returns the first child list starting with key
func findNode(s sexp.Sexp, key string) (sexp.Sexp, bool) {
	for _, item := range items(s) {
		if nodeName(item) == key {
			return item, true
		}
	}
	return nil, false
}

// hasSymbol reports whether a bare symbol or a (key) list is present
func hasSymbol(s sexp.Sexp, key string) bool {
	for _, item := range items(s) {
		if item.IsLeaf() && atom(item) == key {
			return true
		}
		if nodeName(item) == key {
			return true
		}
	}
	return false
}

// getString returns the atom at index (0 is the key)
func getString(s sexp.Sexp, index int) (string, error) {
	list := items(s)
	if index < 0 || index >= len(list) {
		return "", fmt.Errorf("(%s): index %d out of bounds (length %d)", nodeName(s), index, len(list))
	}
	if !list[index].IsLeaf() {
		return "", fmt.Errorf("(%s): expected atom at index %d", nodeName(s), index)
	}
	return atom(list[index]), nil
}

func getFloat(s sexp.Sexp, index int) (float64, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("(%s): failed to parse float %q: %w", nodeName(s), str, err)
	}
	return val, nil
}

// childString reads (key "value") under s
func childString(s sexp.Sexp, key string) (string, bool, error) {
	node, ok := findNode(s, key)
	if !ok {
		return "", false, nil
	}
	val, err := getString(node, 1)
	return val, true, err
}

// childFloat reads (key value) under s
func childFloat(s sexp.Sexp, key string) (float64, bool, error) {
	node, ok := findNode(s, key)
	if !ok {
		return 0, false, nil
	}
	val, err := getFloat(node, 1)
	return val, true, err
}

// childCoordinate reads (key x y) under s
func childCoordinate(s sexp.Sexp, key string) (geo.Coordinate, bool, error) {
	node, ok := findNode(s, key)
	if !ok {
		return geo.Coordinate{}, false, nil
	}
	x, err := getFloat(node, 1)
	if err != nil {
		return geo.Coordinate{}, true, err
	}
	y, err := getFloat(node, 2)
	if err != nil {
		return geo.Coordinate{}, true, err
	}
	return geo.Coord(x, y), true, nil
}

// requireCoordinate is childCoordinate with a missing node reported as an error
func requireCoordinate(s sexp.Sexp, key string) (geo.Coordinate, error) {
	c, ok, err := childCoordinate(s, key)
	if err != nil {
		return c, err
	}
	if !ok {
		return c, fmt.Errorf("(%s): missing (%s x y)", nodeName(s), key)
	}
	return c, nil
}

func requireFloat(s sexp.Sexp, key string) (float64, error) {
	v, ok, err := childFloat(s, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, fmt.Errorf("(%s): missing (%s value)", nodeName(s), key)
	}
	return v, nil
}
