package ast

import (
	"fmt"
	"reflect"
)

// Span is the 1-based position of a node's first token.
type Span struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (s Span) String() string {
	if s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s.Line == 0 && s.Column == 0 && s.File == ""
}

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// ClearSpans zeroes the span of node and every node reachable from it, so
// parsed trees can be compared against hand-built ones.
func ClearSpans(node Node) {
	clearSpans(node, make(map[Node]struct{}))
}

func clearSpans(node Node, visited map[Node]struct{}) {
	if node == nil {
		return
	}
	if val := reflect.ValueOf(node); val.Kind() == reflect.Pointer && val.IsNil() {
		return
	}
	if _, ok := visited[node]; ok {
		return
	}
	visited[node] = struct{}{}
	SetSpan(node, Span{})
	clearSpanValue(derefValue(reflect.ValueOf(node)), visited)
}

func clearSpanValue(val reflect.Value, visited map[Node]struct{}) {
	if !val.IsValid() {
		return
	}
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return
		}
		if node, ok := val.Interface().(Node); ok {
			clearSpans(node, visited)
			return
		}
		clearSpanValue(val.Elem(), visited)
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if !val.Type().Field(i).IsExported() {
				continue
			}
			clearSpanValue(val.Field(i), visited)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			clearSpanValue(val.Index(i), visited)
		}
	}
}

func derefValue(val reflect.Value) reflect.Value {
	for val.IsValid() && (val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface) {
		if val.IsNil() {
			return val
		}
		val = val.Elem()
	}
	return val
}
