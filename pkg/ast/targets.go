package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// TargetPath is the decoded form of a composite assignment target such as
// "p.x", "pts[2].x" or "a.b.c".
type TargetPath struct {
	Base     string
	HasIndex bool
	Index    int64
	Fields   []string
}

func (t TargetPath) String() string {
	var b strings.Builder
	b.WriteString(t.Base)
	if t.HasIndex {
		fmt.Fprintf(&b, "[%d]", t.Index)
	}
	for _, field := range t.Fields {
		b.WriteByte('.')
		b.WriteString(field)
	}
	return b.String()
}

// IsSimple reports whether the target is a bare variable name.
func (t TargetPath) IsSimple() bool {
	return !t.HasIndex && len(t.Fields) == 0
}

// ParseTargetPath decodes a target produced by TargetPath.String.
func ParseTargetPath(target string) (TargetPath, error) {
	head, rest, hasFields := strings.Cut(target, ".")
	var path TargetPath
	if open := strings.IndexByte(head, '['); open >= 0 {
		if !strings.HasSuffix(head, "]") {
			return TargetPath{}, fmt.Errorf("malformed assignment target %q", target)
		}
		index, err := strconv.ParseInt(head[open+1:len(head)-1], 10, 64)
		if err != nil {
			return TargetPath{}, fmt.Errorf("malformed index in assignment target %q", target)
		}
		path.HasIndex = true
		path.Index = index
		head = head[:open]
	}
	if head == "" {
		return TargetPath{}, fmt.Errorf("empty assignment target %q", target)
	}
	path.Base = head
	if hasFields {
		path.Fields = strings.Split(rest, ".")
		for _, field := range path.Fields {
			if field == "" {
				return TargetPath{}, fmt.Errorf("malformed assignment target %q", target)
			}
		}
	}
	return path, nil
}
