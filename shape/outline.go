package shape

import (
	"strconv"
	"strings"
)

// Outline renders the shape as an indented tree, one node per line.
// Shapes already being printed are abbreviated to their name.
func (s *Shape) Outline() string {
	var sb strings.Builder
	s.outline(&sb, "", 0, make(map[*Shape]bool))
	return sb.String()
}

func (s *Shape) outline(sb *strings.Builder, label string, depth int, seen map[*Shape]bool) {
	sb.WriteString(strings.Repeat("  ", depth))
	if label != "" {
		sb.WriteString(label + ": ")
	}

	sb.WriteString(s.Kind.String() + " " + s.String())

	switch {
	case s.Kind == KindSequence && s.Len >= 0:
		sb.WriteString(" len=" + strconv.Itoa(s.Len))
	case s.Kind == KindParam:
		sb.WriteString(" #" + strconv.Itoa(s.Param))
	case s.Kind == KindRef:
		sb.WriteString(" -> " + s.Origin)
	}

	sb.WriteString("\n")

	if seen[s] {
		return
	}

	seen[s] = true
	defer delete(seen, s)

	switch s.Kind {
	case KindOptional, KindSequence:
		s.Elem.outline(sb, "", depth+1, seen)
	case KindMapping:
		s.Key.outline(sb, "key", depth+1, seen)
		s.Elem.outline(sb, "value", depth+1, seen)
	case KindRecord, KindUnion:
		for _, m := range s.Members {
			m.Shape.outline(sb, m.WireName(), depth+1, seen)
		}
	}
}
