package primitive

import (
	"bytes"
	"text/template"
)

type ConversionPair struct {
	From, To KindEnum
}

// leafPairs is the built-in compatibility table for primitive shapes. Every
// supported encoding writes a primitive by its kind alone, so a pair is
// round-trippable exactly when both sides share the kind; widening pairs are
// deliberately absent.
var leafPairs map[ConversionPair]struct{}

var (
	assignTemplate  = template.Must(template.New("assign").Parse("{{.dst}} = {{.src}}"))
	convertTemplate = template.Must(template.New("convert").Parse("{{.dst}} = {{.dstType}}({{.src}})"))
)

func init() {
	leafPairs = make(map[ConversionPair]struct{}, KindTotal)

	for kind := KindEnum(1); int(kind) < KindTotal; kind++ {
		leafPairs[ConversionPair{kind, kind}] = struct{}{}
	}
}

// Compatible reports whether a primitive of kind from round-trips into a
// primitive of kind to.
func Compatible(from, to KindEnum) bool {
	_, ok := leafPairs[ConversionPair{from, to}]
	return ok
}

// Pairs returns a copy of the leaf compatibility table.
func Pairs() []ConversionPair {
	res := make([]ConversionPair, 0, len(leafPairs))
	for kind := KindEnum(1); int(kind) < KindTotal; kind++ {
		for to := KindEnum(1); int(to) < KindTotal; to++ {
			if Compatible(kind, to) {
				res = append(res, ConversionPair{kind, to})
			}
		}
	}

	return res
}

// Generate renders the statement assigning the primitive srcName to dstName.
// When the two Go types differ only by name a conversion to dstType is
// emitted. Nil is returned for incompatible kinds.
func Generate(from, to KindEnum, srcName, dstName, dstType string, sameType bool) []string {
	if !Compatible(from, to) {
		return nil
	}

	tmpl := convertTemplate
	if sameType {
		tmpl = assignTemplate
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]any{
		"src":     srcName,
		"dst":     dstName,
		"dstType": dstType,
	})
	if err != nil {
		panic(err)
	}

	return []string{buf.String()}
}
