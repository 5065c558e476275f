package model

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// astModel mirrors the JSON AST document layout.
type astModel struct {
	Smithy string              `json:"smithy"`
	Shapes map[string]astShape `json:"shapes"`
}

type astShape struct {
	Type       string                     `json:"type"`
	Members    map[string]astMember       `json:"members"`
	Member     *astMember                 `json:"member"`
	Key        *astMember                 `json:"key"`
	Value      *astMember                 `json:"value"`
	Traits     map[string]json.RawMessage `json:"traits"`
	Input      *astRef                    `json:"input"`
	Output     *astRef                    `json:"output"`
	Errors     []astRef                   `json:"errors"`
	Operations []astRef                   `json:"operations"`
	Version    string                     `json:"version"`
}

type astMember struct {
	Target string                     `json:"target"`
	Traits map[string]json.RawMessage `json:"traits"`
}

type astRef struct {
	Target string `json:"target"`
}

var astShapeTypes = map[string]ShapeType{
	"blob":       ShapeTypeBlob,
	"boolean":    ShapeTypeBoolean,
	"string":     ShapeTypeString,
	"timestamp":  ShapeTypeTimestamp,
	"byte":       ShapeTypeByte,
	"short":      ShapeTypeShort,
	"integer":    ShapeTypeInteger,
	"long":       ShapeTypeLong,
	"float":      ShapeTypeFloat,
	"double":     ShapeTypeDouble,
	"bigDecimal": ShapeTypeBigDecimal,
	"bigInteger": ShapeTypeBigInteger,
	"document":   ShapeTypeDocument,
	"list":       ShapeTypeList,
	"set":        ShapeTypeSet,
	"map":        ShapeTypeMap,
	"structure":  ShapeTypeStructure,
	"union":      ShapeTypeUnion,
	"service":    ShapeTypeService,
	"resource":   ShapeTypeResource,
	"operation":  ShapeTypeOperation,
}

// Load reads a Smithy JSON AST document into a Model. Every smithy.api prelude
// simple shape that the document does not define is synthesized.
func Load(r io.Reader) (*Model, error) {
	var ast astModel
	if err := json.NewDecoder(r).Decode(&ast); err != nil {
		return nil, fmt.Errorf("failed to decode model document: %w", err)
	}

	m := NewModel()
	for name, as := range ast.Shapes {
		typ, ok := astShapeTypes[as.Type]
		if !ok {
			return nil, fmt.Errorf("shape %s: unrecognized type %q", name, as.Type)
		}

		shape := NewShape(ParseShapeID(name), typ, decodeTraits(as.Traits))
		switch typ {
		case ShapeTypeList, ShapeTypeSet:
			if as.Member != nil {
				shape.AddMember(newMember("member", as.Member))
			}
		case ShapeTypeMap:
			if as.Key != nil {
				shape.AddMember(newMember("key", as.Key))
			}
			if as.Value != nil {
				shape.AddMember(newMember("value", as.Value))
			}
		case ShapeTypeOperation:
			if as.Input != nil {
				shape.Input = ParseShapeID(as.Input.Target)
			}
			if as.Output != nil {
				shape.Output = ParseShapeID(as.Output.Target)
			}
			for _, e := range as.Errors {
				shape.Errors = append(shape.Errors, ParseShapeID(e.Target))
			}
		case ShapeTypeService:
			shape.Version = as.Version
			for _, op := range as.Operations {
				shape.Operations = append(shape.Operations, ParseShapeID(op.Target))
			}
		default:
			for _, name := range sortedKeys(as.Members) {
				mem := as.Members[name]
				shape.AddMember(newMember(name, &mem))
			}
		}
		m.Add(shape)
	}

	synthesizePrelude(m)
	return m, nil
}

func newMember(name string, am *astMember) *Member {
	return &Member{
		Name:   name,
		Target: ParseShapeID(am.Target),
		Traits: decodeTraits(am.Traits),
	}
}

// preludeShapes are the smithy.api simple shapes models reference without
// defining.
var preludeShapes = map[string]ShapeType{
	"Blob":       ShapeTypeBlob,
	"Boolean":    ShapeTypeBoolean,
	"String":     ShapeTypeString,
	"Timestamp":  ShapeTypeTimestamp,
	"Byte":       ShapeTypeByte,
	"Short":      ShapeTypeShort,
	"Integer":    ShapeTypeInteger,
	"Long":       ShapeTypeLong,
	"Float":      ShapeTypeFloat,
	"Double":     ShapeTypeDouble,
	"BigInteger": ShapeTypeBigInteger,
	"BigDecimal": ShapeTypeBigDecimal,
	"Document":   ShapeTypeDocument,
	"Unit":       ShapeTypeStructure,
}

func synthesizePrelude(m *Model) {
	for name, typ := range preludeShapes {
		id := ShapeID{Namespace: "smithy.api", Name: name}
		if _, ok := m.Shape(id); !ok {
			m.Add(NewShape(id, typ, nil))
		}
	}
}

func sortedKeys(m map[string]astMember) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
