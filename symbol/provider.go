package symbol

import (
	"github.com/iancoleman/strcase"
	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
)

// Provider resolves shapes and members to Go symbols.
type Provider interface {
	// SymbolOf returns the symbol for a shape.
	SymbolOf(shape *model.Shape) (Symbol, error)
	// MemberSymbol returns the symbol for a member reference, applying the
	// member's nullability and trait overrides to the target symbol.
	MemberSymbol(mem *model.Member) (Symbol, error)
}

// RuntimeModule is the import prefix of the client runtime the generated code
// calls into. The runtime itself is not part of the generator.
const RuntimeModule = "github.com/smithy-lang/smithy-gogen-rt"

// Runtime symbols referenced by emitted code.
var (
	SerdeSerializer   = External(RuntimeModule+"/serde", "Serializer")
	SerdeDeserializer = External(RuntimeModule+"/serde", "Deserializer")
	SerdeDocument     = External(RuntimeModule+"/serde", "Document")
	StreamingBlob     = External(RuntimeModule+"/io", "ReadCloser")
)

type provider struct {
	model *model.Model
	// module is the Go module path of the generated client.
	module string

	cache map[model.ShapeID]Symbol
	// owner tracks which shape claimed each generated type name, to detect
	// collisions between shapes from different namespaces.
	owner map[string]model.ShapeID
}

// NewProvider creates the base Go symbol provider for a generated module
// path. Symbols are computed lazily and memoized.
func NewProvider(m *model.Model, module string) Provider {
	return &provider{
		model:  m,
		module: module,
		cache:  map[model.ShapeID]Symbol{},
		owner:  map[string]model.ShapeID{},
	}
}

func (p *provider) SymbolOf(shape *model.Shape) (Symbol, error) {
	if sym, ok := p.cache[shape.ID]; ok {
		return sym, nil
	}
	sym, err := p.resolve(shape)
	if err != nil {
		return Symbol{}, err
	}
	p.cache[shape.ID] = sym
	return sym, nil
}

func (p *provider) resolve(shape *model.Shape) (Symbol, error) {
	switch shape.Type {
	case model.ShapeTypeBoolean:
		return Builtin("bool", "false"), nil
	case model.ShapeTypeByte:
		return Builtin("int8", "0"), nil
	case model.ShapeTypeShort:
		return Builtin("int16", "0"), nil
	case model.ShapeTypeInteger:
		return Builtin("int32", "0"), nil
	case model.ShapeTypeLong:
		return Builtin("int64", "0"), nil
	case model.ShapeTypeFloat:
		return Builtin("float32", "0"), nil
	case model.ShapeTypeDouble:
		return Builtin("float64", "0"), nil
	case model.ShapeTypeBigInteger:
		return External("math/big", "Int").WithNullable(true), nil
	case model.ShapeTypeBigDecimal:
		return External("math/big", "Float").WithNullable(true), nil
	case model.ShapeTypeString:
		if _, ok := model.GetTrait[*traits.Enum](shape.Traits); ok {
			return p.namedType(shape, shape.ID.Name)
		}
		return Builtin("string", `""`).WithNullable(true), nil
	case model.ShapeTypeBlob:
		if model.HasTrait[*traits.Streaming](shape.Traits) {
			return StreamingBlob.WithNullable(true), nil
		}
		return Symbol{Name: "[]byte", Nullable: true}, nil
	case model.ShapeTypeTimestamp:
		return External("time", "Time").WithNullable(true), nil
	case model.ShapeTypeDocument:
		doc := SerdeDocument.WithNullable(true)
		doc.Interface = true
		return doc, nil
	case model.ShapeTypeList, model.ShapeTypeSet:
		return p.collectionSymbol(shape)
	case model.ShapeTypeMap:
		return p.mapSymbol(shape)
	case model.ShapeTypeStructure, model.ShapeTypeUnion:
		sym, err := p.namedType(shape, shape.ID.Name)
		if err != nil {
			return Symbol{}, err
		}
		sym.Interface = shape.Type == model.ShapeTypeUnion
		return sym, nil
	case model.ShapeTypeOperation:
		return Symbol{Name: strcase.ToCamel(shape.ID.Name)}, nil
	case model.ShapeTypeService:
		return Symbol{Name: strcase.ToCamel(shape.ID.Name)}, nil
	default:
		return Symbol{}, smithygogen.Errorf(smithygogen.ErrUnknownSerialKind, shape.ID.String(),
			"no symbol mapping for shape type %s", shape.Type)
	}
}

func (p *provider) collectionSymbol(shape *model.Shape) (Symbol, error) {
	mem, ok := shape.ListMember()
	if !ok {
		return Symbol{}, smithygogen.Errorf(smithygogen.ErrUnknownShape, shape.ID.String(), "collection has no member")
	}
	elem, err := p.MemberSymbol(mem)
	if err != nil {
		return Symbol{}, err
	}
	elem.Nullable = p.entryNullable(shape, mem)
	return Symbol{
		Name:       "[]" + elem.FieldRef(),
		Nullable:   true,
		References: []Symbol{elem},
	}, nil
}

// entryNullable reports whether container entries are pointers: sparse
// containers always, and structure/union entries regardless so dense
// containers can drop null entries.
func (p *provider) entryNullable(container *model.Shape, mem *model.Member) bool {
	if container.IsSparse() {
		return true
	}
	target, err := p.model.TargetOf(mem)
	if err != nil {
		return false
	}
	return target.Type == model.ShapeTypeStructure || target.Type == model.ShapeTypeUnion
}

func (p *provider) mapSymbol(shape *model.Shape) (Symbol, error) {
	mem, ok := shape.MapValue()
	if !ok {
		return Symbol{}, smithygogen.Errorf(smithygogen.ErrUnknownShape, shape.ID.String(), "map has no value member")
	}
	value, err := p.MemberSymbol(mem)
	if err != nil {
		return Symbol{}, err
	}
	value.Nullable = p.entryNullable(shape, mem)
	return Symbol{
		Name:       "map[string]" + value.FieldRef(),
		Nullable:   true,
		References: []Symbol{value},
	}, nil
}

func (p *provider) namedType(shape *model.Shape, rawName string) (Symbol, error) {
	name := strcase.ToCamel(rawName)
	if owner, claimed := p.owner[name]; claimed && owner != shape.ID {
		return Symbol{}, smithygogen.Errorf(smithygogen.ErrDuplicateSymbol, shape.ID.String(),
			"generated type %s already claimed by %s", name, owner)
	}
	p.owner[name] = shape.ID

	return Symbol{
		Name:           name,
		Namespace:      p.module + "/model",
		Nullable:       true,
		DefinitionFile: "model/" + name + ".go",
	}, nil
}

func (p *provider) MemberSymbol(mem *model.Member) (Symbol, error) {
	target, err := p.model.TargetOf(mem)
	if err != nil {
		return Symbol{}, err
	}
	sym, err := p.SymbolOf(target)
	if err != nil {
		return Symbol{}, err
	}

	// Members default to nullable unless marked required. Required members
	// with a primitive default keep the default value so header and query
	// emitters can skip default-equal values.
	sym.Nullable = !model.HasTrait[*traits.Required](mem.Traits)
	return sym, nil
}

// FieldName returns the exported Go field name for a member.
func FieldName(mem *model.Member) string {
	return strcase.ToCamel(mem.Name)
}

// LocalName returns an unexported Go identifier for a member or shape name.
func LocalName(name string) string {
	return strcase.ToLowerCamel(name)
}
