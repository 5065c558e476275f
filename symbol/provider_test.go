package symbol

import (
	"errors"
	"testing"

	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
)

const testModule = "github.com/example/weather"

func testModel(t *testing.T, shapes ...*model.Shape) *model.Model {
	t.Helper()
	all := append([]*model.Shape{
		model.NewShape(model.ParseShapeID("smithy.api#String"), model.ShapeTypeString, nil),
		model.NewShape(model.ParseShapeID("smithy.api#Integer"), model.ShapeTypeInteger, nil),
		model.NewShape(model.ParseShapeID("smithy.api#Boolean"), model.ShapeTypeBoolean, nil),
		model.NewShape(model.ParseShapeID("smithy.api#Timestamp"), model.ShapeTypeTimestamp, nil),
		model.NewShape(model.ParseShapeID("smithy.api#Blob"), model.ShapeTypeBlob, nil),
	}, shapes...)
	return model.NewModel(all...)
}

func TestPrimitiveSymbols(t *testing.T) {
	m := testModel(t)
	p := NewProvider(m, testModule)

	cases := []struct {
		id            string
		expectName    string
		expectDefault string
	}{
		{"smithy.api#String", "string", `""`},
		{"smithy.api#Integer", "int32", "0"},
		{"smithy.api#Boolean", "bool", "false"},
	}
	for _, c := range cases {
		s, _ := m.Shape(model.ParseShapeID(c.id))
		sym, err := p.SymbolOf(s)
		if err != nil {
			t.Fatalf("%s: expect no error, got %v", c.id, err)
		}
		if sym.Name != c.expectName {
			t.Errorf("%s: expect name %s, got %s", c.id, c.expectName, sym.Name)
		}
		if sym.DefaultValue != c.expectDefault {
			t.Errorf("%s: expect default %s, got %s", c.id, c.expectDefault, sym.DefaultValue)
		}
	}
}

func TestStructureSymbol(t *testing.T) {
	str := model.NewShape(model.ParseShapeID("com.test#get_foo_request"), model.ShapeTypeStructure, nil)
	m := testModel(t, str)
	p := NewProvider(m, testModule)

	sym, err := p.SymbolOf(str)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if sym.Name != "GetFooRequest" {
		t.Errorf("expect PascalCase name, got %s", sym.Name)
	}
	if sym.Namespace != testModule+"/model" {
		t.Errorf("expect model namespace, got %s", sym.Namespace)
	}
	if sym.DefinitionFile != "model/GetFooRequest.go" {
		t.Errorf("expect definition file, got %s", sym.DefinitionFile)
	}
	if sym.Qualified() != "model.GetFooRequest" {
		t.Errorf("expect qualified reference, got %s", sym.Qualified())
	}

	// memoized: same symbol value on re-resolution
	again, _ := p.SymbolOf(str)
	if again.Name != sym.Name || again.Namespace != sym.Namespace || again.DefinitionFile != sym.DefinitionFile {
		t.Errorf("expect memoized symbol, got %+v then %+v", sym, again)
	}
}

func TestDuplicateSymbol(t *testing.T) {
	a := model.NewShape(model.ParseShapeID("com.a#Thing"), model.ShapeTypeStructure, nil)
	b := model.NewShape(model.ParseShapeID("com.b#Thing"), model.ShapeTypeStructure, nil)
	m := testModel(t, a, b)
	p := NewProvider(m, testModule)

	if _, err := p.SymbolOf(a); err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	_, err := p.SymbolOf(b)
	var ce *smithygogen.CodegenError
	if !errors.As(err, &ce) || ce.Code != smithygogen.ErrDuplicateSymbol {
		t.Fatalf("expect DuplicateSymbol, got %v", err)
	}
}

func TestMemberNullability(t *testing.T) {
	str := model.NewShape(model.ParseShapeID("com.test#Req"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "optional", Target: model.ParseShapeID("smithy.api#String")},
		&model.Member{Name: "needed", Target: model.ParseShapeID("smithy.api#String"),
			Traits: model.TraitMap{"smithy.api#required": &traits.Required{}}},
	)
	m := testModel(t, str)
	p := NewProvider(m, testModule)

	opt, _ := str.Member("optional")
	sym, err := p.MemberSymbol(opt)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if !sym.Nullable || sym.FieldRef() != "*string" {
		t.Errorf("expect nullable *string, got %s", sym.FieldRef())
	}

	req, _ := str.Member("needed")
	sym, err = p.MemberSymbol(req)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if sym.Nullable || sym.FieldRef() != "string" {
		t.Errorf("expect non-null string, got %s", sym.FieldRef())
	}
}

func TestSparseCollections(t *testing.T) {
	sparse := model.NewShape(model.ParseShapeID("com.test#SparseInts"), model.ShapeTypeList,
		model.TraitMap{"smithy.api#sparse": &traits.Sparse{}},
		&model.Member{Name: "member", Target: model.ParseShapeID("smithy.api#Integer")},
	)
	dense := model.NewShape(model.ParseShapeID("com.test#Ints"), model.ShapeTypeList, nil,
		&model.Member{Name: "member", Target: model.ParseShapeID("smithy.api#Integer")},
	)
	sm := model.NewShape(model.ParseShapeID("com.test#SparseMap"), model.ShapeTypeMap,
		model.TraitMap{"smithy.api#sparse": &traits.Sparse{}},
		&model.Member{Name: "key", Target: model.ParseShapeID("smithy.api#String")},
		&model.Member{Name: "value", Target: model.ParseShapeID("smithy.api#String")},
	)
	m := testModel(t, sparse, dense, sm)
	p := NewProvider(m, testModule)

	sym, err := p.SymbolOf(sparse)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if sym.Name != "[]*int32" {
		t.Errorf("expect sparse list []*int32, got %s", sym.Name)
	}

	sym, _ = p.SymbolOf(dense)
	if sym.Name != "[]int32" {
		t.Errorf("expect dense list []int32, got %s", sym.Name)
	}

	sym, _ = p.SymbolOf(sm)
	if sym.Name != "map[string]*string" {
		t.Errorf("expect sparse map values, got %s", sym.Name)
	}
}

func TestStreamingBlob(t *testing.T) {
	stream := model.NewShape(model.ParseShapeID("com.test#Stream"), model.ShapeTypeBlob,
		model.TraitMap{"smithy.api#streaming": &traits.Streaming{}})
	m := testModel(t, stream)
	p := NewProvider(m, testModule)

	sym, err := p.SymbolOf(stream)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if sym.Namespace != RuntimeModule+"/io" || sym.Name != "ReadCloser" {
		t.Errorf("expect runtime stream handle, got %+v", sym)
	}
}

func TestDecoratorChain(t *testing.T) {
	str := model.NewShape(model.ParseShapeID("com.test#Plain"), model.ShapeTypeStructure, nil)
	m := testModel(t, str)
	base := NewProvider(m, testModule)

	rename := func(suffix string) Decorator {
		return func(inner Provider) Provider {
			return &FuncProvider{
				Base: inner,
				ShapeFn: func(b Provider, s *model.Shape) (Symbol, bool, error) {
					sym, err := b.SymbolOf(s)
					if err != nil {
						return Symbol{}, true, err
					}
					sym.Name += suffix
					return sym, true, nil
				},
			}
		}
	}

	p := Decorate(base, rename("A"), rename("B"))
	sym, err := p.SymbolOf(str)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if sym.Name != "PlainAB" {
		t.Errorf("expect decorators applied in order, got %s", sym.Name)
	}
}
