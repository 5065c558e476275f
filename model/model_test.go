package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/model/traits"
)

func TestParseShapeID(t *testing.T) {
	cases := map[string]ShapeID{
		"com.test#Foo":      {Namespace: "com.test", Name: "Foo"},
		"com.test#Foo$bar":  {Namespace: "com.test", Name: "Foo", Member: "bar"},
		"smithy.api#String": {Namespace: "smithy.api", Name: "String"},
	}
	for in, expect := range cases {
		actual := ParseShapeID(in)
		if actual != expect {
			t.Errorf("%s: expect %v, got %v", in, expect, actual)
		}
		if actual.String() != in {
			t.Errorf("expect round trip %s, got %s", in, actual.String())
		}
	}
}

func TestExpectShape(t *testing.T) {
	str := NewShape(ParseShapeID("com.test#Str"), ShapeTypeString, nil)
	m := NewModel(str)

	if _, err := m.ExpectShape(str.ID); err != nil {
		t.Fatalf("expect no error, got %v", err)
	}

	_, err := m.ExpectShape(ParseShapeID("com.test#Missing"))
	var ce *smithygogen.CodegenError
	if !errors.As(err, &ce) {
		t.Fatalf("expect CodegenError, got %T", err)
	}
	if ce.Code != smithygogen.ErrUnknownShape {
		t.Errorf("expect %v code, got %v", smithygogen.ErrUnknownShape, ce.Code)
	}
	if ce.ShapeID != "com.test#Missing" {
		t.Errorf("expect offending shape in error, got %q", ce.ShapeID)
	}
}

func TestSortedMembers(t *testing.T) {
	str := NewShape(ParseShapeID("com.test#S"), ShapeTypeStructure, nil,
		&Member{Name: "zeta", Target: ParseShapeID("smithy.api#String")},
		&Member{Name: "alpha", Target: ParseShapeID("smithy.api#String")},
		&Member{Name: "mid", Target: ParseShapeID("smithy.api#String")},
	)

	var names []string
	for _, m := range str.SortedMembers() {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, names); diff != "" {
		t.Errorf("sorted members mismatch (-expect +actual):\n%s", diff)
	}

	var modeled []string
	for _, m := range str.Members() {
		modeled = append(modeled, m.Name)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, modeled); diff != "" {
		t.Errorf("modeled order mismatch (-expect +actual):\n%s", diff)
	}
}

func TestTraitLookup(t *testing.T) {
	mem := &Member{
		Name:   "ts",
		Target: ParseShapeID("smithy.api#Timestamp"),
		Traits: TraitMap{
			"smithy.api#required":        &traits.Required{},
			"smithy.api#timestampFormat": &traits.TimestampFormat{Format: traits.TimestampHTTPDate},
		},
	}

	if !HasTrait[*traits.Required](mem.Traits) {
		t.Errorf("expect required trait present")
	}
	if HasTrait[*traits.Sparse](mem.Traits) {
		t.Errorf("expect sparse trait absent")
	}
	tf, ok := GetTrait[*traits.TimestampFormat](mem.Traits)
	if !ok {
		t.Fatalf("expect timestampFormat trait")
	}
	if tf.Format != traits.TimestampHTTPDate {
		t.Errorf("expect %s, got %s", traits.TimestampHTTPDate, tf.Format)
	}
}

func TestSerdeClosure(t *testing.T) {
	stringID := ParseShapeID("smithy.api#String")

	nested := NewShape(ParseShapeID("com.test#Nested"), ShapeTypeStructure, nil,
		&Member{Name: "f", Target: stringID},
	)
	leafList := NewShape(ParseShapeID("com.test#LeafList"), ShapeTypeList, nil,
		&Member{Name: "member", Target: nested.ID},
	)
	valueUnion := NewShape(ParseShapeID("com.test#Choice"), ShapeTypeUnion, nil,
		&Member{Name: "s", Target: stringID},
		&Member{Name: "n", Target: nested.ID},
	)
	valueMap := NewShape(ParseShapeID("com.test#ChoiceMap"), ShapeTypeMap, nil,
		&Member{Name: "key", Target: stringID},
		&Member{Name: "value", Target: valueUnion.ID},
	)
	input := NewShape(ParseShapeID("com.test#Input"), ShapeTypeStructure, nil,
		&Member{Name: "list", Target: leafList.ID},
		&Member{Name: "map", Target: valueMap.ID},
	)
	str := NewShape(stringID, ShapeTypeString, nil)

	m := NewModel(nested, leafList, valueUnion, valueMap, input, str)

	var ids []string
	for _, s := range m.SerdeClosure(input) {
		ids = append(ids, s.ID.String())
	}
	expect := []string{"com.test#Choice", "com.test#Nested"}
	if diff := cmp.Diff(expect, ids); diff != "" {
		t.Errorf("closure mismatch (-expect +actual):\n%s", diff)
	}
}

func TestSerdeClosureRecursiveShapes(t *testing.T) {
	// A structure that contains itself through a list must not hang the walk.
	self := NewShape(ParseShapeID("com.test#Tree"), ShapeTypeStructure, nil)
	children := NewShape(ParseShapeID("com.test#Children"), ShapeTypeList, nil,
		&Member{Name: "member", Target: self.ID},
	)
	self.AddMember(&Member{Name: "children", Target: children.ID})
	root := NewShape(ParseShapeID("com.test#Root"), ShapeTypeStructure, nil,
		&Member{Name: "tree", Target: self.ID},
	)

	m := NewModel(self, children, root)

	closure := m.SerdeClosure(root)
	if len(closure) != 1 || closure[0].ID.Name != "Tree" {
		t.Errorf("expect closure [Tree], got %v", closure)
	}
}

func TestParseURIPattern(t *testing.T) {
	opID := ParseShapeID("com.test#Op")

	p, err := ParseURIPattern("/smoketest/{label1}/foo?const=1", opID)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	expect := &URIPattern{
		Segments: []PathSegment{
			{Content: "smoketest"},
			{Content: "label1", IsLabel: true},
			{Content: "foo"},
		},
		Query: []QueryLiteral{{Key: "const", Value: "1"}},
	}
	if diff := cmp.Diff(expect, p); diff != "" {
		t.Errorf("pattern mismatch (-expect +actual):\n%s", diff)
	}

	if _, err := ParseURIPattern("relative/{x}", opID); err == nil {
		t.Errorf("expect error for relative uri")
	}
	if _, err := ParseURIPattern("/bad/{seg", opID); err == nil {
		t.Errorf("expect error for malformed label segment")
	}

	greedy, err := ParseURIPattern("/objects/{key+}", opID)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if !greedy.Segments[1].Greedy {
		t.Errorf("expect greedy label")
	}
}

func TestLoad(t *testing.T) {
	doc := `{
		"smithy": "2.0",
		"shapes": {
			"com.test#Example": {
				"version": "1.0.0",
				"type": "service",
				"operations": [{"target": "com.test#GetFoo"}]
			},
			"com.test#GetFoo": {
				"type": "operation",
				"input": {"target": "com.test#GetFooRequest"},
				"traits": {
					"smithy.api#http": {"method": "GET", "uri": "/foo/{id}", "code": 200}
				}
			},
			"com.test#GetFooRequest": {
				"type": "structure",
				"members": {
					"id": {
						"target": "smithy.api#String",
						"traits": {
							"smithy.api#httpLabel": {},
							"smithy.api#required": {}
						}
					},
					"tag": {
						"target": "smithy.api#String",
						"traits": {"smithy.api#httpQuery": "Tag"}
					}
				}
			}
		}
	}`

	m, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}

	svc, ok := m.Service()
	if !ok {
		t.Fatalf("expect service shape")
	}
	if svc.Version != "1.0.0" {
		t.Errorf("expect service version, got %q", svc.Version)
	}

	ops, err := m.OperationsOf(svc)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expect 1 operation, got %d", len(ops))
	}

	httpTrait, ok := GetTrait[*traits.HTTP](ops[0].Traits)
	if !ok {
		t.Fatalf("expect http trait on operation")
	}
	if httpTrait.Method != "GET" || httpTrait.URI != "/foo/{id}" || httpTrait.Code != 200 {
		t.Errorf("http trait decoded wrong: %+v", httpTrait)
	}

	in, err := m.ExpectShape(ops[0].Input)
	if err != nil {
		t.Fatalf("expect input shape, got %v", err)
	}
	id, ok := in.Member("id")
	if !ok {
		t.Fatalf("expect id member")
	}
	if !HasTrait[*traits.HTTPLabel](id.Traits) {
		t.Errorf("expect httpLabel on id")
	}
	tag, _ := in.Member("tag")
	q, ok := GetTrait[*traits.HTTPQuery](tag.Traits)
	if !ok || q.Name != "Tag" {
		t.Errorf("expect httpQuery Tag, got %+v", q)
	}

	// prelude shapes referenced by the document resolve
	if _, err := m.ExpectShape(ParseShapeID("smithy.api#String")); err != nil {
		t.Errorf("expect prelude String, got %v", err)
	}
}
