package serde

import (
	"strings"
	"testing"

	"github.com/smithy-lang/smithy-gogen/httpbinding"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

const testModule = "github.com/example/weather"

func newGenerator(t *testing.T, shapes ...*model.Shape) (*Generator, *model.Model) {
	t.Helper()
	all := append([]*model.Shape{
		model.NewShape(model.ParseShapeID("smithy.api#String"), model.ShapeTypeString, nil),
		model.NewShape(model.ParseShapeID("smithy.api#Integer"), model.ShapeTypeInteger, nil),
		model.NewShape(model.ParseShapeID("smithy.api#Boolean"), model.ShapeTypeBoolean, nil),
		model.NewShape(model.ParseShapeID("smithy.api#Timestamp"), model.ShapeTypeTimestamp, nil),
		model.NewShape(model.ParseShapeID("smithy.api#Blob"), model.ShapeTypeBlob, nil),
	}, shapes...)
	m := model.NewModel(all...)

	resolver := httpbinding.NewResolver(m, "application/json", traits.TimestampEpochSeconds)
	return &Generator{
		Model:   m,
		Symbols: symbol.NewProvider(m, testModule),
		TimestampFormat: func(mem *model.Member) (string, error) {
			return resolver.TimestampFormat(mem, httpbinding.LocationDocument)
		},
	}, m
}

func render(t *testing.T, emit func(w *writer.Writer) error) string {
	t.Helper()
	w := writer.New("transform")
	if err := emit(w); err != nil {
		t.Fatalf("expect no emit error, got %v", err)
	}
	out, err := w.Finish("")
	if err != nil {
		t.Fatalf("expect no finish error, got %v", err)
	}
	return out
}

// expectContains matches fragments against tab-stripped output so assertions
// hold at any nesting depth.
func expectContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	flat := strings.ReplaceAll(out, "\t", "")
	for _, f := range fragments {
		if !strings.Contains(flat, strings.ReplaceAll(f, "\t", "")) {
			t.Errorf("expect output to contain %q, full output:\n%s", f, out)
		}
	}
}

func expectNotContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	flat := strings.ReplaceAll(out, "\t", "")
	for _, f := range fragments {
		if strings.Contains(flat, strings.ReplaceAll(f, "\t", "")) {
			t.Errorf("expect output to not contain %q, full output:\n%s", f, out)
		}
	}
}

func TestDescriptorOrderMatchesSortedMembers(t *testing.T) {
	nested := model.NewShape(model.ParseShapeID("com.test#Nested"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "nestedField1", Target: model.ParseShapeID("smithy.api#String")},
	)
	req := model.NewShape(model.ParseShapeID("com.test#Req"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "payload3", Target: nested.ID},
		&model.Member{Name: "payload1", Target: model.ParseShapeID("smithy.api#String")},
		&model.Member{Name: "payload2", Target: model.ParseShapeID("smithy.api#Integer")},
	)
	g, _ := newGenerator(t, nested, req)

	reqSym, _ := g.Symbols.SymbolOf(req)
	fields, err := g.BuildDescriptors(req, reqSym)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	for i, expect := range []string{"payload1", "payload2", "payload3"} {
		if fields[i].Member.Name != expect || fields[i].Index != i {
			t.Errorf("field %d: expect %s at index %d, got %s at %d",
				i, expect, i, fields[i].Member.Name, fields[i].Index)
		}
	}

	out := render(t, func(w *writer.Writer) error {
		_, err := g.EmitDescriptors(w, req, reqSym)
		return err
	})
	expectContains(t, out,
		`reqPayload1Descriptor = serde.NewFieldDescriptor("payload1", serde.KindString)`,
		`reqPayload2Descriptor = serde.NewFieldDescriptor("payload2", serde.KindInteger)`,
		`reqPayload3Descriptor = serde.NewFieldDescriptor("payload3", serde.KindStruct)`,
		"reqObjDescriptor = serde.NewObjectDescriptor(\"Req\",\n\t\treqPayload1Descriptor,\n\t\treqPayload2Descriptor,\n\t\treqPayload3Descriptor,\n\t)",
	)
}

func TestNestedContainerDescriptors(t *testing.T) {
	inner := model.NewShape(model.ParseShapeID("com.test#IntMap"), model.ShapeTypeMap, nil,
		&model.Member{Name: "key", Target: model.ParseShapeID("smithy.api#String")},
		&model.Member{Name: "value", Target: model.ParseShapeID("smithy.api#Integer")},
	)
	outer := model.NewShape(model.ParseShapeID("com.test#MapList"), model.ShapeTypeList, nil,
		&model.Member{Name: "member", Target: inner.ID},
	)
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "foo", Target: outer.ID},
	)
	g, _ := newGenerator(t, inner, outer, str)

	strSym, _ := g.Symbols.SymbolOf(str)
	fields, err := g.BuildDescriptors(str, strSym)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}

	// nesting depth 2 yields the root plus two synthetic descriptors
	root := fields[0]
	if root.Kind != KindList || root.Child == nil || root.Child.Child == nil {
		t.Fatalf("expect a two-level descriptor chain, got %+v", root)
	}
	if root.Child.Kind != KindMap || root.Child.Child.Kind != KindInteger {
		t.Errorf("expect child kinds Map then Integer, got %s then %s", root.Child.Kind, root.Child.Child.Kind)
	}

	out := render(t, func(w *writer.Writer) error {
		_, err := g.EmitDescriptors(w, str, strSym)
		return err
	})
	expectContains(t, out,
		`sFooDescriptor = serde.NewFieldDescriptor("foo", serde.KindList)`,
		`sFooC0Descriptor = serde.NewFieldDescriptor("foo", serde.KindMap)`,
		`sFooC0C1Descriptor = serde.NewFieldDescriptor("foo", serde.KindInteger)`,
	)
	// only direct fields appear in the object descriptor
	expectNotContains(t, out, "sFooC0Descriptor,\n")
}

func TestSerializeStructMembers(t *testing.T) {
	nested := model.NewShape(model.ParseShapeID("com.test#Nested"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "nestedField1", Target: model.ParseShapeID("smithy.api#String")},
	)
	req := model.NewShape(model.ParseShapeID("com.test#Req"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "payload1", Target: model.ParseShapeID("smithy.api#String")},
		&model.Member{Name: "payload2", Target: model.ParseShapeID("smithy.api#Integer")},
		&model.Member{Name: "payload3", Target: nested.ID},
	)
	g, _ := newGenerator(t, nested, req)

	out := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, req)
	})
	expectContains(t, out,
		"type ReqDocumentSerializer struct {",
		"Value *model.Req",
		"func (d ReqDocumentSerializer) Serialize(s serde.Serializer) {",
		"s.SerializeStruct(reqObjDescriptor, func(st *serde.StructWriter) {",
		"if input.Payload1 != nil {\n\t\t\tst.Field(reqPayload1Descriptor, *input.Payload1)",
		"if input.Payload3 != nil {\n\t\t\tst.Field(reqPayload3Descriptor, NestedDocumentSerializer{Value: input.Payload3})",
	)
}

func TestRequiredMemberUnguarded(t *testing.T) {
	req := model.NewShape(model.ParseShapeID("com.test#Req"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "id", Target: model.ParseShapeID("smithy.api#String"),
			Traits: model.TraitMap{"smithy.api#required": &traits.Required{}}},
	)
	g, _ := newGenerator(t, req)

	out := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, req)
	})
	expectContains(t, out, "st.Field(reqIdDescriptor, input.Id)")
	expectNotContains(t, out, "if input.Id != nil")
}

func TestSparseListSerde(t *testing.T) {
	sparseList := model.NewShape(model.ParseShapeID("com.test#L"), model.ShapeTypeList,
		model.TraitMap{"smithy.api#sparse": &traits.Sparse{}},
		&model.Member{Name: "member", Target: model.ParseShapeID("smithy.api#Integer")},
	)
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "l", Target: sparseList.ID},
	)
	g, _ := newGenerator(t, sparseList, str)

	ser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, str)
	})
	expectContains(t, ser,
		"st.ListField(sLDescriptor, func(ls0 *serde.ListWriter) {",
		"for _, m0 := range input.L {",
		"if m0 == nil {\n\t\t\t\t\tls0.SerializeNull(sLC0Descriptor)\n\t\t\t\t\tcontinue",
		"ls0.SerializeInteger(*m0)",
	)

	deser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, str)
	})
	expectContains(t, deser,
		"collection0 := []*int32{}",
		"ls0 := st.DeserializeList(sLDescriptor)",
		"for ls0.HasNextElement() {",
		// sparse: the null is stored
		"ls0.DeserializeNull()\n\t\t\t\t\tcollection0 = append(collection0, nil)",
		"v1 := ls0.DeserializeInteger()",
		"collection0 = append(collection0, &v1)",
		"builder.L = collection0",
	)
}

func TestDenseListSerde(t *testing.T) {
	denseList := model.NewShape(model.ParseShapeID("com.test#L"), model.ShapeTypeList, nil,
		&model.Member{Name: "member", Target: model.ParseShapeID("smithy.api#Integer")},
	)
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "l", Target: denseList.ID},
	)
	g, _ := newGenerator(t, denseList, str)

	ser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, str)
	})
	expectContains(t, ser, "ls0.SerializeInteger(m0)")
	expectNotContains(t, ser, "SerializeNull")

	deser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, str)
	})
	// dense: the null element is dropped and iteration continues
	expectContains(t, deser,
		"if !ls0.NextHasValue() {\n\t\t\t\t\tls0.DeserializeNull()\n\t\t\t\t\tcontinue",
		"collection0 := []int32{}",
	)
	expectNotContains(t, deser, "append(collection0, nil)")
}

func TestDenseMapWithStructValues(t *testing.T) {
	v := model.NewShape(model.ParseShapeID("com.test#V"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "x", Target: model.ParseShapeID("smithy.api#Integer")},
	)
	mp := model.NewShape(model.ParseShapeID("com.test#M"), model.ShapeTypeMap, nil,
		&model.Member{Name: "key", Target: model.ParseShapeID("smithy.api#String")},
		&model.Member{Name: "value", Target: v.ID},
	)
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "m", Target: mp.ID},
	)
	g, _ := newGenerator(t, v, mp, str)

	ser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, str)
	})
	expectContains(t, ser,
		"st.MapField(sMDescriptor, func(ms0 *serde.MapWriter) {",
		"for key0, value0 := range input.M {",
		"ms0.Entry(key0, VDocumentSerializer{Value: value0})",
	)

	deser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, str)
	})
	expectContains(t, deser,
		"collection0 := map[string]*model.V{}",
		"key0 := ms0.Key()",
		"if !ms0.NextHasValue() {\n\t\t\t\t\tms0.DeserializeNull()\n\t\t\t\t\tcontinue",
		"v1, err := VDocumentDeserializer{}.Deserialize(ms0.Deserializer())",
		"collection0[key0] = v1",
	)
}

func TestNestedContainerSerde(t *testing.T) {
	inner := model.NewShape(model.ParseShapeID("com.test#IntMap"), model.ShapeTypeMap, nil,
		&model.Member{Name: "key", Target: model.ParseShapeID("smithy.api#String")},
		&model.Member{Name: "value", Target: model.ParseShapeID("smithy.api#Integer")},
	)
	outer := model.NewShape(model.ParseShapeID("com.test#MapList"), model.ShapeTypeList, nil,
		&model.Member{Name: "member", Target: inner.ID},
	)
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "foo", Target: outer.ID},
	)
	g, _ := newGenerator(t, inner, outer, str)

	ser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, str)
	})
	expectContains(t, ser,
		"st.ListField(sFooDescriptor, func(ls0 *serde.ListWriter) {",
		"for _, m0 := range input.Foo {",
		// the nested map opens with the descriptor at its own level
		"ls0.SerializeMap(sFooC0Descriptor, func(ms1 *serde.MapWriter) {",
		"for key1, value1 := range m0 {",
		"ms1.Entry(key1, value1)",
	)

	deser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, str)
	})
	expectContains(t, deser,
		"collection0 := []map[string]int32{}",
		"ls0 := st.DeserializeList(sFooDescriptor)",
		"collection1 := map[string]int32{}",
		"ms1 := ls0.DeserializeMap(sFooC0Descriptor)",
		"v2 := ms1.DeserializeInteger()",
		"collection1[key1] = v2",
		"collection0 = append(collection0, collection1)",
	)
}

func TestTimestampFormats(t *testing.T) {
	httpDateTS := model.NewShape(model.ParseShapeID("com.test#HTTPDateTS"), model.ShapeTypeTimestamp,
		model.TraitMap{"smithy.api#timestampFormat": &traits.TimestampFormat{Format: traits.TimestampHTTPDate}})
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "a", Target: model.ParseShapeID("smithy.api#Timestamp")},
		&model.Member{Name: "b", Target: model.ParseShapeID("smithy.api#Timestamp"),
			Traits: model.TraitMap{"smithy.api#timestampFormat": &traits.TimestampFormat{Format: traits.TimestampDateTime}}},
		&model.Member{Name: "c", Target: httpDateTS.ID},
	)
	g, _ := newGenerator(t, httpDateTS, str)

	ser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, str)
	})
	expectContains(t, ser,
		// protocol default epoch-seconds is numeric, so a raw field
		"st.RawField(sADescriptor, smithytime.FormatEpochSeconds(*input.A))",
		"st.Field(sBDescriptor, smithytime.FormatDateTime(*input.B))",
		"st.Field(sCDescriptor, smithytime.FormatHTTPDate(*input.C))",
	)

	deser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, str)
	})
	expectContains(t, deser,
		"v0 := smithytime.ParseEpochSeconds(st.DeserializeDouble())",
		"v0, err := smithytime.ParseDateTime(st.DeserializeString())",
		"v0, err := smithytime.ParseHTTPDate(st.DeserializeString())",
	)
}

func TestEnumSerde(t *testing.T) {
	yn := model.NewShape(model.ParseShapeID("com.test#Yn"), model.ShapeTypeString,
		model.TraitMap{"smithy.api#enum": &traits.Enum{Values: []traits.EnumValue{
			{Value: "YES", Name: "YES"}, {Value: "NO", Name: "NO"},
		}}})
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "v", Target: yn.ID},
	)
	g, _ := newGenerator(t, yn, str)

	ser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, str)
	})
	expectContains(t, ser,
		"if input.V != nil {",
		"st.Field(sVDescriptor, input.V.Value())",
	)

	deser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, str)
	})
	expectContains(t, deser,
		"v0 := model.YnFromValue(st.DeserializeString())",
		"builder.V = &v0",
	)
}

func TestIdempotencyToken(t *testing.T) {
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "token", Target: model.ParseShapeID("smithy.api#String"),
			Traits: model.TraitMap{"smithy.api#idempotencyToken": &traits.IdempotencyToken{}}},
	)
	g, _ := newGenerator(t, str)

	out := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, str)
	})
	expectContains(t, out,
		"if input.Token != nil {",
		"st.Field(sTokenDescriptor, *input.Token)",
		"} else {",
		"st.Field(sTokenDescriptor, s.Context().IdempotencyTokenProvider.GenerateToken())",
	)
}

func TestUnionSerde(t *testing.T) {
	nested := model.NewShape(model.ParseShapeID("com.test#Nested"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "f", Target: model.ParseShapeID("smithy.api#String")},
	)
	choice := model.NewShape(model.ParseShapeID("com.test#Choice"), model.ShapeTypeUnion, nil,
		&model.Member{Name: "s", Target: model.ParseShapeID("smithy.api#String")},
		&model.Member{Name: "n", Target: nested.ID},
	)
	g, _ := newGenerator(t, nested, choice)

	ser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, choice)
	})
	expectContains(t, ser,
		"Value model.Choice",
		"switch v := d.Value.(type) {",
		"case *model.ChoiceMemberN:",
		"st.Field(choiceNDescriptor, NestedDocumentSerializer{Value: v.Value})",
		"case *model.ChoiceMemberS:",
		"st.Field(choiceSDescriptor, v.Value)",
	)

	deser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, choice)
	})
	expectContains(t, deser,
		"var result model.Choice",
		"result = &model.ChoiceMemberS{Value: v0}",
		"result = &model.ChoiceMemberN{Value: v0}",
		"return result, nil",
	)
}

func TestBlobSerde(t *testing.T) {
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "data", Target: model.ParseShapeID("smithy.api#Blob")},
	)
	g, _ := newGenerator(t, str)

	ser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentSerializer(w, str)
	})
	expectContains(t, ser, "st.Field(sDataDescriptor, base64.EncodeToString(input.Data))")

	deser := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, str)
	})
	expectContains(t, deser,
		"v0, err := base64.DecodeString(st.DeserializeString())",
		"builder.Data = v0",
	)
}

func TestJSONNameOverridesSerialName(t *testing.T) {
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "camelHere", Target: model.ParseShapeID("smithy.api#String"),
			Traits: model.TraitMap{"smithy.api#jsonName": &traits.JSONName{Name: "camel_here"}}},
	)
	g, _ := newGenerator(t, str)

	strSym, _ := g.Symbols.SymbolOf(str)
	out := render(t, func(w *writer.Writer) error {
		_, err := g.EmitDescriptors(w, str, strSym)
		return err
	})
	expectContains(t, out, `serde.NewFieldDescriptor("camel_here", serde.KindString)`)
}

func TestDeserializeDispatchLoop(t *testing.T) {
	str := model.NewShape(model.ParseShapeID("com.test#S"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "a", Target: model.ParseShapeID("smithy.api#String")},
	)
	g, _ := newGenerator(t, str)

	out := render(t, func(w *writer.Writer) error {
		return g.EmitDocumentDeserializer(w, str)
	})
	expectContains(t, out,
		"st := ds.DeserializeStruct(sObjDescriptor)",
		"idx := st.FindNextFieldIndex()",
		"if idx == serde.NoMoreFields {",
		"case sADescriptor.Index():",
		"default:\n\t\t\tst.SkipValue()",
		"if err := st.Err(); err != nil {",
	)
}
