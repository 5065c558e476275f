package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smithy-lang/smithy-gogen/config"
	"github.com/smithy-lang/smithy-gogen/integration"
	"github.com/smithy-lang/smithy-gogen/logging"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/protocol"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

func testSettings() *config.Settings {
	return &config.Settings{
		Service:       "com.test#Weather",
		Module:        "github.com/example/weather",
		ModuleVersion: "1.0.0",
		SdkID:         "Weather",
		NoHeader:      true,
	}
}

// weatherModel builds a service with one operation exercising labels,
// a query, a nested document struct, an enum, and a modeled error.
func weatherModel() *model.Model {
	stringID := model.ParseShapeID("smithy.api#String")

	yn := model.NewShape(model.ParseShapeID("com.test#Yn"), model.ShapeTypeString,
		model.TraitMap{"smithy.api#enum": &traits.Enum{Values: []traits.EnumValue{
			{Value: "YES", Name: "YES"}, {Value: "NO", Name: "NO"},
		}}})
	nested := model.NewShape(model.ParseShapeID("com.test#Nested"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "nestedField1", Target: stringID},
		&model.Member{Name: "flag", Target: yn.ID},
	)
	req := model.NewShape(model.ParseShapeID("com.test#SmokeTestRequest"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "label1", Target: stringID,
			Traits: model.TraitMap{
				"smithy.api#httpLabel": &traits.HTTPLabel{},
				"smithy.api#required":  &traits.Required{},
			}},
		&model.Member{Name: "query1", Target: stringID,
			Traits: model.TraitMap{"smithy.api#httpQuery": &traits.HTTPQuery{Name: "Query1"}}},
		&model.Member{Name: "payload3", Target: nested.ID},
	)
	resp := model.NewShape(model.ParseShapeID("com.test#SmokeTestResponse"), model.ShapeTypeStructure, nil,
		&model.Member{Name: "payload3", Target: nested.ID},
	)
	tooSlow := model.NewShape(model.ParseShapeID("com.test#TooSlow"), model.ShapeTypeStructure,
		model.TraitMap{
			"smithy.api#error":     &traits.Error{Fault: "client"},
			"smithy.api#httpError": &traits.HTTPError{Code: 429},
		},
		&model.Member{Name: "message", Target: stringID},
	)
	op := model.NewShape(model.ParseShapeID("com.test#SmokeTest"), model.ShapeTypeOperation,
		model.TraitMap{"smithy.api#http": &traits.HTTP{Method: "POST", URI: "/smoketest/{label1}/foo", Code: 200}})
	op.Input = req.ID
	op.Output = resp.ID
	op.Errors = []model.ShapeID{tooSlow.ID}

	svc := model.NewShape(model.ParseShapeID("com.test#Weather"), model.ShapeTypeService, nil)
	svc.Version = "2024-01-01"
	svc.Operations = []model.ShapeID{op.ID}

	str := model.NewShape(stringID, model.ShapeTypeString, nil)
	return model.NewModel(yn, nested, req, resp, tooSlow, op, svc, str)
}

func emitAll(t *testing.T, g *Generator, m *model.Model) map[string]string {
	t.Helper()
	delegator, err := g.Emit(m)
	require.NoError(t, err)
	files, err := delegator.RenderAll()
	require.NoError(t, err)
	return files
}

func TestRunEmitsExpectedFiles(t *testing.T) {
	g := New(testSettings(), integration.NewPipeline())
	files := emitAll(t, g, weatherModel())

	var paths []string
	for p := range files {
		paths = append(paths, p)
	}

	expect := []string{
		"model/Nested.go",
		"model/SmokeTestRequest.go",
		"model/SmokeTestResponse.go",
		"model/TooSlow.go",
		"model/Yn.go",
		"transform/NestedDocumentSerializer.go",
		"transform/NestedDocumentDeserializer.go",
		"transform/SmokeTestOperationSerializer.go",
		"transform/SmokeTestOperationDeserializer.go",
		"transform/TooSlowDeserializer.go",
		"DefaultWeather.go",
	}
	for _, p := range expect {
		assert.Contains(t, paths, p, "expect %s generated", p)
	}
	assert.Len(t, paths, len(expect))
}

func TestDeterministicOutput(t *testing.T) {
	g1 := New(testSettings(), integration.NewPipeline())
	g2 := New(testSettings(), integration.NewPipeline())

	files1 := emitAll(t, g1, weatherModel())
	files2 := emitAll(t, g2, weatherModel())

	require.Equal(t, len(files1), len(files2))
	for p, content := range files1 {
		assert.Equal(t, content, files2[p], "expect byte-identical output for %s", p)
	}
}

func TestGeneratedEnum(t *testing.T) {
	g := New(testSettings(), integration.NewPipeline())
	files := emitAll(t, g, weatherModel())

	enum := files["model/Yn.go"]
	require.NotEmpty(t, enum)
	assert.Contains(t, enum, "type Yn struct {")
	assert.Contains(t, enum, "YnYes = Yn{value: \"YES\"}")
	assert.Contains(t, enum, "YnNo = Yn{value: \"NO\"}")
	assert.Contains(t, enum, "func YnSdkUnknown(value string) Yn { return Yn{value: value} }")
	assert.Contains(t, enum, "func YnFromValue(value string) Yn {")
	assert.Contains(t, enum, "return YnSdkUnknown(value)")
}

func TestGeneratedStructFields(t *testing.T) {
	g := New(testSettings(), integration.NewPipeline())
	files := emitAll(t, g, weatherModel())

	req := files["model/SmokeTestRequest.go"]
	require.NotEmpty(t, req)
	flat := strings.ReplaceAll(req, "\t", "")
	// required member is a value, optional members are pointers, and sibling
	// model types are unqualified
	assert.Contains(t, flat, "Label1 string")
	assert.Contains(t, flat, "Query1 *string")
	assert.Contains(t, flat, "Payload3 *Nested")
	assert.NotContains(t, flat, "model.Nested")

	errFile := files["model/TooSlow.go"]
	assert.Contains(t, errFile, "func (e *TooSlow) Error() string {")
}

func TestHeaderSuppression(t *testing.T) {
	settings := testSettings()
	settings.NoHeader = false
	g := New(settings, integration.NewPipeline())
	files := emitAll(t, g, weatherModel())
	for _, content := range files {
		assert.Contains(t, content, "// Code generated by smithy-gogen. DO NOT EDIT.")
		assert.Contains(t, content, "// Build ")
		break
	}

	settings2 := testSettings()
	g2 := New(settings2, integration.NewPipeline())
	files2 := emitAll(t, g2, weatherModel())
	for _, content := range files2 {
		assert.NotContains(t, content, "// Build ")
	}
}

type regionIntegration struct {
	integration.Base
}

func (regionIntegration) Name() string { return "region" }

func (regionIntegration) AdditionalConfigProps(*integration.Context) []protocol.ConfigProperty {
	return []protocol.ConfigProperty{{
		Name: "Region",
		Type: symbol.Builtin("string", `""`),
		Docs: "Signing region.",
	}}
}

type extraFileIntegration struct {
	integration.Base
}

func (extraFileIntegration) Name() string { return "docs" }

func (extraFileIntegration) WriteAdditionalFiles(ctx *integration.Context, delegator integration.Delegator) error {
	return delegator.UseFileWriter("docs.go", ctx.Settings.ClientPackage(), func(w *writer.Writer) error {
		w.Write("// Package $L is generated from the $L service model.", ctx.Settings.ClientPackage(), ctx.Settings.SdkID)
		return nil
	})
}

func TestIntegrationHooks(t *testing.T) {
	g := New(testSettings(), integration.NewPipeline(extraFileIntegration{}, regionIntegration{}))
	files := emitAll(t, g, weatherModel())

	docs := files["docs.go"]
	require.NotEmpty(t, docs)
	assert.Contains(t, docs, "generated from the Weather service model")

	client := files["DefaultWeather.go"]
	require.NotEmpty(t, client)
	assert.Contains(t, client, "// Signing region.")
	assert.Contains(t, client, "Region string")
}

func TestOperationWithoutHTTPTraitWarnsAndSkips(t *testing.T) {
	m := weatherModel()
	bare := model.NewShape(model.ParseShapeID("com.test#Bare"), model.ShapeTypeOperation, nil)
	m.Add(bare)
	svc, _ := m.Service()
	svc.Operations = append(svc.Operations, bare.ID)

	g := New(testSettings(), integration.NewPipeline())
	var logs strings.Builder
	g.Logger = logging.NewStandardLogger(&logs)
	files := emitAll(t, g, m)

	assert.Contains(t, logs.String(), "WARN operation com.test#Bare has no http trait, skipping")
	for p := range files {
		assert.NotContains(t, p, "Bare", "expect no files for the unbound operation")
	}
}
