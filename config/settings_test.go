package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smithy-lang/smithy-gogen/model"
)

func TestParseYAML(t *testing.T) {
	doc := `
service: com.test#Weather
module: github.com/example/weather
moduleVersion: 1.2.3
sdkId: Weather
shapes:
  include:
    - "com.test#*"
  exclude:
    - "com.test#Internal*"
integrations:
  paginator:
    strict: true
`
	s, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "com.test#Weather", s.Service)
	assert.Equal(t, model.ShapeID{Namespace: "com.test", Name: "Weather"}, s.ServiceID())
	assert.Equal(t, "weather", s.ClientPackage())
	assert.Equal(t, map[string]interface{}{"strict": true}, s.IntegrationOptions("paginator"))
	assert.Nil(t, s.IntegrationOptions("unknown"))
}

func TestParseJSON(t *testing.T) {
	doc := `{"service": "com.test#Weather", "module": "github.com/example/weather"}`
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "com.test#Weather", s.Service)
	assert.Equal(t, "0.0.1", s.ModuleVersion)
	assert.Equal(t, "Weather", s.SdkID)
}

func TestValidation(t *testing.T) {
	_, err := Parse([]byte(`module: github.com/example/weather`))
	assert.Error(t, err)

	_, err = Parse([]byte(`service: NoNamespace`))
	assert.Error(t, err)

	_, err = Parse([]byte(`service: com.test#Weather`))
	assert.Error(t, err)
}

func TestIncludeShape(t *testing.T) {
	s := &Settings{
		Shapes: ShapeFilters{
			Include: []string{"com.test#*"},
			Exclude: []string{"com.test#Hidden*"},
		},
	}

	assert.True(t, s.IncludeShape(model.ParseShapeID("com.test#Visible")))
	assert.False(t, s.IncludeShape(model.ParseShapeID("com.test#HiddenThing")))
	assert.False(t, s.IncludeShape(model.ParseShapeID("other.ns#Visible")))

	open := &Settings{}
	assert.True(t, open.IncludeShape(model.ParseShapeID("any.ns#Shape")))
}
