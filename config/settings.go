// Package config holds the generation settings supplied by the driver.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/smithy-lang/smithy-gogen/model"
)

// Settings configures one code-generation run.
type Settings struct {
	// Service is the shape ID of the service to generate.
	Service string `yaml:"service"`
	// Module is the Go module path of the generated client.
	Module string `yaml:"module"`
	// ModuleVersion is the version stamped into generated metadata.
	ModuleVersion string `yaml:"moduleVersion"`
	// SdkID names the SDK in the generated client's User-Agent header value.
	SdkID string `yaml:"sdkId"`

	// NoHeader suppresses the generated file header carrying the build
	// timestamp and ID, making output byte-identical across runs.
	NoHeader bool `yaml:"noHeader"`

	// Shapes filters which model shapes are eligible for generation.
	Shapes ShapeFilters `yaml:"shapes"`

	// Integrations carries per-integration option maps keyed by integration
	// name.
	Integrations map[string]map[string]interface{} `yaml:"integrations"`
}

// ShapeFilters are doublestar glob patterns matched against shape IDs, e.g.
// "com.example#*" or "**". An empty include list admits every shape.
type ShapeFilters struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Load reads settings from a YAML or JSON document. JSON parses as a YAML
// subset, so both use the same decoder.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates settings.
func Parse(data []byte) (*Settings, error) {
	s := &Settings{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the required fields.
func (s *Settings) Validate() error {
	if s.Service == "" {
		return fmt.Errorf("settings: service is required")
	}
	if !strings.Contains(s.Service, "#") {
		return fmt.Errorf("settings: service %q is not an absolute shape ID", s.Service)
	}
	if s.Module == "" {
		return fmt.Errorf("settings: module is required")
	}
	if s.ModuleVersion == "" {
		s.ModuleVersion = "0.0.1"
	}
	if s.SdkID == "" {
		s.SdkID = model.ParseShapeID(s.Service).Name
	}
	return nil
}

// ServiceID returns the parsed service shape ID.
func (s *Settings) ServiceID() model.ShapeID {
	return model.ParseShapeID(s.Service)
}

// ClientPackage is the package name of the generated client root: the final
// module path element, lowercased.
func (s *Settings) ClientPackage() string {
	pkg := s.Module
	if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
		pkg = pkg[i+1:]
	}
	return strings.ToLower(strings.ReplaceAll(pkg, "-", ""))
}

// IncludeShape reports whether a shape ID passes the configured filters.
// Excludes win over includes.
func (s *Settings) IncludeShape(id model.ShapeID) bool {
	name := id.String()
	for _, pattern := range s.Shapes.Exclude {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return false
		}
	}
	if len(s.Shapes.Include) == 0 {
		return true
	}
	for _, pattern := range s.Shapes.Include {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// IntegrationOptions returns the raw option map for a named integration.
func (s *Settings) IntegrationOptions(name string) map[string]interface{} {
	return s.Integrations[name]
}
