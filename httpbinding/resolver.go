// Package httpbinding classifies operation members into HTTP locations and
// resolves the content-type and timestamp-format policy for a protocol.
package httpbinding

import (
	"sort"

	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
)

// Location is the HTTP request/response component a member binds to.
type Location int

// Enumerates binding locations.
const (
	LocationDocument Location = iota
	LocationLabel
	LocationQuery
	LocationQueryParams
	LocationHeader
	LocationPrefixHeaders
	LocationPayload
	LocationResponseCode
)

var locationNames = map[Location]string{
	LocationDocument:      "document",
	LocationLabel:         "label",
	LocationQuery:         "query",
	LocationQueryParams:   "queryParams",
	LocationHeader:        "header",
	LocationPrefixHeaders: "prefixHeaders",
	LocationPayload:       "payload",
	LocationResponseCode:  "responseCode",
}

// String names the location.
func (l Location) String() string { return locationNames[l] }

// Binding classifies one member into an HTTP location.
type Binding struct {
	Member   *model.Member
	Location Location
	// LocationName is the wire name for header/query/label locations, or the
	// prefix for prefixHeaders.
	LocationName string
}

// Resolver computes HTTP bindings against a protocol's defaults.
type Resolver struct {
	model *model.Model

	// DefaultContentType is the protocol's document body content type, e.g.
	// "application/json".
	DefaultContentType string
	// DefaultTimestampFormat is the protocol's document timestamp format.
	DefaultTimestampFormat string
}

// NewResolver creates a binding resolver for the model with the given
// protocol document content type and timestamp format.
func NewResolver(m *model.Model, contentType, timestampFormat string) *Resolver {
	return &Resolver{
		model:                  m,
		DefaultContentType:     contentType,
		DefaultTimestampFormat: timestampFormat,
	}
}

// BindingOperations returns the service operations carrying an http trait and,
// as the second result, those without it, both in ID order. The caller may
// warn about the second set.
func (r *Resolver) BindingOperations(service *model.Shape) ([]*model.Shape, []*model.Shape, error) {
	ops, err := r.model.OperationsOf(service)
	if err != nil {
		return nil, nil, err
	}
	var bound, unbound []*model.Shape
	for _, op := range ops {
		if model.HasTrait[*traits.HTTP](op.Traits) {
			bound = append(bound, op)
		} else {
			unbound = append(unbound, op)
		}
	}
	return bound, unbound, nil
}

// HTTPTrait returns the operation's http trait with its parsed URI pattern.
func (r *Resolver) HTTPTrait(op *model.Shape) (*traits.HTTP, *model.URIPattern, error) {
	ht, ok := model.GetTrait[*traits.HTTP](op.Traits)
	if !ok {
		return nil, nil, smithygogen.Errorf(smithygogen.ErrUnknownTrait, op.ID.String(), "operation has no http trait")
	}
	pattern, err := model.ParseURIPattern(ht.URI, op.ID)
	if err != nil {
		return nil, nil, err
	}
	return ht, pattern, nil
}

// RequestBindings classifies the members of the operation's input structure.
// Bindings are returned sorted by member name.
func (r *Resolver) RequestBindings(op *model.Shape) ([]Binding, error) {
	if op.Input == (model.ShapeID{}) {
		return nil, nil
	}
	input, err := r.model.ExpectShape(op.Input)
	if err != nil {
		return nil, err
	}
	return r.bindMembers(input, false)
}

// ResponseBindings classifies the members of an operation output or error
// structure. Bindings are returned sorted by member name.
func (r *Resolver) ResponseBindings(shape *model.Shape) ([]Binding, error) {
	target := shape
	if shape.Type == model.ShapeTypeOperation {
		if shape.Output == (model.ShapeID{}) {
			return nil, nil
		}
		out, err := r.model.ExpectShape(shape.Output)
		if err != nil {
			return nil, err
		}
		target = out
	}
	return r.bindMembers(target, true)
}

func (r *Resolver) bindMembers(str *model.Shape, response bool) ([]Binding, error) {
	var out []Binding
	var payloads, prefixHeaders, documents int

	for _, mem := range str.SortedMembers() {
		b, err := r.classify(str, mem, response)
		if err != nil {
			return nil, err
		}
		switch b.Location {
		case LocationPayload:
			payloads++
		case LocationPrefixHeaders:
			prefixHeaders++
		case LocationDocument:
			documents++
		}
		out = append(out, b)
	}

	if payloads > 1 {
		return nil, smithygogen.Errorf(smithygogen.ErrInvalidBinding, str.ID.String(),
			"at most one httpPayload member is allowed, found %d", payloads)
	}
	if prefixHeaders > 1 {
		return nil, smithygogen.Errorf(smithygogen.ErrInvalidBinding, str.ID.String(),
			"at most one httpPrefixHeaders member is allowed, found %d", prefixHeaders)
	}
	if payloads == 1 && documents > 0 {
		return nil, smithygogen.Errorf(smithygogen.ErrInvalidBinding, str.ID.String(),
			"httpPayload excludes document-bound members, found %d", documents)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Member.Name < out[j].Member.Name })
	return out, nil
}

func (r *Resolver) classify(str *model.Shape, mem *model.Member, response bool) (Binding, error) {
	target, err := r.model.TargetOf(mem)
	if err != nil {
		return Binding{}, err
	}

	switch {
	case model.HasTrait[*traits.HTTPLabel](mem.Traits):
		if response {
			return Binding{}, smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(), "httpLabel is a request-only binding")
		}
		return Binding{Member: mem, Location: LocationLabel, LocationName: mem.Name}, nil

	case model.HasTrait[*traits.HTTPResponseCode](mem.Traits):
		if !response {
			return Binding{}, smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(), "httpResponseCode is a response-only binding")
		}
		if target.Type != model.ShapeTypeInteger {
			return Binding{}, smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(),
				"httpResponseCode must target an integer, targets %s", target.Type)
		}
		return Binding{Member: mem, Location: LocationResponseCode}, nil

	case model.HasTrait[*traits.HTTPQueryParams](mem.Traits):
		if response {
			return Binding{}, smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(), "httpQueryParams is a request-only binding")
		}
		if target.Type != model.ShapeTypeMap {
			return Binding{}, smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(),
				"httpQueryParams must target a map, targets %s", target.Type)
		}
		return Binding{Member: mem, Location: LocationQueryParams}, nil

	case model.HasTrait[*traits.HTTPPrefixHeaders](mem.Traits):
		t, _ := model.GetTrait[*traits.HTTPPrefixHeaders](mem.Traits)
		if target.Type != model.ShapeTypeMap {
			return Binding{}, smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(),
				"httpPrefixHeaders must target a map, targets %s", target.Type)
		}
		return Binding{Member: mem, Location: LocationPrefixHeaders, LocationName: t.Prefix}, nil

	case model.HasTrait[*traits.HTTPQuery](mem.Traits):
		if response {
			return Binding{}, smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(), "httpQuery is a request-only binding")
		}
		t, _ := model.GetTrait[*traits.HTTPQuery](mem.Traits)
		return Binding{Member: mem, Location: LocationQuery, LocationName: t.Name}, nil

	case model.HasTrait[*traits.HTTPHeader](mem.Traits):
		t, _ := model.GetTrait[*traits.HTTPHeader](mem.Traits)
		return Binding{Member: mem, Location: LocationHeader, LocationName: t.Name}, nil

	case model.HasTrait[*traits.HTTPPayload](mem.Traits):
		return Binding{Member: mem, Location: LocationPayload}, nil

	default:
		return Binding{Member: mem, Location: LocationDocument}, nil
	}
}

// DocumentBindings filters bindings to the document location.
func DocumentBindings(bindings []Binding) []Binding {
	var out []Binding
	for _, b := range bindings {
		if b.Location == LocationDocument {
			out = append(out, b)
		}
	}
	return out
}

// PayloadBinding returns the payload binding, if present.
func PayloadBinding(bindings []Binding) (Binding, bool) {
	for _, b := range bindings {
		if b.Location == LocationPayload {
			return b, true
		}
	}
	return Binding{}, false
}

// ContentType resolves the request content type for the operation's bindings.
// It returns ok=false when the operation has no body; the operation
// serializer then emits no Content-Type header.
func (r *Resolver) ContentType(bindings []Binding) (string, bool, error) {
	if payload, ok := PayloadBinding(bindings); ok {
		target, err := r.model.TargetOf(payload.Member)
		if err != nil {
			return "", false, err
		}
		if mt, ok := model.GetTrait[*traits.MediaType](target.Traits); ok {
			return mt.Type, true, nil
		}
		switch target.Type {
		case model.ShapeTypeBlob:
			return "application/octet-stream", true, nil
		case model.ShapeTypeString:
			return "text/plain", true, nil
		case model.ShapeTypeStructure, model.ShapeTypeUnion, model.ShapeTypeDocument:
			return r.DefaultContentType, true, nil
		default:
			return "", false, smithygogen.Errorf(smithygogen.ErrInvalidBinding, payload.Member.ID.String(),
				"httpPayload cannot target %s", target.Type)
		}
	}
	if len(DocumentBindings(bindings)) > 0 {
		return r.DefaultContentType, true, nil
	}
	return "", false, nil
}

// locationTimestampDefaults are the Smithy HTTP binding defaults per
// location; the document default comes from the protocol.
var locationTimestampDefaults = map[Location]string{
	LocationLabel:       traits.TimestampDateTime,
	LocationQuery:       traits.TimestampDateTime,
	LocationQueryParams: traits.TimestampDateTime,
	LocationHeader:      traits.TimestampHTTPDate,
}

// TimestampFormat resolves the timestamp format for a member at a location.
// Precedence: member trait, then target shape trait, then the location
// default, then the protocol default.
func (r *Resolver) TimestampFormat(mem *model.Member, loc Location) (string, error) {
	format := ""
	if t, ok := model.GetTrait[*traits.TimestampFormat](mem.Traits); ok {
		format = t.Format
	} else if target, err := r.model.TargetOf(mem); err == nil {
		if t, ok := model.GetTrait[*traits.TimestampFormat](target.Traits); ok {
			format = t.Format
		}
	}
	if format == "" {
		format = locationTimestampDefaults[loc]
	}
	if format == "" {
		format = r.DefaultTimestampFormat
	}

	switch format {
	case traits.TimestampEpochSeconds, traits.TimestampDateTime, traits.TimestampHTTPDate:
		return format, nil
	default:
		return "", smithygogen.Errorf(smithygogen.ErrUnknownTimestampFormat, mem.ID.String(),
			"unrecognized timestamp format %q", format)
	}
}
