package model

import (
	"strings"

	smithygogen "github.com/smithy-lang/smithy-gogen"
)

// PathSegment is one segment of an http trait URI pattern.
type PathSegment struct {
	// Content is the literal text, or the label name when IsLabel is set.
	Content string
	IsLabel bool
	// Greedy marks a {label+} segment that may span multiple path segments.
	Greedy bool
}

// QueryLiteral is a literal key/value pair carried by the URI pattern itself.
type QueryLiteral struct {
	Key   string
	Value string
}

// URIPattern is a parsed http trait URI.
type URIPattern struct {
	Segments []PathSegment
	Query    []QueryLiteral
}

// ParseURIPattern parses the URI of an http trait, e.g.
// "/smoketest/{label1}/foo?literal=1". The shapeID names the operation for
// diagnostics.
func ParseURIPattern(uri string, shapeID ShapeID) (*URIPattern, error) {
	path, rawQuery, _ := strings.Cut(uri, "?")
	if !strings.HasPrefix(path, "/") {
		return nil, smithygogen.Errorf(smithygogen.ErrInvalidBinding, shapeID.String(), "http uri must be absolute, got %q", uri)
	}

	p := &URIPattern{}
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			label := seg[1 : len(seg)-1]
			greedy := strings.HasSuffix(label, "+")
			label = strings.TrimSuffix(label, "+")
			if label == "" {
				return nil, smithygogen.Errorf(smithygogen.ErrInvalidBinding, shapeID.String(), "empty label in uri %q", uri)
			}
			p.Segments = append(p.Segments, PathSegment{Content: label, IsLabel: true, Greedy: greedy})
			continue
		}
		if strings.ContainsAny(seg, "{}") {
			return nil, smithygogen.Errorf(smithygogen.ErrInvalidBinding, shapeID.String(), "malformed segment %q in uri %q", seg, uri)
		}
		p.Segments = append(p.Segments, PathSegment{Content: seg})
	}

	if rawQuery != "" {
		for _, pair := range strings.Split(rawQuery, "&") {
			k, v, _ := strings.Cut(pair, "=")
			p.Query = append(p.Query, QueryLiteral{Key: k, Value: v})
		}
	}
	return p, nil
}

// Labels returns the label names in path order.
func (p *URIPattern) Labels() []string {
	var out []string
	for _, seg := range p.Segments {
		if seg.IsLabel {
			out = append(out, seg.Content)
		}
	}
	return out
}
