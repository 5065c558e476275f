package model

import (
	"encoding/json"

	"github.com/smithy-lang/smithy-gogen/model/traits"
)

// traitDecoders maps trait IDs to decoders from the raw trait node. Traits
// without a decoder are preserved as traits.Opaque so integrations can still
// inspect them.
var traitDecoders = map[string]func(raw json.RawMessage) traits.Trait{
	"smithy.api#required":         func(json.RawMessage) traits.Trait { return &traits.Required{} },
	"smithy.api#sparse":           func(json.RawMessage) traits.Trait { return &traits.Sparse{} },
	"smithy.api#streaming":        func(json.RawMessage) traits.Trait { return &traits.Streaming{} },
	"smithy.api#idempotencyToken": func(json.RawMessage) traits.Trait { return &traits.IdempotencyToken{} },
	"smithy.api#sensitive":        func(json.RawMessage) traits.Trait { return &traits.Sensitive{} },
	"smithy.api#httpLabel":        func(json.RawMessage) traits.Trait { return &traits.HTTPLabel{} },
	"smithy.api#httpPayload":      func(json.RawMessage) traits.Trait { return &traits.HTTPPayload{} },
	"smithy.api#httpQueryParams":  func(json.RawMessage) traits.Trait { return &traits.HTTPQueryParams{} },
	"smithy.api#httpResponseCode": func(json.RawMessage) traits.Trait { return &traits.HTTPResponseCode{} },

	"smithy.api#error": func(raw json.RawMessage) traits.Trait {
		var fault string
		json.Unmarshal(raw, &fault)
		return &traits.Error{Fault: fault}
	},
	"smithy.api#httpQuery": func(raw json.RawMessage) traits.Trait {
		var name string
		json.Unmarshal(raw, &name)
		return &traits.HTTPQuery{Name: name}
	},
	"smithy.api#httpHeader": func(raw json.RawMessage) traits.Trait {
		var name string
		json.Unmarshal(raw, &name)
		return &traits.HTTPHeader{Name: name}
	},
	"smithy.api#httpPrefixHeaders": func(raw json.RawMessage) traits.Trait {
		var prefix string
		json.Unmarshal(raw, &prefix)
		return &traits.HTTPPrefixHeaders{Prefix: prefix}
	},
	"smithy.api#jsonName": func(raw json.RawMessage) traits.Trait {
		var name string
		json.Unmarshal(raw, &name)
		return &traits.JSONName{Name: name}
	},
	"smithy.api#mediaType": func(raw json.RawMessage) traits.Trait {
		var typ string
		json.Unmarshal(raw, &typ)
		return &traits.MediaType{Type: typ}
	},
	"smithy.api#timestampFormat": func(raw json.RawMessage) traits.Trait {
		var format string
		json.Unmarshal(raw, &format)
		return &traits.TimestampFormat{Format: format}
	},
	"smithy.api#documentation": func(raw json.RawMessage) traits.Trait {
		var text string
		json.Unmarshal(raw, &text)
		return &traits.Documentation{Text: text}
	},
	"smithy.api#http": func(raw json.RawMessage) traits.Trait {
		var node struct {
			Method string `json:"method"`
			URI    string `json:"uri"`
			Code   int    `json:"code"`
		}
		json.Unmarshal(raw, &node)
		return &traits.HTTP{Method: node.Method, URI: node.URI, Code: node.Code}
	},
	"smithy.api#httpError": func(raw json.RawMessage) traits.Trait {
		var code int
		json.Unmarshal(raw, &code)
		return &traits.HTTPError{Code: code}
	},
	"smithy.api#enum": func(raw json.RawMessage) traits.Trait {
		var node []struct {
			Value string `json:"value"`
			Name  string `json:"name"`
		}
		json.Unmarshal(raw, &node)
		t := &traits.Enum{}
		for _, v := range node {
			t.Values = append(t.Values, traits.EnumValue{Value: v.Value, Name: v.Name})
		}
		return t
	},
	"smithy.api#paginated": func(raw json.RawMessage) traits.Trait {
		var node struct {
			InputToken  string `json:"inputToken"`
			OutputToken string `json:"outputToken"`
			Items       string `json:"items"`
			PageSize    string `json:"pageSize"`
		}
		json.Unmarshal(raw, &node)
		return &traits.Paginated{
			InputToken:  node.InputToken,
			OutputToken: node.OutputToken,
			Items:       node.Items,
			PageSize:    node.PageSize,
		}
	},
	"smithy.api#deprecated": func(raw json.RawMessage) traits.Trait {
		var node struct {
			Message string `json:"message"`
			Since   string `json:"since"`
		}
		json.Unmarshal(raw, &node)
		return &traits.Deprecated{Message: node.Message, Since: node.Since}
	},
}

func decodeTraits(raw map[string]json.RawMessage) TraitMap {
	tm := TraitMap{}
	for id, node := range raw {
		if decode, ok := traitDecoders[id]; ok {
			tm[id] = decode(node)
			continue
		}
		var value interface{}
		json.Unmarshal(node, &value)
		tm[id] = &traits.Opaque{ID: id, Value: value}
	}
	return tm
}
