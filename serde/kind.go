// Package serde builds field descriptors and emits the recursive document
// serialization and deserialization code for generated shapes.
package serde

import (
	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/symbol"
)

// Kind is the serial kind tag carried by an emitted field descriptor. Values
// render as the runtime's serde.Kind* identifiers.
type Kind string

// Enumerates serial kinds. Sets collapse to List; unions serialize as Struct.
const (
	KindBoolean   Kind = "Boolean"
	KindByte      Kind = "Byte"
	KindShort     Kind = "Short"
	KindInteger   Kind = "Integer"
	KindLong      Kind = "Long"
	KindFloat     Kind = "Float"
	KindDouble    Kind = "Double"
	KindString    Kind = "String"
	KindBlob      Kind = "Blob"
	KindTimestamp Kind = "Timestamp"
	KindDocument  Kind = "Document"
	KindBigNumber Kind = "BigNumber"
	KindList      Kind = "List"
	KindMap       Kind = "Map"
	KindStruct    Kind = "Struct"
)

// KindOf maps a target shape to its serial kind.
func KindOf(shape *model.Shape) (Kind, error) {
	switch shape.Type {
	case model.ShapeTypeBoolean:
		return KindBoolean, nil
	case model.ShapeTypeByte:
		return KindByte, nil
	case model.ShapeTypeShort:
		return KindShort, nil
	case model.ShapeTypeInteger:
		return KindInteger, nil
	case model.ShapeTypeLong:
		return KindLong, nil
	case model.ShapeTypeFloat:
		return KindFloat, nil
	case model.ShapeTypeDouble:
		return KindDouble, nil
	case model.ShapeTypeString:
		return KindString, nil
	case model.ShapeTypeBlob:
		return KindBlob, nil
	case model.ShapeTypeTimestamp:
		return KindTimestamp, nil
	case model.ShapeTypeDocument:
		return KindDocument, nil
	case model.ShapeTypeBigInteger, model.ShapeTypeBigDecimal:
		return KindBigNumber, nil
	case model.ShapeTypeList, model.ShapeTypeSet:
		return KindList, nil
	case model.ShapeTypeMap:
		return KindMap, nil
	case model.ShapeTypeStructure, model.ShapeTypeUnion:
		return KindStruct, nil
	default:
		return "", smithygogen.Errorf(smithygogen.ErrUnknownSerialKind, shape.ID.String(),
			"shape type %s has no serial kind", shape.Type)
	}
}

// Runtime symbols the emitted document code references. The runtime module is
// external to the generator; only names are emitted.
var (
	rtSerde  = symbol.RuntimeModule + "/serde"
	rtTime   = symbol.RuntimeModule + "/time"
	rtBase64 = symbol.RuntimeModule + "/base64"

	// SerializerSym and DeserializerSym type the parameters of emitted
	// document (de)serializers.
	SerializerSym   = symbol.External(rtSerde, "Serializer")
	DeserializerSym = symbol.External(rtSerde, "Deserializer")

	newFieldDescriptorSym  = symbol.External(rtSerde, "NewFieldDescriptor")
	newObjectDescriptorSym = symbol.External(rtSerde, "NewObjectDescriptor")
	structWriterSym        = symbol.External(rtSerde, "StructWriter")
	listWriterSym          = symbol.External(rtSerde, "ListWriter")
	mapWriterSym           = symbol.External(rtSerde, "MapWriter")
	noMoreFieldsSym        = symbol.External(rtSerde, "NoMoreFields")

	timeSym   = symbol.Symbol{Namespace: rtTime, Alias: "smithytime"}
	base64Sym = symbol.Symbol{Namespace: rtBase64}
)

// timeFn returns the runtime time helper symbol for a function name.
func timeFn(name string) symbol.Symbol {
	s := timeSym
	s.Name = name
	return s
}

// base64Fn returns the runtime base64 helper symbol for a function name.
func base64Fn(name string) symbol.Symbol {
	s := base64Sym
	s.Name = name
	return s
}

// timestampFormatFns maps a resolved timestamp format to the runtime
// format/parse helper names and whether the encoding is numeric (raw field).
var timestampFormatFns = map[string]struct {
	Format  string
	Parse   string
	Numeric bool
}{
	"epoch-seconds": {Format: "FormatEpochSeconds", Parse: "ParseEpochSeconds", Numeric: true},
	"date-time":     {Format: "FormatDateTime", Parse: "ParseDateTime"},
	"http-date":     {Format: "FormatHTTPDate", Parse: "ParseHTTPDate"},
}
