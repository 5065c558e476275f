// Package traits defines representations of the Smithy IDL traits the
// generator interprets.
package traits

// Trait represents a trait applied to a shape or member in a Smithy model.
type Trait interface {
	TraitID() string
}

// Required represents smithy.api#required.
type Required struct{}

// TraitID identifies the trait.
func (*Required) TraitID() string { return "smithy.api#required" }

// Sparse represents smithy.api#sparse.
type Sparse struct{}

// TraitID identifies the trait.
func (*Sparse) TraitID() string { return "smithy.api#sparse" }

// Streaming represents smithy.api#streaming.
type Streaming struct{}

// TraitID identifies the trait.
func (*Streaming) TraitID() string { return "smithy.api#streaming" }

// IdempotencyToken represents smithy.api#idempotencyToken.
type IdempotencyToken struct{}

// TraitID identifies the trait.
func (*IdempotencyToken) TraitID() string { return "smithy.api#idempotencyToken" }

// Sensitive represents smithy.api#sensitive.
type Sensitive struct{}

// TraitID identifies the trait.
func (*Sensitive) TraitID() string { return "smithy.api#sensitive" }

// Error represents smithy.api#error. Fault is "client" or "server".
type Error struct {
	Fault string
}

// TraitID identifies the trait.
func (*Error) TraitID() string { return "smithy.api#error" }

// EnumValue is one entry of an enum trait.
type EnumValue struct {
	Value string
	Name  string
}

// Enum represents smithy.api#enum.
type Enum struct {
	Values []EnumValue
}

// TraitID identifies the trait.
func (*Enum) TraitID() string { return "smithy.api#enum" }

// Paginated represents smithy.api#paginated. The token and item fields are
// path expressions into the operation input/output.
type Paginated struct {
	InputToken  string
	OutputToken string
	Items       string
	PageSize    string
}

// TraitID identifies the trait.
func (*Paginated) TraitID() string { return "smithy.api#paginated" }

// Deprecated represents smithy.api#deprecated.
type Deprecated struct {
	Message string
	Since   string
}

// TraitID identifies the trait.
func (*Deprecated) TraitID() string { return "smithy.api#deprecated" }

// Documentation represents smithy.api#documentation.
type Documentation struct {
	Text string
}

// TraitID identifies the trait.
func (*Documentation) TraitID() string { return "smithy.api#documentation" }

// Opaque carries a trait the generator has no typed representation for. The
// raw trait document is preserved so integrations can still inspect it.
type Opaque struct {
	ID    string
	Value interface{}
}

// TraitID identifies the trait.
func (o *Opaque) TraitID() string { return o.ID }
