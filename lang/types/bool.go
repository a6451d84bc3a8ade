package types

// Bool is the type of a boolean value.
type Bool bool

// Shorthands for the two boolean values.
const (
	True  = Bool(true)
	False = Bool(false)
)

var _ Value = False

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Bool) Type() string { return "bool" }
