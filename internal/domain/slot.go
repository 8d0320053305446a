package domain

// SlotDef describes a named group of input files and its cardinality.
// Field is the multipart form field the slot's files are sent under.
type SlotDef struct {
	Name     string
	Field    string
	Required bool
	MaxFiles int // 0 means unbounded
}

const (
	SlotPrimary   = "primary"
	SlotSecondary = "secondary"
)

func DefaultSlots() []SlotDef {
	return []SlotDef{
		{Name: SlotPrimary, Field: "primary", Required: true},
		{Name: SlotSecondary, Field: "secondary", Required: true, MaxFiles: 1},
	}
}
