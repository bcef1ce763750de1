package model

// Item is one to-do entry. Its identity is its position in the list;
// the description is fixed once created.
type Item struct {
	Completed   bool   `cbor:"completed" json:"completed"`
	Description string `cbor:"description" json:"description"`
}

// New returns an incomplete item with the given description.
func New(description string) Item {
	return Item{Description: description}
}
