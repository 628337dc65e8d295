package model

import "time"

// Item is a single lost or found report.
type Item struct {
	ID            int64     `json:"id"`
	ItemName      string    `json:"itemName"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	StudentNumber string    `json:"studentNumber"`
	Type          string    `json:"type"`
	Image         string    `json:"image"`
	CreatedAt     time.Time `json:"createdAt"`
	Returned      bool      `json:"returned"`
}

// ItemFields holds the attributes a reporter supplies. Everything except the
// image is replaced wholesale by an update.
type ItemFields struct {
	ItemName      string `json:"itemName"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	StudentNumber string `json:"studentNumber"`
	Type          string `json:"type"`
}

// Item types.
const (
	ItemTypeFound = "found"
	ItemTypeLost  = "lost"
)

// ValidItemType reports whether t is a known item type.
func ValidItemType(t string) bool {
	return t == ItemTypeFound || t == ItemTypeLost
}

// Apply copies the mutable fields onto the item.
func (it *Item) Apply(f ItemFields) {
	it.ItemName = f.ItemName
	it.Description = f.Description
	it.Location = f.Location
	it.Name = f.Name
	it.Email = f.Email
	it.StudentNumber = f.StudentNumber
	it.Type = f.Type
}
