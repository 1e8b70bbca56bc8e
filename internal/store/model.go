package store

import "time"

// Item is one inventory entry. Description and Notes are empty strings
// when the row holds NULL.
type Item struct {
	ID          string    `json:"id"`
	ShortID     string    `json:"short_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price,omitempty"`
	Favorite    bool      `json:"favorite,omitempty"`
	Archived    bool      `json:"archived,omitempty"`
	Deleted     bool      `json:"deleted,omitempty"`
	Flags       int64     `json:"flags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Box is a physical container items can be placed into.
type Box struct {
	ID        string    `json:"id"`
	ShortID   string    `json:"short_id"`
	Label     string    `json:"label"`
	Room      string    `json:"room,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reminder is a dated follow-up attached to an item.
type Reminder struct {
	ID     int64     `json:"id"`
	ItemID string    `json:"item_id"`
	DueAt  time.Time `json:"due_at"`
	Note   string    `json:"note,omitempty"`
}
