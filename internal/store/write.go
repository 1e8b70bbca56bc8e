package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddItem inserts an item. A missing ID is generated; a missing ShortID
// is derived from the first eight hex digits of the ID. The stored
// item is returned with both filled in.
func (s *Store) AddItem(ctx context.Context, item Item) (Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.ShortID == "" {
		item.ShortID = shortID(item.ID)
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items
		(id, short_id, name, description, notes, quantity, price, is_favorite, is_archived, is_deleted, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.ShortID,
		item.Name,
		nullIfEmpty(item.Description),
		nullIfEmpty(item.Notes),
		item.Quantity,
		nullIfZero(item.Price),
		item.Favorite,
		item.Archived,
		item.Deleted,
		item.Flags,
	)
	if err != nil {
		return Item{}, fmt.Errorf("add item: %w", err)
	}

	return item, nil
}

// AddBox inserts a box, generating IDs the same way AddItem does.
func (s *Store) AddBox(ctx context.Context, box Box) (Box, error) {
	if box.ID == "" {
		box.ID = uuid.NewString()
	}
	if box.ShortID == "" {
		box.ShortID = shortID(box.ID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boxes
		(id, short_id, label, room)
		VALUES (?, ?, ?, ?)
	`,
		box.ID,
		box.ShortID,
		box.Label,
		nullIfEmpty(box.Room),
	)
	if err != nil {
		return Box{}, fmt.Errorf("add box: %w", err)
	}

	return box, nil
}

// PlaceInItem records that an item sits inside another item.
func (s *Store) PlaceInItem(ctx context.Context, itemID, parentID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO placements (item_id, parent_id) VALUES (?, ?)
	`, itemID, parentID)
	if err != nil {
		return fmt.Errorf("place in item: %w", err)
	}
	return nil
}

// PlaceInBox records that an item sits inside a box.
func (s *Store) PlaceInBox(ctx context.Context, itemID, boxID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO placements (item_id, box_id) VALUES (?, ?)
	`, itemID, boxID)
	if err != nil {
		return fmt.Errorf("place in box: %w", err)
	}
	return nil
}

// AttachInvoice links an invoice record to an item.
func (s *Store) AttachInvoice(ctx context.Context, itemID, vendor string, amount float64, issuedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (item_id, vendor, amount, issued_at) VALUES (?, ?, ?, ?)
	`, itemID, nullIfEmpty(vendor), nullIfZero(amount), issuedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("attach invoice: %w", err)
	}
	return nil
}

// AttachImage links an image path to an item.
func (s *Store) AttachImage(ctx context.Context, itemID, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO images (item_id, path) VALUES (?, ?)
	`, itemID, path)
	if err != nil {
		return fmt.Errorf("attach image: %w", err)
	}
	return nil
}

// AddReminder attaches a dated follow-up to an item.
func (s *Store) AddReminder(ctx context.Context, itemID string, dueAt time.Time, note string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (item_id, due_at, note) VALUES (?, ?, ?)
	`, itemID, dueAt.UTC().Format(timeLayout), nullIfEmpty(note))
	if err != nil {
		return fmt.Errorf("add reminder: %w", err)
	}
	return nil
}

// SetFlags replaces an item's flag bits.
func (s *Store) SetFlags(ctx context.Context, itemID string, flags int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET flags = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, flags, itemID)
	if err != nil {
		return fmt.Errorf("set flags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set flags: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set flags: no item with id %s", itemID)
	}
	return nil
}

// timeLayout is the storage form for timestamps, matching what SQLite's
// CURRENT_TIMESTAMP writes.
const timeLayout = "2006-01-02 15:04:05"

// shortID derives the eight-hex-digit short form of a canonical UUID.
func shortID(id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	if len(hex) < 8 {
		return hex
	}
	return strings.ToLower(hex[:8])
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
