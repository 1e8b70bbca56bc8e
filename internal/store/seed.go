package store

import (
	"context"
	"fmt"

	"github.com/packratdb/packrat/internal/querysql"
)

// Seed populates an empty store with a small demo inventory covering
// every search feature: favorites, archives, flags, placements,
// reminders, invoices and images. Returns the number of items created.
func (s *Store) Seed(ctx context.Context) (int, error) {
	now := s.now()

	garage, err := s.AddBox(ctx, Box{Label: "Garage shelf A", Room: "garage"})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	office, err := s.AddBox(ctx, Box{Label: "Office cabinet", Room: "office"})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	chair, err := s.AddItem(ctx, Item{
		Name:        "Office chair",
		Description: "Black mesh swivel chair with wheels",
		Price:       149.50,
		Favorite:    true,
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	lamp, err := s.AddItem(ctx, Item{
		Name:        "Desk lamp",
		Description: "Adjustable LED lamp",
		Notes:       "needs a new bulb",
		Price:       24.99,
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	drill, err := s.AddItem(ctx, Item{
		Name:        "Power drill",
		Description: "Cordless 18V drill",
		Price:       89.00,
		Flags:       querysql.FlagFragile,
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	tent, err := s.AddItem(ctx, Item{
		Name:        "Camping tent",
		Description: "Four person dome tent",
		Archived:    true,
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	_, err = s.AddItem(ctx, Item{
		Name:  "Soldering iron",
		Notes: "lent to Sam",
		Flags: querysql.FlagLent,
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	radio, err := s.AddItem(ctx, Item{
		Name:        "Broken radio",
		Description: "Vintage tube radio, does not power on",
		Flags:       querysql.FlagBroken,
		Quantity:    1,
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	cables, err := s.AddItem(ctx, Item{
		Name:     "HDMI cables",
		Quantity: 6,
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	// Chair and iron stay loose. Everything else goes somewhere.
	placements := []struct {
		item string
		box  string
	}{
		{drill.ID, garage.ID},
		{tent.ID, garage.ID},
		{lamp.ID, office.ID},
		{radio.ID, garage.ID},
	}
	for _, p := range placements {
		if err := s.PlaceInBox(ctx, p.item, p.box); err != nil {
			return 0, fmt.Errorf("seed: %w", err)
		}
	}
	// The cables live inside the radio's crate for some reason.
	if err := s.PlaceInItem(ctx, cables.ID, radio.ID); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	if err := s.AddReminder(ctx, drill.ID, now.AddDate(0, 0, -1), "return battery charger"); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if err := s.AddReminder(ctx, tent.ID, now.AddDate(0, 1, 0), "re-waterproof before summer"); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	if err := s.AttachInvoice(ctx, chair.ID, "OfficeMax", 149.50, now.AddDate(0, -2, 0)); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if err := s.AttachImage(ctx, lamp.ID, "images/desk-lamp.jpg"); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	return 7, nil
}
