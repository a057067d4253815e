package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrUnknownCategory = errors.New("unknown room category")
)

type Category string

const (
	CategoryStandard Category = "Standard"
	CategoryDeluxe   Category = "Deluxe"
	CategorySuite    Category = "Suite"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryStandard, CategoryDeluxe, CategorySuite}
}

// ParseCategory is case-insensitive. "" and "All" yield the zero Category, which matches any room.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}

	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}

	return "", fmt.Errorf("%q: %w", s, ErrUnknownCategory)
}

func (c Category) Valid() bool {
	switch c {
	case CategoryStandard, CategoryDeluxe, CategorySuite:
		return true
	default:
		return false
	}
}

type Room struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	PricePerNight int64    `json:"pricePerNight"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"imageUrl"`
	Amenities     []string `json:"amenities"`
}

type Filter struct {
	Category Category
	// MaxPrice of zero disables the price constraint.
	MaxPrice int64
}

func (f Filter) match(r Room) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}

	if f.MaxPrice > 0 && r.PricePerNight > f.MaxPrice {
		return false
	}

	return true
}

// Catalog is a read-only set of rooms. Lookups return copies.
type Catalog struct {
	rooms []Room
	index map[string]int
}

func New(rooms []Room) (*Catalog, error) {
	c := &Catalog{
		rooms: make([]Room, 0, len(rooms)),
		index: make(map[string]int, len(rooms)),
	}

	for _, r := range rooms {
		if r.ID == "" {
			return nil, fmt.Errorf("room %q has empty id", r.Name)
		}

		if _, dup := c.index[r.ID]; dup {
			return nil, fmt.Errorf("duplicate room id %q", r.ID)
		}

		if !r.Category.Valid() {
			return nil, fmt.Errorf("room %q: %q: %w", r.ID, r.Category, ErrUnknownCategory)
		}

		if r.PricePerNight <= 0 {
			return nil, fmt.Errorf("room %q has non-positive price %d", r.ID, r.PricePerNight)
		}

		c.index[r.ID] = len(c.rooms)
		c.rooms = append(c.rooms, cloneRoom(r))
	}

	return c, nil
}

func (c *Catalog) Room(id string) (Room, error) {
	idx, ok := c.index[id]
	if !ok {
		return Room{}, fmt.Errorf("room %q: %w", id, ErrRoomNotFound)
	}

	return cloneRoom(c.rooms[idx]), nil
}

func (c *Catalog) Rooms(f Filter) []Room {
	out := make([]Room, 0, len(c.rooms))

	for _, r := range c.rooms {
		if f.match(r) {
			out = append(out, cloneRoom(r))
		}
	}

	return out
}

func cloneRoom(r Room) Room {
	r.Amenities = append([]string(nil), r.Amenities...)

	return r
}
