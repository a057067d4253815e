package catalog

// Default returns the compiled-in LuxeStay rooms.
func Default() *Catalog {
	c, err := New(seed())
	if err != nil {
		panic(err)
	}

	return c
}

func seed() []Room {
	return []Room{
		{
			ID:            "1",
			Name:          "Classic Standard Room",
			Category:      CategoryStandard,
			PricePerNight: 120, //nolint:gomnd
			Description:   "A cozy room perfect for solo travelers or couples, featuring a comfortable queen-size bed and modern amenities.",
			ImageURL:      "https://images.unsplash.com/photo-1595576508898-0ad5c879a061?auto=format&fit=crop&q=80&w=800",
			Amenities:     []string{"Free Wi-Fi", "TV", "Air Conditioning", "Coffee Maker"},
		},
		{
			ID:            "2",
			Name:          "Standard Twin Room",
			Category:      CategoryStandard,
			PricePerNight: 140, //nolint:gomnd
			Description:   "Spacious room with two twin beds, ideal for friends or business colleagues.",
			ImageURL:      "https://images.unsplash.com/photo-1566665797739-1674de7a421a?auto=format&fit=crop&q=80&w=800",
			Amenities:     []string{"Free Wi-Fi", "Work Desk", "Mini Fridge", "TV"},
		},
		{
			ID:            "3",
			Name:          "Deluxe Ocean View",
			Category:      CategoryDeluxe,
			PricePerNight: 250, //nolint:gomnd
			Description:   "Experience luxury with a stunning view of the ocean. Includes a king-size bed and a private balcony.",
			ImageURL:      "https://images.unsplash.com/photo-1590490360182-c33d57733427?auto=format&fit=crop&q=80&w=800",
			Amenities:     []string{"Ocean View", "Private Balcony", "Mini Bar", "Bathrobe", "Room Service"},
		},
		{
			ID:            "4",
			Name:          "Deluxe City Suite",
			Category:      CategoryDeluxe,
			PricePerNight: 220, //nolint:gomnd
			Description:   "A refined room in the heart of the city with premium furnishings and a deep soaking tub.",
			ImageURL:      "https://images.unsplash.com/photo-1582719478250-c89cae4dc85b?auto=format&fit=crop&q=80&w=800",
			Amenities:     []string{"City View", "Soaking Tub", "Premium Bedding", "Smart TV"},
		},
		{
			ID:            "5",
			Name:          "Presidential Royal Suite",
			Category:      CategorySuite,
			PricePerNight: 550, //nolint:gomnd
			Description:   "Our most prestigious suite offering separate living and dining areas, a master bedroom, and unparalleled luxury.",
			ImageURL:      "https://images.unsplash.com/photo-1631049307264-da0ec9d70304?auto=format&fit=crop&q=80&w=800",
			Amenities:     []string{"24/7 Butler Service", "Separate Living Room", "Private Terrace", "Jacuzzi", "Breakfast Included"},
		},
		{
			ID:            "6",
			Name:          "Honeymoon Penthouse",
			Category:      CategorySuite,
			PricePerNight: 480, //nolint:gomnd
			Description:   "Romantic and secluded penthouse with panoramic views, perfect for celebrating special occasions.",
			ImageURL:      "https://images.unsplash.com/photo-1578683010236-d716f9a3f461?auto=format&fit=crop&q=80&w=800",
			Amenities:     []string{"Champagne on Arrival", "King Bed", "Rain Shower", "Complimentary Spa Access"},
		},
	}
}
