package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
)

// Brands and Categories are the storefront filter options shown even before
// any product carries them.
var (
	Brands = []string{
		"Polycab",
		"Havells",
		"KEI",
		"Finolex",
		"V-Guard",
		"RR Kabel",
		"Anchor",
		"L&T",
	}
	Categories = []string{
		"House Wires",
		"Building Wires",
		"Power Cables",
		"Flexible Cables",
		"Submersible Cables",
		"Communication Cables",
		"Control Cables",
		"Solar Cables",
	}
)

var seedEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	imageSpool  = "https://images.pexels.com/photos/257736/pexels-photo-257736.jpeg"
	imageCoil   = "https://images.pexels.com/photos/6419122/pexels-photo-6419122.jpeg"
	imageReel   = "https://images.pexels.com/photos/163676/cannabis-hemp-plant-weed-163676.jpeg"
	houseWireIS = "IS 694:2010"
)

// Seed returns a fresh copy of the built-in catalog. Seed products are
// stamped a second apart so creation order is stable.
func Seed() []Product {
	brochure := "/brochures/polycab-house-wire.pdf"
	raw := []Product{
		{
			ID:          "1",
			Name:        "FR PVC Insulated Wire 1.5 sq mm",
			Brand:       "Polycab",
			Category:    "House Wires",
			Colors:      []string{"Red", "Blue", "Yellow", "Green", "Black"},
			Description: "Flame retardant PVC insulated copper conductor wire suitable for domestic and commercial applications.",
			Specifications: map[string]string{
				"voltage": "1100V", "conductor": "Annealed Copper", "insulation": "FR PVC",
				"size": "1.5 sq mm", "standard": houseWireIS,
			},
			BasePrice:     decimal.RequireFromString("28.50"),
			StockQuantity: 5000,
			ImageURL:      imageSpool,
			BrochureURL:   &brochure,
		},
		{
			ID:          "2",
			Name:        "FR PVC Insulated Wire 2.5 sq mm",
			Brand:       "Polycab",
			Category:    "House Wires",
			Colors:      []string{"Red", "Blue", "Yellow", "Black"},
			Description: "Heavy duty flame retardant wire for higher load applications.",
			Specifications: map[string]string{
				"voltage": "1100V", "conductor": "Annealed Copper", "insulation": "FR PVC",
				"size": "2.5 sq mm", "standard": houseWireIS,
			},
			BasePrice:     decimal.NewFromInt(45),
			StockQuantity: 4000,
			ImageURL:      imageCoil,
		},
		{
			ID:          "3",
			Name:        "HRFR Cable 4 sq mm",
			Brand:       "Havells",
			Category:    "Building Wires",
			Colors:      []string{"Red", "Blue", "Yellow", "Green"},
			Description: "Heat resistant and flame retardant cable for industrial and residential use.",
			Specifications: map[string]string{
				"voltage": "1100V", "conductor": "Electrolytic Copper", "insulation": "HRFR PVC",
				"size": "4 sq mm", "standard": houseWireIS,
			},
			BasePrice:     decimal.NewFromInt(68),
			StockQuantity: 3500,
			ImageURL:      imageReel,
		},
		{
			ID:          "4",
			Name:        "Armoured LT Cable 3 Core 50 sq mm",
			Brand:       "KEI",
			Category:    "Power Cables",
			Colors:      []string{"Black"},
			Description: "Armoured low tension cable for underground and outdoor power distribution.",
			Specifications: map[string]string{
				"voltage": "1.1 kV", "conductor": "Aluminium", "insulation": "XLPE",
				"size": "3 Core x 50 sq mm", "armour": "Galvanized Steel Wire",
			},
			BasePrice:     decimal.NewFromInt(425),
			StockQuantity: 2000,
			ImageURL:      imageSpool,
		},
		{
			ID:          "5",
			Name:        "Flexible Cable 0.75 sq mm",
			Brand:       "Finolex",
			Category:    "Flexible Cables",
			Colors:      []string{"Red", "Blue", "Yellow", "White", "Black"},
			Description: "Multi-strand flexible copper cable for appliances and electronics.",
			Specifications: map[string]string{
				"voltage": "750V", "conductor": "Tinned Copper", "insulation": "PVC",
				"size": "0.75 sq mm", "strands": "24/0.20",
			},
			BasePrice:     decimal.NewFromInt(18),
			StockQuantity: 6000,
			ImageURL:      imageCoil,
		},
		{
			ID:          "6",
			Name:        "FR Wire 6 sq mm",
			Brand:       "V-Guard",
			Category:    "House Wires",
			Colors:      []string{"Red", "Blue", "Yellow", "Green", "Black"},
			Description: "High quality flame retardant wire for heavy duty applications.",
			Specifications: map[string]string{
				"voltage": "1100V", "conductor": "Annealed Copper", "insulation": "FR PVC",
				"size": "6 sq mm", "standard": houseWireIS,
			},
			BasePrice:     decimal.NewFromInt(95),
			StockQuantity: 3000,
			ImageURL:      imageSpool,
		},
		{
			ID:          "7",
			Name:        "Submersible Cable 3 Core 4 sq mm",
			Brand:       "RR Kabel",
			Category:    "Submersible Cables",
			Colors:      []string{"Black"},
			Description: "Water resistant cable designed for submersible pump applications.",
			Specifications: map[string]string{
				"voltage": "1100V", "conductor": "Tinned Copper", "insulation": "PVC",
				"size": "3 Core x 4 sq mm", "sheath": "PVC",
			},
			BasePrice:     decimal.NewFromInt(85),
			StockQuantity: 2500,
			ImageURL:      imageReel,
		},
		{
			ID:          "8",
			Name:        "Coaxial Cable RG6",
			Brand:       "Anchor",
			Category:    "Communication Cables",
			Colors:      []string{"White", "Black"},
			Description: "High quality coaxial cable for TV, CCTV and broadband applications.",
			Specifications: map[string]string{
				"type": "RG6", "impedance": "75 Ohm", "conductor": "Copper Clad Steel",
				"shielding": "Braided + Foil", "jacket": "PVC",
			},
			BasePrice:     decimal.NewFromInt(22),
			StockQuantity: 8000,
			ImageURL:      imageCoil,
		},
		{
			ID:          "9",
			Name:        "Control Cable 7 Core 1.5 sq mm",
			Brand:       "L&T",
			Category:    "Control Cables",
			Colors:      []string{"Grey"},
			Description: "Multi-core control cable for industrial automation and control panels.",
			Specifications: map[string]string{
				"voltage": "1100V", "conductor": "Annealed Copper", "insulation": "PVC",
				"size": "7 Core x 1.5 sq mm", "sheath": "PVC",
			},
			BasePrice:     decimal.NewFromInt(72),
			StockQuantity: 1500,
			ImageURL:      imageSpool,
		},
		{
			ID:          "10",
			Name:        "Solar DC Cable 4 sq mm",
			Brand:       "Polycab",
			Category:    "Solar Cables",
			Colors:      []string{"Red", "Black"},
			Description: "UV resistant cable specially designed for solar panel installations.",
			Specifications: map[string]string{
				"voltage": "1500V DC", "conductor": "Tinned Copper", "insulation": "XLPO",
				"size": "4 sq mm", "temperature": "-40°C to +120°C",
			},
			BasePrice:     decimal.NewFromInt(58),
			StockQuantity: 4500,
			ImageURL:      imageReel,
		},
	}

	for i := range raw {
		raw[i].UnitType = enums.UnitTypeMetres
		raw[i].IsActive = true
		raw[i].CreatedAt = seedEpoch.Add(time.Duration(i) * time.Second)
		raw[i].UpdatedAt = raw[i].CreatedAt
	}
	return raw
}
