package catalog

func ptr(v float64) *float64 {
	return &v
}

// fallbackProducts is served whenever the product collection is unreachable
// or empty.
var fallbackProducts = []Product{
	{
		ID:               NumericID(1),
		Name:             "MagSafe Clear Case",
		Price:            29.99,
		OriginalPrice:    ptr(39.99),
		Category:         "cases",
		Image:            "/images/products/clear-case.webp",
		Description:      "Crystal clear case with built-in magnets and raised camera edges.",
		Brand:            "Apple",
		CompatibleModels: []string{"iPhone 15", "iPhone 15 Pro", "iPhone 15 Pro Max"},
	},
	{
		ID:               NumericID(2),
		Name:             "Rugged Armor Case",
		Price:            24.99,
		Category:         "cases",
		Image:            "/images/products/rugged-armor.webp",
		Description:      "Shock absorbing TPU case with carbon fiber texture.",
		Brand:            "Samsung",
		CompatibleModels: []string{"Galaxy S24", "Galaxy S24+", "Galaxy S24 Ultra"},
	},
	{
		ID:               NumericID(3),
		Name:             "Tempered Glass Screen Protector",
		Price:            12.99,
		Category:         "screen-protectors",
		Image:            "/images/products/tempered-glass.webp",
		Description:      "9H hardness glass with oleophobic coating, pack of two.",
		Brand:            "Apple",
		CompatibleModels: []string{"iPhone 14", "iPhone 15"},
	},
	{
		ID:          NumericID(4),
		Name:        "20W USB-C Fast Charger",
		Price:       19.99,
		Category:    "chargers",
		Image:       "/images/products/usb-c-charger.webp",
		Description: "Compact power delivery charger for phones and earbuds.",
	},
	{
		ID:          NumericID(5),
		Name:        "Braided USB-C Cable 2m",
		Price:       14.99,
		Category:    "cables",
		Image:       "/images/products/braided-cable.webp",
		Description: "Nylon braided cable rated for 10,000 bends.",
	},
	{
		ID:          NumericID(6),
		Name:        "Wireless Earbuds Pro",
		Price:       89.99,
		Category:    "audio",
		Image:       "/images/products/earbuds-pro.webp",
		Description: "Active noise cancelling earbuds with wireless charging case.",
	},
	{
		ID:               NumericID(7),
		Name:             "iPhone 15 Protection Bundle",
		Price:            49.99,
		OriginalPrice:    ptr(67.97),
		Category:         "bundles",
		Image:            "/images/products/protection-bundle.webp",
		Description:      "Clear case, screen protector and 20W charger in one box.",
		Brand:            "Apple",
		CompatibleModels: []string{"iPhone 15"},
		IsBundle:         true,
	},
	{
		ID:               NumericID(8),
		Name:             "Pixel Fabric Case",
		Price:            34.99,
		Category:         "cases",
		Image:            "/images/products/pixel-fabric.webp",
		Description:      "Recycled fabric case with soft microfiber lining.",
		Brand:            "Google",
		CompatibleModels: []string{"Pixel 8", "Pixel 8 Pro"},
	},
}

// Fallback returns a copy of the static catalog.
func Fallback() []Product {
	out := make([]Product, len(fallbackProducts))
	copy(out, fallbackProducts)
	return out
}
