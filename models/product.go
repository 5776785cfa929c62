package models

// Product is what a shop's product page yields before it becomes a Garment
type Product struct {
	Title       string   `json:"title"`
	Brand       string   `json:"brand,omitempty"`
	Price       string   `json:"price,omitempty"` // Selling price as displayed
	MRP         string   `json:"mrp,omitempty"`   // Maximum Retail Price (List Price)
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Material    string   `json:"material,omitempty"`
	Images      []string `json:"image_paths"`
	SourceURL   string   `json:"source_url"`
}
