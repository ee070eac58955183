package core

import "strings"

// Product is one catalog entry.
type Product struct {
	ID          int    `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Price       string `json:"price" toml:"price"`
	Stock       int    `json:"stock" toml:"stock"`
	Category    string `json:"category" toml:"category"`
	Image       string `json:"image,omitempty" toml:"image"`
	Description string `json:"description,omitempty" toml:"description"`
}

// Metric is one dashboard quick stat.
type Metric struct {
	Label string `json:"label" toml:"label"`
	Value string `json:"value" toml:"value"`
}

// RevenuePoint is one bar of the revenue chart.
type RevenuePoint struct {
	Month   string `json:"month" toml:"month"`
	Revenue int    `json:"revenue" toml:"revenue"`
}

// Catalog is the read-only data behind the dashboard, products and catalog pages.
type Catalog struct {
	Products []Product      `json:"products"`
	Stats    []Metric       `json:"stats"`
	Revenue  []RevenuePoint `json:"revenue"`
}

// DefaultCatalog returns the data shipped with the dashboard.
func DefaultCatalog() Catalog {
	const placeholder = "/static/placeholder.svg"
	return Catalog{
		Products: []Product{
			{ID: 1, Name: "Product 1", Price: "R$ 99,99", Stock: 45, Category: "Electronics",
				Image: placeholder, Description: "A great product description goes here."},
			{ID: 2, Name: "Product 2", Price: "R$ 149,99", Stock: 32, Category: "Accessories",
				Image: placeholder, Description: "Another amazing product description."},
			{ID: 3, Name: "Product 3", Price: "R$ 199,99", Stock: 18, Category: "Electronics",
				Image: placeholder, Description: "Yet another fantastic product description."},
		},
		Stats: []Metric{
			{Label: "Total Sales", Value: "R$ 45,231"},
			{Label: "Products", Value: "124"},
			{Label: "Customers", Value: "48"},
		},
		Revenue: []RevenuePoint{
			{Month: "Jan", Revenue: 4000},
			{Month: "Feb", Revenue: 3000},
			{Month: "Mar", Revenue: 2000},
			{Month: "Apr", Revenue: 2780},
			{Month: "May", Revenue: 1890},
			{Month: "Jun", Revenue: 2390},
		},
	}
}

// SearchProducts keeps products whose name or category contains query.
func (c Catalog) SearchProducts(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Products
	}
	var out []Product
	for _, p := range c.Products {
		if containsFold(p.Name, q) || containsFold(p.Category, q) {
			out = append(out, p)
		}
	}
	return out
}

// MaxRevenue returns the tallest bar, used to scale the chart.
func (c Catalog) MaxRevenue() int {
	m := 0
	for _, p := range c.Revenue {
		m = max(m, p.Revenue)
	}
	return m
}
