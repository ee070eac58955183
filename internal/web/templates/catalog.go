package templates

import (
	"net/url"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/erpdash/internal/core"
)

// Dashboard renders the quick stats and the revenue chart.
func Dashboard(c core.Catalog) templ.Component {
	return component(func(o *out) {
		o.raw(`<section class="stats">`)
		for _, m := range c.Stats {
			o.raw(`<div class="card stat"><span class="muted">`)
			o.text(m.Label)
			o.raw(`</span><strong>`)
			o.text(m.Value)
			o.raw(`</strong></div>`)
		}
		o.raw(`</section><section class="card"><h2>Revenue</h2><div class="chart">`)
		top := c.MaxRevenue()
		for _, p := range c.Revenue {
			pct := 0
			if top > 0 {
				pct = p.Revenue * 100 / top
			}
			o.raw(`<div class="bar"`)
			o.attr("title", p.Month+": "+itoa(p.Revenue))
			o.raw(`><span class="bar-fill" style="height:`, itoa(pct), `%"></span><span class="bar-label">`)
			o.text(p.Month)
			o.raw(`</span></div>`)
		}
		o.raw(`</div></section>`)
	})
}

// Products renders the searchable product table.
func Products(products []core.Product, search string) templ.Component {
	return component(func(o *out) {
		o.raw(`<form class="toolbar" method="get" action="/products" hx-get="/products" hx-target="#product-table" hx-select="#product-table" hx-trigger="input changed delay:300ms from:input, submit">`)
		o.raw(`<input type="search" name="search" placeholder="Search products"`)
		o.attr("value", search)
		o.raw(`></form>`)
		o.child(ProductTable(products))
	})
}

// ProductTable is the swappable product table.
func ProductTable(products []core.Product) templ.Component {
	return component(func(o *out) {
		o.raw(`<div id="product-table"><table><thead><tr><th>Name</th><th>Category</th><th>Price</th><th>Stock</th></tr></thead><tbody>`)
		if len(products) == 0 {
			o.raw(`<tr><td colspan="4" class="empty">No products found</td></tr>`)
		}
		for _, p := range products {
			o.raw(`<tr><td>`)
			o.text(p.Name)
			o.raw(`</td><td>`)
			o.text(p.Category)
			o.raw(`</td><td>`)
			o.text(p.Price)
			o.raw(`</td><td>`)
			o.text(itoa(p.Stock))
			o.raw(`</td></tr>`)
		}
		o.raw(`</tbody></table></div>`)
	})
}

// Catalog renders the product cards.
func Catalog(products []core.Product) templ.Component {
	return component(func(o *out) {
		o.raw(`<section class="cards">`)
		for _, p := range products {
			img := p.Image
			if img == "" {
				img = "/static/placeholder.svg"
			}
			o.raw(`<article class="card product"><img`)
			o.attr("src", string(templ.URL(img)))
			o.attr("alt", p.Name)
			o.raw(`><h3>`)
			o.text(p.Name)
			o.raw(`</h3><p class="muted">`)
			o.text(p.Description)
			o.raw(`</p><div class="row"><strong>`)
			o.text(p.Price)
			o.raw(`</strong><span class="badge">`)
			o.text(p.Category)
			o.raw(`</span></div><a class="button"`)
			o.href(templ.URL("/products?search=" + url.QueryEscape(p.Name)))
			o.raw(`>View product</a></article>`)
		}
		o.raw(`</section>`)
	})
}
