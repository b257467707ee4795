package builtin

import (
	"salesetl/internal/records"
	"salesetl/internal/schema"
)

// Entities are the four collections persisted by one run.
type Entities struct {
	Customers  []schema.Customer
	Products   []schema.Product
	Orders     []schema.Order
	OrderItems []schema.OrderItem
}

// Extract projects validated sales with resolved row ids into entities.
// Customers, products and orders are de-duplicated by natural key keeping
// the first occurrence in row order; there is one order item per sale.
// Every key referenced by a child collection is present in its parent
// collection because all four derive from the same rows.
func Extract(in []records.Sale) Entities {
	e := Entities{
		Customers:  make([]schema.Customer, 0, len(in)),
		Products:   make([]schema.Product, 0, len(in)),
		Orders:     make([]schema.Order, 0, len(in)),
		OrderItems: make([]schema.OrderItem, 0, len(in)),
	}
	for _, s := range in {
		e.Customers = append(e.Customers, schema.Customer{
			CustomerID:   s.CustomerID.String,
			CustomerName: s.CustomerName,
			Segment:      s.Segment,
			Country:      s.Country,
			City:         s.City,
			State:        s.State,
			PostalCode:   s.PostalCode,
			Region:       s.Region,
		})
		e.Products = append(e.Products, schema.Product{
			ProductID:   s.ProductID.String,
			ProductName: s.ProductName,
			Category:    s.Category,
			SubCategory: s.SubCategory,
		})
		e.Orders = append(e.Orders, schema.Order{
			OrderID:    s.OrderID.String,
			OrderDate:  s.OrderDateISO,
			ShipDate:   s.ShipDateISO,
			ShipMode:   s.ShipMode.String,
			CustomerID: s.CustomerID.String,
		})
		e.OrderItems = append(e.OrderItems, schema.OrderItem{
			RowID:     s.RowID.Int64,
			OrderID:   s.OrderID.String,
			ProductID: s.ProductID.String,
			Sales:     s.Sales.Float64,
			Quantity:  s.Quantity.Float64,
			Discount:  s.Discount.Float64,
			Profit:    s.Profit,
		})
	}

	e.Customers = DeDup[schema.Customer]{
		Key: func(c schema.Customer) (string, bool) { return c.CustomerID, true },
	}.Apply(e.Customers)
	e.Products = DeDup[schema.Product]{
		Key: func(p schema.Product) (string, bool) { return p.ProductID, true },
	}.Apply(e.Products)
	e.Orders = DeDup[schema.Order]{
		Key: func(o schema.Order) (string, bool) { return o.OrderID, true },
	}.Apply(e.Orders)
	return e
}

// Counts returns the number of entities per table name.
func (e Entities) Counts() map[string]int {
	return map[string]int{
		schema.CustomersTable.Name:  len(e.Customers),
		schema.ProductsTable.Name:   len(e.Products),
		schema.OrdersTable.Name:     len(e.Orders),
		schema.OrderItemsTable.Name: len(e.OrderItems),
	}
}
