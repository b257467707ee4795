package schema

import "database/sql"

// Table describes one persisted table: its name, its columns in insert order
// and its primary key column.
type Table struct {
	Name    string
	Columns []string
	Key     string
}

var (
	CustomersTable = Table{
		Name:    "customers",
		Columns: []string{CustomerID, CustomerName, Segment, Country, City, State, PostalCode, Region},
		Key:     CustomerID,
	}
	ProductsTable = Table{
		Name:    "products",
		Columns: []string{ProductID, ProductName, Category, SubCategory},
		Key:     ProductID,
	}
	OrdersTable = Table{
		Name:    "orders",
		Columns: []string{OrderID, OrderDate, ShipDate, ShipMode, CustomerID},
		Key:     OrderID,
	}
	OrderItemsTable = Table{
		Name:    "order_items",
		Columns: []string{RowID, OrderID, ProductID, Sales, Quantity, Discount, Profit},
		Key:     RowID,
	}
)

// Tables lists the persisted tables parents first. Inserts walk it forwards,
// deletes walk it backwards.
var Tables = []Table{CustomersTable, ProductsTable, OrdersTable, OrderItemsTable}

type Customer struct {
	CustomerID   string         `db:"customer_id"`
	CustomerName sql.NullString `db:"customer_name"`
	Segment      sql.NullString `db:"segment"`
	Country      sql.NullString `db:"country"`
	City         sql.NullString `db:"city"`
	State        sql.NullString `db:"state"`
	PostalCode   sql.NullString `db:"postal_code"`
	Region       sql.NullString `db:"region"`
}

// Values returns the row in CustomersTable column order.
func (c Customer) Values() []any {
	return []any{c.CustomerID, str(c.CustomerName), str(c.Segment), str(c.Country),
		str(c.City), str(c.State), str(c.PostalCode), str(c.Region)}
}

type Product struct {
	ProductID   string         `db:"product_id"`
	ProductName sql.NullString `db:"product_name"`
	Category    sql.NullString `db:"category"`
	SubCategory sql.NullString `db:"sub_category"`
}

// Values returns the row in ProductsTable column order.
func (p Product) Values() []any {
	return []any{p.ProductID, str(p.ProductName), str(p.Category), str(p.SubCategory)}
}

// Order dates are ISO calendar dates (YYYY-MM-DD). ShipDate is invalid when
// the order has no ship date.
type Order struct {
	OrderID    string         `db:"order_id"`
	OrderDate  string         `db:"order_date"`
	ShipDate   sql.NullString `db:"ship_date"`
	ShipMode   string         `db:"ship_mode"`
	CustomerID string         `db:"customer_id"`
}

// Values returns the row in OrdersTable column order.
func (o Order) Values() []any {
	return []any{o.OrderID, o.OrderDate, str(o.ShipDate), o.ShipMode, o.CustomerID}
}

type OrderItem struct {
	RowID     int64           `db:"row_id"`
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Sales     float64         `db:"sales"`
	Quantity  float64         `db:"quantity"`
	Discount  float64         `db:"discount"`
	Profit    sql.NullFloat64 `db:"profit"`
}

// Values returns the row in OrderItemsTable column order.
func (i OrderItem) Values() []any {
	var profit any
	if i.Profit.Valid {
		profit = i.Profit.Float64
	}
	return []any{i.RowID, i.OrderID, i.ProductID, i.Sales, i.Quantity, i.Discount, profit}
}

// str unwraps a NullString into a plain driver value. Some bulk-copy paths
// do not accept driver.Valuer implementations.
func str(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}
