// Package schema describes both ends of the pipeline: the column labels of
// the sales export and the normalized tables they are loaded into.
package schema

// Canonical field names.
const (
	RowID        = "row_id"
	OrderID      = "order_id"
	OrderDate    = "order_date"
	ShipDate     = "ship_date"
	ShipMode     = "ship_mode"
	CustomerID   = "customer_id"
	CustomerName = "customer_name"
	Segment      = "segment"
	Country      = "country"
	City         = "city"
	State        = "state"
	PostalCode   = "postal_code"
	Region       = "region"
	ProductID    = "product_id"
	Category     = "category"
	SubCategory  = "sub_category"
	ProductName  = "product_name"
	Sales        = "sales"
	Quantity     = "quantity"
	Discount     = "discount"
	Profit       = "profit"
)

// Column pairs a source label with its canonical name.
type Column struct {
	Label    string
	Name     string
	Optional bool
}

// SourceColumns lists the export's columns in file order. Only Row ID may be
// absent; row ids are regenerated when it is.
var SourceColumns = []Column{
	{Label: "Row ID", Name: RowID, Optional: true},
	{Label: "Order ID", Name: OrderID},
	{Label: "Order Date", Name: OrderDate},
	{Label: "Ship Date", Name: ShipDate},
	{Label: "Ship Mode", Name: ShipMode},
	{Label: "Customer ID", Name: CustomerID},
	{Label: "Customer Name", Name: CustomerName},
	{Label: "Segment", Name: Segment},
	{Label: "Country", Name: Country},
	{Label: "City", Name: City},
	{Label: "State", Name: State},
	{Label: "Postal Code", Name: PostalCode},
	{Label: "Region", Name: Region},
	{Label: "Product ID", Name: ProductID},
	{Label: "Category", Name: Category},
	{Label: "Sub-Category", Name: SubCategory},
	{Label: "Product Name", Name: ProductName},
	{Label: "Sales", Name: Sales},
	{Label: "Quantity", Name: Quantity},
	{Label: "Discount", Name: Discount},
	{Label: "Profit", Name: Profit},
}
