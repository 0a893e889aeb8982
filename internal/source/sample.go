package source

import (
	"context"

	"github.com/aidanlsb/tabula/internal/record"
)

// Sample is a fixed in-memory dataset. It never fails and always returns the
// same data, so it doubles as the fallback when a primary source is down.
type Sample struct{}

var sampleTables = []string{"Customers", "Orders", "Products", "Employees"}

var sampleSchemas = map[string][]string{
	"Customers": {"CustomerId", "CompanyName", "ContactName", "City", "Country", "Phone"},
	"Orders":    {"OrderId", "CustomerId", "EmployeeId", "OrderDate", "ShipCountry"},
	"Products":  {"ProductId", "ProductName", "UnitPrice", "CategoryId", "UnitsInStock"},
}

var genericSchema = []string{"Field1", "Field2", "Field3", "Field4", "Field5"}

func (Sample) ListTables(context.Context) ([]string, error) {
	return append([]string(nil), sampleTables...), nil
}

func (Sample) GetSchema(_ context.Context, table string) ([]Column, error) {
	names, ok := sampleSchemas[table]
	if !ok {
		names = genericSchema
	}
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n}
	}
	return cols, nil
}

func (Sample) GetRows(_ context.Context, table string) ([]record.Record, error) {
	switch table {
	case "Customers":
		return []record.Record{
			record.Of("CustomerId", "ALFKI", "CompanyName", "Alfreds Futterkiste", "ContactName", "Maria Anders", "City", "Berlin", "Country", "Germany", "Phone", "030-0074321"),
			record.Of("CustomerId", "ANATR", "CompanyName", "Ana Trujillo Emparedados", "ContactName", "Ana Trujillo", "City", "México D.F.", "Country", "Mexico", "Phone", "(5) 555-4729"),
			record.Of("CustomerId", "ANTON", "CompanyName", "Antonio Moreno Taquería", "ContactName", "Antonio Moreno", "City", "México D.F.", "Country", "Mexico", "Phone", "(5) 555-3932"),
		}, nil
	case "Orders":
		return []record.Record{
			record.Of("OrderId", 10248, "CustomerId", "VINET", "EmployeeId", 5, "OrderDate", "1996-07-04", "ShipCountry", "France"),
			record.Of("OrderId", 10249, "CustomerId", "TOMSP", "EmployeeId", 6, "OrderDate", "1996-07-05", "ShipCountry", "Germany"),
			record.Of("OrderId", 10250, "CustomerId", "HANAR", "EmployeeId", 4, "OrderDate", "1996-07-08", "ShipCountry", "Brazil"),
		}, nil
	case "Products":
		return []record.Record{
			record.Of("ProductId", 1, "ProductName", "Chai", "UnitPrice", 18.0, "CategoryId", 1, "UnitsInStock", 39),
			record.Of("ProductId", 2, "ProductName", "Chang", "UnitPrice", 19.0, "CategoryId", 1, "UnitsInStock", 17),
			record.Of("ProductId", 3, "ProductName", "Aniseed Syrup", "UnitPrice", 10.0, "CategoryId", 2, "UnitsInStock", 13),
		}, nil
	default:
		return []record.Record{
			record.Of("Field1", "Value1", "Field2", "Value2", "Field3", 100, "Field4", 200, "Field5", "Text"),
			record.Of("Field1", "Value3", "Field2", "Value4", "Field3", 300, "Field4", 400, "Field5", "Text"),
			record.Of("Field1", "Value5", "Field2", "Value6", "Field3", 500, "Field4", 600, "Field5", "Text"),
		}, nil
	}
}

func (Sample) GetRelations(context.Context) ([]Relation, error) {
	return []Relation{
		{PrimaryTable: "Customers", PrimaryColumn: "CustomerId", ForeignTable: "Orders", ForeignColumn: "CustomerId"},
		{PrimaryTable: "Products", PrimaryColumn: "ProductId", ForeignTable: "Order Details", ForeignColumn: "ProductId"},
	}, nil
}
