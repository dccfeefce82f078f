// Package tables declares the six retail entities. Importing it (usually
// blank) fills the core registry; orders.go holds the feed-derived ones.
package tables

import "github.com/JonMunkholm/ETL/internal/core"

func init() {
	registerEmployees()
	registerCustomers()
	registerProducts()
	registerStores()
}

func registerEmployees() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:    "employees",
			Label:  "Employee",
			Source: "employees.csv",
			Kind:   core.SourceTabular,
			Order:  1,
		},
		Columns: []core.ColumnSpec{
			{Name: "Employee_ID", Type: core.FieldInteger},
			{Name: core.ColFullName, Type: core.FieldText},
			{Name: core.ColEmail, Type: core.FieldText},
			{Name: core.ColPhone, Type: core.FieldText},
			{Name: "Job_Title", Type: core.FieldText},
			{Name: "Salary", Type: core.FieldNumeric, NonNegative: true},
			{Name: "Hire_Date", Type: core.FieldDate},
			{Name: core.ColStoreID, Type: core.FieldInteger},
		},
		Project:   true,
		MergeName: true,
		Contacts:  true,
	})
}

func registerCustomers() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:    "customers",
			Label:  "Customer",
			Source: "customers.csv",
			Kind:   core.SourceTabular,
			Order:  2,
		},
		Columns: []core.ColumnSpec{
			{Name: core.ColCustomerID, Type: core.FieldInteger},
			{Name: core.ColFullName, Type: core.FieldText},
			{Name: core.ColEmail, Type: core.FieldText},
			{Name: core.ColPhone, Type: core.FieldText},
			{Name: "Address", Type: core.FieldText},
			{Name: "City", Type: core.FieldText},
		},
		Project:   true,
		MergeName: true,
		Contacts:  true,
	})
}

// Products keep every source column; only price and stock are declared.
func registerProducts() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:    "products",
			Label:  "Product",
			Source: "products.csv",
			Kind:   core.SourceTabular,
			Order:  3,
		},
		Columns: []core.ColumnSpec{
			{Name: "Price", Type: core.FieldNumeric, NonNegative: true},
			{Name: "Stock_Quantity", Type: core.FieldInteger, NonNegative: true},
		},
	})
}

func registerStores() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:    "stores",
			Label:  "Store",
			Source: "stores.csv",
			Kind:   core.SourceTabular,
			Order:  4,
		},
		Columns: []core.ColumnSpec{
			{Name: core.ColStoreID, Type: core.FieldInteger},
			{Name: "Store_Name", Type: core.FieldText},
			{Name: "City", Type: core.FieldText},
			{Name: "State", Type: core.FieldText},
			{Name: "Country", Type: core.FieldText},
		},
		Project: true,
	})
}
