package tables

import "github.com/JonMunkholm/ETL/internal/core"

// OrdersSource is the raw object holding the nested order feed.
const OrdersSource = "orders.json"

func init() {
	registerOrders()
	registerOrderItems()
}

func registerOrders() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:    "orders",
			Label:  "Order",
			Source: OrdersSource,
			Kind:   core.SourceEvents,
			Order:  5,
		},
		Columns: []core.ColumnSpec{
			{Name: core.ColOrderID, Type: core.FieldInteger},
			{Name: core.ColCustomerID, Type: core.FieldInteger},
			{Name: core.ColStoreID, Type: core.FieldInteger},
			{Name: core.ColOrderDate, Type: core.FieldDate},
			{Name: core.ColTotalAmount, Type: core.FieldNumeric, NonNegative: true},
		},
	})
}

// Order items are derived from the Items array of each order.
func registerOrderItems() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:    "order_items",
			Label:  "Order Item",
			Source: OrdersSource,
			Kind:   core.SourceDerived,
			Order:  6,
		},
		Columns: []core.ColumnSpec{
			{Name: core.ColOrderID, Type: core.FieldInteger},
			{Name: core.ColProductID, Type: core.FieldInteger},
			{Name: core.ColQuantity, Type: core.FieldInteger, NonNegative: true},
			{Name: core.ColUnitPrice, Type: core.FieldNumeric, NonNegative: true},
		},
	})
}
