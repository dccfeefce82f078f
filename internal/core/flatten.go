package core

// flatten.go decomposes the nested order feed into two flat row-sets.
//
// The feed is a JSON array of order objects, each carrying scalar order
// fields plus an embedded "Items" array. Decoding is best-effort: a feed
// that is absent or not structured data yields no records rather than an
// error.

import (
	"bytes"
	"encoding/json"
)

// Order and order item column names as they appear in the feed.
const (
	ColOrderID     = "Order_ID"
	ColCustomerID  = "Customer_ID"
	ColStoreID     = "Store_ID"
	ColOrderDate   = "Order_Date"
	ColTotalAmount = "Total_Amount"
	ColProductID   = "Product_ID"
	ColQuantity    = "Quantity"
	ColUnitPrice   = "Unit_Price"

	itemsKey = "Items"
)

// OrderColumns is the column set of a flattened order row.
var OrderColumns = []string{ColOrderID, ColCustomerID, ColStoreID, ColOrderDate, ColTotalAmount}

// OrderItemColumns is the column set of a flattened order item row.
var OrderItemColumns = []string{ColOrderID, ColProductID, ColQuantity, ColUnitPrice}

// OrderRecord is one nested order as read from the feed.
type OrderRecord struct {
	Fields Row   // scalar order fields
	Items  []Row // embedded line items, possibly empty
}

// DecodeOrders parses a JSON order feed. Elements that are not objects are
// skipped; an Items value that is missing or not an array yields no items;
// an item that is not an object yields an item whose fields are all absent.
// Any structural failure returns nil.
func DecodeOrders(data []byte) []OrderRecord {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil
	}

	records := make([]OrderRecord, 0, len(raw))
	for _, elem := range raw {
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		rec := OrderRecord{Fields: make(Row, len(obj))}
		for k, v := range obj {
			if k == itemsKey {
				continue
			}
			rec.Fields[k] = jsonValue(v)
		}
		if items, ok := obj[itemsKey].([]any); ok {
			rec.Items = make([]Row, 0, len(items))
			for _, it := range items {
				itemObj, _ := it.(map[string]any)
				item := make(Row, len(itemObj))
				for k, v := range itemObj {
					item[k] = jsonValue(v)
				}
				rec.Items = append(rec.Items, item)
			}
		}
		records = append(records, rec)
	}
	return records
}

// Flatten builds the order and order item row-sets in one pass. Every input
// record contributes exactly one order row and one item row per embedded
// item; fields missing from the source stay Absent for later coercion.
func Flatten(records []OrderRecord) (orders RawTable, items RawTable) {
	orders = RawTable{Columns: append([]string(nil), OrderColumns...), Rows: make([]Row, 0, len(records))}
	items = RawTable{Columns: append([]string(nil), OrderItemColumns...)}

	for _, rec := range records {
		orderID := rec.Fields.Get(ColOrderID)

		row := make(Row, len(OrderColumns))
		for _, col := range OrderColumns {
			row[col] = rec.Fields.Get(col)
		}
		orders.Rows = append(orders.Rows, row)

		for _, it := range rec.Items {
			items.Rows = append(items.Rows, Row{
				ColOrderID:   orderID,
				ColProductID: it.Get(ColProductID),
				ColQuantity:  it.Get(ColQuantity),
				ColUnitPrice: it.Get(ColUnitPrice),
			})
		}
	}
	return orders, items
}

// jsonValue maps a decoded JSON scalar into a Value. Nested objects and
// arrays are kept as their compact JSON text.
func jsonValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return String(x)
	case json.Number:
		return Number(x.String())
	case bool:
		return Bool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Null()
		}
		return String(string(b))
	}
}
