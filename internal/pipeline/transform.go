package pipeline

import (
	"context"

	"github.com/JonMunkholm/ETL/internal/core"
)

// Batch is the raw input of one run.
type Batch struct {
	Tables map[string]core.RawTable // tabular entities by key
	Orders []core.OrderRecord       // the nested order feed
}

// Extract reads every registered entity's raw input from src. Each events
// source is read once, however many entities derive from it.
func Extract(ctx context.Context, src Source) Batch {
	b := Batch{Tables: make(map[string]core.RawTable)}
	for _, def := range core.All() {
		switch def.Info.Kind {
		case core.SourceTabular:
			b.Tables[def.Info.Key] = src.ReadTable(ctx, def.Info.Source)
		case core.SourceEvents:
			b.Orders = append(b.Orders, src.ReadEvents(ctx, def.Info.Source)...)
		}
	}
	return b
}

// Transform turns a batch into the canonical tables, one per registered
// entity and in registry order. Tabular inputs are cleaned once before
// normalization; the order feed is flattened into the events and derived
// entities. Transform performs no I/O and never fails on bad data.
func Transform(b Batch) []core.Table {
	orders, items := core.Flatten(b.Orders)

	defs := core.All()
	out := make([]core.Table, 0, len(defs))
	for _, def := range defs {
		var raw core.RawTable
		switch def.Info.Kind {
		case core.SourceTabular:
			raw = core.Clean(b.Tables[def.Info.Key])
		case core.SourceEvents:
			raw = orders
		case core.SourceDerived:
			raw = items
		}
		out = append(out, core.Normalize(def, raw))
	}
	return out
}
