// Package core provides the transform logic for the retail batch ETL.
//
// This package is the heart of the pipeline, containing all domain logic
// independent of any storage or transport layer. It performs no I/O and can
// be used by the pipeline driver, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Raw tables: untyped rows of [Value] cells as read from a source.
//   - Entity definitions: registered via the registry, each entity declares
//     its canonical columns, types and derivation steps.
//   - Canonical tables: fixed-shape [Table] values ready to serialize.
//
// # Entity Registry
//
// Entities are registered at init time using [Register]. Each
// [EntityDefinition] contains everything needed to normalize one entity:
//
//	core.Register(EntityDefinition{
//	    Info: EntityInfo{Key: "stores", Label: "Store", Source: "stores.csv"},
//	    Columns: []ColumnSpec{
//	        {Name: "Store_ID", Type: FieldInteger},
//	        {Name: "Store_Name", Type: FieldText},
//	    },
//	    Project: true,
//	})
//
// # Transform Flow
//
//  1. Tabular sources pass through [Clean] (null-fill, de-duplication)
//  2. The order feed is split by [Flatten] into orders and order items
//  3. Every entity is brought to its declared shape by [Normalize]
//
// # Bad Data
//
// Nothing in this package returns an error for malformed field values.
// Invalid contacts become [Unknown], unparseable numbers become zero and
// unparseable dates become the null date, all through [Coerce].
package core
