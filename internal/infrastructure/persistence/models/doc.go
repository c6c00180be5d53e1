// Package models contains GORM persistence models for the ledger tables.
// Domain aggregates carry no ORM tags; mappers here convert in both directions.
//
// Models do not name their tables with a fixed string. They implement
// schema.TablerWithNamer so the namespace naming strategy of the compiled
// tenant model decides the physical table (t_<id>.documents or t_<id>_documents).
//
// Structure:
//   - base.go: AggregateModel and the table list migrated per namespace
//   - document.go: definitions, headers, lines
//   - registry.go: transaction registry rows
//   - cash.go: registers, cashiers, sessions, movements
//   - directory.go: the public tenant directory
package models
