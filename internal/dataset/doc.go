// Package dataset loads the coffee trade CSVs into immutable in-memory
// tables. Four wide-format tables (production, domestic consumption,
// import, export) carry one row per country with a value column per
// year, and one long-format table carries the synthetic exporter to
// importer trade flows. Placeholder sentinels in the export dataset
// are replaced by a missing marker at load time; after Load returns,
// nothing mutates the data again.
package dataset
