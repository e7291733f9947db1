// Package synth generates the synthetic trade flow dataset from the
// export and import tables. Real bilateral flow data is not part of
// the source datasets, so flows are synthesized by allocating each
// exporter's volume across importers in proportion to import shares,
// with exporter totals preserved exactly.
package synth
