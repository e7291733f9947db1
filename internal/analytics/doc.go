// Package analytics holds the pure aggregation helpers behind the
// dashboard charts: top-N country slices with an "Others" bucket,
// annual and category totals, rankings, growth rates, cross-table
// joins, least-squares trend fitting, and trade flow aggregation.
// Every function is a pure read over immutable dataset tables.
package analytics
