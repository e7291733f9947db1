// Package services wires the dataset store and the pure analytics and
// chart code into the operations the transport layer exposes: the
// dashboard render loop, workbook and image exports, and health
// reporting.
package services
