// Package errors provides structured API errors and RFC 7807 problem
// detail rendering for the HTTP layer.
package errors
