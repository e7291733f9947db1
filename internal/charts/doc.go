// Package charts turns aggregated values into declarative figure
// descriptions. Builders are pure: they take precomputed slices and
// return a Figure, and an empty selection produces an annotated
// placeholder figure rather than an error.
package charts
