// Package driving provides interfaces consumed by the product's outer
// layers (primary/inbound ports): indexing and grounded answering.
package driving
