// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding providers, LLM providers, the
// chunk store, and configuration.
package driven
