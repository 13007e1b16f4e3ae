// Package domain contains the core business entities of the Lumen RAG core:
// chunks, search hits, reranking strategies, grounded answers, and the
// error taxonomy shared across services and adapters.
//
// Domain types have no dependencies on infrastructure; adapters translate
// to and from these types at the edges.
package domain
