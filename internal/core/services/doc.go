// Package services implements the RAG pipeline: indexing documents into
// embedded chunks, linear-scan similarity retrieval, candidate reranking,
// and grounded answer generation with citation validation.
package services
