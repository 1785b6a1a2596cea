// Package main provides the entry point of go-agora, a multi-tenant governance api.
// It serves proposals, votes, delegates, statements, staking, retro funding ballots
// and citizens of several DAOs as JSON over fiber, stores them with gorm and reads
// live voting power from the chains through go-ethereum. The OpenAPI document is
// served at /spec.
package main
