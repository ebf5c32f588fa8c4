// Package candidateregistry implements the candidate registry inside the
// voting-core context.
//
// The module owns candidate records and their vote counters: seed imports,
// atomic vote crediting, and the standings read projection. Counter mutation
// goes through ports so the payment reconciliation engine and the free-vote
// path share one crediting contract.
package candidateregistry
