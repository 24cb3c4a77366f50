// Package model defines the typed GitHub network graph: users,
// organizations and repositories connected by membership, ownership,
// contribution and fork relationships.
//
// # Entities
//
// Every entity is keyed by its display name. The same name seen twice is the
// same entity; the numeric identifier of the first occurrence is kept unless
// a later occurrence carries a nonzero identifier:
//
//	g := model.NewGraph()
//	g.AddUser("octocat", 0)
//	g.AddUser("octocat", 583231) // same entity, ID refreshed
//
// # Relationships
//
// Relationships are stored on both endpoints. A repository lists its
// contributors and the contributor lists the repository; an organization
// lists its members. [Graph.Validate] checks that every name referenced in
// such a list resolves to an entity of the right kind.
//
// # Schema
//
// A [Schema] names the relationship kinds to extract and, for each kind, the
// (source type, target type) variants that may carry it. Schemas are ordered:
// extraction and flattening walk relations in declaration order, which keeps
// test fixtures deterministic.
package model
