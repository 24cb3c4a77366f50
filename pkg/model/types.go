package model

import (
	"fmt"
	"slices"
)

// EntityType identifies the kind of a graph entity.
type EntityType string

const (
	User EntityType = "user"
	Org  EntityType = "org"
	Repo EntityType = "repo"
)

// EntityTypes lists every entity type in canonical order.
var EntityTypes = []EntityType{User, Org, Repo}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool { return slices.Contains(EntityTypes, t) }

// Title returns the human-readable name used in legends.
func (t EntityType) Title() string {
	switch t {
	case User:
		return "User"
	case Org:
		return "Organization"
	case Repo:
		return "Repository"
	}
	return string(t)
}

// ParseEntityType converts a raw type string to an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
	}
	return t, nil
}

// RelKind identifies a relationship kind.
type RelKind string

const (
	MemberOf      RelKind = "member_of"
	OwnerOf       RelKind = "owner_of"
	ContributorOf RelKind = "contributor_of"
	ParentOf      RelKind = "parent_of"

	// Unknown tags edges whose kind could not be inferred. It is never part
	// of a schema.
	Unknown RelKind = "unknown"
)

// RelKinds lists the schema relationship kinds in canonical order.
var RelKinds = []RelKind{MemberOf, OwnerOf, ContributorOf, ParentOf}

// Valid reports whether k is a schema relationship kind.
func (k RelKind) Valid() bool { return slices.Contains(RelKinds, k) }

// Title returns the legend label, e.g. "Contributor Of".
func (k RelKind) Title() string {
	switch k {
	case MemberOf:
		return "Member Of"
	case OwnerOf:
		return "Owner Of"
	case ContributorOf:
		return "Contributor Of"
	case ParentOf:
		return "Parent Of"
	}
	return "Unknown"
}

// ParseRelKind converts a raw relationship name to a RelKind.
func ParseRelKind(s string) (RelKind, error) {
	k := RelKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelKind, s)
	}
	return k, nil
}

// UserEntity is a GitHub account.
type UserEntity struct {
	Name          string   `json:"name"`
	ID            int64    `json:"id"`
	OwnerOf       []string `json:"owner_of"`
	ContributorOf []string `json:"contributor_of"`
}

// OrgEntity is a GitHub organization.
type OrgEntity struct {
	Name          string   `json:"name"`
	ID            int64    `json:"id"`
	Members       []string `json:"members"`
	OwnerOf       []string `json:"owner_of"`
	ContributorOf []string `json:"contributor_of"`
}

// RepoEntity is a GitHub repository. Owner holds a single name; ParentOf
// lists the repositories forked from this one.
type RepoEntity struct {
	Name         string   `json:"name"`
	ID           int64    `json:"id"`
	Owner        string   `json:"owner"`
	Contributors []string `json:"contributors"`
	ParentOf     []string `json:"parent_of"`
}

// appendUnique appends name to list unless it is already present.
func appendUnique(list []string, name string) []string {
	if slices.Contains(list, name) {
		return list
	}
	return append(list, name)
}
