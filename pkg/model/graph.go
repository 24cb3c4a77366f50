package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrUnknownEntityType is returned when a type string is not user, org or repo.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrUnknownRelKind is returned when a relationship name is not a schema kind.
	ErrUnknownRelKind = errors.New("unknown relationship kind")

	// ErrInvalidEndpoints is returned when a relationship is applied to
	// endpoint types it cannot connect (e.g. member_of from a repo).
	ErrInvalidEndpoints = errors.New("invalid relationship endpoints")

	// ErrDanglingReference is returned by [Graph.Validate] when a relationship
	// list names an entity that does not exist.
	ErrDanglingReference = errors.New("dangling reference")
)

// Graph holds the three name-keyed entity maps. The zero value is not
// usable; call NewGraph.
type Graph struct {
	Users map[string]*UserEntity `json:"users"`
	Orgs  map[string]*OrgEntity  `json:"orgs"`
	Repos map[string]*RepoEntity `json:"repos"`
}

// NewGraph returns a graph with empty entity maps.
func NewGraph() *Graph {
	return &Graph{
		Users: make(map[string]*UserEntity),
		Orgs:  make(map[string]*OrgEntity),
		Repos: make(map[string]*RepoEntity),
	}
}

// AddUser returns the user called name, creating it on first use. A nonzero
// id replaces the stored one.
func (g *Graph) AddUser(name string, id int64) *UserEntity {
	u, ok := g.Users[name]
	if !ok {
		u = &UserEntity{Name: name, ID: id}
		g.Users[name] = u
	} else if id != 0 {
		u.ID = id
	}
	return u
}

// AddOrg returns the organization called name, creating it on first use.
func (g *Graph) AddOrg(name string, id int64) *OrgEntity {
	o, ok := g.Orgs[name]
	if !ok {
		o = &OrgEntity{Name: name, ID: id}
		g.Orgs[name] = o
	} else if id != 0 {
		o.ID = id
	}
	return o
}

// AddRepo returns the repository called name, creating it on first use.
func (g *Graph) AddRepo(name string, id int64) *RepoEntity {
	r, ok := g.Repos[name]
	if !ok {
		r = &RepoEntity{Name: name, ID: id}
		g.Repos[name] = r
	} else if id != 0 {
		r.ID = id
	}
	return r
}

// Add resolves or creates an entity of type t.
func (g *Graph) Add(t EntityType, name string, id int64) error {
	switch t {
	case User:
		g.AddUser(name, id)
	case Org:
		g.AddOrg(name, id)
	case Repo:
		g.AddRepo(name, id)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEntityType, t)
	}
	return nil
}

// Has reports whether an entity of type t called name exists.
func (g *Graph) Has(t EntityType, name string) bool {
	switch t {
	case User:
		_, ok := g.Users[name]
		return ok
	case Org:
		_, ok := g.Orgs[name]
		return ok
	case Repo:
		_, ok := g.Repos[name]
		return ok
	}
	return false
}

// TypeOf returns the entity type registered under name. Users shadow orgs and
// orgs shadow repos when the same name exists in several maps.
func (g *Graph) TypeOf(name string) (EntityType, bool) {
	for _, t := range EntityTypes {
		if g.Has(t, name) {
			return t, true
		}
	}
	return "", false
}

// AddMember records user as a member of org on both endpoints' behalf. Users
// do not carry a membership list, so the org list is the only store.
func (g *Graph) AddMember(user, org string) {
	g.AddUser(user, 0)
	o := g.AddOrg(org, 0)
	o.Members = appendUnique(o.Members, user)
}

// SetOwner records owner (a user or org) as the owner of repo. A repository
// has a single owner; the last call wins.
func (g *Graph) SetOwner(ownerType EntityType, owner, repo string) error {
	switch ownerType {
	case User:
		u := g.AddUser(owner, 0)
		u.OwnerOf = appendUnique(u.OwnerOf, repo)
	case Org:
		o := g.AddOrg(owner, 0)
		o.OwnerOf = appendUnique(o.OwnerOf, repo)
	default:
		return fmt.Errorf("%w: owner_of from %s", ErrInvalidEndpoints, ownerType)
	}
	g.AddRepo(repo, 0).Owner = owner
	return nil
}

// AddContributor records contributor (a user or org) on repo and repo on the
// contributor.
func (g *Graph) AddContributor(contributorType EntityType, contributor, repo string) error {
	switch contributorType {
	case User:
		u := g.AddUser(contributor, 0)
		u.ContributorOf = appendUnique(u.ContributorOf, repo)
	case Org:
		o := g.AddOrg(contributor, 0)
		o.ContributorOf = appendUnique(o.ContributorOf, repo)
	default:
		return fmt.Errorf("%w: contributor_of from %s", ErrInvalidEndpoints, contributorType)
	}
	r := g.AddRepo(repo, 0)
	r.Contributors = appendUnique(r.Contributors, contributor)
	return nil
}

// AddFork records child as a fork of parent.
func (g *Graph) AddFork(parent, child string) {
	g.AddRepo(child, 0)
	p := g.AddRepo(parent, 0)
	p.ParentOf = appendUnique(p.ParentOf, child)
}

// Len returns the total number of entities.
func (g *Graph) Len() int { return len(g.Users) + len(g.Orgs) + len(g.Repos) }

// Empty reports whether the graph has no entities.
func (g *Graph) Empty() bool { return g.Len() == 0 }

// Stats counts entities per type.
func (g *Graph) Stats() map[EntityType]int {
	return map[EntityType]int{
		User: len(g.Users),
		Org:  len(g.Orgs),
		Repo: len(g.Repos),
	}
}

// UserNames returns user names in sorted order.
func (g *Graph) UserNames() []string { return slices.Sorted(maps.Keys(g.Users)) }

// OrgNames returns organization names in sorted order.
func (g *Graph) OrgNames() []string { return slices.Sorted(maps.Keys(g.Orgs)) }

// RepoNames returns repository names in sorted order.
func (g *Graph) RepoNames() []string { return slices.Sorted(maps.Keys(g.Repos)) }

// Validate checks that every name referenced by a relationship list resolves
// to an entity of the expected kind. It returns the first violation found,
// scanning entities in sorted order.
func (g *Graph) Validate() error {
	dangling := func(owner, field, ref string) error {
		return fmt.Errorf("%w: %s.%s references %q", ErrDanglingReference, owner, field, ref)
	}
	ownerOrContributor := func(name string) bool {
		return g.Has(User, name) || g.Has(Org, name)
	}

	for _, name := range g.UserNames() {
		u := g.Users[name]
		for _, r := range u.OwnerOf {
			if !g.Has(Repo, r) {
				return dangling(name, "owner_of", r)
			}
		}
		for _, r := range u.ContributorOf {
			if !g.Has(Repo, r) {
				return dangling(name, "contributor_of", r)
			}
		}
	}
	for _, name := range g.OrgNames() {
		o := g.Orgs[name]
		for _, m := range o.Members {
			if !g.Has(User, m) {
				return dangling(name, "members", m)
			}
		}
		for _, r := range o.OwnerOf {
			if !g.Has(Repo, r) {
				return dangling(name, "owner_of", r)
			}
		}
		for _, r := range o.ContributorOf {
			if !g.Has(Repo, r) {
				return dangling(name, "contributor_of", r)
			}
		}
	}
	for _, name := range g.RepoNames() {
		r := g.Repos[name]
		if r.Owner != "" && !ownerOrContributor(r.Owner) {
			return dangling(name, "owner", r.Owner)
		}
		for _, c := range r.Contributors {
			if !ownerOrContributor(c) {
				return dangling(name, "contributors", c)
			}
		}
		for _, child := range r.ParentOf {
			if !g.Has(Repo, child) {
				return dangling(name, "parent_of", child)
			}
		}
	}
	return nil
}
