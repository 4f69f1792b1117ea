package permission

// Criteria is an immutable boolean expression over resource facts. A node is
// either a leaf predicate or one of the two combinators. The store translates
// a tree into its native query form; Matches is the in-memory fallback used
// for mutation preconditions and for tests without a live database.
type Criteria interface {
	// Matches evaluates the node against a single resource's facts.
	Matches(f Facts) bool
}

// Facts carries the resource attributes the predicate leaves look at.
// Owner-style resources (collections) put the owner in Author.
type Facts struct {
	Author   string
	Entities []string
	Tags     []string
}

// AllOf holds when every child holds. An empty AllOf holds vacuously.
type AllOf struct {
	Conditions []Criteria
}

// AnyOf holds when at least one child holds.
type AnyOf struct {
	Conditions []Criteria
}

// AuthorIs holds when the resource's author equals UserRef.
type AuthorIs struct {
	UserRef string
}

// HasEntities holds when the resource is associated with every listed entity
// ref. The conjunction is inside the leaf; use AnyOf over several leaves for
// an any-of-these-entities rule.
type HasEntities struct {
	Refs []string
}

// HasTags holds when the resource carries every listed tag.
type HasTags struct {
	Tags []string
}

func (c AllOf) Matches(f Facts) bool {
	for _, child := range c.Conditions {
		if !child.Matches(f) {
			return false
		}
	}
	return true
}

func (c AnyOf) Matches(f Facts) bool {
	for _, child := range c.Conditions {
		if child.Matches(f) {
			return true
		}
	}
	return false
}

func (c AuthorIs) Matches(f Facts) bool {
	return c.UserRef != "" && f.Author == c.UserRef
}

func (c HasEntities) Matches(f Facts) bool {
	if len(c.Refs) == 0 {
		return false
	}
	return containsAll(f.Entities, c.Refs)
}

func (c HasTags) Matches(f Facts) bool {
	if len(c.Tags) == 0 {
		return false
	}
	return containsAll(f.Tags, c.Tags)
}

func containsAll(haystack, needles []string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, item := range haystack {
		set[item] = struct{}{}
	}
	for _, needle := range needles {
		if _, ok := set[needle]; !ok {
			return false
		}
	}
	return true
}
