package permission

// Action is a verb the policy decides on.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource is a content kind the policy decides on.
type Resource string

const (
	ResourcePost       Resource = "post"
	ResourceAnswer     Resource = "answer"
	ResourceComment    Resource = "comment"
	ResourceCollection Resource = "collection"
)

// RuleKey addresses one cell of the routing table.
type RuleKey struct {
	Action   Action
	Resource Resource
}

// Rule produces a decision for an actor. The actor ref is empty when the
// request carries no identity.
type Rule func(actor string) Decision

// Policy is a routing table from (action, resource) to a rule. Operators
// replace the table wholesale rather than patching individual branches, so
// the constructors below each build a complete table.
type Policy struct {
	rules map[RuleKey]Rule
}

// NewPolicy builds a policy from an explicit routing table.
func NewPolicy(rules map[RuleKey]Rule) *Policy {
	table := make(map[RuleKey]Rule, len(rules))
	for key, rule := range rules {
		table[key] = rule
	}
	return &Policy{rules: table}
}

// Decide routes one action request. It never fails: any (action, resource)
// pair without a rule is denied.
func (p *Policy) Decide(action Action, resource Resource, actor string) Decision {
	rule, ok := p.rules[RuleKey{Action: action, Resource: resource}]
	if !ok {
		return Denied()
	}
	return rule(actor)
}

// DefaultPolicy builds the stock routing table: create and read are open,
// update and delete require identity and then ownership, with an entity
// escape hatch for posts and answers (members of the configured entity refs
// may curate content associated with all of them). Comments have no entity
// bypass. Collections are owner managed.
func DefaultPolicy(entityRefs []string) *Policy {
	ownership := func(actor string) Criteria {
		if len(entityRefs) == 0 {
			return AuthorIs{UserRef: actor}
		}
		return AnyOf{Conditions: []Criteria{
			AuthorIs{UserRef: actor},
			HasEntities{Refs: entityRefs},
		}}
	}

	ownershipRule := func(actor string) Decision {
		if actor == "" {
			return Denied()
		}
		return ConditionalOn(ownership(actor))
	}

	authorOnlyRule := func(actor string) Decision {
		if actor == "" {
			return Denied()
		}
		return ConditionalOn(AuthorIs{UserRef: actor})
	}

	allow := func(string) Decision { return Allowed() }

	rules := map[RuleKey]Rule{}
	for _, resource := range []Resource{ResourcePost, ResourceAnswer, ResourceComment, ResourceCollection} {
		rules[RuleKey{ActionCreate, resource}] = allow
		rules[RuleKey{ActionRead, resource}] = allow
	}
	for _, action := range []Action{ActionUpdate, ActionDelete} {
		rules[RuleKey{action, ResourcePost}] = ownershipRule
		rules[RuleKey{action, ResourceAnswer}] = ownershipRule
		rules[RuleKey{action, ResourceComment}] = authorOnlyRule
		rules[RuleKey{action, ResourceCollection}] = authorOnlyRule
	}
	return NewPolicy(rules)
}

// RestrictToOwnPosts narrows the default table so reads on posts only see
// the caller's own content. Anonymous readers see nothing.
func RestrictToOwnPosts(entityRefs []string) *Policy {
	policy := DefaultPolicy(entityRefs)
	policy.rules[RuleKey{ActionRead, ResourcePost}] = func(actor string) Decision {
		if actor == "" {
			return Denied()
		}
		return ConditionalOn(AllOf{Conditions: []Criteria{
			AuthorIs{UserRef: actor},
		}})
	}
	return policy
}

// RestrictToTag narrows the default table so posts are only visible and
// editable when they carry the given tag.
func RestrictToTag(tag string, entityRefs []string) *Policy {
	policy := DefaultPolicy(entityRefs)
	gate := func(string) Decision {
		return ConditionalOn(AllOf{Conditions: []Criteria{
			HasTags{Tags: []string{tag}},
		}})
	}
	policy.rules[RuleKey{ActionRead, ResourcePost}] = gate
	policy.rules[RuleKey{ActionUpdate, ResourcePost}] = gate
	policy.rules[RuleKey{ActionDelete, ResourcePost}] = gate
	return policy
}

// ReadOnly disables all content creation while keeping the default rules for
// everything else.
func ReadOnly(entityRefs []string) *Policy {
	policy := DefaultPolicy(entityRefs)
	deny := func(string) Decision { return Denied() }
	for _, resource := range []Resource{ResourcePost, ResourceAnswer, ResourceComment, ResourceCollection} {
		policy.rules[RuleKey{ActionCreate, resource}] = deny
	}
	return policy
}
