package permission

import "testing"

const (
	alice = "user:default/alice"
	bob   = "user:default/bob"
)

func TestDefaultPolicyCreateAndReadAreOpen(t *testing.T) {
	policy := DefaultPolicy(nil)

	for _, resource := range []Resource{ResourcePost, ResourceAnswer, ResourceComment, ResourceCollection} {
		for _, action := range []Action{ActionCreate, ActionRead} {
			decision := policy.Decide(action, resource, "")
			if decision.Result != ResultAllow {
				t.Fatalf("%s %s without identity: expected allow, got %v", action, resource, decision.Result)
			}
		}
	}
}

func TestDefaultPolicyMutationsRequireIdentity(t *testing.T) {
	policy := DefaultPolicy([]string{"component:default/x"})

	for _, resource := range []Resource{ResourcePost, ResourceAnswer, ResourceComment, ResourceCollection} {
		for _, action := range []Action{ActionUpdate, ActionDelete} {
			decision := policy.Decide(action, resource, "")
			if decision.Result != ResultDeny {
				t.Fatalf("%s %s without identity: expected deny, got %v", action, resource, decision.Result)
			}
		}
	}
}

func TestDefaultPolicyPostOwnershipOrEntity(t *testing.T) {
	policy := DefaultPolicy([]string{"component:default/x"})

	decision := policy.Decide(ActionUpdate, ResourcePost, bob)
	if decision.Result != ResultConditional {
		t.Fatalf("expected conditional decision, got %v", decision.Result)
	}

	post := Facts{Author: alice, Entities: []string{"component:default/x"}}

	// alice owns the post, entity list in her facts irrelevant.
	aliceDecision := policy.Decide(ActionUpdate, ResourcePost, alice)
	if !aliceDecision.Satisfied(Facts{Author: alice}) {
		t.Fatalf("author should pass ownership criteria")
	}

	// bob is not the author but the post carries the configured entity.
	if !decision.Satisfied(post) {
		t.Fatalf("entity membership should pass ownership criteria")
	}

	// neither author nor entity membership.
	if decision.Satisfied(Facts{Author: alice, Entities: []string{"component:default/y"}}) {
		t.Fatalf("expected deny when neither author nor entities match")
	}
}

func TestDefaultPolicyCommentHasNoEntityBypass(t *testing.T) {
	policy := DefaultPolicy([]string{"component:default/x"})

	decision := policy.Decide(ActionDelete, ResourceComment, bob)
	if decision.Result != ResultConditional {
		t.Fatalf("expected conditional decision, got %v", decision.Result)
	}
	if decision.Satisfied(Facts{Author: alice, Entities: []string{"component:default/x"}}) {
		t.Fatalf("comments are not entity curated, entity membership must not pass")
	}
	if !decision.Satisfied(Facts{Author: bob}) {
		t.Fatalf("comment author should pass")
	}
}

func TestUnmatchedPairFallsThroughToDeny(t *testing.T) {
	policy := NewPolicy(map[RuleKey]Rule{})
	decision := policy.Decide(ActionRead, ResourcePost, alice)
	if decision.Result != ResultDeny {
		t.Fatalf("empty table should deny everything, got %v", decision.Result)
	}
}

func TestRestrictToOwnPosts(t *testing.T) {
	policy := RestrictToOwnPosts(nil)

	anonymous := policy.Decide(ActionRead, ResourcePost, "")
	if anonymous.Result != ResultDeny {
		t.Fatalf("anonymous read should be denied, got %v", anonymous.Result)
	}

	decision := policy.Decide(ActionRead, ResourcePost, alice)
	if decision.Result != ResultConditional {
		t.Fatalf("expected conditional read, got %v", decision.Result)
	}
	if !decision.Satisfied(Facts{Author: alice}) {
		t.Fatalf("own post should be visible")
	}
	if decision.Satisfied(Facts{Author: bob}) {
		t.Fatalf("other posts should be filtered out")
	}
}

func TestRestrictToTag(t *testing.T) {
	policy := RestrictToTag("internal", nil)

	decision := policy.Decide(ActionRead, ResourcePost, alice)
	if decision.Result != ResultConditional {
		t.Fatalf("expected conditional read, got %v", decision.Result)
	}
	if !decision.Satisfied(Facts{Tags: []string{"internal", "go"}}) {
		t.Fatalf("tagged post should be visible")
	}
	if decision.Satisfied(Facts{Tags: []string{"go"}}) {
		t.Fatalf("untagged post should be filtered out")
	}
}

func TestReadOnlyDisablesCreation(t *testing.T) {
	policy := ReadOnly(nil)

	for _, resource := range []Resource{ResourcePost, ResourceAnswer, ResourceComment, ResourceCollection} {
		decision := policy.Decide(ActionCreate, resource, alice)
		if decision.Result != ResultDeny {
			t.Fatalf("create %s should be denied, got %v", resource, decision.Result)
		}
	}
	if policy.Decide(ActionRead, ResourcePost, "").Result != ResultAllow {
		t.Fatalf("reads should stay open")
	}
}
