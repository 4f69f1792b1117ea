package service

import (
	"errors"
	"reflect"
	"testing"
)

func TestEntityFollowCreatesOnFirstUse(t *testing.T) {
	gdb := newTestDB(t)
	entities := NewEntityService(gdb)

	// Unlike tags, entities can be followed before any post mentions them.
	changed, err := entities.Follow(bob, "component:default/x")
	if err != nil || !changed {
		t.Fatalf("follow: changed=%v err=%v", changed, err)
	}
	if changed, _ = entities.Follow(bob, "component:default/x"); changed {
		t.Fatalf("repeat follow must be a no-op")
	}

	refs, err := entities.UserEntities(bob)
	if err != nil {
		t.Fatalf("user entities: %v", err)
	}
	if !reflect.DeepEqual(refs, []string{"component:default/x"}) {
		t.Fatalf("user entities = %v", refs)
	}
}

func TestEntityUnfollow(t *testing.T) {
	gdb := newTestDB(t)
	entities := NewEntityService(gdb)

	if _, err := entities.Unfollow(bob, "component:default/ghost"); !errors.Is(err, ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}

	if _, err := entities.Follow(bob, "component:default/x"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	changed, err := entities.Unfollow(bob, "component:default/x")
	if err != nil || !changed {
		t.Fatalf("unfollow: changed=%v err=%v", changed, err)
	}
	if changed, _ = entities.Unfollow(bob, "component:default/x"); changed {
		t.Fatalf("repeat unfollow must be a no-op")
	}
}

func TestEntityCounts(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	entities := NewEntityService(gdb)

	mustCreatePost(t, posts, PostInput{Author: alice, Entities: []string{"component:default/x"}})
	mustCreatePost(t, posts, PostInput{Author: bob, Title: "second", Entities: []string{"component:default/x"}})
	if _, err := entities.Follow(carol, "component:default/x"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	entity, err := entities.Get("component:default/x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entity.PostsCount != 2 || entity.FollowerCount != 1 {
		t.Fatalf("counts = %d posts, %d followers", entity.PostsCount, entity.FollowerCount)
	}
}

func TestUsersForEntitiesDistinct(t *testing.T) {
	gdb := newTestDB(t)
	entities := NewEntityService(gdb)

	for _, ref := range []string{"component:default/x", "component:default/y"} {
		if _, err := entities.Follow(bob, ref); err != nil {
			t.Fatalf("follow %s: %v", ref, err)
		}
	}
	if _, err := entities.Follow(alice, "component:default/y"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	users, err := entities.UsersForEntities([]string{"component:default/x", "component:default/y"})
	if err != nil {
		t.Fatalf("users for entities: %v", err)
	}
	want := []string{alice, bob}
	if !reflect.DeepEqual(users, want) {
		t.Fatalf("users = %v, want %v", users, want)
	}
}
