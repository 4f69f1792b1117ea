package service

import (
	"errors"
	"reflect"
	"testing"
)

func TestTagFollowLifecycle(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	tags := NewTagService(gdb)

	mustCreatePost(t, posts, PostInput{Author: alice, Tags: []string{"go", "sql"}})

	// Tags only exist through posts.
	if _, err := tags.Follow(bob, "rust"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}

	changed, err := tags.Follow(bob, "go")
	if err != nil || !changed {
		t.Fatalf("follow: changed=%v err=%v", changed, err)
	}
	if changed, _ = tags.Follow(bob, "go"); changed {
		t.Fatalf("repeat follow must be a no-op")
	}

	followed, err := tags.UserTags(bob)
	if err != nil {
		t.Fatalf("user tags: %v", err)
	}
	if !reflect.DeepEqual(followed, []string{"go"}) {
		t.Fatalf("user tags = %v", followed)
	}

	changed, err = tags.Unfollow(bob, "go")
	if err != nil || !changed {
		t.Fatalf("unfollow: changed=%v err=%v", changed, err)
	}
	if changed, _ = tags.Unfollow(bob, "go"); changed {
		t.Fatalf("repeat unfollow must be a no-op")
	}
}

func TestTagCounts(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	tags := NewTagService(gdb)

	mustCreatePost(t, posts, PostInput{Author: alice, Title: "one", Tags: []string{"go"}})
	mustCreatePost(t, posts, PostInput{Author: bob, Title: "two", Tags: []string{"go", "sql"}})
	if _, err := tags.Follow(carol, "go"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	tag, err := tags.Get("go")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tag.PostsCount != 2 || tag.FollowerCount != 1 {
		t.Fatalf("counts = %d posts, %d followers", tag.PostsCount, tag.FollowerCount)
	}

	all, err := tags.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Name != "go" || all[1].Name != "sql" {
		t.Fatalf("list = %+v", all)
	}
}

func TestTagUpdateDescription(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	tags := NewTagService(gdb)

	mustCreatePost(t, posts, PostInput{Author: alice, Tags: []string{"go"}})

	tag, err := tags.UpdateDescription("go", "  the language  ")
	if err != nil {
		t.Fatalf("update description: %v", err)
	}
	if tag.Description != "the language" {
		t.Fatalf("description = %q", tag.Description)
	}

	if _, err := tags.UpdateDescription("missing", "x"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestUsersForTagsDistinct(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	tags := NewTagService(gdb)

	mustCreatePost(t, posts, PostInput{Author: alice, Tags: []string{"go", "sql"}})
	for _, name := range []string{"go", "sql"} {
		if _, err := tags.Follow(bob, name); err != nil {
			t.Fatalf("follow %s: %v", name, err)
		}
	}
	if _, err := tags.Follow(carol, "sql"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	users, err := tags.UsersForTags([]string{"go", "sql"})
	if err != nil {
		t.Fatalf("users for tags: %v", err)
	}
	// bob follows both but appears once.
	want := []string{bob, carol}
	if !reflect.DeepEqual(users, want) {
		t.Fatalf("users = %v, want %v", users, want)
	}

	none, err := tags.UsersForTags(nil)
	if err != nil || len(none) != 0 {
		t.Fatalf("empty input: %v %v", none, err)
	}
}
