package service

import (
	"errors"
	"testing"

	"github.com/qboard/internal/db"
	"github.com/qboard/internal/permission"
)

func TestAnswerCreateRequiresQuestion(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	answers := NewAnswerService(gdb)

	article := mustCreatePost(t, posts, PostInput{Author: alice, Type: db.PostTypeArticle})
	if _, err := answers.Create(bob, article.ID, "not allowed", false); !errors.Is(err, ErrNotQuestion) {
		t.Fatalf("expected ErrNotQuestion, got %v", err)
	}
	if _, err := answers.Create(bob, 9999, "ghost", false); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := answers.Create(bob, article.ID, "  ", false); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestAnswerVoteMirrorsPostVote(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	answers := NewAnswerService(gdb)

	post := mustCreatePost(t, posts, PostInput{Author: alice})
	answer, err := answers.Create(bob, post.ID, "an answer", false)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	if _, err := answers.Vote(carol, answer.ID, 2); !errors.Is(err, ErrInvalidVote) {
		t.Fatalf("expected ErrInvalidVote, got %v", err)
	}

	changed, err := answers.Vote(carol, answer.ID, 1)
	if err != nil || !changed {
		t.Fatalf("vote: changed=%v err=%v", changed, err)
	}
	if changed, _ = answers.Vote(carol, answer.ID, 1); changed {
		t.Fatalf("repeat vote must be a no-op")
	}
	changed, err = answers.Vote(carol, answer.ID, -1)
	if err != nil || !changed {
		t.Fatalf("flip vote: changed=%v err=%v", changed, err)
	}
	if score, _ := answers.Score(answer.ID); score != -1 {
		t.Fatalf("score = %d, want -1", score)
	}

	// The answer vote must not bleed into the post score.
	if score, _ := posts.Score(post.ID); score != 0 {
		t.Fatalf("post score = %d, want 0", score)
	}
}

func TestAnswerUpdateOwnership(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	answers := NewAnswerService(gdb)

	post := mustCreatePost(t, posts, PostInput{Author: alice, Entities: []string{"component:default/x"}})
	answer, err := answers.Create(bob, post.ID, "original", false)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	if _, err := answers.Update(carol, answer.ID, "hijacked", nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-author without criteria: expected ErrForbidden, got %v", err)
	}

	updated, err := answers.Update(bob, answer.ID, "revised", nil)
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Content != "revised" {
		t.Fatalf("content = %q", updated.Content)
	}

	// carol gets through via membership in the question's entity.
	criteria := permission.AnyOf{Conditions: []permission.Criteria{
		permission.AuthorIs{UserRef: carol},
		permission.HasEntities{Refs: []string{"component:default/x"}},
	}}
	if _, err := answers.Update(carol, answer.ID, "moderated", criteria); err != nil {
		t.Fatalf("entity branch: %v", err)
	}
}

func TestAnswerDeleteClearsCorrectMarker(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	answers := NewAnswerService(gdb)

	post := mustCreatePost(t, posts, PostInput{Author: alice})
	answer, err := answers.Create(bob, post.ID, "accepted", false)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := posts.MarkAnswerCorrect(post.ID, answer.ID); err != nil {
		t.Fatalf("mark correct: %v", err)
	}
	if _, err := answers.Comment(answer.ID, carol, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := answers.Vote(carol, answer.ID, 1); err != nil {
		t.Fatalf("vote: %v", err)
	}

	if err := answers.Delete(bob, answer.ID, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reloaded, err := posts.Get(alice, post.ID, "", false)
	if err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.CorrectAnswerID != nil {
		t.Fatalf("correct answer marker not cleared: %v", *reloaded.CorrectAnswerID)
	}

	var comments, votes int64
	gdb.Model(&db.Comment{}).Where("answer_id = ?", answer.ID).Count(&comments)
	gdb.Model(&db.Vote{}).Where("answer_id = ?", answer.ID).Count(&votes)
	if comments != 0 || votes != 0 {
		t.Fatalf("answer children not cascaded: %d comments, %d votes", comments, votes)
	}
}

func TestAnswerListFiltersAndPaging(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	answers := NewAnswerService(gdb)

	post := mustCreatePost(t, posts, PostInput{Author: alice, Entities: []string{"component:default/x"}})
	first, err := answers.Create(bob, post.ID, "use indexes", false)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := answers.Create(carol, post.ID, "denormalize", false); err != nil {
		t.Fatalf("answer: %v", err)
	}

	byAuthor, total, err := answers.List("", AnswerListOptions{Author: bob}, nil)
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if total != 1 || byAuthor[0].ID != first.ID {
		t.Fatalf("author filter returned %d/%d", len(byAuthor), total)
	}

	byEntity, total, err := answers.List("", AnswerListOptions{Entity: "component:default/x"}, nil)
	if err != nil {
		t.Fatalf("list by entity: %v", err)
	}
	if total != 2 || len(byEntity) != 2 {
		t.Fatalf("entity filter returned %d/%d", len(byEntity), total)
	}

	page, total, err := answers.List("", AnswerListOptions{Order: "asc", Limit: 1, Offset: 1}, nil)
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if total != 2 || len(page) != 1 {
		t.Fatalf("page returned %d rows, total %d", len(page), total)
	}
}

func TestAnswerAnonymousHidden(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	answers := NewAnswerService(gdb)

	post := mustCreatePost(t, posts, PostInput{Author: alice})
	answer, err := answers.Create(bob, post.ID, "quietly", true)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer.Author == bob {
		t.Fatalf("anonymous answer author leaked")
	}
}

func TestAnswerCommentLifecycle(t *testing.T) {
	gdb := newTestDB(t)
	posts := NewPostService(gdb)
	answers := NewAnswerService(gdb)

	post := mustCreatePost(t, posts, PostInput{Author: alice})
	answer, err := answers.Create(bob, post.ID, "an answer", false)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	withComment, err := answers.Comment(answer.ID, carol, "could you expand?")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if len(withComment.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(withComment.Comments))
	}
	commentID := withComment.Comments[0].ID

	if _, err := answers.DeleteComment(answer.ID, commentID, alice); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-author delete: expected ErrForbidden, got %v", err)
	}
	cleaned, err := answers.DeleteComment(answer.ID, commentID, carol)
	if err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	if len(cleaned.Comments) != 0 {
		t.Fatalf("comment not deleted")
	}
}
