package notify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/qboard/internal/db"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

// Dispatcher computes deduplicated recipient sets for content events and
// hands payloads to the transport. Delivery is fire and forget: it runs off
// the mutation path, bounded by a timeout, and failures are only logged.
// With a nil transport the recipient sets are still computed and returned so
// callers can use them for mention dedup or audit.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. transport may be nil.
func NewDispatcher(transport Transport, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{transport: transport, timeout: timeout, logger: logger}
}

// recipientSet merges the sources into a set, drops the actor, and returns a
// sorted slice so results are deterministic regardless of insertion order.
func recipientSet(actor string, sources ...[]string) []string {
	set := make(map[string]struct{})
	for _, source := range sources {
		for _, ref := range source {
			if ref == "" || ref == actor {
				continue
			}
			set[ref] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for ref := range set {
		out = append(out, ref)
	}
	sort.Strings(out)
	return out
}

func postLink(post *db.Post) string {
	switch post.Type {
	case db.PostTypeArticle:
		return fmt.Sprintf("/articles/%d", post.ID)
	case db.PostTypeLink:
		return fmt.Sprintf("/links/%d", post.ID)
	default:
		return fmt.Sprintf("/questions/%d", post.ID)
	}
}

func answerLink(answer *db.Answer) string {
	return fmt.Sprintf("/questions/%d#answer_%d", answer.PostID, answer.ID)
}

// OnNewPost notifies the post's entities and everyone following those
// entities or the post's tags.
func (d *Dispatcher) OnNewPost(actor string, post *db.Post, followers []string) []string {
	recipients := recipientSet(actor, post.EntityRefs(), followers)

	description := fmt.Sprintf("%s asked a question: %s", actor, post.Title)
	if post.Type != db.PostTypeQuestion {
		description = fmt.Sprintf("%s wrote an article: %s", actor, post.Title)
	}

	d.deliver(Notification{
		Recipients: Recipients{Type: "entity", EntityRefs: recipients, ExcludeEntityRef: actor},
		Payload: Payload{
			Title:       fmt.Sprintf("New %s", post.Type),
			Description: formatDescription(description),
			Link:        postLink(post),
			Topic:       fmt.Sprintf("New %s about entity", post.Type),
		},
	})
	return recipients
}

// OnNewPostComment notifies the post author, its entities, every prior
// commenter and the followers.
func (d *Dispatcher) OnNewPostComment(actor string, post *db.Post, comment string, followers []string) []string {
	recipients := recipientSet(actor,
		[]string{post.Author},
		post.EntityRefs(),
		post.CommentAuthors(),
		followers,
	)

	d.deliver(Notification{
		Recipients: Recipients{Type: "entity", EntityRefs: recipients, ExcludeEntityRef: actor},
		Payload: Payload{
			Title:       fmt.Sprintf("New comment on %s", post.Type),
			Description: formatDescription(fmt.Sprintf("%s commented on %s: %s", actor, post.Type, comment)),
			Link:        postLink(post),
			Topic:       fmt.Sprintf("New %s comment", post.Type),
			Scope:       fmt.Sprintf("%s:comment:%d", post.Type, post.ID),
		},
	})
	return recipients
}

// OnNewAnswer notifies the question author, its entities and the followers.
func (d *Dispatcher) OnNewAnswer(actor string, question *db.Post, answer *db.Answer, followers []string) []string {
	recipients := recipientSet(actor,
		[]string{question.Author},
		question.EntityRefs(),
		followers,
	)

	d.deliver(Notification{
		Recipients: Recipients{Type: "entity", EntityRefs: recipients, ExcludeEntityRef: actor},
		Payload: Payload{
			Title:       "New answer on question",
			Description: formatDescription(fmt.Sprintf("%s answered question: %s", actor, answer.Content)),
			Link:        answerLink(answer),
			Topic:       "New answer on question",
			Scope:       fmt.Sprintf("question:answer:%d:author", question.ID),
		},
	})
	return recipients
}

// OnAnswerComment notifies the answer author, every prior commenter on the
// answer, the question's entities and the followers.
func (d *Dispatcher) OnAnswerComment(actor string, question *db.Post, answer *db.Answer, comment string, followers []string) []string {
	recipients := recipientSet(actor,
		[]string{answer.Author},
		answer.CommentAuthors(),
		question.EntityRefs(),
		followers,
	)

	d.deliver(Notification{
		Recipients: Recipients{Type: "entity", EntityRefs: recipients, ExcludeEntityRef: actor},
		Payload: Payload{
			Title:       "New comment on answer",
			Description: formatDescription(fmt.Sprintf("%s commented answer: %s", actor, comment)),
			Link:        answerLink(answer),
			Topic:       "New answer comment",
			Scope:       fmt.Sprintf("answer:comment:%d", answer.ID),
		},
	})
	return recipients
}

// OnCorrectAnswer notifies the answer author, the question author and the
// question's entities.
func (d *Dispatcher) OnCorrectAnswer(actor string, question *db.Post, answer *db.Answer) []string {
	recipients := recipientSet(actor,
		[]string{answer.Author, question.Author},
		question.EntityRefs(),
	)

	d.deliver(Notification{
		Recipients: Recipients{Type: "entity", EntityRefs: recipients, ExcludeEntityRef: actor},
		Payload: Payload{
			Title:       "Correct answer on question",
			Description: formatDescription(fmt.Sprintf("%s marked answer as correct: %s", actor, answer.Content)),
			Link:        answerLink(answer),
			Topic:       "Correct answer on question",
			Scope:       fmt.Sprintf("question:correct:%d:answer", question.ID),
		},
	})
	return recipients
}

// OnPostMention notifies users mentioned in a post or a post comment,
// skipping anyone the primary event already reached.
func (d *Dispatcher) OnPostMention(actor string, post *db.Post, mentions, alreadySent []string, isComment bool) []string {
	recipients := filterMentions(actor, mentions, alreadySent)
	if len(recipients) == 0 {
		return recipients
	}

	where := "in a post"
	if isComment {
		where = "in a post comment"
	}

	d.deliver(Notification{
		Recipients: Recipients{Type: "entity", EntityRefs: recipients, ExcludeEntityRef: actor},
		Payload: Payload{
			Title:       "New mention",
			Description: formatDescription(fmt.Sprintf("%s mentioned you %s: %s", actor, where, post.Title)),
			Link:        postLink(post),
			Topic:       "New mention",
			Scope:       fmt.Sprintf("post:mention:%d", post.ID),
		},
	})
	return recipients
}

// OnAnswerMention is the answer-side counterpart of OnPostMention.
func (d *Dispatcher) OnAnswerMention(actor string, answer *db.Answer, mentions, alreadySent []string, isComment bool) []string {
	recipients := filterMentions(actor, mentions, alreadySent)
	if len(recipients) == 0 {
		return recipients
	}

	where := "in an answer"
	if isComment {
		where = "in an answer comment"
	}

	d.deliver(Notification{
		Recipients: Recipients{Type: "entity", EntityRefs: recipients, ExcludeEntityRef: actor},
		Payload: Payload{
			Title:       "New mention",
			Description: formatDescription(fmt.Sprintf("%s mentioned you %s: %s", actor, where, answer.Content)),
			Link:        answerLink(answer),
			Topic:       "New mention",
			Scope:       fmt.Sprintf("answer:mention:%d", answer.ID),
		},
	})
	return recipients
}

func filterMentions(actor string, mentions, alreadySent []string) []string {
	sent := make(map[string]struct{}, len(alreadySent))
	for _, ref := range alreadySent {
		sent[ref] = struct{}{}
	}
	filtered := make([]string, 0, len(mentions))
	for _, ref := range mentions {
		if _, ok := sent[ref]; ok {
			continue
		}
		filtered = append(filtered, ref)
	}
	return recipientSet(actor, filtered)
}

// deliver hands the notification to the transport on a separate goroutine so
// a slow or broken transport can never stall or fail the mutation that
// triggered it.
func (d *Dispatcher) deliver(notification Notification) {
	if d.transport == nil || len(notification.Recipients.EntityRefs) == 0 {
		return
	}

	go func() {
		recovered := panics.Try(func() {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := d.transport.Send(ctx, notification); err != nil {
				d.logger.Error("notification delivery failed",
					zap.String("topic", notification.Payload.Topic),
					zap.Error(err))
			}
		})
		if recovered != nil {
			d.logger.Error("notification transport panicked",
				zap.String("topic", notification.Payload.Topic),
				zap.Any("panic", recovered.Value))
		}
	}()
}
