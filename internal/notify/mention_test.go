package notify

import (
	"reflect"
	"testing"
)

func TestExtractMentions(t *testing.T) {
	content := "thanks @user:default/alice and @user:default/bob! also @user:default/alice again"
	mentions := ExtractMentions(content)
	want := []string{"user:default/alice", "user:default/bob"}
	if !reflect.DeepEqual(mentions, want) {
		t.Fatalf("mentions = %v, want %v", mentions, want)
	}
}

func TestExtractMentionsIgnoresMidWordAt(t *testing.T) {
	if got := ExtractMentions("mail me at someone@example.com"); got != nil {
		t.Fatalf("expected no mentions, got %v", got)
	}
}

func TestExtractMentionsAtStart(t *testing.T) {
	mentions := ExtractMentions("@user:default/carol can you look?")
	want := []string{"user:default/carol"}
	if !reflect.DeepEqual(mentions, want) {
		t.Fatalf("mentions = %v, want %v", mentions, want)
	}
}

func TestExtractMentionsEmpty(t *testing.T) {
	if got := ExtractMentions("no mentions here"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
