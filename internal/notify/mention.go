package notify

import (
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`(^|\s)@([\w:\-./]+)`)

// ExtractMentions scans raw content for @-prefixed user refs and returns
// them without the marker, deduplicated, in order of first appearance.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	mentions := make([]string, 0, len(matches))
	for _, match := range matches {
		ref := strings.TrimRight(match[2], ".,;:!?")
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		mentions = append(mentions, ref)
	}
	return mentions
}
