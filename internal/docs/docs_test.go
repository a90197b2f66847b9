package docs

import (
	"strings"
	"testing"
)

func TestTopics_SortedAndResolvable(t *testing.T) {
	topics := Topics()
	if len(topics) == 0 {
		t.Fatalf("expected embedded topics")
	}
	for i, topic := range topics {
		if i > 0 && topics[i-1] >= topic {
			t.Fatalf("topics not sorted: %v", topics)
		}
		body, ok := Get(topic)
		if !ok || !strings.HasPrefix(body, "# ") {
			t.Fatalf("topic %q: expected a markdown heading, got ok=%v", topic, ok)
		}
	}
}

func TestGet_CaseInsensitiveAndRejectsPaths(t *testing.T) {
	if _, ok := Get("  Query "); !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	for _, bad := range []string{"", "nope", "../docs", "content/query"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("expected %q to be unknown", bad)
		}
	}
}
