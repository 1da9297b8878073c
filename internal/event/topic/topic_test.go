package topic

import "testing"

func TestTopicSegments(t *testing.T) {
	tests := []struct {
		topic    Topic
		expected []string
	}{
		{"history.changed", []string{"history", "changed"}},
		{"page", []string{"page"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.topic.String(), func(t *testing.T) {
			got := tt.topic.Segments()
			if len(got) != len(tt.expected) {
				t.Fatalf("Segments() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Segments()[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestTopicParentChild(t *testing.T) {
	if got := Topic("page.activated").Parent(); got != "page" {
		t.Errorf("Parent() = %q, want page", got)
	}
	if got := Topic("page").Parent(); got != "" {
		t.Errorf("Parent() = %q, want empty", got)
	}
	if got := Topic("page").Child("changed"); got != "page.changed" {
		t.Errorf("Child() = %q", got)
	}
	if got := Topic("").Child("page"); got != "page" {
		t.Errorf("Child() on empty = %q", got)
	}
	if got := Join("history", "changed"); got != "history.changed" {
		t.Errorf("Join() = %q", got)
	}
}

func TestTopicIsValid(t *testing.T) {
	tests := []struct {
		topic Topic
		valid bool
	}{
		{"history.changed", true},
		{"page", true},
		{"", false},
		{".page", false},
		{"page.", false},
		{"page..changed", false},
	}
	for _, tt := range tests {
		if got := tt.topic.IsValid(); got != tt.valid {
			t.Errorf("%q.IsValid() = %v, want %v", tt.topic, got, tt.valid)
		}
	}
}

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"page.changed", "page.changed", true},
		{"page.changed", "page.activated", false},
		{"page.changed", "page.*", true},
		{"page", "page.*", false},
		{"page.changed", "*", false},
		{"page.changed", "**", true},
		{"page", "page.**", true},
		{"history.page.changed", "history.**", true},
		{"history.page.changed", "**.changed", true},
		{"history.page.changed", "*.changed", false},
		{"history.page.changed", "history.**.changed", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.topic)+"~"+string(tt.pattern), func(t *testing.T) {
			if got := tt.topic.Matches(tt.pattern); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopicIsWildcard(t *testing.T) {
	if Topic("page.changed").IsWildcard() {
		t.Error("plain topic reported as wildcard")
	}
	if !Topic("page.*").IsWildcard() || !Topic("**").IsWildcard() {
		t.Error("wildcard pattern not detected")
	}
}
