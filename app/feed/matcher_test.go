package feed

import (
	"strings"
	"testing"
)

func TestMatcher_AcceptedVariants(t *testing.T) {
	inputs := []string{
		"I'm not racist but I think...",
		"I am not racist, but...",
		"I’m not racist — but...",
		"i'M  NOT   racist: but whatever",
		"Im not racist; but",
		"I am\tnot racist - but",
		"He said \"I'm not racist but\" twice.",
		"I'm\u00a0not\u00a0racist,\u00a0but",
	}

	matcher := NewMatcher(DefaultSnippetRadius)
	for _, input := range inputs {
		if _, ok := matcher.Run(input); !ok {
			t.Errorf("Expected a hit for %q", input)
		}
	}
}

func TestMatcher_RejectedVariants(t *testing.T) {
	inputs := []string{
		"I'm not racist",
		"I'm not a racist but...",
		"I'm not racist butter",
		"Kim not racist but",
		"I'm not racist,, but",
		"",
	}

	matcher := NewMatcher(DefaultSnippetRadius)
	for _, input := range inputs {
		if _, ok := matcher.Run(input); ok {
			t.Errorf("Expected no hit for %q", input)
		}
	}
}

func TestMatcher_FirstOccurrenceWins(t *testing.T) {
	text := "first: I'm not racist but one. second: I am not racist but two."

	match, ok := NewMatcher(0).Run(text)
	if !ok {
		t.Fatal("Expected a hit")
	}
	if text[match.Start:match.End] != "I'm not racist but" {
		t.Errorf("Expected first occurrence, got %q", text[match.Start:match.End])
	}
	if match.Snippet != "I'm not racist but" {
		t.Errorf("Expected zero-radius snippet to equal the match, got %q", match.Snippet)
	}
}

func TestMatcher_SnippetWindow(t *testing.T) {
	before := strings.Repeat("a", 200)
	after := strings.Repeat("b", 200)
	text := before + " I'm not racist but " + after

	match, ok := NewMatcher(10).Run(text)
	if !ok {
		t.Fatal("Expected a hit")
	}

	expected := "aaaaaaaaa I'm not racist but bbbbbbbbb"
	if match.Snippet != expected {
		t.Errorf("Expected snippet %q, got %q", expected, match.Snippet)
	}
}

func TestMatcher_SnippetClipsToBounds(t *testing.T) {
	text := "Say: I'm not racist but ok"

	match, ok := NewMatcher(120).Run(text)
	if !ok {
		t.Fatal("Expected a hit")
	}
	if match.Snippet != text {
		t.Errorf("Expected whole text as snippet, got %q", match.Snippet)
	}
}

func TestMatcher_SnippetCountsCharacters(t *testing.T) {
	text := "ééééé I’m not racist but ñññññ"

	match, ok := NewMatcher(3).Run(text)
	if !ok {
		t.Fatal("Expected a hit")
	}

	expected := "éé I’m not racist but ññ"
	if match.Snippet != expected {
		t.Errorf("Expected snippet %q, got %q", expected, match.Snippet)
	}
}
