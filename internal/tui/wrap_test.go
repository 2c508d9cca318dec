package tui

import "testing"

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("the quick brown fox", 10)
	if got != "the quick\nbrown fox" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefghij", 4)
	if got != "abcd\nefgh\nij" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextKeepsParagraphs(t *testing.T) {
	got := wrapText("Q. Where were you?\n\nA. At home.", 40)
	if got != "Q. Where were you?\n\nA. At home." {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextKeepsIndentation(t *testing.T) {
	got := wrapText("  - Speaker labels use capitals", 16)
	if got != "  - Speaker\nlabels use\ncapitals" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("法廷法廷", 4)
	if got != "法廷\n法廷" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	in := "unchanged text"
	if got := wrapText(in, 0); got != in {
		t.Fatalf("expected input back, got %q", got)
	}
}

func TestIndentSkipsBlankLines(t *testing.T) {
	if got := indent("a\n\nb", "  "); got != "  a\n\n  b" {
		t.Fatalf("unexpected indent: %q", got)
	}
}
