package slug

import (
	"errors"
	"testing"
)

// TestGenerate exercises the slug generator with a broad range of inputs
// covering typical titles, special characters, Cyrillic, edge cases, and
// boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "title with year",
			input: "Hello World 2026",
			want:  "hello-world-2026",
		},
		{
			name:  "already lowercase",
			input: "already lowercase",
			want:  "already-lowercase",
		},
		{
			name:  "mixed case sentence",
			input: "The Quick Brown Fox Jumps Over the Lazy Dog",
			want:  "the-quick-brown-fox-jumps-over-the-lazy-dog",
		},

		// --- Special characters ---
		{
			name:  "punctuation marks",
			input: "Hello, World! How's it going?",
			want:  "hello-world-hows-it-going",
		},
		{
			name:  "ampersand and at sign",
			input: "Rock & Roll @ the Arena",
			want:  "rock-roll-the-arena",
		},
		{
			name:  "parentheses and brackets",
			input: "Version (2.0) [Beta]",
			want:  "version-20-beta",
		},
		{
			name:  "hash and dollar",
			input: "Issue #42 costs $100",
			want:  "issue-42-costs-100",
		},

		// --- Cyrillic preserved ---
		{
			name:  "cyrillic title",
			input: "Быстрый старт",
			want:  "быстрый-старт",
		},
		{
			name:  "mixed cyrillic and latin",
			input: "Настройка API ключей",
			want:  "настройка-api-ключей",
		},
		{
			name:  "cyrillic with punctuation",
			input: "Формы и кнопки: обзор",
			want:  "формы-и-кнопки-обзор",
		},

		// --- Other scripts stripped ---
		{
			name:  "chinese characters stripped",
			input: "指南 Guide",
			want:  "guide",
		},

		// --- Whitespace handling ---
		{
			name:  "leading and trailing spaces",
			input: "  hello world  ",
			want:  "hello-world",
		},
		{
			name:  "multiple consecutive spaces collapsed",
			input: "hello    world",
			want:  "hello-world",
		},
		{
			name:  "tabs collapse to hyphen",
			input: "hello\tworld",
			want:  "hello-world",
		},
		{
			name:  "newlines collapse to hyphen",
			input: "hello\nworld",
			want:  "hello-world",
		},

		// --- Hyphen handling ---
		{
			name:  "leading hyphens trimmed",
			input: "---hello world",
			want:  "hello-world",
		},
		{
			name:  "trailing hyphens trimmed",
			input: "hello world---",
			want:  "hello-world",
		},
		{
			name:  "multiple hyphens between words",
			input: "hello---world",
			want:  "hello-world",
		},
		{
			name:  "single hyphen preserved",
			input: "well-known fact",
			want:  "well-known-fact",
		},

		// --- Edge cases ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only spaces",
			input: "     ",
			want:  "",
		},
		{
			name:  "only hyphens",
			input: "-----",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "!@#$%^&*()",
			want:  "",
		},
		{
			name:  "single character",
			input: "A",
			want:  "a",
		},

		// --- Numbers ---
		{
			name:  "date-like string",
			input: "2026-02-25",
			want:  "2026-02-25",
		},
		{
			name:  "mixed words and numbers",
			input: "Chapter 3 Section 14",
			want:  "chapter-3-section-14",
		},

		// --- Realistic doc titles ---
		{
			name:  "tech doc title",
			input: "How to Deploy Go Apps on Kubernetes (2026 Edition)",
			want:  "how-to-deploy-go-apps-on-kubernetes-2026-edition",
		},
		{
			name:  "colon separated title",
			input: "API Reference: Webhooks",
			want:  "api-reference-webhooks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	slugs := []string{
		"hello-world",
		"quick-start",
		"быстрый-старт",
		"a",
		"123",
	}

	for _, s := range slugs {
		t.Run(s, func(t *testing.T) {
			got := Generate(s)
			if got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

// takenSet returns a taken-predicate backed by a fixed set of slugs.
func takenSet(existing ...string) func(string) (bool, error) {
	set := make(map[string]bool, len(existing))
	for _, s := range existing {
		set[s] = true
	}
	return func(candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		existing []string
		want     string
	}{
		{
			name:     "base is free",
			base:     "quick-start",
			existing: nil,
			want:     "quick-start",
		},
		{
			name:     "base taken",
			base:     "quick-start",
			existing: []string{"quick-start"},
			want:     "quick-start-1",
		},
		{
			name:     "base and first suffix taken",
			base:     "quick-start",
			existing: []string{"quick-start", "quick-start-1"},
			want:     "quick-start-2",
		},
		{
			name:     "suffixes only increase",
			base:     "quick-start",
			existing: []string{"quick-start", "quick-start-1", "quick-start-2"},
			want:     "quick-start-3",
		},
		{
			name:     "gap in suffixes uses first free",
			base:     "guide",
			existing: []string{"guide", "guide-2"},
			want:     "guide-1",
		},
		{
			name:     "unrelated slugs ignored",
			base:     "webhooks",
			existing: []string{"quick-start", "webhooks-1"},
			want:     "webhooks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.base, takenSet(tt.existing...))
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.base, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestResolve_EmptyBase(t *testing.T) {
	_, err := Resolve("", takenSet())
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Resolve(\"\") error = %v, want ErrEmpty", err)
	}
}

func TestResolve_ProbeError(t *testing.T) {
	probeErr := errors.New("store unreachable")
	_, err := Resolve("quick-start", func(string) (bool, error) {
		return false, probeErr
	})
	if !errors.Is(err, probeErr) {
		t.Errorf("Resolve error = %v, want wrapped %v", err, probeErr)
	}
}
