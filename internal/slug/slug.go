// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from article titles
// and resolution of slug collisions against existing records.
package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmpty is returned when a title contains no usable characters, so no
// identifier can be derived from it.
var ErrEmpty = errors.New("slug: cannot derive identifier from title")

var (
	// whitespaceRun matches one or more whitespace characters.
	whitespaceRun = regexp.MustCompile(`\s+`)
	// disallowed matches anything that isn't a basic Latin letter, digit,
	// hyphen, or a Cyrillic letter. Cyrillic (U+0400–U+04FF) is preserved
	// rather than transliterated so that slugs stay readable for the
	// documentation's primary audience.
	disallowed = regexp.MustCompile(`[^a-z0-9\x{0400}-\x{04FF}-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given title.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// The operation is pure and idempotent: generating from an already valid
// slug returns it unchanged.
func Generate(title string) string {
	result := strings.ToLower(strings.TrimSpace(title))
	result = whitespaceRun.ReplaceAllString(result, "-")
	result = disallowed.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Resolve finds the first available slug for base by probing base,
// base-1, base-2, … against taken. The suffix only ever increases, so
// repeated resolution against a growing set of slugs is monotonic.
//
// The result is a best-effort hint: under concurrent creation two
// callers can both observe a slug as free. The database's unique
// constraint is the final authority, and callers retry with a fresh
// Resolve on a uniqueness conflict.
func Resolve(base string, taken func(candidate string) (bool, error)) (string, error) {
	if base == "" {
		return "", ErrEmpty
	}

	candidate := base
	for i := 1; ; i++ {
		inUse, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("slug probe %q: %w", candidate, err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
