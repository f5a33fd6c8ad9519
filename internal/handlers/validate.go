// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validation limits for request fields.
const (
	minNameLen     = 2
	maxNameLen     = 100
	minPasswordLen = 6
	maxTitleLen    = 300
	maxContentLen  = 200_000
	maxExcerptLen  = 1_000
	maxMetaLen     = 500
	maxCommentLen  = 5_000
	maxMessageLen  = 2_000
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	telegramPattern = regexp.MustCompile(`^@[a-zA-Z0-9_]{5,}$`)
)

// validateRegistration checks sign-up inputs and returns the first error
// found, or "" when everything is acceptable.
func validateRegistration(name, email, password string, telegram *string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minNameLen {
		return "Name must be at least 2 characters."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 100 characters)."
	}
	if !emailPattern.MatchString(email) {
		return "A valid email address is required."
	}
	if msg := validatePassword(password); msg != "" {
		return msg
	}
	if telegram != nil && *telegram != "" && !telegramPattern.MatchString(*telegram) {
		return "Telegram handle must look like @username (letters, digits, underscores, at least 5 after the @)."
	}
	return ""
}

// validatePassword requires a minimum length plus at least one letter
// and one digit.
func validatePassword(password string) string {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 6 characters."
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return "Password must contain at least one letter and one digit."
	}
	return ""
}

// validateArticle checks article create/update inputs and returns the
// first error found.
func validateArticle(title, content, categoryKey string, excerpt, metaTitle, metaDesc *string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 200,000 characters)."
	}
	if strings.TrimSpace(categoryKey) == "" {
		return "Category is required."
	}
	if excerpt != nil && utf8.RuneCountInString(*excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	if metaTitle != nil && utf8.RuneCountInString(*metaTitle) > maxMetaLen {
		return "Meta title is too long (max 500 characters)."
	}
	if metaDesc != nil && utf8.RuneCountInString(*metaDesc) > maxMetaLen {
		return "Meta description is too long (max 500 characters)."
	}
	return ""
}

// validateCategory checks category create inputs.
func validateCategory(key, name string) string {
	if strings.TrimSpace(key) == "" {
		return "Key is required."
	}
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 100 characters)."
	}
	return ""
}
