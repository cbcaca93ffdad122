// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lid generates stable, human-readable local identifiers for
// literature records. The format is
// {year|"unkn"}-{surname}-{title initials}-{4 hex}, with a hash-based
// fallback when title or author yield no usable component. Suffixes are
// random and collision-checked against the store with bounded retries.
package lid

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/litgraph/internal/match"
	"github.com/pdiddy/litgraph/pkg/types"
)

const (
	maxSurnameLen = 8
	maxInitials   = 6
	minInitials   = 3
)

// stopwords are excluded from "meaningful" title words.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"into": true, "onto": true, "over": true, "under": true, "via": true,
	"are": true, "was": true, "were": true, "has": true, "have": true,
	"can": true, "all": true, "its": true, "their": true, "our": true,
	"yours": true, "about": true, "using": true, "towards": true,
	"toward": true, "between": true, "through": true, "based": true,
	"not": true, "non": true, "new": true,
}

// Checker is the store capability the generator needs: LID uniqueness.
type Checker interface {
	LIDExists(ctx context.Context, lid string) (bool, error)
}

// CollisionError reports that every generation attempt collided with an
// existing LID. It is fatal to the submission only.
type CollisionError struct {
	Attempts int
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("lid generation exhausted %d collision retries", e.Attempts)
}

// Generate produces a new unique LID for the given work. It retries
// with a fresh random suffix up to cfg.MaxAttempts times before failing.
func Generate(ctx context.Context, store Checker, title string, authors []string, year int, cfg types.LIDConfig) (string, error) {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}

	stem := readableStem(title, authors, year)

	for i := 0; i < attempts; i++ {
		var candidate string
		if stem != "" {
			candidate = fmt.Sprintf("%s-%s", stem, randomHex(2))
		} else {
			candidate = fallbackLID(title, authors, year, i)
		}

		exists, err := store.LIDExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking lid collision: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", &CollisionError{Attempts: attempts}
}

// readableStem builds the {year}-{surname}-{initials} prefix, or ""
// when the inputs cannot yield every component.
func readableStem(title string, authors []string, year int) string {
	surname := surnamePart(authors)
	initials := titleInitials(title)
	if surname == "" || initials == "" {
		return ""
	}

	yearPart := "unkn"
	if year >= 1000 && year <= 9999 {
		yearPart = fmt.Sprintf("%04d", year)
	}
	return fmt.Sprintf("%s-%s-%s", yearPart, surname, initials)
}

// surnamePart returns up to 8 lower-alpha characters of the first
// author's surname.
func surnamePart(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	sig := match.Signature(authors[0])
	if sig == "" {
		return ""
	}
	surname := sig
	if i := strings.IndexByte(sig, '.'); i >= 0 {
		surname = sig[:i]
	}
	var b strings.Builder
	for _, r := range surname {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
		if b.Len() == maxSurnameLen {
			break
		}
	}
	return b.String()
}

// titleInitials returns 3 to 6 initials of meaningful title words.
// Words shorter than 3 characters and stopwords are excluded; when that
// leaves fewer than 3 initials, any word of at least 2 characters counts.
func titleInitials(title string) string {
	words := strings.Fields(match.NormalizeTitle(title))

	initials := collectInitials(words, func(w string) bool {
		return len(w) >= 3 && !stopwords[w]
	})
	if len(initials) < minInitials {
		initials = collectInitials(words, func(w string) bool {
			return len(w) >= 2
		})
	}
	if len(initials) < minInitials {
		return ""
	}
	return initials
}

func collectInitials(words []string, keep func(string) bool) string {
	var b strings.Builder
	for _, w := range words {
		if !keep(w) {
			continue
		}
		r := rune(w[0])
		if !unicode.IsLower(r) {
			continue
		}
		b.WriteRune(r)
		if b.Len() == maxInitials {
			break
		}
	}
	return b.String()
}

// fallbackLID hashes title+authors+year into lit-{12 hex}. Retries past
// the first salt the hash so collisions can resolve.
func fallbackLID(title string, authors []string, year int, attempt int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d", title, strings.Join(authors, ";"), year)
	if attempt > 0 {
		h.Write([]byte(randomHex(4)))
	}
	return fmt.Sprintf("lit-%x", h.Sum(nil)[:6])
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) string {
	buf := make([]byte, n)
	rand.Read(buf)
	return fmt.Sprintf("%x", buf)
}
