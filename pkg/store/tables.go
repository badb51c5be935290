package store

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxSlugLength bounds slugs so derived table names stay under the
	// Postgres identifier limit.
	MaxSlugLength = 50

	generationPrefix = "object_ownership_"
	generationLayout = "20060102"
)

var (
	slugPattern       = regexp.MustCompile(`^[a-z0-9_]+$`)
	nonSlugPattern    = regexp.MustCompile(`[^a-z0-9]+`)
	generationPattern = regexp.MustCompile(`^object_ownership_[a-z0-9_]+_[0-9]{8}$`)
)

// Slugify derives a tenant slug from its display name: lowercase, runs of
// anything outside [a-z0-9] become one underscore, edge underscores are
// trimmed and the result is cut to MaxSlugLength.
func Slugify(name string) string {
	slug := nonSlugPattern.ReplaceAllString(strings.ToLower(name), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
	}
	return slug
}

func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > MaxSlugLength || !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

func UsersTable(slug string) (string, error) {
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	return slug + "_users", nil
}

func AuditTable(slug string) (string, error) {
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	return slug + "_ownership_audit_log", nil
}

// GenerationTable names the snapshot generation for slug on day's UTC date.
func GenerationTable(slug string, day time.Time) (string, error) {
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	return generationPrefix + slug + "_" + day.UTC().Format(generationLayout), nil
}

// GenerationPattern matches exactly the generation tables of slug, so that
// slug "prod" never picks up the generations of "prod_eu".
func GenerationPattern(slug string) (string, error) {
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	return "^" + generationPrefix + slug + "_[0-9]{8}$", nil
}

// ValidateGenerationTable checks that table is shaped like a generation name.
func ValidateGenerationTable(table string) error {
	if !generationPattern.MatchString(table) {
		return fmt.Errorf("invalid generation table %q", table)
	}
	return nil
}

// GenerationDate extracts the date from a generation table name of slug.
func GenerationDate(slug, table string) (time.Time, bool) {
	prefix := generationPrefix + slug + "_"
	if !strings.HasPrefix(table, prefix) {
		return time.Time{}, false
	}
	rest := table[len(prefix):]
	if len(rest) != len(generationLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(generationLayout, rest)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// QuoteIdent quotes a Postgres identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
