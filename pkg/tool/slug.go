package tool

import (
	"fmt"

	"github.com/gosimple/slug"
)

const maxSlugAttempts = 1000

// UniqueSlug slugifies title and appends -1, -2, ... until exists reports the
// candidate as free.
func UniqueSlug(title string, exists func(candidate string) (bool, error)) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = GenerateUUIDV7()
	}
	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", title, maxSlugAttempts)
}
