package formatter

import "strings"

// FormatAuthors rewrites an author list into the "Last, First and ..." form.
// Authors already containing a comma and single-word names are left alone.
func FormatAuthors(authors string) string {
	parts := strings.Split(authors, " and ")
	out := make([]string, len(parts))
	for i, author := range parts {
		out[i] = formatAuthor(author)
	}
	return strings.Join(out, " and ")
}

func formatAuthor(author string) string {
	if strings.Contains(author, ",") {
		return author
	}
	words := strings.Fields(author)
	switch len(words) {
	case 0:
		return author
	case 1:
		return words[0]
	}
	last := words[len(words)-1]
	rest := words[:len(words)-1]
	return last + ", " + strings.Join(rest, " ")
}

// ValidAuthors reports whether every multi-word author in the list is
// written "Last, First" with the comma attached to the last name.
func ValidAuthors(authors string) bool {
	for _, author := range strings.Split(authors, " and ") {
		words := strings.Fields(author)
		if len(words) < 2 {
			continue
		}
		if !strings.HasSuffix(words[0], ",") {
			return false
		}
	}
	return true
}
