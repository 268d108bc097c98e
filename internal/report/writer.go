// Package report renders the comparison note and filters a run's results
// against a previously written note. The note's line format is a wire
// contract: the next run re-parses it, so header and feature lines must stay
// byte-stable across versions.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/pascalheritier/FeatureComparator/internal/compare"
)

// RepoMarker opens a repository section. Parsing keys off this token, so it
// must never appear in feature lines.
const RepoMarker = "Repository:"

// Section labels inside a repository section.
const (
	missingLabel = "Missing features:"
	unknownLabel = "Unknown features:"
)

// utf8BOM prefixes the note so editors on every platform pick up the
// encoding.
const utf8BOM = "\ufeff"

// Render serializes the results into the note format: per repository, a
// marker header with the capitalized name, the missing features ordered by
// tracker name ascending then issue id descending, the unknown features in
// accumulated order, and a blank separator line. Every feature line begins
// with " - ".
func Render(results []compare.RepoResult) []byte {
	var sb strings.Builder
	sb.WriteString(utf8BOM)

	for _, result := range results {
		fmt.Fprintf(&sb, "%s %s\n", RepoMarker, capitalize(result.Name))

		sb.WriteString(missingLabel + "\n")
		missing := make([]*trackerIssue, 0, len(result.Missing))
		for _, issue := range result.Missing {
			missing = append(missing, &trackerIssue{issue.Tracker, issue.ID, issue.Subject})
		}
		sort.SliceStable(missing, func(i, j int) bool {
			if missing[i].tracker != missing[j].tracker {
				return missing[i].tracker < missing[j].tracker
			}
			return missing[i].id > missing[j].id
		})
		for _, issue := range missing {
			fmt.Fprintf(&sb, " - %s #%d: %s\n", issue.tracker, issue.id, issue.subject)
		}

		sb.WriteString(unknownLabel + "\n")
		for _, unknown := range result.Unknown {
			fmt.Fprintf(&sb, " - %s\n", unknown)
		}

		sb.WriteString("\n")
	}

	return []byte(sb.String())
}

type trackerIssue struct {
	tracker string
	id      int
	subject string
}

// Write replaces any existing note at path with the rendered results. The
// stale file is deleted before the new content is written, so a failure
// never leaves a half-old, half-new file.
func Write(path string, results []compare.RepoResult) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale note %s: %w", path, err)
	}
	if err := os.WriteFile(path, Render(results), 0644); err != nil {
		return fmt.Errorf("writing note %s: %w", path, err)
	}
	return nil
}

func capitalize(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return name
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
