// Package diff computes the change summary recorded in the change log when a
// text file is re-copied.
//
// This is deliberately a coarse content-set comparison, not a positional
// diff: a line counts as added when its exact text appears in the source but
// nowhere in the destination, and symmetrically for removed lines. Order and
// duplicate counts are not tracked. Downstream log consumers depend on these
// semantics; do not replace this with a real line-alignment diff.
package diff

import (
	"strings"
	"unicode"

	"github.com/arthur-debert/flatback/pkg/errors"
	"github.com/spf13/afero"
)

// Summary describes the line-level changes between a source file and its
// existing backup copy. Lines are stored trimmed of trailing whitespace, in
// encounter order.
type Summary struct {
	Added   []string
	Removed []string
}

// Empty reports whether the summary carries no changes. An empty summary is
// distinct from the nil summary Compare returns when no destination exists.
func (s *Summary) Empty() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0
}

// String renders the summary as the text block written to the change log:
// an "Added lines:" section, then a "Removed lines:" section, either omitted
// when empty. An empty summary renders as "".
func (s *Summary) String() string {
	var parts []string
	if len(s.Added) > 0 {
		parts = append(parts, "Added lines:")
		parts = append(parts, s.Added...)
	}
	if len(s.Removed) > 0 {
		parts = append(parts, "Removed lines:")
		parts = append(parts, s.Removed...)
	}
	return strings.Join(parts, "\n")
}

// Compare reads both files as ordered line sequences and returns their
// change summary. When the destination does not exist yet it returns
// (nil, nil): the caller copies the file without logging. Compare must only
// be called for files the classifier reported as text.
func Compare(fsys afero.Fs, sourcePath, destPath string) (*Summary, error) {
	exists, err := afero.Exists(fsys, destPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot stat destination file").
			WithDetail("path", destPath)
	}
	if !exists {
		return nil, nil
	}

	sourceData, err := afero.ReadFile(fsys, sourcePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileRead, "cannot read source file").
			WithDetail("path", sourcePath)
	}
	destData, err := afero.ReadFile(fsys, destPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileRead, "cannot read destination file").
			WithDetail("path", destPath)
	}

	sourceLines := splitLines(string(sourceData))
	destLines := splitLines(string(destData))

	summary := &Summary{
		Added:   missingFrom(sourceLines, destLines),
		Removed: missingFrom(destLines, sourceLines),
	}
	return summary, nil
}

// missingFrom returns the lines of haves whose exact text (terminator
// included) appears nowhere in against, trimmed for presentation.
func missingFrom(haves, against []string) []string {
	set := make(map[string]struct{}, len(against))
	for _, line := range against {
		set[line] = struct{}{}
	}

	var missing []string
	for _, line := range haves {
		if _, ok := set[line]; !ok {
			missing = append(missing, strings.TrimRightFunc(line, unicode.IsSpace))
		}
	}
	return missing
}

// splitLines splits content into lines keeping the line terminators, so that
// a final line without a trailing newline compares as distinct from the same
// text with one.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}

	var lines []string
	for {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			lines = append(lines, content)
			break
		}
		lines = append(lines, content[:i+1])
		content = content[i+1:]
		if content == "" {
			break
		}
	}
	return lines
}
