package git

import (
	"fmt"
	"sort"
	"strings"
)

// maxPatchLinesPerFile caps how much of each per-file diff survives into
// the rendered output.
const maxPatchLinesPerFile = 100

// FormatCommitDiff renders a single commit in a compact, LLM-oriented
// structure:
//
//	@c <hash>
//	@s <subject>
//	@f
//	<name-status lines>
//	@p
//	<patch>
//	@end
//
// Sections with no content are omitted; @c and @end always appear.
func FormatCommitDiff(c *Client, ref string) string {
	hash, subject := c.CommitMeta(ref)
	nameStatus := c.NameStatus(ref)
	patch := TruncatePatch(c.PatchUnified(ref), maxPatchLinesPerFile)

	parts := []string{"@c " + hash}
	if subject != "" {
		parts = append(parts, "@s "+subject)
	}
	if nameStatus != "" {
		parts = append(parts, "@f", nameStatus)
	}
	if patch != "" {
		parts = append(parts, "@p", patch)
	}
	parts = append(parts, "@end")
	return strings.Join(parts, "\n")
}

// FormatEpicDiff renders the diffs of multiple commits in chronological
// order, separated by blank lines. Blank hashes are skipped.
func FormatEpicDiff(c *Client, refs []string) string {
	var diffs []string
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if diff := FormatCommitDiff(c, ref); diff != "" {
			diffs = append(diffs, diff)
		}
	}
	return strings.Join(diffs, "\n\n")
}

// TruncatePatch limits each per-file section of a unified diff to
// maxLines lines, appending a marker noting how many were dropped.
func TruncatePatch(patch string, maxLines int) string {
	if patch == "" {
		return ""
	}
	lines := strings.Split(patch, "\n")
	var result []string
	fileStart := -1

	flush := func(end int) {
		section := lines[fileStart:end]
		if len(section) > maxLines {
			result = append(result, section[:maxLines]...)
			omitted := len(section) - maxLines
			result = append(result, fmt.Sprintf("... [diff truncated: +%d more lines omitted for context efficiency]", omitted))
		} else {
			result = append(result, section...)
		}
	}

	for i, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			if fileStart >= 0 {
				flush(i)
			}
			fileStart = i
		}
	}
	if fileStart >= 0 {
		flush(len(lines))
	}
	if result == nil {
		// No per-file headers found, leave the patch untouched.
		return patch
	}
	return strings.Join(result, "\n")
}

// ParseNameStatus extracts file paths from raw name-status lines. For
// renames and copies the new path is reported.
func ParseNameStatus(nameStatus string) []string {
	var files []string
	for _, line := range strings.Split(nameStatus, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		status := strings.TrimSpace(parts[0])
		if (strings.HasPrefix(status, "R") || strings.HasPrefix(status, "C")) && len(parts) > 2 {
			files = append(files, parts[2])
		} else {
			files = append(files, parts[1])
		}
	}
	return files
}

// EpicFilesChanged renders a deduplicated, sorted bullet list of every
// file touched across the given commits.
func EpicFilesChanged(c *Client, refs []string) string {
	seen := map[string]bool{}
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		for _, f := range ParseNameStatus(c.NameStatus(ref)) {
			seen[f] = true
		}
	}
	if len(seen) == 0 {
		return ""
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	for i, f := range files {
		files[i] = "- " + f
	}
	return strings.Join(files, "\n")
}
