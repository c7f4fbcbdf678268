package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"epimatch/internal/textutil"
)

// ProposedName builds the rename suggestion for a matched file:
// "Show - S01E02 - Title.mkv", keeping the source extension. The title is
// omitted when metadata lookup provided none. Rename execution is the
// caller's business; this only names.
func ProposedName(show string, season, episode int, title, sourcePath string) string {
	base := fmt.Sprintf("%s - S%02dE%02d", textutil.SanitizeFileName(show), season, episode)
	if title = strings.TrimSpace(title); title != "" {
		base += " - " + textutil.SanitizeFileName(title)
	}
	ext := strings.ToLower(filepath.Ext(sourcePath))
	return base + ext
}
