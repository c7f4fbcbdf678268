package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".m4v":  true,
	".avi":  true,
	".mov":  true,
	".ts":   true,
	".webm": true,
	".wmv":  true,
}

var (
	seasonDirPattern  = regexp.MustCompile(`(?i)^season[ ._-]*(\d{1,2})$`)
	seasonNamePattern = regexp.MustCompile(`(?i)s(\d{1,2})\s*e\d{1,2}`)
	yearSuffixPattern = regexp.MustCompile(`\s*\((19|20)\d{2}\)\s*$`)
)

// IsVideoFile reports whether the path carries a recognized video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanVideos returns the video files under a path in sorted order. A file
// argument returns just itself; a directory is walked recursively. Hidden
// directories are skipped.
func ScanVideos(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if !IsVideoFile(root) {
			return nil, fmt.Errorf("%s is not a recognized video file", root)
		}
		return []string{root}, nil
	}

	var videos []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if name := entry.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsVideoFile(path) {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(videos)
	return videos, nil
}

// DetectShowSeason infers the show title and season number from a file's
// location, following the common library layout "Show/Season 01/file.mkv".
// When the parent is not a season directory, the parent's name is the show
// and the season falls back to an SxxEyy marker in the file name, then to 1.
func DetectShowSeason(path string) (show string, season int) {
	season = 1
	dir := filepath.Dir(path)
	parent := filepath.Base(dir)

	if match := seasonDirPattern.FindStringSubmatch(parent); match != nil {
		if parsed, err := strconv.Atoi(match[1]); err == nil {
			season = parsed
		}
		show = filepath.Base(filepath.Dir(dir))
	} else {
		show = parent
		if match := seasonNamePattern.FindStringSubmatch(filepath.Base(path)); match != nil {
			if parsed, err := strconv.Atoi(match[1]); err == nil {
				season = parsed
			}
		}
	}

	show = strings.TrimSpace(yearSuffixPattern.ReplaceAllString(show, ""))
	if show == "." || show == string(filepath.Separator) || show == "/" {
		show = ""
	}
	return show, season
}
