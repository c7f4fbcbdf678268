// Package tmdb is a minimal client for The Movie Database, used to resolve
// show titles to series ids and to enumerate a season's episodes before
// fetching reference subtitles.
package tmdb
