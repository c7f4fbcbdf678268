// Command epimatch identifies which episode a video file contains by
// sampling short ASR transcripts and matching them against per-episode
// reference subtitles.
package main
