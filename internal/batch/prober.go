package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"epimatch/internal/cache"
	"epimatch/internal/media/ffprobe"
)

// Prober resolves a file's runtime and the audio stream to sample.
type Prober interface {
	Probe(ctx context.Context, path string) (ProbeInfo, error)
}

// ProbeInfo is the subset of stream metadata identification needs.
type ProbeInfo struct {
	Duration    float64
	AudioStream int
	ModTime     time.Time
}

// FFprobeProber probes files through ffprobe, memoizing results in the
// artifact cache keyed by path and modification time.
type FFprobeProber struct {
	binary    string
	language  string
	artifacts *cache.Cache
}

// NewFFprobeProber constructs a prober. language biases audio stream
// selection toward a preferred track; artifacts may be nil.
func NewFFprobeProber(binary, language string, artifacts *cache.Cache) *FFprobeProber {
	return &FFprobeProber{binary: binary, language: language, artifacts: artifacts}
}

func (p *FFprobeProber) Probe(ctx context.Context, path string) (ProbeInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return ProbeInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	modTime := stat.ModTime()
	key := fmt.Sprintf("%s|%d", path, modTime.Unix())

	if cached, ok := p.artifacts.Get(cache.NamespaceDuration, key); ok {
		if info, ok := cached.(ProbeInfo); ok {
			return info, nil
		}
	}

	result, err := ffprobe.Inspect(ctx, p.binary, path)
	if err != nil {
		return ProbeInfo{}, err
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return ProbeInfo{}, fmt.Errorf("probe %s: no duration reported", path)
	}
	stream, ok := result.FirstAudioStreamIndex(p.language)
	if !ok {
		return ProbeInfo{}, fmt.Errorf("probe %s: no audio stream", path)
	}

	info := ProbeInfo{Duration: duration, AudioStream: stream, ModTime: modTime}
	p.artifacts.Put(cache.NamespaceDuration, key, info, 64)
	return info, nil
}
