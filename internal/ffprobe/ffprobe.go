// Package ffprobe queries stream metadata from the engine's companion tool.
//
// Everything here is advisory: results feed pre-flight info logging only, so
// any failure yields an empty result instead of an error.
package ffprobe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// StreamInfo contains metadata for a single container stream.
type StreamInfo struct {
	CodecType     string
	CodecName     string
	Channels      int
	ChannelLayout string
	SampleRate    string
	Language      string
	Title         string
	Default       bool
}

// probeOutput represents the JSON output from the query tool.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType     string            `json:"codec_type"`
	CodecName     string            `json:"codec_name"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	SampleRate    string            `json:"sample_rate"`
	Tags          map[string]string `json:"tags"`
	Disposition   probeDisposition  `json:"disposition"`
}

type probeDisposition struct {
	Default int `json:"default"`
}

// Inspect queries metadata for one stream index of a file. The second return
// value is false whenever the lookup failed or the stream is absent.
func Inspect(path string, streamIndex int) (StreamInfo, bool) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-select_streams", strconv.Itoa(streamIndex),
		"-show_entries", "stream=codec_type,codec_name,channels,channel_layout,sample_rate:stream_tags=language,title:stream_disposition=default",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return StreamInfo{}, false
	}
	return parseStreamInfo(output)
}

// parseStreamInfo decodes the query tool's JSON for the first selected stream.
func parseStreamInfo(data []byte) (StreamInfo, bool) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return StreamInfo{}, false
	}
	if len(probe.Streams) == 0 {
		return StreamInfo{}, false
	}

	s := probe.Streams[0]
	return StreamInfo{
		CodecType:     s.CodecType,
		CodecName:     s.CodecName,
		Channels:      s.Channels,
		ChannelLayout: s.ChannelLayout,
		SampleRate:    s.SampleRate,
		Language:      s.Tags["language"],
		Title:         s.Tags["title"],
		Default:       s.Disposition.Default == 1,
	}, true
}

// Summary formats the metadata as human-readable lines for the pre-flight
// info block.
func (s StreamInfo) Summary() []string {
	var lines []string

	codecType := s.CodecType
	if codecType == "" {
		codecType = "unknown"
	}
	codecName := s.CodecName
	if codecName == "" {
		codecName = "unknown"
	}
	lines = append(lines, fmt.Sprintf("Type: %s (%s)", codecType, codecName))

	if s.Channels > 0 {
		layout := s.ChannelLayout
		if layout == "" {
			layout = "unknown"
		}
		lines = append(lines, fmt.Sprintf("Channels: %d (%s)", s.Channels, layout))
	}

	if s.SampleRate != "" {
		if hz, err := strconv.Atoi(s.SampleRate); err == nil {
			lines = append(lines, fmt.Sprintf("Sample rate: %.1f kHz", float64(hz)/1000))
		}
	}

	if s.Language != "" {
		lines = append(lines, fmt.Sprintf("Language: %s", languageName(s.Language)))
	}
	if s.Title != "" {
		lines = append(lines, fmt.Sprintf("Title: %s", s.Title))
	}
	if s.Default {
		lines = append(lines, "Default: yes")
	}

	return lines
}

// languageName renders an ISO language tag as a display name, falling back
// to the raw tag when it cannot be parsed.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}
