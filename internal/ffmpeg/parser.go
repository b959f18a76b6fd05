package ffmpeg

import (
	"regexp"
	"strconv"
)

// OutputParser extracts a loudness measurement from engine output lines.
// Parse is called once per line; implementations return the measured value
// and true when the line carries one. Callers keep the last match, since the
// engine can emit volume statistics more than once per invocation.
type OutputParser interface {
	Parse(line string) (float64, bool)
}

// volumeDetectParser matches the max_volume statistic emitted by the
// volumedetect filter on the engine's diagnostic stream.
type volumeDetectParser struct {
	re *regexp.Regexp
}

var maxVolumeRe = regexp.MustCompile(`max_volume:\s*(-?\d+\.?\d*)\s*dB`)

// NewVolumeDetectParser returns the parser for the current engine's
// volumedetect output format.
func NewVolumeDetectParser() OutputParser {
	return &volumeDetectParser{re: maxVolumeRe}
}

func (p *volumeDetectParser) Parse(line string) (float64, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
