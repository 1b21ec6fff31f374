package levels

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UnmarshalJSON keeps any JSON string as is. Numbers, booleans and objects
// decode to the empty level, which resolves to student.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*l = ""
		return nil
	}
	*l = Level(s)
	return nil
}

// UnmarshalJSON accepts counters as integers, floats or numeric strings.
// Anything else counts as zero.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProjectsCount  json.RawMessage `json:"projects_count"`
		PapersCount    json.RawMessage `json:"papers_count"`
		CitationsCount json.RawMessage `json:"citations_count"`
		CurrentLevel   Level           `json:"researcher_level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Profile{
		ProjectsCount:  coerceCount(raw.ProjectsCount),
		PapersCount:    coerceCount(raw.PapersCount),
		CitationsCount: coerceCount(raw.CitationsCount),
		CurrentLevel:   raw.CurrentLevel,
	}
	return nil
}

func coerceCount(raw json.RawMessage) int {
	text := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(f)
}
