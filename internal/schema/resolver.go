package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"field-metrics-backend/internal/sheet"
)

var (
	punctRe = regexp.MustCompile(`[:#_\-/.]+`)
	spaceRe = regexp.MustCompile(`\s+`)

	isoDateRe   = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}`)
	slashDateRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}`)
	clockRe     = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
)

var eventTypeTokens = map[string]struct{}{
	"operating": {}, "operation": {}, "running": {}, "working": {},
	"idle": {}, "standby": {}, "waiting": {},
	"maintenance": {}, "repair": {}, "down": {}, "downtime": {},
}

var unitTokens = map[string]struct{}{
	"h": {}, "hr": {}, "hrs": {}, "hour": {}, "hours": {},
	"m": {}, "min": {}, "mins": {}, "minute": {}, "minutes": {},
	"s": {}, "sec": {}, "secs": {}, "second": {}, "seconds": {},
	"d": {}, "day": {}, "days": {},
}

// ColumnMapping binds canonical fields to source column indexes, with the
// confidence each binding was resolved at. Immutable once returned.
type ColumnMapping struct {
	Columns    map[Field]int
	Confidence map[Field]float64
}

// Column returns the source column index for a field, if it was mapped.
func (m ColumnMapping) Column(f Field) (int, bool) {
	col, ok := m.Columns[f]
	return col, ok
}

// ResolutionError reports the required fields that could not be matched
// above the confidence threshold. It is fatal to the upload it occurred in.
type ResolutionError struct {
	Missing []Field
}

func (e *ResolutionError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("schema resolution failed: unmatched required fields: %s", strings.Join(names, ", "))
}

// Resolve maps the sheet's columns onto the canonical schema. For each field
// it scores every column by header-text similarity against the synonym list
// and by value-type plausibility over a sample of data rows; the best-scoring
// unclaimed column wins, ties going to the leftmost. Fields scoring below
// Reference.MinConfidence stay unmapped rather than guessed.
func Resolve(s sheet.RawSheet, ref *Reference) (ColumnMapping, error) {
	mapping := ColumnMapping{
		Columns:    make(map[Field]int),
		Confidence: make(map[Field]float64),
	}

	sample := s.Rows
	if len(sample) > ref.SampleRows {
		sample = sample[:ref.SampleRows]
	}

	claimed := make(map[int]bool)
	for _, field := range fieldOrder {
		bestCol, bestScore := -1, 0.0
		for col, header := range s.Header {
			if claimed[col] {
				continue
			}
			score := 0.6*headerScore(header, ref.Synonyms[field]) + 0.4*typeScore(field, col, sample)
			if score > bestScore {
				bestCol, bestScore = col, score
			}
		}
		if bestCol >= 0 && bestScore >= ref.MinConfidence {
			claimed[bestCol] = true
			mapping.Columns[field] = bestCol
			mapping.Confidence[field] = bestScore
		}
	}

	var missing []Field
	if _, ok := mapping.Columns[FieldEquipmentID]; !ok {
		missing = append(missing, FieldEquipmentID)
	}
	_, hasStart := mapping.Columns[FieldStartTime]
	_, hasEnd := mapping.Columns[FieldEndTime]
	_, hasDuration := mapping.Columns[FieldDuration]
	if !hasStart && !hasEnd && !hasDuration {
		missing = append(missing, FieldStartTime, FieldDuration)
	}
	if len(missing) > 0 {
		return ColumnMapping{}, &ResolutionError{Missing: missing}
	}

	return mapping, nil
}

// normalizeHeader lowercases a header cell and folds punctuation and runs of
// whitespace into single spaces, so "Date_Started:" matches "date started".
func normalizeHeader(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func headerScore(header string, synonyms []string) float64 {
	h := normalizeHeader(header)
	if h == "" {
		return 0
	}
	best := 0.0
	for _, syn := range synonyms {
		switch {
		case h == syn:
			return 1.0
		case containsToken(h, syn):
			if best < 0.75 {
				best = 0.75
			}
		}
	}
	return best
}

// containsToken reports whether needle appears in haystack on word
// boundaries, so "start" matches "job start" but not "restart".
func containsToken(haystack, needle string) bool {
	idx := strings.Index(haystack, needle)
	for idx >= 0 {
		before := idx == 0 || haystack[idx-1] == ' '
		after := idx+len(needle) == len(haystack) || haystack[idx+len(needle)] == ' '
		if before && after {
			return true
		}
		next := strings.Index(haystack[idx+1:], needle)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

// typeScore returns the fraction of sampled non-blank cells in the column
// whose value is plausible for the field.
func typeScore(field Field, col int, sample [][]string) float64 {
	seen, hits := 0, 0
	for _, row := range sample {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		seen++
		if cellPlausible(field, cell) {
			hits++
		}
	}
	if seen == 0 {
		return 0
	}
	return float64(hits) / float64(seen)
}

func cellPlausible(field Field, cell string) bool {
	switch field {
	case FieldEquipmentID:
		return looksLikeID(cell)
	case FieldStartTime, FieldEndTime:
		return looksLikeTime(cell)
	case FieldDuration:
		_, err := strconv.ParseFloat(cell, 64)
		return err == nil
	case FieldDurationUnit:
		_, ok := unitTokens[strings.ToLower(cell)]
		return ok
	case FieldEventType:
		_, ok := eventTypeTokens[strings.ToLower(cell)]
		return ok
	case FieldCategory, FieldLocation:
		// Free text; any non-numeric value is weakly plausible.
		_, err := strconv.ParseFloat(cell, 64)
		return err != nil
	}
	return false
}

func looksLikeTime(cell string) bool {
	return isoDateRe.MatchString(cell) || slashDateRe.MatchString(cell) || clockRe.MatchString(cell)
}

// looksLikeID accepts short alphanumeric tokens such as "EXC-12" or "FT3"
// while rejecting date-shaped and purely free-text values.
func looksLikeID(cell string) bool {
	if len(cell) > 24 || looksLikeTime(cell) {
		return false
	}
	if strings.Count(cell, " ") > 1 {
		return false
	}
	hasAlnum := false
	for _, r := range cell {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			hasAlnum = true
			break
		}
	}
	return hasAlnum
}
