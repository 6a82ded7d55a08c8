package maintenance

import (
	"fmt"
	"strings"
)

// SequenceMarker is the "#NNN" tag embedded in generated descriptions.
// Older generator versions matched work orders on it, so the format is
// fixed.
func SequenceMarker(seq int) string {
	return fmt.Sprintf("#%03d", seq)
}

// HasSequenceMarker reports whether desc carries the marker for seq as a
// whole token, so "#100" is not found inside "#1000".
func HasSequenceMarker(desc string, seq int) bool {
	marker := SequenceMarker(seq)
	for from := 0; from <= len(desc); {
		i := strings.Index(desc[from:], marker)
		if i < 0 {
			return false
		}
		end := from + i + len(marker)
		if end == len(desc) || desc[end] < '0' || desc[end] > '9' {
			return true
		}
		from = from + i + 1
	}
	return false
}

// PreventiveDescription builds "<code> - <description> - <tag> #NNN".
func PreventiveDescription(p *Plan, equipmentTag string, seq int) string {
	parts := []string{p.Code()}
	if d := strings.TrimSpace(p.Description()); d != "" {
		parts = append(parts, d)
	}
	if t := strings.TrimSpace(equipmentTag); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, " - ") + " " + SequenceMarker(seq)
}
