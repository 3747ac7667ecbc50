// Package slotmodel implements the canonical slot identifier grammar: the
// DAY_DD_HH:MM-HH:MM wire format, the day-prefix/day-name tables, the
// wire-alias normalization rules for specialSlots input, and the total
// ordering slots are sorted under throughout the core.
package slotmodel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
)

// dayOrder gives Mon=1 ... Sun=7 per the day-ordering table in spec.md §4.2.
var dayOrder = map[string]int{
	"LUN": 1, "MAR": 2, "MER": 3, "JEU": 4, "VEN": 5, "SAM": 6, "DIM": 7,
}

// dayPrefixToCode maps the lowercase 3-letter header abbreviation (with or
// without a trailing period) to its canonical uppercase day code.
var dayPrefixToCode = map[string]string{
	"lun": "LUN", "mar": "MAR", "mer": "MER", "jeu": "JEU",
	"ven": "VEN", "sam": "SAM", "dim": "DIM",
}

// dayCodeToName maps a canonical day code to its full French display name,
// used by FormatDisplay.
var dayCodeToName = map[string]string{
	"LUN": "Lundi", "MAR": "Mardi", "MER": "Mercredi", "JEU": "Jeudi",
	"VEN": "Vendredi", "SAM": "Samedi", "DIM": "Dimanche",
}

// nameToDayCode maps a lowercase full French day name to its canonical day
// code, used by the free-form alias parser ("Lundi 04 16:00-18:00").
var nameToDayCode = map[string]string{
	"lundi": "LUN", "mardi": "MAR", "mercredi": "MER", "jeudi": "JEU",
	"vendredi": "VEN", "samedi": "SAM", "dimanche": "DIM",
}

// headerPattern implements the grammar of spec.md §4.1: a day prefix
// (optionally dotted), whitespace, a day-of-month, arbitrary filler, then an
// HH:MM-HH:MM range. It is deliberately loose about the filler between the
// day-of-month and the time range since real headers embed extra words
// ("rep.", month names) there.
var headerPattern = regexp.MustCompile(
	`(?i)\b(lun|mar|mer|jeu|ven|sam|dim)\.?\s+(\d{1,2}).*?(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})`,
)

// canonicalPattern matches an already-canonical slot id for round-trip
// parsing: DAY_DD_HH:MM-HH:MM.
var canonicalPattern = regexp.MustCompile(
	`^(LUN|MAR|MER|JEU|VEN|SAM|DIM)_(\d{2})_(\d{2}):(\d{2})-(\d{2}):(\d{2})$`,
)

// aliasShortPattern matches the DAY_D_H_H wire alias: DAY_D_H_H is
// interpreted as DAY_DD_HH:00-HH:00 with zero padding.
var aliasShortPattern = regexp.MustCompile(
	`(?i)^(lun|mar|mer|jeu|ven|sam|dim)_(\d{1,2})_(\d{1,2})_(\d{1,2})$`,
)

// aliasFreeformPattern matches "Lundi 04 16:00-18:00" style free text.
var aliasFreeformPattern = regexp.MustCompile(
	`(?i)^(lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche)\s+(\d{1,2})\s+(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})$`,
)

// New builds a Slot from its components and computes the canonical id.
func New(day string, dayOfMonth, startHour, startMinute, endHour, endMinute int) models.Slot {
	s := models.Slot{
		Day:         day,
		DayOfMonth:  dayOfMonth,
		StartHour:   startHour,
		StartMinute: startMinute,
		EndHour:     endHour,
		EndMinute:   endMinute,
	}
	s.ID = Format(s)
	return s
}

// Format renders a Slot's canonical wire id.
func Format(s models.Slot) string {
	return fmt.Sprintf("%s_%02d_%02d:%02d-%02d:%02d",
		s.Day, s.DayOfMonth, s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
}

// Parse parses a canonical slot id back into its components. It is the
// inverse of Format and satisfies the round-trip property: Format(Parse(id))
// == id for any id Parse accepts.
func Parse(id string) (models.Slot, error) {
	m := canonicalPattern.FindStringSubmatch(id)
	if m == nil {
		return models.Slot{}, fmt.Errorf("%w: %q is not a canonical slot id", models.ErrMalformedCell, id)
	}
	dom, _ := strconv.Atoi(m[2])
	sh, _ := strconv.Atoi(m[3])
	sm, _ := strconv.Atoi(m[4])
	eh, _ := strconv.Atoi(m[5])
	em, _ := strconv.Atoi(m[6])
	return models.Slot{
		ID:          id,
		Day:         m[1],
		DayOfMonth:  dom,
		StartHour:   sh,
		StartMinute: sm,
		EndHour:     eh,
		EndMinute:   em,
	}, nil
}

// ParseHeader extracts a Slot from a free-text column header or embedded
// cell label per the grammar in spec.md §4.1. It returns
// (zero, false) when the text carries none of the recognized day prefixes.
func ParseHeader(text string) (models.Slot, bool) {
	m := headerPattern.FindStringSubmatch(text)
	if m == nil {
		return models.Slot{}, false
	}
	code, ok := dayPrefixToCode[strings.ToLower(m[1])]
	if !ok {
		return models.Slot{}, false
	}
	dom, err1 := strconv.Atoi(m[2])
	sh, err2 := strconv.Atoi(m[3])
	sm, err3 := strconv.Atoi(m[4])
	eh, err4 := strconv.Atoi(m[5])
	em, err5 := strconv.Atoi(m[6])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return models.Slot{}, false
	}
	return New(code, dom, sh, sm, eh, em), true
}

// NormalizeSpecialSlotAlias normalizes a specialSlots wire entry into the
// canonical slot id form, accepting the canonical form itself plus the two
// aliases documented in spec.md §6: DAY_D_H_H and free-form day names.
func NormalizeSpecialSlotAlias(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if canonicalPattern.MatchString(strings.ToUpper(raw)) {
		return strings.ToUpper(raw), nil
	}

	if m := aliasShortPattern.FindStringSubmatch(raw); m != nil {
		code, ok := dayPrefixToCode[strings.ToLower(m[1])]
		if !ok {
			return "", fmt.Errorf("%w: unrecognized day in %q", models.ErrMalformedCell, raw)
		}
		dom, _ := strconv.Atoi(m[2])
		h1, _ := strconv.Atoi(m[3])
		h2, _ := strconv.Atoi(m[4])
		return Format(New(code, dom, h1, 0, h2, 0)), nil
	}

	if m := aliasFreeformPattern.FindStringSubmatch(raw); m != nil {
		code, ok := nameToDayCode[strings.ToLower(m[1])]
		if !ok {
			return "", fmt.Errorf("%w: unrecognized day in %q", models.ErrMalformedCell, raw)
		}
		dom, _ := strconv.Atoi(m[2])
		sh, _ := strconv.Atoi(m[3])
		sm, _ := strconv.Atoi(m[4])
		eh, _ := strconv.Atoi(m[5])
		em, _ := strconv.Atoi(m[6])
		return Format(New(code, dom, sh, sm, eh, em)), nil
	}

	return "", fmt.Errorf("%w: %q matches no known special-slot alias", models.ErrMalformedCell, raw)
}

// DisplayDay returns the full French day name for a canonical day code.
func DisplayDay(code string) string {
	if name, ok := dayCodeToName[code]; ok {
		return name
	}
	return code
}

// FormatDisplay renders a Slot into the ("Lundi 05", "14:00-16:00") pair
// used in the planning and grid output rows.
func FormatDisplay(s models.Slot) (day, hours string) {
	day = fmt.Sprintf("%s %02d", DisplayDay(s.Day), s.DayOfMonth)
	hours = fmt.Sprintf("%02d:%02d-%02d:%02d", s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
	return day, hours
}

// DayIndex returns the 1..7 (Mon..Sun) ordering position of a day code.
func DayIndex(code string) int {
	return dayOrder[code]
}

// Less implements the total order over slots: (day-of-month, start-hour,
// start-minute), matching spec.md §3's "Slots are totally ordered by
// (day-of-month, start-hour, start-minute)".
func Less(a, b models.Slot) bool {
	if a.DayOfMonth != b.DayOfMonth {
		return a.DayOfMonth < b.DayOfMonth
	}
	if a.StartHour != b.StartHour {
		return a.StartHour < b.StartHour
	}
	return a.StartMinute < b.StartMinute
}

// LessDisplayOrder orders slots the way output grids are sorted: by day-order
// (Mon..Sun) then start time, used when day-of-month alone would not group
// same-weekday slots together across weeks in a single week's grid.
func LessDisplayOrder(a, b models.Slot) bool {
	if ai, bi := DayIndex(a.Day), DayIndex(b.Day); ai != bi {
		return ai < bi
	}
	if a.DayOfMonth != b.DayOfMonth {
		return a.DayOfMonth < b.DayOfMonth
	}
	if a.StartHour != b.StartHour {
		return a.StartHour < b.StartHour
	}
	return a.StartMinute < b.StartMinute
}
