// Package loader implements the Tabular Loader: reading the repartition
// table (piece -> required musicians) and the availability table (musician,
// slot -> status) out of xlsx workbooks, normalizing both into the domain
// entities in internal/models, and finalizing the slot index.
//
// Kept behind a narrow interface on purpose (see design notes on the dual
// availability shapes): callers only ever get domain values
// ([]models.Piece, models.Availability, models.DerivedIndexes) out of this
// package, never a workbook handle.
package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/slotmodel"
	"github.com/xuri/excelize/v2"
)

// titreColumn is the repartition table's title column header.
const titreColumn = "titre"

// nomColumn is shape A's musician-name column header.
const nomColumn = "nom"

// repartitionMetadataPrefixWidth is the number of leading columns reserved
// for metadata (title among them) before the instrument columns begin,
// mirroring the source's `instrument_cols = self.repartitions_df.columns[6:]`.
const repartitionMetadataPrefixWidth = 6

// LoadRepartition reads the repartition table and returns one Piece per
// non-blank row. A row with a blank title or no musicians across any
// instrument column is skipped, per spec.
func LoadRepartition(path string) ([]models.Piece, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening repartition workbook: %w", err)
	}
	defer f.Close()

	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: repartition table is empty", models.ErrInputShape)
	}

	header := rows[0]
	titleIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), titreColumn) {
			titleIdx = i
			break
		}
	}
	if titleIdx < 0 {
		return nil, fmt.Errorf("%w: repartition table has no %q column", models.ErrInputShape, "Titre")
	}

	var pieces []models.Piece
	for _, row := range rows[1:] {
		title := cellAt(row, titleIdx)
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		var musicians []string
		seen := make(map[string]struct{})
		for i, cell := range row {
			if i < repartitionMetadataPrefixWidth {
				continue
			}
			for _, name := range strings.Split(cell, ",") {
				name = titleCase(strings.TrimSpace(name))
				if name == "" {
					continue
				}
				if _, dup := seen[name]; dup {
					continue
				}
				seen[name] = struct{}{}
				musicians = append(musicians, name)
			}
		}
		if len(musicians) == 0 {
			continue
		}
		pieces = append(pieces, models.Piece{Name: title, Required: musicians})
	}
	return pieces, nil
}

// LoadAvailability reads the availability table, detecting which of the two
// recognized shapes it is written in, and returns the normalized
// Availability along with the slots discovered.
func LoadAvailability(path string) (models.Availability, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.Availability{}, fmt.Errorf("opening availability workbook: %w", err)
	}
	defer f.Close()

	rows, err := firstSheetRows(f)
	if err != nil {
		return models.Availability{}, err
	}
	if len(rows) == 0 {
		return models.Availability{}, fmt.Errorf("%w: availability table is empty", models.ErrInputShape)
	}

	var avail models.Availability
	if isShapeA(rows[0]) {
		avail, err = loadShapeA(rows)
	} else {
		avail, err = loadShapeB(rows)
	}
	if err != nil {
		return models.Availability{}, err
	}

	if len(avail.Musicians) == 0 || len(avail.Slots) == 0 {
		return models.Availability{}, fmt.Errorf("%w: availability table yielded no musicians or no slots", models.ErrInputShape)
	}
	return avail, nil
}

func isShapeA(header []string) bool {
	for _, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), nomColumn) {
			return true
		}
	}
	return false
}

// loadShapeA parses the by-name shape: a Nom column plus one column per slot,
// slot identity carried in the column header.
func loadShapeA(rows [][]string) (models.Availability, error) {
	header := rows[0]
	nameIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), nomColumn) {
			nameIdx = i
			break
		}
	}

	type col struct {
		index int
		slot  models.Slot
	}
	var slotCols []col
	seenSlot := make(map[string]struct{})
	for i, h := range header {
		if i == nameIdx {
			continue
		}
		slot, ok := slotmodel.ParseHeader(h)
		if !ok {
			continue // malformed header: skipped, not fatal
		}
		if _, dup := seenSlot[slot.ID]; dup {
			continue
		}
		seenSlot[slot.ID] = struct{}{}
		slotCols = append(slotCols, col{index: i, slot: slot})
	}

	table := make(map[string]map[string]models.AvailabilityStatus)
	var musicians []string
	seenMusician := make(map[string]struct{})
	for _, row := range rows[1:] {
		name := titleCase(strings.TrimSpace(cellAt(row, nameIdx)))
		if name == "" {
			continue
		}
		if _, dup := seenMusician[name]; !dup {
			seenMusician[name] = struct{}{}
			musicians = append(musicians, name)
		}
		rowTable := table[name]
		if rowTable == nil {
			rowTable = make(map[string]models.AvailabilityStatus)
			table[name] = rowTable
		}
		for _, c := range slotCols {
			rowTable[c.slot.ID] = parseStatus(cellAt(row, c.index))
		}
	}

	slots := make([]models.Slot, len(slotCols))
	for i, c := range slotCols {
		slots[i] = c.slot
	}
	return models.Availability{Musicians: musicians, Slots: slots, Table: table}, nil
}

// loadShapeB parses the by-column-of-cells shape, grounded on the Cally-style
// export: slot labels are embedded as cell values anywhere in the sheet, and
// a musician row is identified by a neighbouring cell containing "@". The
// reconstructed slot sequence (document order, first occurrence) lines up
// positionally with the response cells following the email cell on each
// musician row.
func loadShapeB(rows [][]string) (models.Availability, error) {
	var slots []models.Slot
	seenSlot := make(map[string]struct{})
	for _, row := range rows {
		for _, cell := range row {
			slot, ok := slotmodel.ParseHeader(cell)
			if !ok {
				continue
			}
			if _, dup := seenSlot[slot.ID]; dup {
				continue
			}
			seenSlot[slot.ID] = struct{}{}
			slots = append(slots, slot)
		}
	}

	table := make(map[string]map[string]models.AvailabilityStatus)
	var musicians []string
	seenMusician := make(map[string]struct{})
	for _, row := range rows {
		emailIdx := -1
		for i, cell := range row {
			if strings.Contains(cell, "@") {
				emailIdx = i
				break
			}
		}
		if emailIdx < 0 {
			continue
		}

		name := ""
		for i := emailIdx - 1; i >= 0; i-- {
			candidate := strings.TrimSpace(row[i])
			if candidate == "" {
				continue
			}
			if _, isSlotLabel := slotmodel.ParseHeader(candidate); isSlotLabel {
				continue
			}
			name = titleCase(candidate)
			break
		}
		if name == "" {
			continue
		}
		if _, dup := seenMusician[name]; !dup {
			seenMusician[name] = struct{}{}
			musicians = append(musicians, name)
		}

		rowTable := table[name]
		if rowTable == nil {
			rowTable = make(map[string]models.AvailabilityStatus)
			table[name] = rowTable
		}

		responses := row[emailIdx+1:]
		for i, slot := range slots {
			if i >= len(responses) {
				break
			}
			rowTable[slot.ID] = parseStatus(responses[i])
		}
	}

	return models.Availability{Musicians: musicians, Slots: slots, Table: table}, nil
}

// parseStatus normalizes a raw cell value into an AvailabilityStatus.
func parseStatus(raw string) models.AvailabilityStatus {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "yes" || v == "oui":
		return models.StatusYes
	case v == "maybe" || v == "peut-être" || v == "peut-etre" || v == "peut être" || v == "peut etre":
		return models.StatusMaybe
	default:
		return models.StatusNo
	}
}

// Finalize performs the loader's post-load step: applies the synthesis
// fallback, assigns week numbers to every slot from the observed date span,
// and builds the derived indexes shared by the cost evaluator and search
// engine for the rest of the run.
func Finalize(pieces []models.Piece, avail models.Availability) ([]models.Piece, models.Availability, models.DerivedIndexes) {
	if len(pieces) == 0 && len(avail.Musicians) > 0 {
		pieces = []models.Piece{{Name: "Répétition générale", Required: append([]string(nil), avail.Musicians...)}}
	}

	slots := append([]models.Slot(nil), avail.Slots...)
	sort.Slice(slots, func(i, j int) bool { return slotmodel.Less(slots[i], slots[j]) })

	if len(slots) > 0 {
		minDay := slots[0].DayOfMonth
		for _, s := range slots {
			if s.DayOfMonth < minDay {
				minDay = s.DayOfMonth
			}
		}
		for i := range slots {
			slots[i].Week = ((slots[i].DayOfMonth-minDay)/7 + 1)
		}
	}
	avail.Slots = slots

	idx := models.BuildDerivedIndexes(pieces, slots)
	return pieces, avail, idx
}

func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", models.ErrInputShape)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// titleCase normalizes a musician name to the title-cased form spec §3
// requires for identity ("Jean Dupont", not "jean dupont" or "JEAN DUPONT").
func titleCase(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
