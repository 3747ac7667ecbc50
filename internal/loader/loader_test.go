package loader

import (
	"path/filepath"
	"testing"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			f.SetCellStr(sheet, cell, val)
		}
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving fixture workbook: %v", err)
	}
	return path
}

func TestLoadRepartition(t *testing.T) {
	tests := []struct {
		name      string
		rows      [][]string
		wantCount int
	}{
		{
			// Columns 0-5 are the metadata prefix (Titre among them); only
			// column 6 onward are instrument columns, mirroring the
			// ground-truth columns[6:] split.
			name: "basic rows",
			rows: [][]string{
				{"Titre", "Compositeur", "Duree", "Mouvement", "Notes", "Ordre", "Violon", "Alto"},
				{"Symphonie", "", "", "", "", "", "Jean Dupont, Marie Curie", ""},
				{"", "", "", "", "", "", "Jean Dupont", ""}, // blank title: skipped
				{"Quatuor", "", "", "", "", "", "", ""},     // no musicians: skipped
			},
			wantCount: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, tt.rows)
			pieces, err := LoadRepartition(path)
			if err != nil {
				t.Fatalf("LoadRepartition() error = %v", err)
			}
			if len(pieces) != tt.wantCount {
				t.Fatalf("got %d pieces, want %d", len(pieces), tt.wantCount)
			}
		})
	}
}

func TestLoadAvailabilityShapeA(t *testing.T) {
	rows := [][]string{
		{"Nom", "lun. 05 rep. 10:00-12:00", "mar. 06 rep. 14:00-16:00"},
		{"Jean Dupont", "yes", "no"},
		{"Marie Curie", "maybe", "oui"},
	}
	path := writeWorkbook(t, rows)

	avail, err := LoadAvailability(path)
	if err != nil {
		t.Fatalf("LoadAvailability() error = %v", err)
	}
	if len(avail.Musicians) != 2 {
		t.Fatalf("got %d musicians, want 2", len(avail.Musicians))
	}
	if len(avail.Slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(avail.Slots))
	}
}

func TestLoadAvailabilityShapeB(t *testing.T) {
	rows := [][]string{
		{"lun. 05 rep. 10:00-12:00", "mar. 06 rep. 14:00-16:00"},
		{"Jean Dupont", "jean@example.com", "yes", "no"},
		{"Marie Curie", "marie@example.com", "maybe", "oui"},
	}
	path := writeWorkbook(t, rows)

	avail, err := LoadAvailability(path)
	if err != nil {
		t.Fatalf("LoadAvailability() error = %v", err)
	}
	if len(avail.Slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(avail.Slots))
	}
	if len(avail.Musicians) != 2 {
		t.Fatalf("got %d musicians, want 2", len(avail.Musicians))
	}
}

func TestFinalizeSynthesizesCatchAllPiece(t *testing.T) {
	avail := models.Availability{Musicians: []string{"Jean Dupont", "Marie Curie"}}
	pieces, _, _ := Finalize(nil, avail)
	if len(pieces) != 1 {
		t.Fatalf("got %d pieces, want 1 synthesized piece", len(pieces))
	}
	if len(pieces[0].Required) != 2 {
		t.Fatalf("synthesized piece has %d musicians, want 2", len(pieces[0].Required))
	}
}
