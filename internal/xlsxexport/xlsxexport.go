// Package xlsxexport implements the optional spreadsheet export named in
// spec §6: a workbook with one Planning sheet, two sheets per week
// (availability grid and participation grid), and a Parameters sheet,
// colour-coded by availability/participation status. Supplements the
// canonical JSON result; it never replaces it.
package xlsxexport

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/config"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/report"
	"github.com/xuri/excelize/v2"
)

// colours mirror the original export: yes/repete -> green, maybe/absent-ish
// states in between, no -> red/grey.
const (
	colorGreen = "C6EFCE"
	colorRed   = "FFC7CE"
	colorPink  = "FFC7CE"
	colorGray  = "D9D9D9"
)

// Write renders a Result into an xlsx workbook at path. repartitionPath and
// availabilityPath are echoed on the Parameters sheet for traceability.
func Write(path string, res report.Result, cfg config.Config, repartitionPath, availabilityPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writePlanningSheet(f, res); err != nil {
		return fmt.Errorf("writing planning sheet: %w", err)
	}
	if err := writeGridSheets(f, res); err != nil {
		return fmt.Errorf("writing weekly grid sheets: %w", err)
	}
	if err := writeParametersSheet(f, res, cfg, repartitionPath, availabilityPath); err != nil {
		return fmt.Errorf("writing parameters sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writePlanningSheet(f *excelize.File, res report.Result) error {
	const sheet = "Planning"
	f.NewSheet(sheet)

	headers := []string{"Morceau", "Jour", "Heures", "Participants"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellStr(sheet, cell, h)
	}

	for r, entry := range res.Planning {
		row := r + 2
		values := []string{entry.Morceau, entry.Jour, entry.Heures, entry.Participants}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			f.SetCellStr(sheet, cell, v)
		}
		if entry.Jour == "Non assigné" {
			style, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{colorGray}, Pattern: 1}})
			if err == nil {
				rangeStart, _ := excelize.CoordinatesToCellName(1, row)
				rangeEnd, _ := excelize.CoordinatesToCellName(len(headers), row)
				f.SetCellStyle(sheet, rangeStart, rangeEnd, style)
			}
		}
	}
	return nil
}

func writeGridSheets(f *excelize.File, res report.Result) error {
	weeks := make([]int, 0, len(res.Disponibilites))
	for key := range res.Disponibilites {
		n, err := strconv.Atoi(strings.TrimPrefix(key, "SEMAINE_"))
		if err != nil {
			continue
		}
		weeks = append(weeks, n)
	}
	sort.Ints(weeks)

	for _, week := range weeks {
		key := "SEMAINE_" + strconv.Itoa(week)

		availSheet := fmt.Sprintf("S%d-Disponibilites", week)
		f.NewSheet(availSheet)
		if err := writeGrid(f, availSheet, res.Disponibilites[key], availabilityColor); err != nil {
			return err
		}

		partSheet := fmt.Sprintf("S%d-Repartition", week)
		f.NewSheet(partSheet)
		if err := writeGrid(f, partSheet, res.Repartition[key], participationColor); err != nil {
			return err
		}
	}
	return nil
}

// writeGrid renders a list of row maps (as produced by internal/report) into
// a sheet, discovering the column set from the first row so musician
// columns (dynamic, one per musician) line up across rows.
func writeGrid(f *excelize.File, sheet string, rows []map[string]string, colorFor func(string) string) error {
	if len(rows) == 0 {
		return nil
	}

	fixed := []string{"Jour", "Heures"}
	if _, ok := rows[0]["Morceau"]; ok {
		fixed = append(fixed, "Morceau")
	}
	fixedSet := make(map[string]struct{}, len(fixed))
	for _, c := range fixed {
		fixedSet[c] = struct{}{}
	}

	var musicians []string
	for k := range rows[0] {
		if _, skip := fixedSet[k]; skip {
			continue
		}
		musicians = append(musicians, k)
	}
	sort.Strings(musicians)

	columns := append(append([]string(nil), fixed...), musicians...)
	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellStr(sheet, cell, h)
	}

	for r, row := range rows {
		rowNum := r + 2
		for c, col := range columns {
			val := row[col]
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)
			f.SetCellStr(sheet, cell, val)

			if col == "Jour" || col == "Heures" || col == "Morceau" {
				continue
			}
			if color := colorFor(val); color != "" {
				style, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}})
				if err == nil {
					f.SetCellStyle(sheet, cell, cell, style)
				}
			}
		}
	}
	return nil
}

func availabilityColor(status string) string {
	switch models.AvailabilityStatus(status) {
	case models.StatusYes:
		return colorGreen
	case models.StatusMaybe:
		return "FFEB9C"
	case models.StatusNo:
		return colorRed
	default:
		return ""
	}
}

func participationColor(status string) string {
	switch models.ParticipationStatus(status) {
	case models.ParticipationRehearsing:
		return colorGreen
	case models.ParticipationAbsent:
		return colorPink
	case models.ParticipationMaybeAbsent:
		return "FFEB9C"
	case models.ParticipationNotRequired:
		return colorGray
	default:
		return ""
	}
}

func writeParametersSheet(f *excelize.File, res report.Result, cfg config.Config, repartitionPath, availabilityPath string) error {
	const sheet = "Parametres"
	f.NewSheet(sheet)

	rows := [][2]string{
		{"Fichier repartition", repartitionPath},
		{"Fichier disponibilites", availabilityPath},
		{"Statut", string(res.Status)},
		{"Assignes", strconv.Itoa(res.Assigned)},
		{"Total", strconv.Itoa(res.Total)},
		{"maybePenalty", strconv.Itoa(cfg.MaybePenalty)},
		{"maxLoad", strconv.Itoa(cfg.MaxLoad)},
		{"loadPenalty", strconv.Itoa(cfg.LoadPenalty)},
		{"groupBonus", strconv.Itoa(cfg.GroupBonus)},
		{"absenceMode", string(cfg.AbsenceMode)},
		{"absenceThreshold", strconv.Itoa(cfg.AbsenceThreshold)},
		{"specialAbsenceThreshold", strconv.Itoa(cfg.SpecialAbsenceThreshold)},
		{"specialSlots", strings.Join(cfg.SpecialSlots, ", ")},
		{"generationTimeLimitSeconds", strconv.Itoa(cfg.GenerationTimeLimitSeconds)},
		{"randomSeed", strconv.FormatInt(cfg.RandomSeed, 10)},
	}
	for i, pair := range rows {
		rowNum := i + 1
		keyCell, _ := excelize.CoordinatesToCellName(1, rowNum)
		valCell, _ := excelize.CoordinatesToCellName(2, rowNum)
		f.SetCellStr(sheet, keyCell, pair[0])
		f.SetCellStr(sheet, valCell, pair[1])
	}
	return nil
}
