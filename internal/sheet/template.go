package sheet

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/xuri/excelize/v2"
)

// RequiredMarker is appended to required column headers in templates. The
// column resolver ignores it.
const RequiredMarker = " *"

// WriteTemplate writes an xlsx import template for a category: one sheet
// with the canonical headers and an example row, and an Instructions
// sheet describing each column.
func WriteTemplate(w io.Writer, def core.CategoryDefinition) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := def.Info.Label
	if sheetName == "" {
		sheetName = string(def.Info.Type)
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("required style: %w", err)
	}

	for i, spec := range def.Fields {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		header := spec.HeaderLabel()
		style := headerStyle
		if spec.Required {
			header += RequiredMarker
			style = requiredStyle
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}

		if spec.Example != "" {
			example, _ := excelize.CoordinatesToCellName(i+1, 2)
			if err := f.SetCellValue(sheetName, example, spec.Example); err != nil {
				return err
			}
		}

		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, col, col, 20)
	}

	if err := writeInstructions(f, def); err != nil {
		return err
	}

	idx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(idx)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}

func writeInstructions(f *excelize.File, def core.CategoryDefinition) error {
	const sheet = "Instructions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("instructions sheet: %w", err)
	}

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("%s Import Instructions", def.Info.Label))
	_ = f.SetCellValue(sheet, "A3", "Column")
	_ = f.SetCellValue(sheet, "B3", "Required")
	_ = f.SetCellValue(sheet, "C3", "Type")
	_ = f.SetCellValue(sheet, "D3", "Example")
	_ = f.SetCellValue(sheet, "E3", "Notes")

	for i, spec := range def.Fields {
		row := i + 4
		required := "Optional"
		if spec.Required {
			required = "Required"
		}
		notes := spec.Description
		if len(spec.EnumValues) > 0 {
			notes = fmt.Sprintf("One of: %v", spec.EnumValues)
		}
		values := []any{spec.HeaderLabel(), required, spec.Type.String(), spec.Example, notes}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "C", 12)
	_ = f.SetColWidth(sheet, "D", "D", 20)
	_ = f.SetColWidth(sheet, "E", "E", 48)
	return nil
}
