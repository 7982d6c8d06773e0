package simpleexcel

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// =============================================================================
// Types
// =============================================================================

// DataExporter renders a YAML report template into a workbook.
type DataExporter struct {
	template *ReportTemplate
	// data holds data bound to specific section IDs
	data map[string]interface{}
}

// ReportTemplate represents the YAML structure.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig defines a block of rows in a sheet. Sections are stacked
// vertically with one blank row between them.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Data        interface{}    `yaml:"-"` // bound with BindSectionData
	ShowHeader  bool           `yaml:"show_header"`
	AutoFilter  bool           `yaml:"auto_filter"`
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

// ColumnConfig defines a column in a section.
type ColumnConfig struct {
	FieldName  string  `yaml:"field_name"` // struct field (promoted fields work) or map key
	Header     string  `yaml:"header"`
	Width      float64 `yaml:"width"`
	DateFormat string  `yaml:"date_format"` // Go layout, applied to time.Time values
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font *FontTemplate `yaml:"font"`
	Fill *FillTemplate `yaml:"fill"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

// =============================================================================
// Constructors
// =============================================================================

// NewDataExporterFromYaml parses a report template. Section data is attached
// afterwards with BindSectionData.
func NewDataExporterFromYaml(config []byte) (*DataExporter, error) {
	var tmpl ReportTemplate
	if err := yaml.UnmarshalStrict(config, &tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(tmpl.Sheets) == 0 {
		return nil, fmt.Errorf("report template has no sheets")
	}
	return &DataExporter{
		template: &tmpl,
		data:     make(map[string]interface{}),
	}, nil
}

// =============================================================================
// Data binding
// =============================================================================

// BindSectionData binds data to a section ID.
func (e *DataExporter) BindSectionData(id string, data interface{}) *DataExporter {
	e.data[id] = data
	return e
}

// =============================================================================
// Output
// =============================================================================

// ToBytes exports the Excel file to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := e.ToWriter(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToWriter writes the Excel file to the provided io.Writer.
func (e *DataExporter) ToWriter(w io.Writer) error {
	f, err := e.buildExcel()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (e *DataExporter) buildExcel() (*excelize.File, error) {
	f := excelize.NewFile()
	for i, st := range e.template.Sheets {
		sections := make([]*SectionConfig, len(st.Sections))
		for j := range st.Sections {
			sec := st.Sections[j]
			if data, ok := e.data[sec.ID]; ok {
				sec.Data = data
			}
			sections[j] = &sec
		}

		if i == 0 {
			f.SetSheetName("Sheet1", st.Name)
		} else if _, err := f.NewSheet(st.Name); err != nil {
			f.Close()
			return nil, err
		}
		if err := renderSections(f, st.Name, sections); err != nil {
			f.Close()
			return nil, fmt.Errorf("render sheet %q: %w", st.Name, err)
		}
	}
	return f, nil
}

// =============================================================================
// Rendering Logic
// =============================================================================

func renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	row := 1
	for _, sec := range sections {
		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
				return err
			}
			if sec.TitleStyle != nil {
				styleID, err := createStyle(f, sec.TitleStyle)
				if err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return err
				}
			}
			row++
		}

		headerRow := 0
		if sec.ShowHeader && len(sec.Columns) > 0 {
			headerRow = row
			styleID := 0
			if sec.HeaderStyle != nil {
				id, err := createStyle(f, sec.HeaderStyle)
				if err != nil {
					return err
				}
				styleID = id
			}
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				if styleID != 0 {
					if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
						return err
					}
				}
			}
			row++
		}

		for i, col := range sec.Columns {
			if col.Width > 0 {
				name, _ := excelize.ColumnNumberToName(i + 1)
				if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
					return err
				}
			}
		}

		dataVal := reflect.ValueOf(sec.Data)
		if dataVal.Kind() == reflect.Slice {
			for i := 0; i < dataVal.Len(); i++ {
				item := dataVal.Index(i)
				for j, col := range sec.Columns {
					cell, _ := excelize.CoordinatesToCellName(j+1, row)
					if err := f.SetCellValue(sheet, cell, formatValue(extractValue(item, col.FieldName), col)); err != nil {
						return err
					}
				}
				row++
			}
		}

		if sec.AutoFilter && headerRow > 0 {
			first, _ := excelize.CoordinatesToCellName(1, headerRow)
			last, _ := excelize.CoordinatesToCellName(len(sec.Columns), row-1)
			if err := f.AutoFilter(sheet, first+":"+last, []excelize.AutoFilterOptions{}); err != nil {
				return err
			}
		}

		row++
	}
	return nil
}

func extractValue(item reflect.Value, fieldName string) interface{} {
	for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return ""
		}
		item = item.Elem()
	}

	switch item.Kind() {
	case reflect.Struct:
		f := item.FieldByName(fieldName)
		if f.IsValid() && f.CanInterface() {
			return f.Interface()
		}
	case reflect.Map:
		if item.Type().Key().Kind() == reflect.String {
			v := item.MapIndex(reflect.ValueOf(fieldName).Convert(item.Type().Key()))
			if v.IsValid() {
				return v.Interface()
			}
		}
	}
	return ""
}

func formatValue(v interface{}, col ColumnConfig) interface{} {
	if t, ok := v.(time.Time); ok && col.DateFormat != "" {
		if t.IsZero() {
			return ""
		}
		return t.Format(col.DateFormat)
	}
	return v
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	return f.NewStyle(style)
}
