// Package importer reads sticker jobs from JSON manifests, CSV files and
// Excel workbooks, and decodes the art they reference. CSV import detects
// the delimiter, and both tabular formats map columns by case-insensitive
// header aliases.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/StickerSheet/internal/model"
)

// ImportResult holds the results of an import operation. Rows listed in
// Errors are left out of Job.
type ImportResult struct {
	Job      model.Job
	Errors   []string
	Warnings []string
}

// OK reports whether the import produced at least one sticker without errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Job.Entries) > 0
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Key      int
	Path     int
	Quantity int
	Border   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"key":      {"key", "name", "id", "sticker", "label"},
	"path":     {"path", "file", "filename", "image", "source", "src", "art"},
	"quantity": {"quantity", "qty", "count", "copies", "amount", "pcs", "num"},
	"border":   {"border", "bleed", "outline", "with border"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func readCSV(r io.Reader, delim rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against the known aliases of each role; the
// first matching column wins. Without a recognisable header it returns the
// positional mapping key, path, quantity, border and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Key: -1, Path: -1, Quantity: -1, Border: -1}
	slots := map[string]*int{
		"key":      &mapping.Key,
		"path":     &mapping.Path,
		"quantity": &mapping.Quantity,
		"border":   &mapping.Border,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias && *slots[role] == -1 {
					*slots[role] = i
					isHeader = true
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Key: 0, Path: 1, Quantity: 2, Border: 3}, false
	}
	return mapping, true
}

// parseBorder converts a border cell to a bool. It returns false for
// strings it does not recognise.
func parseBorder(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1", "x", "on":
		return true, true
	case "", "no", "n", "false", "f", "0", "-", "off":
		return false, true
	default:
		return false, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// keyFromPath derives a sticker key from the art file name.
func keyFromPath(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// parseRow extracts a job entry from a row using the given column mapping.
// Returns the entry, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.JobEntry, string, string) {
	path := getCell(row, mapping.Path)
	if path == "" {
		return model.JobEntry{}, fmt.Sprintf("%s: Missing image path", rowLabel), ""
	}

	key := getCell(row, mapping.Key)
	if key == "" {
		key = keyFromPath(path)
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		v, err := strconv.Atoi(qtyStr)
		if err != nil {
			f, ferr := strconv.ParseFloat(qtyStr, 64)
			if ferr != nil || f != float64(int(f)) {
				return model.JobEntry{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
			}
			v = int(f)
		}
		qty = v
	}
	if qty <= 0 {
		return model.JobEntry{}, fmt.Sprintf("%s: Quantity must be positive", rowLabel), ""
	}

	var warning string
	borderStr := getCell(row, mapping.Border)
	border, ok := parseBorder(borderStr)
	if !ok {
		warning = fmt.Sprintf("%s: Unknown border value '%s', defaulting to no border", rowLabel, borderStr)
	}

	return model.JobEntry{
		Key:     key,
		Request: model.StickerRequest{Path: path, Quantity: qty, Border: border},
	}, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportJSON imports a job manifest. Stickers may be given as an ordered
// object keyed by sticker key or as an array of items with a "key" field.
// Invalid entries are reported and dropped; a manifest without an id gets
// a fresh one.
func ImportJSON(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	return ImportJSONData(data)
}

// ImportJSONData imports a job manifest from memory.
func ImportJSONData(data []byte) ImportResult {
	result := ImportResult{}

	var raw model.Job
	if err := json.Unmarshal(data, &raw); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse job: %v", err))
		return result
	}

	result.Job = model.NewJob()
	switch {
	case raw.ID == "":
	case !validJobID(raw.ID):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Job id %q is not usable as a file name, using %s", raw.ID, result.Job.ID))
	default:
		result.Job.ID = raw.ID
	}
	for i, e := range raw.Entries {
		label := fmt.Sprintf("Sticker %d", i+1)
		if e.Key != "" {
			label = fmt.Sprintf("Sticker %q", e.Key)
		}
		switch {
		case e.Request.Path == "":
			result.Errors = append(result.Errors, label+": Missing image path")
			continue
		case e.Request.Quantity <= 0:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Quantity must be positive, got %d", label, e.Request.Quantity))
			continue
		}
		if e.Key == "" {
			e.Key = keyFromPath(e.Request.Path)
		}
		add(&result, e, label)
	}
	if len(result.Job.Entries) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "Job has no stickers")
	}
	return result
}

// validJobID reports whether id can name output files: no path separators
// and not a relative directory reference.
func validJobID(id string) bool {
	if id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`+"\x00")
}

// add appends e to the job, merging quantities into an earlier entry with
// the same key.
func add(result *ImportResult, e model.JobEntry, rowLabel string) {
	for i := range result.Job.Entries {
		prev := &result.Job.Entries[i]
		if prev.Key != e.Key {
			continue
		}
		if prev.Request.Path != e.Request.Path {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: Key '%s' already used for %s", rowLabel, e.Key, prev.Request.Path))
			return
		}
		prev.Request.Quantity += e.Request.Quantity
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: Duplicate key '%s', quantities merged", rowLabel, e.Key))
		return
	}
	result.Job.Add(e.Key, e.Request)
}

// ImportCSV imports a job from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports a job from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := readCSV(reader, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports a job from an Excel (.xlsx) workbook.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportFile picks the importer from the file extension. Unknown
// extensions are read as JSON.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return ImportCSV(path)
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	default:
		return ImportJSON(path)
	}
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into a job entry.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Job:      model.NewJob(),
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		if mapping.Path == -1 {
			result.Errors = append(result.Errors, "Required columns not found in header: Path")
			return result
		}
	} else if len(rows[0]) >= 3 {
		// A non-numeric quantity in the first row is an unrecognised header.
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][2])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		entry, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		add(&result, entry, rowLabel)
	}

	return result
}
