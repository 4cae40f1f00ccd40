package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// TPM roster column names. Set-valued columns hold comma-separated lists
// inside one (quoted) CSV field.
const (
	colID            = "id"
	colName          = "name"
	colTimezone      = "timezone"
	colSkills        = "skills"
	colAvailableTime = "available_time"
	colLevel         = "level"
	colConflicts     = "conflicts"
	colAllowOverload = "allow_overload"
	colFixedProgram  = "fixed_program"
	colDesired       = "desired_programs"
	colPortfolios    = "portfolios"
)

// Program portfolio column names.
const (
	colRequiredSkills = "required_skills"
	colRequiredTime   = "required_time"
	colRequiredLevel  = "required_level"
	colFixedTPM       = "fixed_tpm"
	colStakeholderTZs = "stakeholder_timezones"
	colComplexity     = "complexity_score"
	colPortfolio      = "portfolio"
)

var tpmRequiredColumns = []string{colID, colName, colTimezone, colSkills, colAvailableTime, colLevel}

var programRequiredColumns = []string{colID, colName, colTimezone, colRequiredSkills, colRequiredTime, colRequiredLevel}

// LoadTPMs reads a TPM roster from header-driven CSV.
//
// Required columns: id, name, timezone, skills, available_time, level.
// Optional columns: conflicts, allow_overload, fixed_program,
// desired_programs, portfolios. Unknown columns are ignored, so rosters
// exported from spreadsheets with extra bookkeeping columns load as-is.
// An empty timezone cell defaults to UTC and an empty level to 1.
//
// Parameters:
//   - r: CSV input with a header row
//
// Returns:
//   - []*types.TPM: Validated roster in file order
//   - error: types.ErrMissingColumn or types.ErrInvalidRecord with the
//     offending row, or a validation error from the entity
func LoadTPMs(r io.Reader) ([]*types.TPM, error) {
	rows, header, err := readAll(r, tpmRequiredColumns)
	if err != nil {
		return nil, err
	}

	tpms := make([]*types.TPM, 0, len(rows))
	for i, row := range rows {
		tpm := &types.TPM{
			ID:              header.get(row, colID),
			Name:            header.get(row, colName),
			Timezone:        header.get(row, colTimezone),
			Skills:          types.ParseSet(header.get(row, colSkills)),
			Conflicts:       types.ParseSet(header.get(row, colConflicts)),
			FixedProgram:    header.get(row, colFixedProgram),
			DesiredPrograms: types.ParseSet(header.get(row, colDesired)),
			Portfolios:      types.ParseSet(header.get(row, colPortfolios)),
			AllowOverload:   truthy(header.get(row, colAllowOverload)),
		}

		if tpm.Timezone == "" {
			tpm.Timezone = "UTC"
		}

		if tpm.AvailableTime, err = parseFloat(header.get(row, colAvailableTime)); err != nil {
			return nil, recordErr(i, colAvailableTime, err)
		}
		tpm.Level = 1
		if raw := header.get(row, colLevel); raw != "" {
			if tpm.Level, err = parseInt(raw); err != nil {
				return nil, recordErr(i, colLevel, err)
			}
		}

		if err = tpm.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		tpms = append(tpms, tpm)
	}

	return tpms, nil
}

// LoadPrograms reads a program portfolio from header-driven CSV.
//
// Required columns: id, name, timezone, required_skills, required_time,
// required_level. Optional columns: fixed_tpm, stakeholder_timezones,
// complexity_score, portfolio. An empty timezone cell defaults to UTC;
// empty required_level and complexity_score cells default to 1.
//
// Parameters:
//   - r: CSV input with a header row
//
// Returns:
//   - []*types.Program: Validated portfolio in file order
//   - error: types.ErrMissingColumn or types.ErrInvalidRecord with the
//     offending row, or a validation error from the entity
func LoadPrograms(r io.Reader) ([]*types.Program, error) {
	rows, header, err := readAll(r, programRequiredColumns)
	if err != nil {
		return nil, err
	}

	programs := make([]*types.Program, 0, len(rows))
	for i, row := range rows {
		prog := &types.Program{
			ID:                   header.get(row, colID),
			Name:                 header.get(row, colName),
			Timezone:             header.get(row, colTimezone),
			RequiredSkills:       types.ParseSet(header.get(row, colRequiredSkills)),
			FixedTPM:             header.get(row, colFixedTPM),
			StakeholderTimezones: types.ParseSet(header.get(row, colStakeholderTZs)),
			Portfolio:            header.get(row, colPortfolio),
			ComplexityScore:      1,
		}

		if prog.Timezone == "" {
			prog.Timezone = "UTC"
		}

		if prog.RequiredTime, err = parseFloat(header.get(row, colRequiredTime)); err != nil {
			return nil, recordErr(i, colRequiredTime, err)
		}
		prog.RequiredLevel = 1
		if raw := header.get(row, colRequiredLevel); raw != "" {
			if prog.RequiredLevel, err = parseInt(raw); err != nil {
				return nil, recordErr(i, colRequiredLevel, err)
			}
		}
		if raw := header.get(row, colComplexity); raw != "" {
			if prog.ComplexityScore, err = parseInt(raw); err != nil {
				return nil, recordErr(i, colComplexity, err)
			}
		}

		if err = prog.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		programs = append(programs, prog)
	}

	return programs, nil
}

// Load reads a TPM roster and a program portfolio from CSV files on disk.
//
// Parameters:
//   - tpmsPath: Path of the TPM roster CSV
//   - programsPath: Path of the program portfolio CSV
//
// Returns:
//   - []*types.TPM: Validated roster in file order
//   - []*types.Program: Validated portfolio in file order
//   - error: First load failure, wrapped with the offending path
func Load(tpmsPath, programsPath string) ([]*types.TPM, []*types.Program, error) {
	tpms, err := LoadTPMsFile(tpmsPath)
	if err != nil {
		return nil, nil, err
	}

	programs, err := LoadProgramsFile(programsPath)
	if err != nil {
		return nil, nil, err
	}

	return tpms, programs, nil
}

// LoadTPMsFile reads a TPM roster from a CSV file on disk.
func LoadTPMsFile(path string) ([]*types.TPM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tpms, err := LoadTPMs(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return tpms, nil
}

// LoadProgramsFile reads a program portfolio from a CSV file on disk.
func LoadProgramsFile(path string) ([]*types.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	programs, err := LoadPrograms(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return programs, nil
}

// columnIndex maps lowercased header names to their positions.
type columnIndex map[string]int

// get returns the trimmed cell for a column, or "" when the column is
// absent (optional columns) or the row is short.
func (c columnIndex) get(row []string, column string) string {
	idx, ok := c[column]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// readAll parses the CSV, builds the header index, and checks required
// columns. Rows are everything after the header.
func readAll(r io.Reader, required []string) ([][]string, columnIndex, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are fine, get() guards length

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", types.ErrInvalidRecord, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty input, header row required", types.ErrMissingColumn)
	}

	header := make(columnIndex, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, column := range required {
		if _, ok := header[column]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", types.ErrMissingColumn, column)
		}
	}

	return records[1:], header, nil
}

// truthy reports whether a cell holds an affirmative flag value.
// Accepted spellings: true/t/yes/y/1, case-insensitive.
func truthy(value string) bool {
	switch strings.ToLower(value) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}

func parseFloat(value string) (float64, error) {
	return strconv.ParseFloat(value, 64)
}

func parseInt(value string) (int, error) {
	return strconv.Atoi(value)
}

// recordErr wraps a cell parse failure with its position. Row numbers are
// 1-based including the header, matching what editors display.
func recordErr(rowIdx int, column string, err error) error {
	return fmt.Errorf("%w: row %d column %q: %w", types.ErrInvalidRecord, rowIdx+2, column, err)
}
