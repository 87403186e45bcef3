// =============================================================================
// Invoicer - File Manager Utilities
// =============================================================================
//
// This package provides utility functions for output file handling:
//   - Creating the output directory
//   - Generating output file names from a format string
//   - Writing generated PDFs without clobbering each other
//   - Writing the per-run outcome report
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles output files of one run. It is safe for concurrent
// use; names are claimed under a lock so two rows never write the same file.
type FileManager struct {
	// OutputDir is the directory for generated PDFs and the report.
	OutputDir string

	mu      sync.Mutex
	claimed map[string]bool
}

// NewFileManager creates a new FileManager for outputDir.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{
		OutputDir: outputDir,
		claimed:   make(map[string]bool),
	}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// Claim reserves name for this run. A name already claimed gets a numeric
// suffix before the extension: PT_A.pdf, PT_A_2.pdf, PT_A_3.pdf.
func (fm *FileManager) Claim(name string) string {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if !fm.claimed[name] {
		fm.claimed[name] = true
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := stem + "_" + strconv.Itoa(n) + ext
		if !fm.claimed[candidate] {
			fm.claimed[candidate] = true
			return candidate
		}
	}
}

// WriteOutput writes data under name in the output directory.
//
// RETURNS:
//   - The full path of the written file.
//   - An error if the file cannot be written.
func (fm *FileManager) WriteOutput(name string, data []byte) (string, error) {
	path := filepath.Join(fm.OutputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// NameParams are the row values available to the output name format.
type NameParams struct {
	Client  string
	Row     int
	Invoice string
}

// GenerateOutputFileName generates an output file name from a format string.
//
// PLACEHOLDERS:
//   - {client}: Client name, or invoice_<row> when empty
//   - {row}: Row index (0-based)
//   - {invoice}: Invoice number, or the row index when empty
//   - {uuid}: A random UUID
//   - {timestamp}: Current timestamp (YYYYMMDD_HHMMSS)
//   - {date}: Current date (YYYYMMDD)
//
// Spaces become underscores and path separators are replaced, so a value
// can never escape the output directory. The result always ends in ".pdf".
//
// EXAMPLE:
//   format: "{client}.pdf", client "PT Test Company"
//   result: "PT_Test_Company.pdf"
func GenerateOutputFileName(format string, p NameParams) string {
	now := time.Now()
	row := strconv.Itoa(p.Row)

	client := p.Client
	if client == "" {
		client = "invoice_" + row
	}
	invoice := p.Invoice
	if invoice == "" {
		invoice = row
	}

	r := strings.NewReplacer(
		"{client}", client,
		"{row}", row,
		"{invoice}", invoice,
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
	)
	result := sanitizeFileName(r.Replace(format))

	if !strings.HasSuffix(strings.ToLower(result), ".pdf") {
		result += ".pdf"
	}
	return result
}

func sanitizeFileName(name string) string {
	return strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		"..", "_",
	).Replace(strings.TrimSpace(name))
}

// =============================================================================
// RUN REPORT
// =============================================================================

// ReportRecord is one line of the run report.
type ReportRecord struct {
	Row       int    `csv:"row"`
	Client    string `csv:"client"`
	Recipient string `csv:"recipient"`
	File      string `csv:"file"`
	Total     string `csv:"total"`
	Status    string `csv:"status"`
	Error     string `csv:"error"`
}

// WriteReport writes records as CSV to name in the output directory,
// replacing any previous report.
func (fm *FileManager) WriteReport(name string, records []*ReportRecord) (string, error) {
	path := filepath.Join(fm.OutputDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&records, f); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) ([]*ReportRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	var records []*ReportRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return records, nil
}
