// =============================================================================
// Invoicer - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. The configuration is loaded ONCE at process start, turned
// into an immutable *Config, and passed explicitly into every component.
// Nothing in the program reads configuration from global state.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults (the reference invoice layout)
//   2. The YAML config file (config.yaml by default, optional)
//   3. Environment variables, optionally loaded from a .env file
//
// SECRETS:
//   Mail credentials are expected in the environment (or .env), never in the
//   YAML file that is usually committed next to the template.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the whole application configuration.
type Config struct {
	// =========================================================================
	// TEMPLATE AND OUTPUT
	// =========================================================================

	// TemplatePath is the .docx or .xlsx template containing {{Name}} tokens.
	// Default: "template.docx"
	TemplatePath string `yaml:"template"`

	// OutputDir is where generated PDFs and the run report are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// OutputNameFormat defines the file name of each generated PDF.
	// Placeholders:
	//   {client}    - Client name with spaces replaced by underscores,
	//                 or invoice_<row> when the client is empty
	//   {row}       - Row index in the data source (0-based)
	//   {invoice}   - Invoice number column
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	// Default: "{client}.pdf"
	OutputNameFormat string `yaml:"output_name_format"`

	// ReportFile is the name of the per-row outcome report (CSV) written to
	// OutputDir after every batch. "-" disables the report.
	// Default: "report.csv"
	ReportFile string `yaml:"report_file"`

	// =========================================================================
	// FIELD MAPPING
	// =========================================================================

	// HeaderFields are the logical placeholder names outside the line items.
	// Default: Client, PIC, Contact, E-mail, Address, No. Invoice,
	//          No. Quotation, Invoice Date, Due Date
	HeaderFields []string `yaml:"header_fields"`

	// LineItems is the number of Service/Qty/Price line slots in the template.
	// Default: 6
	LineItems int `yaml:"line_items"`

	// Fields maps logical placeholder names to the data source's column
	// headers. Names not listed map to themselves.
	//
	// Example:
	//   fields:
	//     Client: "Company Name"
	//     "Service 1": "Item A"
	Fields map[string]string `yaml:"fields"`

	// EmailColumn is the column holding the recipient address.
	// Default: "E-mail"
	EmailColumn string `yaml:"email_column"`

	// TransformationRules are optional per-column value transformations
	// applied to a copy of each row before filling.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`

	// =========================================================================
	// FORMATTING, INPUT, RENDERING, MAIL
	// =========================================================================

	Currency     CurrencyConfig `yaml:"currency"`
	CSVSettings  CSVSettings    `yaml:"csv_settings"`
	XLSXSettings XLSXSettings   `yaml:"xlsx_settings"`
	Renderer     RendererConfig `yaml:"renderer"`
	Mail         MailConfig     `yaml:"mail"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// Concurrency is the maximum number of rows processed at the same time.
	// Default: 1 (sequential, as the reference program)
	Concurrency int `yaml:"concurrency"`

	mapping *FieldMapping
}

// CurrencyConfig controls amount formatting and the words rendering.
type CurrencyConfig struct {
	// Code is the ISO-4217 currency code. Used to look up the thousands
	// separator when Separator is empty.
	// Default: "IDR"
	Code string `yaml:"code"`

	// Separator is the thousands group separator.
	// Default: "."
	Separator string `yaml:"separator"`

	// Locale selects the numbering system for the words rendering.
	// Supported: "id", "en"
	// Default: "id"
	Locale string `yaml:"locale"`

	// Suffix is appended to the words rendering.
	// Default: "rupiah"
	Suffix string `yaml:"suffix"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), ";" (semicolon), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows. Multi-line headers are merged
	// with a space.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-indexed row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`
}

// XLSXSettings contains settings for reading XLSX data sources.
type XLSXSettings struct {
	// Sheet is the worksheet to read. Empty means the first sheet.
	Sheet string `yaml:"sheet"`

	// HeaderRow is the 1-indexed row holding the column headers.
	// Default: 1
	HeaderRow int `yaml:"header_row"`
}

// RendererConfig selects how filled documents become PDFs.
type RendererConfig struct {
	// Kind is "office" (LibreOffice headless conversion) or "native"
	// (built-in text layout, no external binary needed).
	// Default: "office"
	Kind string `yaml:"kind"`

	// Binary is the LibreOffice executable.
	// Default: "soffice"
	Binary string `yaml:"binary"`

	// Timeout bounds a single conversion.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// PageSize is used by the native renderer.
	// Default: "A4"
	PageSize string `yaml:"page_size"`
}

// MailConfig holds the transport configuration.
type MailConfig struct {
	// Transport is "smtp" or "resend".
	// Default: "smtp"
	Transport string `yaml:"transport"`

	// Sender is the From address. Env: GMAIL_SENDER
	Sender string `yaml:"sender"`

	// Password is the SMTP password (Gmail app password). Env: GMAIL_APP_PASSWORD
	Password string `yaml:"-"`

	// APIKey is the Resend API key. Env: RESEND_API_KEY
	APIKey string `yaml:"-"`

	// Host and Port of the SMTP server. Env: SMTP_HOST, SMTP_PORT
	// Default: smtp.gmail.com:587 (STARTTLS)
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Subject and Body of every invoice email.
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`

	// Timeout bounds a single send.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// TransformationRule defines transformations applied to one column.
type TransformationRule struct {
	// Field is the column header to transform.
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of: "trim", "trim_left", "trim_right", "uppercase",
	// "lowercase", "prepend_string", "append_string", "replace",
	// "regex_replace", "normalize_whitespace", "pad_zeros_to_length",
	// "extract_digits", "format_date", "lookup", "lookup_with_default",
	// "if_empty_use_default", "if_empty_use_field".
	Type string `yaml:"type"`

	// Value is the argument of the action (string to prepend, replacement...).
	Value string `yaml:"value"`

	// Find is the substring searched by "replace".
	Find string `yaml:"find,omitempty"`

	// LookupTable maps input values to output values for "lookup".
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultHeaderFields are the non-line-item placeholders of the reference
// invoice template.
var DefaultHeaderFields = []string{
	"Client", "PIC", "Contact", "E-mail", "Address",
	"No. Invoice", "No. Quotation", "Invoice Date", "Due Date",
}

const (
	DefaultEmailSubject = "Invoice"
	DefaultEmailBody    = "Hi,\n\nPlease find your invoice attached.\n\nBest regards"
)

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.mapping = NewFieldMapping(cfg.Fields, cfg.HeaderFields, cfg.LineItems)
	return cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = "template.docx"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{client}.pdf"
	}
	if cfg.ReportFile == "" {
		cfg.ReportFile = "report.csv"
	}
	if len(cfg.HeaderFields) == 0 {
		cfg.HeaderFields = append([]string(nil), DefaultHeaderFields...)
	}
	if cfg.LineItems == 0 {
		cfg.LineItems = 6
	}
	if cfg.EmailColumn == "" {
		cfg.EmailColumn = "E-mail"
	}

	if cfg.Currency.Code == "" {
		cfg.Currency.Code = "IDR"
	}
	if cfg.Currency.Separator == "" && cfg.Currency.Code == "IDR" {
		cfg.Currency.Separator = "."
	}
	if cfg.Currency.Locale == "" {
		cfg.Currency.Locale = "id"
	}
	if cfg.Currency.Suffix == "" {
		cfg.Currency.Suffix = "rupiah"
	}

	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = ","
	}
	if cfg.CSVSettings.HeaderRows == 0 {
		cfg.CSVSettings.HeaderRows = 1
	}
	if cfg.CSVSettings.DataStartRow == 0 {
		cfg.CSVSettings.DataStartRow = cfg.CSVSettings.HeaderRows + 1
	}
	if cfg.XLSXSettings.HeaderRow == 0 {
		cfg.XLSXSettings.HeaderRow = 1
	}

	if cfg.Renderer.Kind == "" {
		cfg.Renderer.Kind = "office"
	}
	if cfg.Renderer.Binary == "" {
		cfg.Renderer.Binary = "soffice"
	}
	if cfg.Renderer.Timeout == 0 {
		cfg.Renderer.Timeout = 60 * time.Second
	}
	if cfg.Renderer.PageSize == "" {
		cfg.Renderer.PageSize = "A4"
	}

	if cfg.Mail.Transport == "" {
		cfg.Mail.Transport = "smtp"
	}
	if cfg.Mail.Host == "" {
		cfg.Mail.Host = "smtp.gmail.com"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.Subject == "" {
		cfg.Mail.Subject = DefaultEmailSubject
	}
	if cfg.Mail.Body == "" {
		cfg.Mail.Body = DefaultEmailBody
	}
	if cfg.Mail.Timeout == 0 {
		cfg.Mail.Timeout = 10 * time.Second
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load builds the configuration from the YAML file at path and the
// environment.
//
// PARAMETERS:
//   - path: The config file. A missing file is not an error; the defaults
//     are used instead.
//
// RETURNS:
//   - The immutable configuration.
//   - An error if the file cannot be parsed or the result is invalid.
func Load(path string) (*Config, error) {
	// A .env next to the binary is optional. Existing variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.mapping = NewFieldMapping(cfg.Fields, cfg.HeaderFields, cfg.LineItems)
	return cfg, nil
}

// applyEnv overlays environment variables on the file configuration.
func applyEnv(cfg *Config) {
	cfg.Mail.Sender = getEnv("GMAIL_SENDER", cfg.Mail.Sender)
	cfg.Mail.Password = getEnv("GMAIL_APP_PASSWORD", cfg.Mail.Password)
	cfg.Mail.APIKey = getEnv("RESEND_API_KEY", cfg.Mail.APIKey)
	cfg.Mail.Host = getEnv("SMTP_HOST", cfg.Mail.Host)
	cfg.Mail.Port = getEnvAsInt("SMTP_PORT", cfg.Mail.Port)
}

// validate checks the configuration after defaults are applied.
func validate(cfg *Config) error {
	if cfg.LineItems < 1 || cfg.LineItems > 99 {
		return fmt.Errorf("line_items must be between 1 and 99, got %d", cfg.LineItems)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.CSVSettings.DataStartRow <= cfg.CSVSettings.HeaderRows {
		return fmt.Errorf("csv_settings.data_start_row (%d) must come after the header rows (%d)",
			cfg.CSVSettings.DataStartRow, cfg.CSVSettings.HeaderRows)
	}

	switch cfg.Renderer.Kind {
	case "office", "native":
	default:
		return fmt.Errorf("unknown renderer kind %q", cfg.Renderer.Kind)
	}

	switch cfg.Mail.Transport {
	case "smtp", "resend":
	default:
		return fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}

	for i, rule := range cfg.TransformationRules {
		if rule.Field == "" {
			return fmt.Errorf("transformation_rules[%d]: field is required", i)
		}
	}

	return nil
}

// Mapping returns the field mapping built from this configuration.
func (c *Config) Mapping() *FieldMapping {
	if c.mapping == nil {
		return NewFieldMapping(c.Fields, c.HeaderFields, c.LineItems)
	}
	return c.mapping
}

// WritesReport reports whether a run report is configured.
func (c *Config) WritesReport() bool { return c.ReportFile != "-" }

// MailConfigured reports whether the selected transport has credentials.
func (c *Config) MailConfigured() bool {
	switch c.Mail.Transport {
	case "resend":
		return c.Mail.APIKey != "" && c.Mail.Sender != ""
	default:
		return c.Mail.Sender != "" && c.Mail.Password != ""
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
