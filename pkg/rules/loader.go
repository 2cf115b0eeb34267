package rules

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Header column names of the rule source. Unknown columns are ignored.
const (
	colInput           = "input"
	colOutput          = "output"
	colType            = "type"
	colImageURL        = "image_url"
	colVideoURL        = "video_url"
	colPreviewImageURL = "preview_image_url"
	colSenderName      = "sender_name"
	colSenderIconURL   = "sender_icon_url"
	colQuickReplies    = "quick_replies"
	colButtons         = "buttons"
)

// Table is the ordered rule table loaded from one source. After loading it is
// read-only shared state: concurrent requests only ever read it.
type Table struct {
	Rules  []Rule
	Source string
}

// Len returns the number of loaded rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rules)
}

// Load reads and parses the CSV rule source at path. A source that cannot be
// opened or parsed at all yields an empty table together with the error, so
// the caller decides whether that is fatal.
func Load(path string, log *slog.Logger) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return &Table{Source: path}, fmt.Errorf("open rule source: %w", err)
	}
	defer file.Close()

	table, err := Parse(file, log)
	if err != nil {
		return &Table{Source: path}, fmt.Errorf("parse rule source %s: %w", path, err)
	}

	table.Source = path
	return table, nil
}

// Parse reads a CSV rule table from r. The first row must be a header naming
// the rule fields. Parsing is permissive: column counts may vary, quoting is
// relaxed, and a row that cannot be read is skipped with a log annotation
// rather than failing the whole table.
func Parse(r io.Reader, log *slog.Logger) (*Table, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "rules.loader")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("rule source is empty")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colInput, colOutput, colType} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("rule source header is missing the %s column", required)
		}
	}

	table := &Table{}
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			log.Warn("Skipping malformed rule row", "row", row, "error", err)
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		rule := Rule{
			Input:           field(colInput),
			Output:          unescapeOutput(field(colOutput)),
			Type:            Kind(strings.TrimSpace(field(colType))),
			ImageURL:        field(colImageURL),
			VideoURL:        field(colVideoURL),
			PreviewImageURL: field(colPreviewImageURL),
			SenderName:      field(colSenderName),
			SenderIconURL:   field(colSenderIconURL),
			QuickReplies:    field(colQuickReplies),
			Buttons:         field(colButtons),
		}

		if !rule.Renderable() {
			log.Warn("Rule row cannot render and will be skipped during expansion",
				"row", row, "type", string(rule.Type), "trigger", rule.IsTrigger())
		}

		table.Rules = append(table.Rules, rule)
	}

	return table, nil
}

// unescapeOutput turns literal two-character \n sequences into real newlines.
func unescapeOutput(output string) string {
	return strings.ReplaceAll(output, `\n`, "\n")
}
