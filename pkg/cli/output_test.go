package cli

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

type rows struct {
	header []string
	rows   [][]string
}

func (r rows) Header() []string { return r.header }
func (r rows) Rows() [][]string { return r.rows }

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: "table", want: FormatTable},
		{in: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.wantErr && ExitCode(err) != ExitConfig {
				t.Errorf("unknown format should be a config error, got exit code %d", ExitCode(err))
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	output, err := (&TextFormatter{}).Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q", string(output))
	}
}

func TestTextFormatter_Tabular(t *testing.T) {
	data := rows{header: []string{"ID", "TYPE"}, rows: [][]string{{"p1", "pack_bundle"}}}

	out, err := (&TextFormatter{}).Format(data)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "ID") {
		t.Errorf("tabular data not rendered as a table: %q", out)
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   interface{}
		indent bool
	}{
		{name: "simple string", data: "test"},
		{name: "map with indent", data: map[string]string{"key": "value"}, indent: true},
		{name: "struct", data: struct {
			ArchiveID string `json:"archive_id"`
			Purged    int    `json:"purged"`
		}{ArchiveID: "p1", Purged: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &JSONFormatter{Indent: tt.indent}

			out, err := f.Format(tt.data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if !json.Valid(out) {
				t.Errorf("Format() produced invalid JSON: %s", out)
			}
			if tt.indent && !strings.Contains(string(out), "\n  ") {
				t.Errorf("expected indented JSON: %s", out)
			}

			var buf bytes.Buffer
			if err := f.FormatTo(&buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if !json.Valid(buf.Bytes()) {
				t.Errorf("FormatTo() produced invalid JSON: %s", buf.String())
			}
		})
	}
}

func TestTableFormatter(t *testing.T) {
	data := rows{
		header: []string{"ARCHIVE ID", "TYPE", "FAVORITE"},
		rows: [][]string{
			{"p1", "pack_bundle", "yes"},
			{"deck-long-id", "deck", "no"},
		},
	}

	out, err := (&TableFormatter{}).Format(data)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	col := strings.Index(lines[0], "TYPE")
	if strings.Index(lines[1], "pack_bundle") != col || strings.Index(lines[2], "deck ") != col {
		t.Errorf("columns are not aligned:\n%s", out)
	}

	noHeader, _ := (&TableFormatter{NoHeader: true}).Format(data)
	if strings.Contains(string(noHeader), "ARCHIVE ID") {
		t.Error("NoHeader still printed the header")
	}
}

func TestTableFormatter_RejectsNonTabular(t *testing.T) {
	if _, err := (&TableFormatter{}).Format(42); err == nil {
		t.Fatal("expected error for non-tabular data")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatTable, "*cli.TableFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		f := NewFormatter(tt.format)
		if got := typeName(f); got != tt.want {
			t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
		}
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *TableFormatter:
		return "*cli.TableFormatter"
	default:
		return "unknown"
	}
}
