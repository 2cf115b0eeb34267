package rules

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const sampleCSV = `input,output,type,image_url,video_url,preview_image_url,sender_name,sender_icon_url,quick_replies,buttons
hello,hi there,text,,,,,,,
,line one\nline two,text,,,,,,,
menu,"choose, carefully",buttons,,,,,,,A|B|C
`

func TestParseSampleTable(t *testing.T) {
	t.Parallel()

	table, err := Parse(strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("table len = %d, want 3", table.Len())
	}

	first := table.Rules[0]
	if first.Input != "hello" || first.Output != "hi there" || first.Type != KindText {
		t.Fatalf("rules[0] = %#v", first)
	}

	continuation := table.Rules[1]
	if continuation.IsTrigger() {
		t.Fatal("rules[1] must be a continuation")
	}
	if continuation.Output != "line one\nline two" {
		t.Fatalf("rules[1].Output = %q, want unescaped newline", continuation.Output)
	}

	quoted := table.Rules[2]
	if quoted.Output != "choose, carefully" {
		t.Fatalf("rules[2].Output = %q, want embedded comma preserved", quoted.Output)
	}
	if quoted.Buttons != "A|B|C" {
		t.Fatalf("rules[2].Buttons = %q", quoted.Buttons)
	}
}

func TestParseShortAndLongRows(t *testing.T) {
	t.Parallel()

	source := "input,output,type\n" +
		"hi,hello,text\n" +
		"short,only-output\n" +
		"long,hello,text,extra,columns\n"

	table, err := Parse(strings.NewReader(source), nil)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("table len = %d, want 3", table.Len())
	}

	short := table.Rules[1]
	if short.Type != "" {
		t.Fatalf("short row type = %q, want absent", short.Type)
	}
	if short.Renderable() {
		t.Fatal("short row without type must not render")
	}
}

func TestParseRequiresCoreColumns(t *testing.T) {
	t.Parallel()

	if _, err := Parse(strings.NewReader("input,output\nhi,hello\n"), nil); err == nil {
		t.Fatal("expected error for header without type column")
	}
	if _, err := Parse(strings.NewReader(""), nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	table, err := Load(filepath.Join(t.TempDir(), "missing.csv"), nil)
	if err == nil {
		t.Fatal("expected error for missing rule source")
	}
	if table == nil || table.Len() != 0 {
		t.Fatalf("table = %#v, want empty table alongside the error", table)
	}
}

func TestLoadRoundTripPreservesCoreFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("write rule source: %v", err)
	}

	table, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := []struct {
		input  string
		output string
		kind   Kind
	}{
		{"hello", "hi there", KindText},
		{"", "line one\nline two", KindText},
		{"menu", "choose, carefully", KindButtons},
	}
	for i, expected := range want {
		rule := table.Rules[i]
		if rule.Input != expected.input || rule.Output != expected.output || rule.Type != expected.kind {
			t.Fatalf("rules[%d] = %#v, want %#v", i, rule, expected)
		}
	}
}

func TestStoreCoalescesLoads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("write rule source: %v", err)
	}

	store := NewStore(path, nil)

	if loaded, count := store.Status(); loaded || count != 0 {
		t.Fatalf("status before load = (%v, %d), want (false, 0)", loaded, count)
	}

	const callers = 16
	tables := make([]*Table, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := store.Table()
			if err != nil {
				t.Errorf("Table error: %v", err)
				return
			}
			tables[i] = table
		}()
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if tables[i] != tables[0] {
			t.Fatal("expected every caller to share one loaded snapshot")
		}
	}

	if loaded, count := store.Status(); !loaded || count != 3 {
		t.Fatalf("status after load = (%v, %d), want (true, 3)", loaded, count)
	}
}

func TestStoreCachesLoadFailure(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "missing.csv"), nil)

	_, first := store.Table()
	if first == nil {
		t.Fatal("expected load failure for missing source")
	}

	_, second := store.Table()
	if second == nil {
		t.Fatal("expected cached load failure on repeat call")
	}

	if loaded, _ := store.Status(); loaded {
		t.Fatal("failed store must not report loaded")
	}
}
