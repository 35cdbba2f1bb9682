package results

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

var fixed = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newFixedTable() *Table {
	t := NewTable()
	t.now = func() time.Time { return fixed }
	return t
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	return rows
}

func readXLSX(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return rows
}

func compareRows(t *testing.T, got, want [][]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Errorf("row %d: got %v, want %v", i, got[i], want[i])
			continue
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("row %d col %d: got %q, want %q", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestDefaultNames(t *testing.T) {
	if got := DefaultName(fixed); got != "At 140507" {
		t.Errorf("DefaultName: got %q", got)
	}
	if got := DefaultFileName(fixed); got != "At_202403091405.xlsx" {
		t.Errorf("DefaultFileName: got %q", got)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"counts.xlsx", FormatXLSX, false},
		{"COUNTS.XLSX", FormatXLSX, false},
		{"counts.csv", FormatCSV, false},
		{"dir/counts.Csv", FormatCSV, false},
		{"counts.txt", "", true},
		{"counts", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("%s: got %v, want ErrUnsupportedFormat", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: got %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
}

func TestTable_AddListClear(t *testing.T) {
	tbl := newFixedTable()
	r := tbl.Add(Record{CellCount: 12, MedianSize: 800})
	if r.Name != "At 140507" || !r.CountedAt.Equal(fixed) {
		t.Errorf("defaults not applied: %+v", r)
	}
	tbl.Add(Record{Name: "slide 2", CellCount: 7, MedianSize: 950.5})

	list := tbl.List()
	if len(list) != 2 || list[1].Name != "slide 2" {
		t.Fatalf("got %+v", list)
	}
	list[0].Name = "mutated"
	if tbl.List()[0].Name != "At 140507" {
		t.Error("List exposed internal storage")
	}

	if n := tbl.Clear(); n != 2 {
		t.Errorf("Clear: got %d, want 2", n)
	}
	if tbl.Len() != 0 {
		t.Errorf("after Clear: %d records", tbl.Len())
	}
}

func TestTable_ConcurrentAdd(t *testing.T) {
	tbl := NewTable()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl.Add(Record{Name: "x", CellCount: i})
		}(i)
	}
	wg.Wait()
	if tbl.Len() != 50 {
		t.Errorf("got %d records, want 50", tbl.Len())
	}
}

func TestTable_SaveNewWorkbook(t *testing.T) {
	tbl := newFixedTable()
	tbl.Add(Record{Name: "a", CellCount: 3, MedianSize: 1200})
	tbl.Add(Record{Name: "b", CellCount: 5, MedianSize: 1257.5})

	path := filepath.Join(t.TempDir(), "out", "counts.xlsx")
	res, err := tbl.Save(path)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if res.Appended || res.Rows != 2 || res.Path != path || res.Format != FormatXLSX {
		t.Errorf("got %+v", res)
	}

	compareRows(t, readXLSX(t, path), [][]string{
		{"name", "cell_count", "median_size"},
		{"a", "3", "1200"},
		{"b", "5", "1257.5"},
	})
}

func TestTable_SaveAppendsToWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.xlsx")

	first := newFixedTable()
	first.Add(Record{Name: "a", CellCount: 1, MedianSize: 10})
	if _, err := first.Save(path); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := newFixedTable()
	second.Add(Record{Name: "b", CellCount: 2, MedianSize: 20})
	second.Add(Record{Name: "c", CellCount: 3, MedianSize: 30})
	res, err := second.Save(path)
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if !res.Appended {
		t.Error("second Save should report appending")
	}

	compareRows(t, readXLSX(t, path), [][]string{
		{"name", "cell_count", "median_size"},
		{"a", "1", "10"},
		{"b", "2", "20"},
		{"c", "3", "30"},
	})
}

func TestTable_SaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.csv")

	first := newFixedTable()
	first.Add(Record{Name: "a", CellCount: 3, MedianSize: 1200})
	res, err := first.Save(path)
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if res.Format != FormatCSV || res.Appended {
		t.Errorf("got %+v", res)
	}

	second := newFixedTable()
	second.Add(Record{Name: "b", CellCount: 5, MedianSize: 1257.5})
	if res, err = second.Save(path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if !res.Appended {
		t.Error("second Save should report appending")
	}

	compareRows(t, readCSV(t, path), [][]string{
		{"name", "cell_count", "median_size"},
		{"a", "3", "1200"},
		{"b", "5", "1257.5"},
	})
}

func TestTable_SaveEmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.csv")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tbl := newFixedTable()
	tbl.Add(Record{Name: "a", CellCount: 1, MedianSize: 10})
	res, err := tbl.Save(path)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if res.Appended {
		t.Error("an empty file should be treated as new")
	}
	compareRows(t, readCSV(t, path), [][]string{
		{"name", "cell_count", "median_size"},
		{"a", "1", "10"},
	})
}

func TestTable_SaveEmptyWorkbookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.xlsx")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tbl := newFixedTable()
	tbl.Add(Record{Name: "a", CellCount: 1, MedianSize: 10})
	if _, err := tbl.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	compareRows(t, readXLSX(t, path), [][]string{
		{"name", "cell_count", "median_size"},
		{"a", "1", "10"},
	})
}

func TestTable_SaveIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	tbl := newFixedTable()
	tbl.Add(Record{Name: "a", CellCount: 1})

	res, err := tbl.Save(dir)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if want := filepath.Join(dir, "At_202403091405.xlsx"); res.Path != want {
		t.Errorf("path: got %s, want %s", res.Path, want)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("workbook missing: %v", err)
	}
}

func TestTable_SaveWithoutExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts")
	tbl := newFixedTable()
	tbl.Add(Record{Name: "a", CellCount: 1})

	res, err := tbl.Save(path)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if res.Path != path+".xlsx" || res.Format != FormatXLSX {
		t.Errorf("got %+v", res)
	}
}

func TestTable_SaveErrors(t *testing.T) {
	if _, err := NewTable().Save(filepath.Join(t.TempDir(), "x.xlsx")); err == nil {
		t.Error("Save should fail with no records")
	}

	tbl := newFixedTable()
	tbl.Add(Record{Name: "a", CellCount: 1})
	path := filepath.Join(t.TempDir(), "x.txt")
	if _, err := tbl.Save(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("rejected export still wrote a file")
	}
}
