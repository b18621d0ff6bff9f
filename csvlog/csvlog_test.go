package csvlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GameboyEsc95/VMAS/collectors"
)

func testSample(ts time.Time) collectors.Sample {
	return collectors.Sample{
		Timestamp: ts,
		CPU:       12.5,
		Memory:    63.2,
		Disk:      41,
		TopProcesses: []collectors.ProcessInfo{
			{Name: "firefox", PID: 812, CPU: 9.1, MemMB: 512.333},
			{Name: "a|b", PID: 77, CPU: 2, MemMB: 80.12},
		},
	}
}

func TestFormatRow(t *testing.T) {
	ts := time.Date(2024, 3, 14, 10, 5, 0, 0, time.Local)
	got := FormatRow(testSample(ts))
	want := `2024-03-14 10:05:00,12.50,63.20,41.00,"firefox (PID 812) 9.10% 512.33MB | a/b (PID 77) 2.00% 80.12MB"`
	if got != want {
		t.Errorf("FormatRow()\n got %s\nwant %s", got, want)
	}
}

func TestFormatRowEmptyProcesses(t *testing.T) {
	ts := time.Date(2024, 3, 14, 10, 5, 0, 0, time.Local)
	got := FormatRow(collectors.Sample{Timestamp: ts})
	if !strings.HasSuffix(got, `,""`) {
		t.Errorf("FormatRow() = %q, want empty quoted summary", got)
	}
}

func TestParseProcessSummary(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"single", "bash (PID 1) 0.00% 1.00MB", 1, false},
		{"name with parens", "kworker (evt) (PID 9) 1.50% 0.00MB", 1, false},
		{"two", "a (PID 1) 1.00% 1.00MB | b (PID 2) 2.00% 2.00MB", 2, false},
		{"garbage", "not a process", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProcessSummary(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := ParseProcessSummary("kworker (evt) (PID 9) 1.50% 0.25MB")
	if got[0].Name != "kworker (evt)" || got[0].PID != 9 || got[0].CPU != 1.5 || got[0].MemMB != 0.25 {
		t.Errorf("parsed = %+v", got[0])
	}
}

func TestOfferCadence(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.Local)
	w := NewWriter(dir, 3, func() time.Time { return now }, nil)

	var written int
	for counter := uint64(1); counter <= 7; counter++ {
		ok, err := w.Offer(testSample(now), counter)
		if err != nil {
			t.Fatalf("Offer(%d): %v", counter, err)
		}
		if ok {
			written++
		}
	}
	if written != 2 {
		t.Errorf("written = %d, want 2 (counters 3 and 6)", written)
	}

	data, err := os.ReadFile(filepath.Join(dir, "2024-03-14.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows:\n%s", len(lines), data)
	}
	if lines[0] != Header {
		t.Errorf("first line = %q, want header", lines[0])
	}
	if strings.Count(string(data), Header) != 1 {
		t.Error("header written more than once")
	}
}

func TestOfferAcrossWriterRestarts(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.Local)

	// Each writer stands for a fresh process appending to the same day's file.
	for run := 0; run < 3; run++ {
		w := NewWriter(dir, 60, func() time.Time { return now }, nil)
		for counter := uint64(1); counter <= 120; counter++ {
			if _, err := w.Offer(testSample(now), counter); err != nil {
				t.Fatalf("run %d Offer(%d): %v", run, counter, err)
			}
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "2024-03-14.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), Header); n != 1 {
		t.Errorf("header count = %d, want 1", n)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 7 {
		t.Errorf("lines = %d, want header + 6 rows", len(lines))
	}

	rows, err := ReadFile(filepath.Join(dir, "2024-03-14.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != 6 {
		t.Errorf("rows = %d, want 6", len(rows))
	}
}

func TestOfferDefaultCadence(t *testing.T) {
	w := NewWriter(t.TempDir(), 0, nil, nil)
	if w.Every() != DefaultFlushEvery {
		t.Errorf("Every() = %d, want %d", w.Every(), DefaultFlushEvery)
	}
	if w.Due(59) || !w.Due(60) || !w.Due(120) {
		t.Error("Due does not follow a cadence of 60")
	}
}

func TestAppendCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.Local)
	w := NewWriter(dir, 1, func() time.Time { return now }, nil)

	path, err := w.Append(testSample(now))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if filepath.Base(path) != "2024-03-14.csv" {
		t.Errorf("path = %s", path)
	}
}

func TestAppendFollowsClockAcrossMidnight(t *testing.T) {
	dir := t.TempDir()
	day1 := time.Date(2024, 3, 14, 23, 59, 59, 0, time.Local)
	day2 := day1.Add(2 * time.Second)

	clock := day1
	w := NewWriter(dir, 1, func() time.Time { return clock }, nil)

	if _, err := w.Append(testSample(day1)); err != nil {
		t.Fatal(err)
	}
	clock = day2
	// Sample taken before midnight, written after.
	if _, err := w.Append(testSample(day1)); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"2024-03-14.csv", "2024-03-15.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.HasPrefix(string(data), Header+"\n") {
			t.Errorf("%s missing header", name)
		}
	}
}

func TestAppendUnwritableDirectory(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWriter(filepath.Join(blocker, "logs"), 1, nil, nil)
	ok, err := w.Offer(testSample(time.Now()), 1)
	if err == nil {
		t.Fatal("expected error writing under a regular file")
	}
	if ok {
		t.Error("Offer reported a write on failure")
	}
}

func TestReadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 14, 10, 5, 0, 0, time.Local)
	w := NewWriter(dir, 1, func() time.Time { return now }, nil)

	s := testSample(now)
	s.TopProcesses[0].Name = `say "hi"`
	path, err := w.Append(s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Append(testSample(now.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	r := rows[0]
	if !r.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", r.Timestamp, now)
	}
	if r.CPU != 12.5 || r.Memory != 63.2 || r.Disk != 41 {
		t.Errorf("metrics = %v/%v/%v", r.CPU, r.Memory, r.Disk)
	}
	if len(r.TopProcesses) != 2 || r.TopProcesses[0].Name != `say "hi"` {
		t.Errorf("TopProcesses = %+v", r.TopProcesses)
	}
	if r.TopProcesses[1].Name != "a/b" {
		t.Errorf("pipe not replaced: %q", r.TopProcesses[1].Name)
	}
}

func TestReadMalformed(t *testing.T) {
	in := Header + "\n2024-03-14 10:05:00,abc,1,1,\"\"\n"
	if _, err := Read(strings.NewReader(in)); err == nil {
		t.Error("expected error for non-numeric cpu")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2024-03-14.csv", "2024-01-02.csv", "notes.csv", "2024-02-30.csv", "2024-03-01.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(Header+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "2024-03-20.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %+v, want 2 dated files", files)
	}
	if files[0].Name != "2024-01-02.csv" || files[1].Name != "2024-03-14.csv" {
		t.Errorf("order = %s, %s", files[0].Name, files[1].Name)
	}
}

func TestListMissingDir(t *testing.T) {
	files, err := List(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want none", files)
	}
}
