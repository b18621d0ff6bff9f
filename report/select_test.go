package report

import (
	"path/filepath"
	"testing"
)

func TestSelectRecent(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		n     int
		want  []string
	}{
		{"none", nil, 2, nil},
		{"one", []string{"2024-03-14.csv"}, 2, []string{"2024-03-14.csv"}},
		{
			"three ascending",
			[]string{"2024-03-12.csv", "2024-03-13.csv", "2024-03-14.csv"},
			2,
			[]string{"2024-03-14.csv", "2024-03-13.csv"},
		},
		{
			"across months",
			[]string{"2024-02-28.csv", "2024-03-01.csv", "2023-12-31.csv"},
			2,
			[]string{"2024-03-01.csv", "2024-02-28.csv"},
		},
		{
			"ignores foreign files",
			[]string{"2024-03-01.csv", "summary.csv", "2024-03-02.md"},
			5,
			[]string{"2024-03-01.csv"},
		},
		{
			"default n",
			[]string{"2024-03-12.csv", "2024-03-13.csv", "2024-03-14.csv"},
			0,
			[]string{"2024-03-14.csv", "2024-03-13.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeLogs(t, dir, tt.files...)

			got, err := SelectRecent(dir, tt.n)
			if err != nil {
				t.Fatalf("SelectRecent: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if filepath.Base(got[i]) != tt.want[i] {
					t.Errorf("got[%d] = %s, want %s", i, filepath.Base(got[i]), tt.want[i])
				}
			}
		})
	}
}

func TestSelectRecentMissingDir(t *testing.T) {
	got, err := SelectRecent(filepath.Join(t.TempDir(), "nope"), 2)
	if err != nil || len(got) != 0 {
		t.Errorf("SelectRecent = %v, %v; want empty, nil", got, err)
	}
}
