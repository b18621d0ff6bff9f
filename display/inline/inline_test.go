package inline

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Protocol
	}{
		{"ghostty", map[string]string{"TERM_PROGRAM": "ghostty"}, ProtocolKitty},
		{"kitty term", map[string]string{"TERM": "xterm-kitty"}, ProtocolKitty},
		{"kitty window", map[string]string{"KITTY_WINDOW_ID": "1"}, ProtocolKitty},
		{"iterm", map[string]string{"TERM_PROGRAM": "iTerm.app"}, ProtocolITerm2},
		{"iterm over ssh", map[string]string{"LC_TERMINAL": "iTerm2"}, ProtocolITerm2},
		{"plain xterm", map[string]string{"TERM": "xterm-256color"}, ProtocolHalfBlock},
		{"nothing", nil, ProtocolHalfBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(env(tt.env)); got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseProtocol(t *testing.T) {
	for in, want := range map[string]Protocol{"kitty": ProtocolKitty, "ITERM2": ProtocolITerm2, "unicode": ProtocolHalfBlock} {
		if got, ok := ParseProtocol(in); !ok || got != want {
			t.Errorf("ParseProtocol(%q) = %s, %v", in, got, ok)
		}
	}
	if _, ok := ParseProtocol("auto"); ok {
		t.Error("auto should defer to Detect")
	}
}

func TestWriteHalfBlock(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testPNG(t, 40, 40), ProtocolHalfBlock, 10, 5); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Errorf("rows = %d, want 5", len(lines))
	}
	if strings.Count(lines[0], "▀") != 10 {
		t.Errorf("first row has %d cells, want 10", strings.Count(lines[0], "▀"))
	}
	if !strings.Contains(out, "38;2;255;0;0") {
		t.Error("missing red foreground")
	}
}

func TestWriteKittyChunks(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 3*kittyChunkSize)
	var buf bytes.Buffer
	if err := Write(&buf, data, ProtocolKitty, 80, 20); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\033_Gf=100,a=T,t=d,c=80,r=20,m=1;") {
		t.Errorf("first chunk header wrong: %q", out[:40])
	}
	if !strings.Contains(out, "\033_Gm=0;") {
		t.Error("missing final chunk marker")
	}
}

func TestWriteITerm2(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []byte("png"), ProtocolITerm2, 80, 20); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "\033]1337;File=name=chart.png;size=3;width=80;height=20;inline=1:cG5n\007") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, ProtocolKitty, 10, 10); err != ErrEmpty {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
	if err := Write(&buf, []byte("x"), ProtocolKitty, 0, 10); err == nil {
		t.Error("expected size error")
	}
	if err := Write(&buf, []byte("not a png"), ProtocolHalfBlock, 10, 10); err == nil {
		t.Error("expected decode error")
	}
}
