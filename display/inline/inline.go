// Package inline prints PNG images directly in the terminal. Kitty-protocol
// terminals (Kitty, Ghostty, WezTerm) and iTerm2 get the original image;
// everything else gets a half-block rendering in 24-bit color.
package inline

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// kittyChunkSize is the largest base64 payload per Kitty escape sequence.
const kittyChunkSize = 4096

// Protocol identifies how an image is written to the terminal.
type Protocol int

const (
	ProtocolKitty Protocol = iota
	ProtocolITerm2
	ProtocolHalfBlock
)

func (p Protocol) String() string {
	switch p {
	case ProtocolKitty:
		return "kitty"
	case ProtocolITerm2:
		return "iterm2"
	case ProtocolHalfBlock:
		return "halfblock"
	default:
		return "unknown"
	}
}

// ParseProtocol accepts the names returned by String. "auto" and "" return
// ok=false so the caller falls back to Detect.
func ParseProtocol(s string) (Protocol, bool) {
	switch strings.ToLower(s) {
	case "kitty":
		return ProtocolKitty, true
	case "iterm2":
		return ProtocolITerm2, true
	case "halfblock", "unicode":
		return ProtocolHalfBlock, true
	default:
		return ProtocolHalfBlock, false
	}
}

// Detect picks a protocol from the terminal's environment variables.
func Detect(getenv func(string) string) Protocol {
	switch strings.ToLower(getenv("TERM_PROGRAM")) {
	case "ghostty", "kitty", "wezterm":
		return ProtocolKitty
	case "iterm.app":
		return ProtocolITerm2
	}
	if getenv("TERM") == "xterm-kitty" || getenv("KITTY_WINDOW_ID") != "" || getenv("WEZTERM_EXECUTABLE") != "" {
		return ProtocolKitty
	}
	if getenv("ITERM_SESSION_ID") != "" || getenv("LC_TERMINAL") == "iTerm2" {
		return ProtocolITerm2
	}
	return ProtocolHalfBlock
}

// ErrEmpty is returned for zero-length image data.
var ErrEmpty = errors.New("inline: empty image")

// Write renders data, a PNG, into at most cols x rows terminal cells.
func Write(w io.Writer, data []byte, p Protocol, cols, rows int) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("inline: invalid size %dx%d", cols, rows)
	}

	var out string
	var err error
	switch p {
	case ProtocolKitty:
		out = kitty(data, cols, rows)
	case ProtocolITerm2:
		out = iterm2(data, cols, rows)
	default:
		out, err = halfBlock(data, cols, rows)
	}
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("inline: write: %w", err)
	}
	return nil
}

func kitty(data []byte, cols, rows int) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}
		if i == 0 {
			fmt.Fprintf(&b, "\033_Gf=100,a=T,t=d,c=%d,r=%d,m=%d;%s\033\\", cols, rows, more, encoded[i:end])
		} else {
			fmt.Fprintf(&b, "\033_Gm=%d;%s\033\\", more, encoded[i:end])
		}
	}
	return b.String()
}

func iterm2(data []byte, cols, rows int) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("\033]1337;File=name=chart.png;size=%d;width=%d;height=%d;inline=1:%s\007",
		len(data), cols, rows, encoded)
}

// halfBlock draws two pixel rows per text row: the upper half block takes
// the top pixel as foreground and the bottom pixel as background.
func halfBlock(data []byte, cols, rows int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("inline: decode: %w", err)
	}

	resized := imaging.Fit(img, cols, rows*2, imaging.Lanczos)
	bounds := resized.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var b strings.Builder
	for y := 0; y < h; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := resized.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			bot := color.NRGBA{A: 255}
			if y+1 < h {
				bot = resized.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y+1)
			}
			fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		b.WriteString("\033[0m")
	}
	return b.String(), nil
}
