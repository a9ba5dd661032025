package export

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/cj3636/gitdiffview/internal/config"
)

// ClipboardWriter stores a payload on a clipboard in one operation.
type ClipboardWriter interface {
	Write(p Payload) error
}

// ErrClipboardUnavailable is returned when no clipboard utility is present.
var ErrClipboardUnavailable = errors.New("no clipboard available")

// OSC52Writer asks the terminal to set its clipboard. Terminals only accept
// text through OSC52, so the HTML flavour is not transmitted.
type OSC52Writer struct {
	Out  io.Writer
	Tmux bool
}

// Write emits the OSC52 sequence for the plain flavour.
func (w OSC52Writer) Write(p Payload) error {
	out := w.Out
	if out == nil {
		out = os.Stdout
	}
	seq := osc52.New(p.Plain)
	if w.Tmux {
		seq = seq.Tmux()
	}
	_, err := seq.WriteTo(out)
	return err
}

// SystemWriter uses the desktop clipboard. On macOS both flavours are set
// by one osascript call; elsewhere only text is supported by the clipboard
// utilities and the HTML flavour is dropped.
type SystemWriter struct {
	GOOS     string
	Run      func(name string, args ...string) error
	WriteAll func(text string) error
}

// NewSystemWriter returns a SystemWriter for the running platform.
func NewSystemWriter() SystemWriter {
	return SystemWriter{
		GOOS: runtime.GOOS,
		Run: func(name string, args ...string) error {
			var stderr bytes.Buffer
			cmd := exec.Command(name, args...)
			cmd.Stderr = &stderr
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("%s: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
			}
			return nil
		},
		WriteAll: func(text string) error {
			if clipboard.Unsupported {
				return ErrClipboardUnavailable
			}
			return clipboard.WriteAll(text)
		},
	}
}

// Write stores the payload.
func (w SystemWriter) Write(p Payload) error {
	if w.GOOS == "darwin" && w.Run != nil {
		return w.Run("osascript", "-e", appleScriptFor(p))
	}
	if w.WriteAll == nil {
		return ErrClipboardUnavailable
	}
	return w.WriteAll(p.Plain)
}

// appleScriptFor builds a record holding both flavours so the pasteboard is
// replaced once.
func appleScriptFor(p Payload) string {
	return fmt.Sprintf("set the clipboard to {«class HTML»:«data HTML%s», «class utf8»:«data utf8%s»}",
		hex.EncodeToString([]byte(p.HTML)), hex.EncodeToString([]byte(p.Plain)))
}

// NewClipboard picks a writer for mode. Auto prefers OSC52 inside SSH
// sessions or when no desktop clipboard utility exists.
func NewClipboard(mode config.ClipboardMode, out io.Writer) ClipboardWriter {
	tmux := os.Getenv("TMUX") != ""
	switch mode {
	case config.ClipboardOSC52:
		return OSC52Writer{Out: out, Tmux: tmux}
	case config.ClipboardSystem:
		return NewSystemWriter()
	default:
		remote := os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != ""
		if remote || (runtime.GOOS != "darwin" && clipboard.Unsupported) {
			return OSC52Writer{Out: out, Tmux: tmux}
		}
		return NewSystemWriter()
	}
}
