// Package capture gathers the text and image of a log entry from flags, the
// system clipboard, or an interactive prompt.
package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
)

// ErrNoContent is returned when a source produced neither text nor an image.
var ErrNoContent = errors.New("no content captured: copy some text or pass --text/--image")

// ClipboardReader returns the current clipboard text.
type ClipboardReader func() (string, error)

// SystemClipboard reads the OS clipboard.
var SystemClipboard ClipboardReader = clipboard.ReadAll

// Content is the raw material of one log entry.
type Content struct {
	Text      string
	ImagePath string

	// DroppedImages counts images collected beyond the first, which are
	// not kept.
	DroppedImages int
}

// Empty reports whether c has neither text nor an image.
func (c Content) Empty() bool {
	return strings.TrimSpace(c.Text) == "" && c.ImagePath == ""
}

// Direct builds content from explicit values. The image, if given, must be
// an existing file.
func Direct(text, imagePath string) (Content, error) {
	c := Content{Text: strings.TrimSpace(text)}
	if imagePath != "" {
		if err := checkFile(imagePath); err != nil {
			return Content{}, err
		}
		c.ImagePath = imagePath
	}
	if c.Empty() {
		return Content{}, ErrNoContent
	}
	return c, nil
}

// FromClipboard reads text from the clipboard once.
func FromClipboard(read ClipboardReader) (Content, error) {
	text, err := read()
	if err != nil {
		return Content{}, fmt.Errorf("read clipboard: %w", err)
	}
	c := Content{Text: strings.TrimSpace(text)}
	if c.Empty() {
		return Content{}, ErrNoContent
	}
	return c, nil
}

// imageExts are the file extensions accepted as images in interactive mode.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".bmp": true, ".heic": true,
}

// Interactive collects several pastes from a line-oriented prompt.
type Interactive struct {
	In        io.Reader
	Out       io.Writer
	Clipboard ClipboardReader
}

// Collect reads lines until "done" or EOF. A line naming an existing image
// file is taken as an image; an empty line pulls the clipboard text; any
// other line is text. Texts are joined by a blank line and only the first
// image is kept.
func (s *Interactive) Collect(ctx context.Context) (Content, error) {
	var (
		texts  []string
		images []string
	)

	fmt.Fprintln(s.Out, "Paste text or an image path, one per line. Empty line reads the clipboard; type 'done' or press Ctrl+D to finish.")

	scanner := bufio.NewScanner(s.In)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return Content{}, err
		}

		fmt.Fprintf(s.Out, "[%d] > ", n)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.EqualFold(line, "done") {
			break
		}

		switch {
		case line == "":
			text := s.clipboardText()
			if text == "" {
				fmt.Fprintln(s.Out, "nothing detected, paste again")
				continue
			}
			texts = append(texts, text)
			fmt.Fprintf(s.Out, "added clipboard text: %s\n", preview(text, 50))
		case isImagePath(line):
			images = append(images, unquote(line))
			fmt.Fprintf(s.Out, "added image: %s\n", unquote(line))
		default:
			texts = append(texts, line)
			fmt.Fprintf(s.Out, "added text: %s\n", preview(line, 50))
		}
	}
	if err := scanner.Err(); err != nil {
		return Content{}, fmt.Errorf("read input: %w", err)
	}

	c := Content{Text: strings.Join(texts, "\n\n")}
	if len(images) > 0 {
		c.ImagePath = images[0]
		c.DroppedImages = len(images) - 1
	}

	if c.Empty() {
		return Content{}, ErrNoContent
	}

	fmt.Fprintf(s.Out, "collected %d text block(s), %d image(s)\n", len(texts), len(images))
	if c.DroppedImages > 0 {
		fmt.Fprintln(s.Out, "note: only the first image is kept")
	}
	return c, nil
}

func (s *Interactive) clipboardText() string {
	if s.Clipboard == nil {
		return ""
	}
	text, err := s.Clipboard()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// unquote strips the quotes terminals add around dragged-in paths.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func isImagePath(line string) bool {
	path := unquote(line)
	if !imageExts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("image %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("image %s: not a regular file", path)
	}
	return nil
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
