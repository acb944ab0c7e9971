package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment for SetAlign
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character sizes for SetFontSize (GS ! n: high nibble width, low nibble height)
const (
	FontNormal = 0x00
	FontDouble = 0x11
	FontWide   = 0x10
	FontTall   = 0x01
)

// DefaultCharWidth fits 58mm paper; 80mm paper takes 48
const DefaultCharWidth = 32

// Document accumulates an ESC/POS job for a fixed-width thermal printer.
// Every text method strips control characters so bill data cannot smuggle
// printer commands into the stream.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a job with the printer reset
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = DefaultCharWidth
	}
	d := &Document{width: charWidth}
	return d.Init()
}

func (d *Document) cmd(b ...byte) *Document {
	d.buf.Write(b)
	return d
}

func (d *Document) line(s string) *Document {
	d.buf.WriteString(printable(s))
	d.buf.WriteByte(LF)
	return d
}

// Init resets the printer (ESC @)
func (d *Document) Init() *Document { return d.cmd(ESC, '@') }

// LineFeed advances one line
func (d *Document) LineFeed() *Document { return d.cmd(LF) }

// FeedLines advances n lines
func (d *Document) FeedLines(n int) *Document {
	if n > 0 {
		d.buf.Write(bytes.Repeat([]byte{LF}, n))
	}
	return d
}

func (d *Document) SetAlign(align int) *Document { return d.cmd(ESC, 'a', byte(align)) }

func (d *Document) SetBold(on bool) *Document {
	if on {
		return d.cmd(ESC, 'E', 1)
	}
	return d.cmd(ESC, 'E', 0)
}

func (d *Document) SetFontSize(size byte) *Document { return d.cmd(GS, '!', size) }

// Cut performs a full cut
func (d *Document) Cut() *Document { return d.cmd(GS, 'V', 0x00) }

// PartialCut leaves a tab holding the receipt to the roll
func (d *Document) PartialCut() *Document { return d.cmd(GS, 'V', 0x01) }

// Text writes s on its own line
func (d *Document) Text(s string) *Document { return d.line(s) }

// TextF is Text with fmt.Sprintf formatting
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.line(fmt.Sprintf(format, args...))
}

// Separator fills one line with char
func (d *Document) Separator(char byte) *Document {
	return d.line(strings.Repeat(string(char), d.width))
}

// KeyValue writes key flush left and value flush right on one line
func (d *Document) KeyValue(key, value string) *Document {
	return d.padded(key, value)
}

// ItemLine prints "qty x name" with the line total right-aligned. Names too
// long for the paper continue on the following lines.
func (d *Document) ItemLine(qty int, name, total string) *Document {
	prefix := fmt.Sprintf("%dx ", qty)
	indent := strings.Repeat(" ", len(prefix))

	head, rest := splitAt(printable(name), d.width-len(prefix)-len(total)-1)
	d.padded(prefix+head, total)
	for rest != "" {
		head, rest = splitAt(rest, d.width-len(prefix))
		d.line(indent + head)
	}
	return d
}

// Bytes returns the job so far
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Document) padded(left, right string) *Document {
	left, right = printable(left), printable(right)
	gap := d.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return d.line(left + strings.Repeat(" ", gap) + right)
}

// splitAt cuts s after n runes, n at least 1
func splitAt(s string, n int) (string, string) {
	if n < 1 {
		n = 1
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s, ""
	}
	return string(runes[:n]), string(runes[n:])
}

func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
