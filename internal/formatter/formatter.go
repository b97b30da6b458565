// Package formatter renders forecasts, rates and bot screens as legacy
// Markdown text in Ukrainian.
package formatter

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// pad is U+2800 BRAILLE PATTERN BLANK; Telegram does not collapse it.
	pad = "⠀"

	defaultTargetWidth = 32
	minTargetWidth     = 24
	maxTargetWidth     = 40

	defaultDecorWidth = 64
	minDecorWidth     = 24
	maxDecorWidth     = 160

	defaultDecorChar = "─"

	timeLayout = "02.01 15:04"
)

// HeaderStyle tunes header centering and the decorative underline.
// Zero values select the defaults.
type HeaderStyle struct {
	TargetWidth int
	DecorChar   string
	DecorFull   bool
	DecorWidth  int
	// Plain drops the underline.
	Plain bool
}

func (s HeaderStyle) normalized() HeaderStyle {
	if s.TargetWidth == 0 {
		s.TargetWidth = defaultTargetWidth
	}
	s.TargetWidth = clamp(s.TargetWidth, minTargetWidth, maxTargetWidth)

	if s.DecorWidth == 0 {
		s.DecorWidth = defaultDecorWidth
	}
	s.DecorWidth = clamp(s.DecorWidth, minDecorWidth, maxDecorWidth)

	if r, _ := utf8.DecodeRuneInString(s.DecorChar); s.DecorChar != "" && r != utf8.RuneError {
		s.DecorChar = string(r)
	} else {
		s.DecorChar = defaultDecorChar
	}
	return s
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// Formatter builds message texts. It is safe for concurrent use.
type Formatter struct {
	style HeaderStyle
	loc   *time.Location
}

// Option customises a Formatter.
type Option func(*Formatter)

// WithLocation renders timestamps in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(f *Formatter) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// New returns a Formatter using style.
func New(style HeaderStyle, opts ...Option) *Formatter {
	f := &Formatter{style: style.normalized(), loc: time.Local}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Header renders a visually centered bold title, optionally framed by
// emoji, followed by the decorative underline.
func (f *Formatter) Header(title, emoji string) string {
	text := title
	if emoji != "" {
		text = emoji + " " + title + " " + emoji
	}
	length := utf8.RuneCountInString(text)
	total := max(0, f.style.TargetWidth-length)
	// Emoji render wider than one cell; shift right when framed on both sides.
	left := min(total, (total+1)/2+emojiBias(text))
	right := total - left

	top := strings.Repeat(pad, left) + "**" + text + "**" + strings.Repeat(pad, right)
	if f.style.Plain {
		return top
	}

	var bottom string
	if f.style.DecorFull {
		bottom = strings.Repeat(f.style.DecorChar, f.style.DecorWidth)
	} else {
		bottom = strings.Repeat(pad, left) + strings.Repeat(f.style.DecorChar, length) + strings.Repeat(pad, right)
	}
	return top + "\n" + bottom
}

func emojiBias(text string) int {
	count := 0
	for _, r := range text {
		if isEmoji(r) {
			count++
		}
	}
	if count >= 2 {
		return 1
	}
	return 0
}

func isEmoji(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) ||
		(r >= 0x2600 && r <= 0x26FF) ||
		(r >= 0x2700 && r <= 0x27BF)
}

// FormatTime renders a unix timestamp as DD.MM HH:mm.
func (f *Formatter) FormatTime(unix int64) string {
	return time.Unix(unix, 0).In(f.loc).Format(timeLayout)
}
