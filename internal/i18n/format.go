package i18n

import (
	"fmt"
	"strings"
)

// Format is a type of message formatting in Telegram in HTML format.
type Format string

const (
	Bold   Format = "<b>"
	Italic Format = "<i>"
	Code   Format = "<code>"

	boldEnd   = "</b>"
	italicEnd = "</i>"
	codeEnd   = "</code>"
)

// F returns a formatted string.
func F(msg string, formats ...Format) string {
	for _, f := range formats {
		switch f {
		case Bold:
			msg = string(Bold) + msg + boldEnd
		case Italic:
			msg = string(Italic) + msg + italicEnd
		case Code:
			msg = string(Code) + msg + codeEnd
		}
	}
	return msg
}

// Builder is a wrapper for strings.Builder with additional methods.
// Empty value of Builder is ready to use.
type Builder struct {
	strings.Builder
}

// NewBuilder creates a new Builder instance.
func NewBuilder() *Builder {
	return &Builder{}
}

// Writef writes a formatted string to the builder using fmt.Sprintf.
func (b *Builder) Writef(format string, args ...any) {
	b.WriteString(fmt.Sprintf(format, args...))
}

// Writeln writes a string to the builder and adds a newline at the end.
func (b *Builder) Writeln(s string) {
	b.WriteString(s + "\n")
}

// IsEmpty returns true if the builder's length is 0.
func (b *Builder) IsEmpty() bool {
	return b.Builder.Len() == 0
}
