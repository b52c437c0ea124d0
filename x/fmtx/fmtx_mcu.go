//go:build rp2040 || rp2350

package fmtx

import (
	"io"
	"unicode/utf8"

	"launchlink-go/x/conv"
)

// DefaultOutput receives Print and Printf output. Board bring-up points it
// at the diagnostic UART.
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func Sprintf(format string, a ...any) string {
	var p printer
	p.format(format, a)
	return string(p.buf)
}

func Printf(format string, a ...any) (int, error) { return Fprintf(DefaultOutput, format, a...) }

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	var p printer
	p.format(format, a)
	return w.Write(p.buf)
}

func Errorf(format string, a ...any) error { return textError(Sprintf(format, a...)) }

func Sprint(a ...any) string {
	var p printer
	p.list(a)
	return string(p.buf)
}

func Fprint(w io.Writer, a ...any) (int, error) {
	var p printer
	p.list(a)
	return w.Write(p.buf)
}

func Print(a ...any) (int, error) { return Fprint(DefaultOutput, a...) }

type textError string

func (e textError) Error() string { return string(e) }

// printer implements %s %q %d %x %X %t %v and %%, with width and precision
// on strings. Floats print as "?".
type printer struct {
	buf []byte
	tmp [20]byte
}

func (p *printer) list(a []any) {
	for i, v := range a {
		if i > 0 {
			p.buf = append(p.buf, ' ')
		}
		p.value(v)
	}
}

func (p *printer) format(f string, args []any) {
	for i := 0; i < len(f); i++ {
		c := f[i]
		if c != '%' {
			p.buf = append(p.buf, c)
			continue
		}
		i++
		if i < len(f) && f[i] == '%' {
			p.buf = append(p.buf, '%')
			continue
		}
		prec := -1
		var width int
		width, i = number(f, i)
		if i < len(f) && f[i] == '.' {
			prec, i = number(f, i+1)
		}
		if i >= len(f) || len(args) == 0 {
			return
		}
		arg := args[0]
		args = args[1:]
		switch f[i] {
		case 's':
			p.text(arg, width, prec, false)
		case 'q':
			p.text(arg, width, prec, true)
		case 'd':
			p.integer(arg)
		case 'x', 'X':
			if n, ok := unsigned(arg); ok {
				p.buf = append(p.buf, conv.Hex(p.tmp[:], n, f[i] == 'X')...)
			} else {
				p.value(arg)
			}
		case 't', 'v':
			p.value(arg)
		default:
			p.buf = append(p.buf, '%', f[i])
		}
	}
}

func number(f string, i int) (int, int) {
	n := -1
	for ; i < len(f) && '0' <= f[i] && f[i] <= '9'; i++ {
		if n < 0 {
			n = 0
		}
		n = n*10 + int(f[i]-'0')
	}
	return n, i
}

func (p *printer) text(arg any, width, prec int, quoted bool) {
	var s string
	switch v := arg.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case error:
		s = v.Error()
	default:
		p.value(arg)
		return
	}
	if quoted {
		s = quote(s)
	}
	if prec >= 0 && prec < len(s) {
		s = s[:prec]
	}
	for pad := width - utf8.RuneCountInString(s); pad > 0; pad-- {
		p.buf = append(p.buf, ' ')
	}
	p.buf = append(p.buf, s...)
}

func (p *printer) integer(arg any) {
	switch v := arg.(type) {
	case int:
		p.buf = append(p.buf, conv.Itoa(p.tmp[:], int64(v))...)
	case int8:
		p.buf = append(p.buf, conv.Itoa(p.tmp[:], int64(v))...)
	case int16:
		p.buf = append(p.buf, conv.Itoa(p.tmp[:], int64(v))...)
	case int32:
		p.buf = append(p.buf, conv.Itoa(p.tmp[:], int64(v))...)
	case int64:
		p.buf = append(p.buf, conv.Itoa(p.tmp[:], v)...)
	default:
		if n, ok := unsigned(arg); ok {
			p.buf = append(p.buf, conv.Utoa(p.tmp[:], n)...)
			return
		}
		p.value(arg)
	}
}

func unsigned(arg any) (uint64, bool) {
	switch v := arg.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case int:
		return uint64(v), true
	case int32:
		return uint64(uint32(v)), true
	case int64:
		return uint64(v), true
	}
	return 0, false
}

func (p *printer) value(v any) {
	switch x := v.(type) {
	case nil:
		p.buf = append(p.buf, "<nil>"...)
	case string:
		p.buf = append(p.buf, x...)
	case []byte:
		p.buf = append(p.buf, x...)
	case bool:
		if x {
			p.buf = append(p.buf, "true"...)
		} else {
			p.buf = append(p.buf, "false"...)
		}
	case error:
		p.buf = append(p.buf, x.Error()...)
	case interface{ String() string }:
		p.buf = append(p.buf, x.String()...)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		p.integer(x)
	default:
		p.buf = append(p.buf, '?')
	}
}

func quote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '"'))
}
