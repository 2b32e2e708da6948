package ast

import (
	"go/constant"
	"go/token"
	"strconv"
	"strings"
	"unicode/utf8"
)

// parseNumber converts a C/C++ number literal into a constant value.
func parseNumber(text string) (constant.Value, bool) {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(text), "'", ""))
	negate := false
	switch {
	case strings.HasPrefix(s, "-"):
		negate = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return nil, false
	}

	hex := strings.HasPrefix(s, "0x")
	float := strings.Contains(s, ".") ||
		(hex && strings.Contains(s, "p")) ||
		(!hex && strings.Contains(s, "e"))

	var v constant.Value
	if float {
		s = strings.TrimRight(s, "fl")
		v = constant.MakeFromLiteral(s, token.FLOAT, 0)
	} else {
		s = strings.TrimRight(s, "ulz")
		if len(s) > 1 && s[0] == '0' && isDigits(s[1:]) {
			s = "0o" + s[1:]
		}
		v = constant.MakeFromLiteral(s, token.INT, 0)
	}
	if v.Kind() == constant.Unknown {
		return nil, false
	}
	if negate {
		v = constant.UnaryOp(token.SUB, v, 0)
	}
	return v, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// parseChar converts a C/C++ character literal (with optional L, u, U or
// u8 prefix) into its integer value. Multi-character constants combine
// their characters big-endian, as GCC and Clang do.
func parseChar(text string) (constant.Value, bool) {
	start := strings.IndexByte(text, '\'')
	end := strings.LastIndexByte(text, '\'')
	if start < 0 || end <= start+1 {
		return nil, false
	}
	body := text[start+1 : end]

	var value int64
	for body != "" {
		r, rest, ok := decodeChar(body)
		if !ok {
			return nil, false
		}
		value = value<<8 | int64(r)
		body = rest
	}
	return constant.MakeInt64(value), true
}

// decodeChar decodes one possibly escaped character from s.
func decodeChar(s string) (rune, string, bool) {
	if s[0] != '\\' {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return 0, "", false
		}
		return r, s[size:], true
	}
	if len(s) < 2 {
		return 0, "", false
	}

	switch c := s[1]; c {
	case 'n':
		return '\n', s[2:], true
	case 't':
		return '\t', s[2:], true
	case 'r':
		return '\r', s[2:], true
	case 'a':
		return '\a', s[2:], true
	case 'b':
		return '\b', s[2:], true
	case 'f':
		return '\f', s[2:], true
	case 'v':
		return '\v', s[2:], true
	case 'e':
		return 0x1b, s[2:], true
	case '\\', '\'', '"', '?':
		return rune(c), s[2:], true
	case 'x':
		return decodeDigits(s[2:], 16, len(s))
	case 'u':
		return decodeDigits(s[2:], 16, 4)
	case 'U':
		return decodeDigits(s[2:], 16, 8)
	default:
		if c >= '0' && c <= '7' {
			return decodeDigits(s[1:], 8, 3)
		}
		return 0, "", false
	}
}

func decodeDigits(s string, base, maxDigits int) (rune, string, bool) {
	n := 0
	for n < len(s) && n < maxDigits && isBaseDigit(s[n], base) {
		n++
	}
	if n == 0 {
		return 0, "", false
	}
	v, err := strconv.ParseUint(s[:n], base, 32)
	if err != nil {
		return 0, "", false
	}
	return rune(v), s[n:], true
}

func isBaseDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '7':
		return true
	case c == '8' || c == '9':
		return base > 8
	case (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F'):
		return base == 16
	}
	return false
}

// parseMacroLiteral folds the body of an object-like macro when it is a
// single, optionally negated and parenthesized, number or character literal.
func parseMacroLiteral(body string) (constant.Value, bool) {
	s := strings.TrimSpace(body)
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	negate := false
	if strings.HasPrefix(s, "-") {
		negate = true
		s = strings.TrimSpace(s[1:])
	}

	var (
		v  constant.Value
		ok bool
	)
	if strings.HasSuffix(s, "'") {
		v, ok = parseChar(s)
	} else {
		v, ok = parseNumber(s)
	}
	if !ok {
		return nil, false
	}
	if negate {
		v = constant.UnaryOp(token.SUB, v, 0)
	}
	return v, true
}
