package scanner

// ---------------------------------------------------------------------------
// Character-class predicates
// ---------------------------------------------------------------------------

// IsIdentStart reports whether ch can begin a C identifier.
func IsIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// IsIdentPart reports whether ch can continue a C identifier.
func IsIdentPart(ch byte) bool {
	return IsIdentStart(ch) || isDigit(ch)
}

// IsSpace reports whether ch is C whitespace.
func IsSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// IdentEnd returns the offset one past the identifier run starting at pos.
// Callers check IsIdentPart(src[pos]) first; digits are accepted so that a
// numeric run is consumed as one word.
func IdentEnd(src string, pos int) int {
	for pos < len(src) && IsIdentPart(src[pos]) {
		pos++
	}
	return pos
}

// ---------------------------------------------------------------------------
// Lexeme skipping shared with the host-variable extractor
// ---------------------------------------------------------------------------

// LineCommentEnd returns the offset of the newline ending the // comment that
// starts at pos, or limit when the comment runs to the end of the input.
func LineCommentEnd(src string, pos, limit int) int {
	for pos < limit && src[pos] != '\n' {
		pos++
	}
	return pos
}

// BlockCommentEnd returns the offset one past the */ closing the comment that
// starts at pos, or limit for an unterminated comment.
func BlockCommentEnd(src string, pos, limit int) int {
	pos += 2 /* consume opening "/*" */
	for pos+1 < limit {
		if src[pos] == '*' && src[pos+1] == '/' {
			return pos + 2
		}
		pos++
	}
	return limit
}

// QuotedEnd returns the offset one past the quote closing the string or
// character literal that starts at pos. A backslash consumes the following
// byte as a pair, so an escaped quote cannot close the literal. Unterminated
// literals run to limit.
func QuotedEnd(src string, pos, limit int) int {
	quote := src[pos]
	pos++
	for pos < limit {
		switch src[pos] {
		case '\\':
			pos += 2
		case quote:
			return pos + 1
		default:
			pos++
		}
	}
	return limit
}

// NumberEnd returns the offset one past the numeric literal starting at pos,
// including suffixes, exponents and C++14 digit separators, so that a literal
// never forms an identifier or opens a char literal.
func NumberEnd(src string, pos, limit int) int {
	for pos < limit {
		ch := src[pos]
		if IsIdentPart(ch) || ch == '.' {
			pos++
			continue
		}
		if ch == '\'' && pos > 0 && IsIdentPart(src[pos-1]) && pos+1 < limit && IsIdentPart(src[pos+1]) {
			pos++
			continue
		}
		break
	}
	return pos
}

// atLineStart reports whether only spaces and tabs precede pos on its line.
func atLineStart(src string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch src[i] {
		case ' ', '\t':
			continue
		case '\n', '\r':
			return true
		default:
			return false
		}
	}
	return true
}

// continuesLine reports whether the line ending at the newline at pos has a
// backslash as its last non-whitespace character.
func continuesLine(src string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch src[i] {
		case ' ', '\t', '\r', '\f', '\v':
			continue
		case '\\':
			return true
		default:
			return false
		}
	}
	return false
}

// endsLine reports whether only blanks or a line comment remain between pos
// and the next newline.
func endsLine(src string, pos int) bool {
	for pos < len(src) {
		switch ch := src[pos]; {
		case ch == '\n':
			return true
		case ch == ' ', ch == '\t', ch == '\r', ch == '\f', ch == '\v':
			pos++
		case ch == '/' && pos+1 < len(src) && src[pos+1] == '/':
			return true
		default:
			return false
		}
	}
	return true
}
