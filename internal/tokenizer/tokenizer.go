package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// Split splits line on every Comma and trims surrounding white space from each
// resulting piece.
//
// Grammar:
//
//	Line  = Field { "," Field } ;
//	Field = <any characters except ","> ;
//
// A line without a comma yields a single field equal to the trimmed line, and
// an empty line yields one empty field. The returned slice never shares memory
// with a previous call.
func Split(line string) []string {
	fields := make([]string, 0, strings.Count(line, string(Comma))+1)
	for {
		i := strings.IndexByte(line, Comma)
		if i < 0 {
			return append(fields, Trim(line))
		}
		fields = append(fields, Trim(line[:i]))
		line = line[i+1:]
	}
}

// Trim removes leading and trailing white space from field.
//
// Performance: pure ASCII edges are handled without decoding runes.
func Trim(field string) string {
	start := 0
	for start < len(field) {
		b := field[start]
		if b < utf8.RuneSelf {
			if !asciiSpace[b] {
				break
			}
			start++
			continue
		}
		r, size := utf8.DecodeRuneInString(field[start:])
		if !IsSpace(r) {
			break
		}
		start += size
	}

	end := len(field)
	for end > start {
		b := field[end-1]
		if b < utf8.RuneSelf {
			if !asciiSpace[b] {
				break
			}
			end--
			continue
		}
		r, size := utf8.DecodeLastRuneInString(field[start:end])
		if !IsSpace(r) {
			break
		}
		end -= size
	}
	return field[start:end]
}

var asciiSpace = [utf8.RuneSelf]bool{'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true}
