package graph

import (
	"fmt"
	"strings"
)

// Quote escapes s for use as a single POSIX shell word. Plain words pass
// through unchanged; anything else is single-quoted, with embedded single
// quotes spliced as '\''.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if isPlainWord(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isPlainWord(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-./=:@%+,", r):
		default:
			return false
		}
	}
	return true
}

// Split breaks a rendered command line into argv words, honoring single
// quotes, double quotes, and backslash escapes outside single quotes. It is
// used to turn a substituted submission string into process arguments.
func Split(line string) ([]string, error) {
	var (
		args    []string
		word    strings.Builder
		inWord  bool
		escaped bool
		quote   rune
	)

	for _, r := range line {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				word.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inWord = true
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				args = append(args, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	if escaped {
		return nil, fmt.Errorf("split command line: trailing backslash")
	}
	if quote != 0 {
		return nil, fmt.Errorf("split command line: unterminated %c-quote", quote)
	}
	if inWord {
		args = append(args, word.String())
	}
	return args, nil
}
