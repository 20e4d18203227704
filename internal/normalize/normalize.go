package normalize

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Command canonicalizes a raw command line for pattern matching: every run of
// blanks becomes a single space and the result is lower-cased. Invisible
// characters are dropped and look-alike letters folded to Latin. The caller
// keeps the original for logging.
//
// A line break that ends a command survives as a single "\n" so that the
// next command still starts a line. Line continuations, breaks after a pipe
// or && and breaks inside quotes or heredocs become spaces.
func Command(raw string) string {
	lines := strings.Split(lineBreaks(stripInvisible(raw)), "\n")
	out := lines[:0]
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, strings.Join(fields, " "))
		}
	}
	return foldConfusables(strings.ToLower(strings.Join(out, "\n")))
}

// Lines splits a normalized command into its lines.
func Lines(cmd string) []string {
	if cmd == "" {
		return nil
	}
	return strings.Split(cmd, "\n")
}

// lineBreaks blanks every newline in s that does not end a command. When the
// bash parser rejects s, newlines are kept unless a continuation marks them.
func lineBreaks(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}

	b := []byte(s)
	inWord := make([]bool, len(b))
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	if file, err := parser.Parse(strings.NewReader(s), ""); err == nil {
		mark := func(start, end int) {
			for i := max(start, 0); i < end && i < len(b); i++ {
				inWord[i] = true
			}
		}
		syntax.Walk(file, func(node syntax.Node) bool {
			switch x := node.(type) {
			case *syntax.Redirect:
				// A heredoc body starts right after the newline that opens it.
				if x.Hdoc != nil {
					mark(int(x.Hdoc.Pos().Offset())-1, int(x.Hdoc.End().Offset()))
				}
			case *syntax.Word:
				mark(int(x.Pos().Offset()), int(x.End().Offset()))
				return false
			}
			return true
		})
	}

	for i, c := range b {
		if c != '\n' {
			continue
		}
		if j := continuation(b, i); j >= 0 {
			b[j], b[i] = ' ', ' '
			continue
		}
		if inWord[i] || afterOperator(b, i) {
			b[i] = ' '
		}
	}
	return string(b)
}

// continuation returns the index of the backslash (or PowerShell backtick)
// that escapes the newline at i, or -1.
func continuation(b []byte, i int) int {
	j := i - 1
	if j >= 0 && b[j] == '\r' {
		j--
	}
	if j >= 0 && (b[j] == '\\' || b[j] == '`') {
		return j
	}
	return -1
}

// afterOperator reports whether the newline at i follows a pipe or an &&/||
// list operator, where the command carries on to the next line.
func afterOperator(b []byte, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch b[j] {
		case ' ', '\t', '\r':
			continue
		case '|', '&':
			return true
		}
		return false
	}
	return false
}

// Segments splits a command line into its simple commands ("a && b | c" gives
// three segments) so that per-command predicates are not satisfied by pieces
// of two different commands. Each segment is sliced from cmd by source offset,
// which keeps quotes and Windows backslashes intact.
//
// Input the bash parser rejects (PowerShell and cmd.exe syntax frequently is)
// comes back one segment per line.
func Segments(cmd string) []string {
	if strings.TrimSpace(cmd) == "" {
		return nil
	}

	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(cmd), "")
	if err != nil {
		return Lines(cmd)
	}

	var segments []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		start, end := int(call.Pos().Offset()), int(call.End().Offset())
		if start < 0 || end > len(cmd) || start >= end {
			return true
		}
		segments = append(segments, cmd[start:end])
		return true
	})

	if len(segments) == 0 {
		return Lines(cmd)
	}
	return segments
}
