package shell

import (
	"fmt"
	"strings"
)

// Reasons a redirection is rejected, each wraps ErrMalformedRedirection.
var (
	ErrMultipleRedirects = fmt.Errorf("%w: more than one '>'", ErrMalformedRedirection)
	ErrMissingCommand    = fmt.Errorf("%w: no command before '>'", ErrMalformedRedirection)
	ErrMissingTarget     = fmt.Errorf("%w: no file after '>'", ErrMalformedRedirection)
	ErrMultipleTargets   = fmt.Errorf("%w: more than one file after '>'", ErrMalformedRedirection)
)

// RedirectKind classifies a line's redirection.
type RedirectKind int

const (
	NoRedirection RedirectKind = iota
	Redirect
	Malformed
)

func (k RedirectKind) String() string {
	switch k {
	case NoRedirection:
		return "none"
	case Redirect:
		return "redirect"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("RedirectKind(%d)", int(k))
	}
}

// Redirection is the result of ParseRedirection.
type Redirection struct {
	Kind RedirectKind
	// Target is the trimmed output file for Redirect.
	Target string
	// Command is the text left to tokenize, empty for Malformed.
	Command string
	// Err is set for Malformed.
	Err error
}

// ParseRedirection finds the single '>' operator in line, if any.
//
// A line made only of whitespace is passed through untouched even though a
// line of whitespace followed by '>' is rejected.
func ParseRedirection(line string) Redirection {
	if isBlank(line) {
		return Redirection{Kind: NoRedirection, Command: line}
	}

	switch strings.Count(line, ">") {
	case 0:
		return Redirection{Kind: NoRedirection, Command: line}
	case 1:
		// handled below
	default:
		return rejected(ErrMultipleRedirects)
	}

	idx := strings.IndexByte(line, '>')
	before, after := line[:idx], line[idx+1:]

	if isBlank(before) {
		return rejected(ErrMissingCommand)
	}

	target := strings.Trim(after, Delimiters)
	switch {
	case target == "":
		return rejected(ErrMissingTarget)
	case strings.ContainsAny(target, Delimiters):
		return rejected(ErrMultipleTargets)
	}

	return Redirection{Kind: Redirect, Target: target, Command: before}
}

func rejected(reason error) Redirection {
	return Redirection{Kind: Malformed, Err: reason}
}
