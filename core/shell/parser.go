// Package shell holds the line grammar understood by mysh:
//
//	[whitespace] command [args...] [whitespace '>' whitespace filename whitespace]
//
// Lines are first split on the redirection operator (see ParseRedirection) and
// the remaining command text is broken into whitespace separated tokens (see
// Tokenize). There is no quoting, escaping or expansion.
package shell

import "errors"

const (
	// MaxTokens is the number of tokens kept per line. Any further tokens are
	// dropped.
	MaxTokens = 99

	// Delimiters separate tokens.
	Delimiters = " \t\n"
)

// ErrMalformedRedirection is wrapped by every redirection syntax error.
var ErrMalformedRedirection = errors.New("redirection misformatted")

// Command is a single parsed line.
type Command struct {
	// Args holds the argument vector, Args[0] is the program path.
	Args []string
	// Redirect is the file standard output is sent to, empty if none.
	Redirect string
}

// HasRedirect reports whether stdout should be sent to a file.
func (c *Command) HasRedirect() bool {
	return c.Redirect != ""
}

// Name is the program the command runs.
func (c *Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// Parse splits off the redirection from line and tokenizes the rest.
//
// A malformed redirection returns an error wrapping ErrMalformedRedirection. A
// blank line returns a Command with no Args.
func Parse(line string) (*Command, error) {
	redir := ParseRedirection(line)
	if redir.Kind == Malformed {
		return nil, redir.Err
	}

	return &Command{
		Args:     Tokenize(redir.Command),
		Redirect: redir.Target,
	}, nil
}

// Tokenize splits text on Delimiters. Runs of delimiters never produce empty
// tokens and at most MaxTokens tokens are returned.
func Tokenize(text string) []string {
	var tokens []string

	start := -1
	for i := 0; i < len(text) && len(tokens) < MaxTokens; i++ {
		switch {
		case isDelimiter(text[i]) && start >= 0:
			tokens = append(tokens, text[start:i])
			start = -1
		case !isDelimiter(text[i]) && start < 0:
			start = i
		}
	}

	if start >= 0 && len(tokens) < MaxTokens {
		tokens = append(tokens, text[start:])
	}

	return tokens
}

func isDelimiter(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDelimiter(s[i]) {
			return false
		}
	}
	return true
}
