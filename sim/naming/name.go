// Package naming validates the hierarchical names given to simulated
// components, such as "Cache", "L1", or "Core[0].L1D".
package naming

import (
	"strconv"
	"strings"

	"github.com/jmgilman/go/errors"
)

// A Name is a hierarchical name that includes a series of tokens separated
// by dots.
type Name struct {
	Tokens []Token
}

// Token is one dot-separated element of a name, with its optional indices.
type Token struct {
	ElemName string
	Index    []int
}

// String joins the tokens back into a name.
func (n Name) String() string {
	parts := make([]string, len(n.Tokens))

	for i, t := range n.Tokens {
		var sb strings.Builder

		sb.WriteString(t.ElemName)

		for _, index := range t.Index {
			sb.WriteString("[" + strconv.Itoa(index) + "]")
		}

		parts[i] = sb.String()
	}

	return strings.Join(parts, ".")
}

// Parse parses a name string.
func Parse(name string) (Name, error) {
	tokens := strings.Split(name, ".")
	n := Name{Tokens: make([]Token, len(tokens))}

	for i, token := range tokens {
		t, err := parseToken(token)
		if err != nil {
			return Name{}, errors.WithContext(err, "name", name)
		}

		n.Tokens[i] = t
	}

	return n, nil
}

func parseToken(token string) (Token, error) {
	err := bracketsMustMatch(token)
	if err != nil {
		return Token{}, err
	}

	ts := strings.Split(token, "[")
	indices := make([]int, len(ts)-1)

	for i := 1; i < len(ts); i++ {
		indexStr := strings.TrimSuffix(ts[i], "]")

		index, err := strconv.Atoi(indexStr)
		if err != nil || !strings.HasSuffix(ts[i], "]") {
			return Token{}, errors.Newf(errors.CodeInvalidInput,
				"name index %q must be an integer", ts[i])
		}

		indices[i-1] = index
	}

	return Token{ElemName: ts[0], Index: indices}, nil
}

func bracketsMustMatch(token string) error {
	open := 0

	for _, c := range token {
		switch c {
		case '[':
			open++
		case ']':
			open--
		}

		if open < 0 || open > 1 {
			return errors.New(errors.CodeInvalidInput, "name brackets must match")
		}
	}

	if open != 0 {
		return errors.New(errors.CodeInvalidInput, "name brackets must match")
	}

	return nil
}

// Validate checks that a name follows the naming convention:
//  1. Elements are separated by single dots, e.g., "Core[0].L1".
//  2. Elements are not empty.
//  3. Elements start with a capital letter and contain no '_', '-', or quote.
//  4. Elements in a series use square-bracket indices.
func Validate(name string) error {
	n, err := Parse(name)
	if err != nil {
		return err
	}

	for _, token := range n.Tokens {
		err := validateToken(token)
		if err != nil {
			return errors.WithContext(err, "name", name)
		}
	}

	return nil
}

func validateToken(token Token) error {
	if token.ElemName == "" {
		return errors.New(errors.CodeInvalidInput,
			"name element must not be empty")
	}

	for _, c := range []string{"_", "\"", "'", "-"} {
		if strings.Contains(token.ElemName, c) {
			return errors.Newf(errors.CodeInvalidInput,
				"name element must not contain %s", c)
		}
	}

	if token.ElemName[0] < 'A' || token.ElemName[0] > 'Z' {
		return errors.New(errors.CodeInvalidInput,
			"name element must start with a capital letter")
	}

	return nil
}

// MustBeValid panics if the name does not follow the naming convention.
func MustBeValid(name string) {
	err := Validate(name)
	if err != nil {
		panic(err)
	}
}
