package keyselect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the tiling transform a key pair selects.
type Kind int

const (
	Unknown Kind = iota
	Type0
	Type1
	Type2
)

// ErrUnsupportedScheme reports a key pair that matches no known transform.
var ErrUnsupportedScheme = errors.New("unsupported scramble scheme")

func (k Kind) String() string {
	switch k {
	case Type0:
		return "Type0"
	case Type1:
		return "Type1"
	case Type2:
		return "Type2"
	default:
		return "Unknown"
	}
}

// MarshalText renders the kind by name for JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Supported reports whether a transform exists for the kind.
func (k Kind) Supported() bool {
	switch k {
	case Type0, Type1, Type2:
		return true
	default:
		return false
	}
}

// Err returns ErrUnsupportedScheme for Unknown and nil otherwise.
func (k Kind) Err() error {
	if k.Supported() {
		return nil
	}
	return ErrUnsupportedScheme
}

// RequireSupported returns the selection's kind or an error naming the keys
// that could not be classified.
func RequireSupported(sel Selection) (Kind, error) {
	if err := sel.Kind.Err(); err != nil {
		return Unknown, fmt.Errorf("%w: key_s=%q key_h=%q", err, sel.KeyS, sel.KeyH)
	}
	return sel.Kind, nil
}

// Classify determines the scheme from the shape of a key pair. The first
// matching rule wins: both prefixed with "=" is Type2, both non-empty decimal
// digit strings is Type1, both empty is Type0.
func Classify(keyS, keyH string) Kind {
	return classify(keyS, keyH, isDigits)
}

// ClassifyLenient accepts any key that begins with a base-10 integer as Type1,
// which is how the browser viewer decides. Keys such as "8-8-AbCd" only
// classify as Type1 under this rule.
func ClassifyLenient(keyS, keyH string) Kind {
	return classify(keyS, keyH, hasLeadingInt)
}

// Classifier is the signature shared by Classify and ClassifyLenient.
type Classifier func(keyS, keyH string) Kind

func classify(keyS, keyH string, numeric func(string) bool) Kind {
	switch {
	case strings.HasPrefix(keyH, "=") && strings.HasPrefix(keyS, "="):
		return Type2
	case numeric(keyH) && numeric(keyS):
		return Type1
	case keyH == "" && keyS == "":
		return Type0
	default:
		return Unknown
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func hasLeadingInt(s string) bool {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return false
	}
	_, err := strconv.ParseUint(s[:end], 10, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
