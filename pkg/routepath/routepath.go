// Package routepath normalizes request paths before dispatch.
//
// The dispatcher itself consumes a path that the transport layer has
// already stripped of host and query string; this package is that
// transport-side preparation. It splits off the query, collapses
// duplicate slashes, resolves "." and ".." segments, and rejects
// inputs that smell like path smuggling. Trailing slashes are
// preserved: route templates treat them as significant.
package routepath

import (
	"errors"
	"strings"
)

// Normalization errors. All of them should surface as a 4xx-class
// response; none of them mean "not found".
var (
	ErrBackslash     = errors.New("path contains backslash")
	ErrNullByte      = errors.New("path contains null byte")
	ErrPercentEscape = errors.New("invalid percent escape sequence")
	ErrEscapesRoot   = errors.New("path escapes root via ..")
)

// Result is a normalized request path.
type Result struct {
	// Path is the normalized path, always starting with "/".
	Path string

	// Query is the query string without the leading "?".
	Query string

	// Changed reports whether normalization modified the path; a
	// server typically answers a changed path with a redirect to the
	// normalized one.
	Changed bool
}

// Normalize prepares a raw request path for dispatch.
func Normalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}

	path, query, _ := strings.Cut(input, "?")

	if strings.Contains(path, "\\") {
		return Result{}, ErrBackslash
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Result{}, ErrNullByte
	}
	if strings.Contains(path, "%") {
		if err := checkPercentEscapes(path); err != nil {
			return Result{}, err
		}
	}

	original := path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	trailingSlash := strings.HasSuffix(path, "/") && path != "/"

	var kept []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(kept) == 0 {
				return Result{}, ErrEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	path = "/" + strings.Join(kept, "/")
	if trailingSlash && path != "/" {
		path += "/"
	}

	return Result{
		Path:    path,
		Query:   query,
		Changed: path != original,
	}, nil
}

// SplitQuery splits a raw path into path and query components. The
// query is returned without the leading "?".
func SplitQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// checkPercentEscapes verifies every "%" starts a two-hex-digit
// escape.
func checkPercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHex(path[i+1]) || !isHex(path[i+2]) {
			return ErrPercentEscape
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
