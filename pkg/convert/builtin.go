package convert

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Builtin converter names.
const (
	NameStr  = "str"
	NameInt  = "int"
	NameSlug = "slug"
	NameUUID = "uuid"
	NamePath = "path"
)

func builtins() map[string]Converter {
	return map[string]Converter{
		NameStr:  String(),
		NameInt:  Int(),
		NameSlug: Slug(),
		NameUUID: UUID(),
		NamePath: Path(),
	}
}

// String matches one or more characters excluding the path separator.
// It is the default converter when a placeholder names none.
func String() Converter {
	return Converter{
		Regexp: `[^/]+`,
		Parse: func(s string) (any, error) {
			return s, nil
		},
		Format: formatString,
	}
}

// Slug matches ASCII letters, digits, hyphens and underscores.
func Slug() Converter {
	return Converter{
		Regexp: `[-a-zA-Z0-9_]+`,
		Parse: func(s string) (any, error) {
			return s, nil
		},
		Format: formatString,
	}
}

// Path matches any non-empty string, including the path separator.
func Path() Converter {
	return Converter{
		Regexp: `.+`,
		Parse: func(s string) (any, error) {
			return s, nil
		},
		Format: formatString,
	}
}

// Int matches a non-negative decimal integer and converts it to int.
// Formatting canonicalizes the value, so "05" round-trips as "5".
func Int() Converter {
	return Converter{
		Regexp: `[0-9]+`,
		Parse: func(s string) (any, error) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("not an integer: %q", s)
			}
			return n, nil
		},
		Format: func(v any) (string, error) {
			switch n := v.(type) {
			case int:
				if n < 0 {
					return "", fmt.Errorf("negative value %d", n)
				}
				return strconv.Itoa(n), nil
			case int64:
				if n < 0 {
					return "", fmt.Errorf("negative value %d", n)
				}
				return strconv.FormatInt(n, 10), nil
			case uint:
				return strconv.FormatUint(uint64(n), 10), nil
			case uint64:
				return strconv.FormatUint(n, 10), nil
			case string:
				u, err := strconv.ParseUint(n, 10, 64)
				if err != nil {
					return "", fmt.Errorf("not an integer: %q", n)
				}
				return strconv.FormatUint(u, 10), nil
			default:
				return "", fmt.Errorf("cannot format %T as int", v)
			}
		},
	}
}

// UUID matches the canonical lowercase hex-and-dashes form and
// converts it to a uuid.UUID value.
func UUID() Converter {
	return Converter{
		Regexp: `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`,
		Parse: func(s string) (any, error) {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, err
			}
			return id, nil
		},
		Format: func(v any) (string, error) {
			switch id := v.(type) {
			case uuid.UUID:
				return id.String(), nil
			case string:
				parsed, err := uuid.Parse(id)
				if err != nil {
					return "", err
				}
				return parsed.String(), nil
			default:
				return "", fmt.Errorf("cannot format %T as uuid", v)
			}
		},
	}
}

// formatString renders strings and stringers; other values go through
// fmt. The result is still validated against the capture's fragment by
// the reverse resolver, so a value that would not have matched cannot
// be formatted into a path.
func formatString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	case int, int64, uint, uint64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("cannot format %T as string", v)
	}
}
