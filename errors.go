package docmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/docmap/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// A property reference does not denote a direct field access.
	CodeIllegalExpression = "illegal_expression"
	// Two members would share one document field name.
	CodeDuplicateMember = "duplicate_member"
	// A required string argument is blank, or a referenced field does not exist.
	CodeInvalidArgument = "invalid_argument"
)

// Sentinels matched by errors.Is against Issue and Issues.
var (
	ErrIllegalExpression = errors.New("docmap: illegal expression")
	ErrDuplicateMember   = errors.New("docmap: duplicate member")
	ErrInvalidArgument   = errors.New("docmap: invalid argument")
)

var sentinelByCode = map[string]error{
	CodeIllegalExpression: ErrIllegalExpression,
	CodeDuplicateMember:   ErrDuplicateMember,
	CodeInvalidArgument:   ErrInvalidArgument,
}

// Issue represents a single mapping configuration error.
type Issue struct {
	Path    string // Type-qualified member path (for example: User.Name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
}

// Error renders "code at path: message".
func (it Issue) Error() string {
	if it.Message == "" {
		return fmt.Sprintf("%s at %s", it.Code, it.Path)
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

// Is reports whether target is the sentinel for this issue's code.
func (it Issue) Is(target error) bool {
	s, ok := sentinelByCode[it.Code]
	return ok && s == target
}

func (it Issue) Unwrap() error { return it.Cause }

// Issues is a collection of mapping errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. duplicate_member at User.Name
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any contained issue matches target.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if it.Is(target) {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
// A bare Issue is returned as a single-element Issues.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var it Issue
	if errors.As(err, &it) {
		return Issues{it}, true
	}
	return nil, false
}

func newIssue(code, path, hint string) Issue {
	return Issue{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint}
}

// IllegalExpression reports a property reference that is not a direct field access.
func IllegalExpression(path, hint string) error {
	return newIssue(CodeIllegalExpression, path, hint)
}

// DuplicateMember reports a document field name collision.
func DuplicateMember(path, hint string) error {
	return newIssue(CodeDuplicateMember, path, hint)
}

// InvalidArgument reports a blank or unknown argument.
func InvalidArgument(path, hint string) error {
	return newIssue(CodeInvalidArgument, path, hint)
}
