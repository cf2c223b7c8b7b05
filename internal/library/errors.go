package library

import "fmt"

// FormatError reports a malformed property list: a wrong tag where a key was
// expected, an unrecognized value type, or a record without a track ID.
type FormatError struct {
	Tag    string // offending element, if any
	Key    string // property being decoded, if any
	Reason string
}

func (e *FormatError) Error() string {
	switch {
	case e.Key != "" && e.Tag != "":
		return fmt.Sprintf("plist format error: %s (key %q, tag <%s>)", e.Reason, e.Key, e.Tag)
	case e.Key != "":
		return fmt.Sprintf("plist format error: %s (key %q)", e.Reason, e.Key)
	case e.Tag != "":
		return fmt.Sprintf("plist format error: %s (tag <%s>)", e.Reason, e.Tag)
	default:
		return "plist format error: " + e.Reason
	}
}
