package document

import (
	"fmt"

	"github.com/google/uuid"
)

// StringOf renders a loosely typed identifier or metadata value read from a
// store. NULL becomes the empty string.
func StringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case [16]byte:
		return uuid.UUID(t).String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
