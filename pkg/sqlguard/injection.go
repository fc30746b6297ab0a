package sqlguard

import (
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"
)

// Finding describes one parameter value that tripped the injection check.
type Finding struct {
	Position    int    // zero-based position in the parameter list
	Fingerprint string // libinjection fingerprint of the detected pattern
	Value       any    // the offending value
}

func (f *Finding) Error() string {
	return fmt.Sprintf("parameter %d matches sql injection fingerprint %q", f.Position, f.Fingerprint)
}

// CheckValue screens a single bound value. Only strings are checked:
// numbers, booleans, byte slices and the like cannot carry injection
// payloads through a placeholder. Returns nil when the value is clean.
func CheckValue(position int, value any) *Finding {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	isSQLi, fingerprint := libinjection.IsSQLi(s)
	if !isSQLi {
		return nil
	}
	return &Finding{Position: position, Fingerprint: string(fingerprint), Value: value}
}

// CheckParams screens an ordered parameter list, returning the first
// finding or nil when every value is clean.
func CheckParams(params []any) *Finding {
	for i, v := range params {
		if f := CheckValue(i, v); f != nil {
			return f
		}
	}
	return nil
}
