package retrieve

import "strings"

// Normalize guarantees the URL carries an explicit scheme, prepending
// https:// when none is present. No reachability or syntax validation
// happens here.
func Normalize(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}
