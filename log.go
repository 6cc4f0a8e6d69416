package trailhead

import "net/url"

const LogMaskVal = "xxxxxx"

// Mask replaces every value of key in vals with a single [LogMaskVal].
// Query strings logged by request logging pass through Mask first.
func Mask(vals url.Values, key string) {
	if _, ok := vals[key]; !ok {
		return
	}

	vals.Set(key, LogMaskVal)
}
