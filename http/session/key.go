package session

import (
	"encoding/hex"
	"fmt"

	"github.com/xy-planning-network/trailhead"
)

var (
	authKeySizes    = []int{32, 64}
	encryptKeySizes = []int{16, 24, 32}
)

// decodeKey decodes the hex-encoded key, which must decode to one of sizes bytes.
// An empty key decodes to nil.
func decodeKey(key string, sizes []int) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	b, err := hex.DecodeString(key)
	if err != nil {
		return nil, err
	}

	for _, size := range sizes {
		if len(b) == size {
			return b, nil
		}
	}

	return nil, fmt.Errorf("%w: key is %d bytes, want one of %v", trailhead.ErrNotValid, len(b), sizes)
}
