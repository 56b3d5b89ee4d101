package order

import (
	"crypto/rand"
	"math/big"
)

// idAlphabet deliberately omits 0, O and I to keep the codes easy to
// read back over the phone.
const (
	idPrefix   = "GG-"
	idAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	idLength   = 10
)

// NewID returns a fresh human-typeable order code such as "GG-7KQ2M9XWRT".
// Uniqueness is probabilistic; callers that hold the collection should
// still check for a collision before committing.
func NewID() string {
	max := big.NewInt(int64(len(idAlphabet)))
	buf := make([]byte, 0, len(idPrefix)+idLength)
	buf = append(buf, idPrefix...)
	for i := 0; i < idLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform source is broken.
			panic(err)
		}
		buf = append(buf, idAlphabet[n.Int64()])
	}
	return string(buf)
}
