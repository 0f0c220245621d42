package uid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Token generates 64 char hex strings: 6 bytes of millisecond timestamp followed
// by 26 random bytes. Suitable for opaque bearer values such as refresh tokens.
type Token struct {
	now func() time.Time
}

func NewToken() *Token {
	return &Token{now: time.Now}
}

func (t *Token) Generate() string {
	var raw [32]byte

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(t.now().UnixMilli()))
	copy(raw[:6], ts[2:])

	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(raw[6:])

	return hex.EncodeToString(raw[:])
}
