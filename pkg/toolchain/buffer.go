package toolchain

import (
	"bytes"
	"sync"
	"unicode/utf8"
)

// cappedBuffer keeps the first max bytes written and silently drops the rest.
// If the cap splits a UTF-8 character, the partial character is dropped too.
type cappedBuffer struct {
	lock      sync.Mutex
	buf       bytes.Buffer
	max       int
	truncated bool
}

func newCappedBuffer(max int) *cappedBuffer {
	if max <= 0 {
		max = defMaxOutput
	}
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	room := b.max - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.truncated {
		return string(trimPartialRune(b.buf.Bytes())) + "\n[output truncated]"
	}
	return b.buf.String()
}

// trimPartialRune drops an incomplete UTF-8 sequence from the end of p.
func trimPartialRune(p []byte) []byte {
	for i := len(p) - 1; i >= 0 && i >= len(p)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if !utf8.FullRune(p[i:]) {
			return p[:i]
		}
		return p
	}
	return p
}
