package cache

import "strconv"

// Keyer builds cache keys.
type Keyer interface {
	// FrameKey identifies one rendered frame.
	FrameKey(snapshotID string, counter int, focus, format string) string
}

// DefaultKeyer produces readable frame keys:
//
//	frame:<snapshot>:<counter>:<format>[:<focus hash>]
//
// The focus is hashed because entity names may contain any character.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) FrameKey(snapshotID string, counter int, focus, format string) string {
	key := "frame:" + snapshotID + ":" + strconv.Itoa(counter) + ":" + format
	if focus != "" {
		key = hashKey(key, focus)
	}
	return key
}

// ScopedKeyer prefixes every key of an inner Keyer. Servers rendering with
// different scene options share one backend by scoping on the options.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) FrameKey(snapshotID string, counter int, focus, format string) string {
	return k.prefix + k.inner.FrameKey(snapshotID, counter, focus, format)
}

// FrameKey builds a key with the DefaultKeyer.
func FrameKey(snapshotID string, counter int, focus, format string) string {
	return DefaultKeyer{}.FrameKey(snapshotID, counter, focus, format)
}
