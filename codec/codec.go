// Package codec bridges reflectable tree values to wire formats. Each Codec
// converts between bytes and the tree shape (map[string]any, []any, scalars);
// Marshal and Unmarshal compose a codec with Save and Load so callers move
// whole Reflectable values in one call.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	reflectable "github.com/reoring/reflectable"
)

// Codec converts between serialized bytes and tree values. Implementations
// must be safe for concurrent use.
type Codec interface {
	// Name is the codec's short name ("json", "yaml", "cbor").
	Name() string
	// Encode serializes a tree value.
	Encode(tree any) ([]byte, error)
	// Decode parses bytes into a tree value.
	Decode(data []byte) (any, error)
}

// Marshal saves r and encodes it with c.
func Marshal(c Codec, r reflectable.Reflectable) ([]byte, error) {
	tree, err := reflectable.Save(r)
	if err != nil {
		return nil, err
	}
	return c.Encode(tree)
}

// Unmarshal decodes data with c and loads the tree into r.
func Unmarshal(c Codec, data []byte, r reflectable.Reflectable) error {
	tree, err := c.Decode(data)
	if err != nil {
		return err
	}
	return reflectable.Load(tree, r)
}

var (
	registryMu sync.RWMutex
	byName     = map[string]Codec{}
	byExt      = map[string]Codec{}
)

// Register adds a codec under its name and the given file extensions
// (with leading dots). Later registrations win.
func Register(c Codec, exts ...string) {
	if c == nil {
		return
	}
	registryMu.Lock()
	byName[c.Name()] = c
	for _, e := range exts {
		byExt[strings.ToLower(e)] = c
	}
	registryMu.Unlock()
}

// ByName returns the codec registered under name, or an error naming the
// known codecs.
func ByName(name string) (Codec, error) {
	registryMu.RLock()
	c := byName[name]
	registryMu.RUnlock()
	if c == nil {
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	return c, nil
}

// ForPath returns the codec registered for the path's file extension.
func ForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	registryMu.RLock()
	c := byExt[ext]
	registryMu.RUnlock()
	if c == nil {
		return nil, fmt.Errorf("codec: no codec for extension %q", ext)
	}
	return c, nil
}

func init() {
	Register(JSON, ".json")
	Register(YAML, ".yaml", ".yml")
	Register(CBOR, ".cbor")
}
