package codec

import (
	"reflect"

	cbor "github.com/fxamacker/cbor/v2"
)

// CBOR is the fxamacker/cbor backed codec using canonical (RFC 8949 core
// deterministic) encoding, so equal trees produce equal bytes.
var CBOR Codec = newCBOR()

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBOR() Codec {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("codec: cbor encode mode: " + err.Error())
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: cbor decode mode: " + err.Error())
	}
	return cborCodec{enc: em, dec: dm}
}

func (c cborCodec) Name() string { return "cbor" }

func (c cborCodec) Encode(tree any) ([]byte, error) {
	return c.enc.Marshal(denumberTree(tree))
}

func (c cborCodec) Decode(data []byte) (any, error) {
	var v any
	if err := c.dec.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return normalizeTree(v)
}
