package codec

import (
	"bytes"
	"errors"
	"io"

	j "github.com/goccy/go-json"
)

// JSON is the go-json backed codec. Numbers decode as json.Number so
// integer precision survives the trip into the tree.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Encode(tree any) ([]byte, error) {
	return j.Marshal(tree)
}

func (jsonCodec) Decode(data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errors.New("codec: trailing data after JSON value")
	}
	return v, nil
}
