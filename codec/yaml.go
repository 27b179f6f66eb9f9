package codec

import (
	"gopkg.in/yaml.v3"
)

// YAML is the yaml.v3 backed codec. Decoded documents are normalized into
// the tree shape (string-keyed objects); trees encode through yaml.Marshal
// with json.Number scalars lowered to native numerics first.
var YAML Codec = yamlCodec{}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Encode(tree any) ([]byte, error) {
	return yaml.Marshal(denumberTree(tree))
}

func (yamlCodec) Decode(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return normalizeTree(v)
}
