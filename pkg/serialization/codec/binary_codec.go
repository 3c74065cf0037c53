package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	binaryEncMode cbor.EncMode
	binaryDecMode cbor.DecMode
)

func init() {
	var err error
	binaryEncMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	// Decoding into interface{} must yield string-keyed maps so the query
	// engine sees the same document shape under both codecs.
	binaryDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// BinaryCodec implements the Codec interface with a compact binary (CBOR)
// encoding. Struct fields honor `json` tags, keeping the two shipped codecs
// interchangeable from the caller's viewpoint.
type BinaryCodec struct{}

// NewBinaryCodec initializes an instance of the binary codec.
func NewBinaryCodec() *BinaryCodec {
	return &BinaryCodec{}
}

func (b *BinaryCodec) Marshal(v interface{}) ([]byte, error) {
	return binaryEncMode.Marshal(v)
}

func (b *BinaryCodec) Unmarshal(data []byte, v interface{}) error {
	return binaryDecMode.Unmarshal(data, v)
}
