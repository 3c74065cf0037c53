package codec

// Codec converts typed records to and from their stored byte form. Both
// shipped codecs are symmetric (Unmarshal(Marshal(v)) reproduces v) and
// behaviorally interchangeable, but their byte layouts are not: a database
// written with one codec must be read with the same codec.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}
