package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type room struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Style       string   `json:"style"`
	Capacity    uint32   `json:"capacity"`
	PlayerCount uint32   `json:"player_count"`
	IsPrivate   bool     `json:"is_private"`
	Tags        []string `json:"tags"`
}

func codecs() map[string]Codec {
	return map[string]Codec{
		"binary": NewBinaryCodec(),
		"json":   &JSONCodec{},
	}
}

func TestRoundTrip(t *testing.T) {
	in := room{
		ID:          7,
		Name:        "Team Alpha",
		Style:       "Team",
		Capacity:    10,
		PlayerCount: 3,
		IsPrivate:   true,
		Tags:        []string{"ranked", "eu"},
	}

	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out room
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestGenericDocumentModel(t *testing.T) {
	// Decoding into interface{} must yield the same document shape under
	// both codecs: string-keyed maps with comparable scalars.
	in := room{ID: 1, Name: "dm", Style: "Dm"}

	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var doc interface{}
			require.NoError(t, c.Unmarshal(data, &doc))

			obj, ok := doc.(map[string]interface{})
			require.True(t, ok, "expected string-keyed map, got %T", doc)
			assert.Equal(t, "dm", obj["name"])
			assert.Equal(t, "Dm", obj["style"])
			assert.Contains(t, obj, "player_count")
		})
	}
}

func TestEncodedFormsStayStable(t *testing.T) {
	// encode(decode(b)) == b for bytes produced by a prior encode.
	in := room{ID: 42, Name: "stable", Tags: []string{"a"}}

	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			first, err := c.Marshal(in)
			require.NoError(t, err)

			var mid room
			require.NoError(t, c.Unmarshal(first, &mid))

			second, err := c.Marshal(mid)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			var out room
			assert.Error(t, c.Unmarshal([]byte("\xff\xfe not a payload"), &out))
		})
	}
}

func TestLayoutsAreNotInterchangeable(t *testing.T) {
	in := room{ID: 3, Name: "x"}

	binData, err := NewBinaryCodec().Marshal(in)
	require.NoError(t, err)
	jsonData, err := (&JSONCodec{}).Marshal(in)
	require.NoError(t, err)
	assert.NotEqual(t, binData, jsonData)
}
