package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecRoundTrip(t *testing.T) {
	type payload struct {
		Version int               `json:"version"`
		Groups  map[string]string `json:"groups"`
	}
	in := payload{Version: 3, Groups: map[string]string{"7": "good", "12": "noise"}}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out payload
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestDefaultCodec(t *testing.T) {
	require.NotNil(t, Default)
	_, ok := ByName(Default.Name())
	assert.True(t, ok)
}
