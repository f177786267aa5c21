package scaler

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	data := dense([]float64{-60, -3.5, 0}, []float64{-80, -12.25, -1}, []float64{-20, -40, -7})
	sample := dense([]float64{-33.3, -1.1, -0.5})

	for _, format := range []Format{FormatYAML, FormatMsgPack} {
		for _, kind := range []config.ScalerKind{
			config.ScalerStandard, config.ScalerMinMax, config.ScalerMaxAbs, config.ScalerRobust,
		} {
			s, err := New(kind)
			require.NoError(t, err)
			require.NoError(t, s.Fit(data))

			var buf bytes.Buffer
			require.NoError(t, Save(&buf, s, format), "%s/%s", format, kind)

			loaded, err := Load(&buf, format)
			require.NoError(t, err, "%s/%s", format, kind)
			assert.Equal(t, kind, loaded.Kind())
			assert.True(t, loaded.Fitted())

			want, err := s.Transform(sample)
			require.NoError(t, err)
			got, err := loaded.Transform(sample)
			require.NoError(t, err)
			assert.True(t, mat.Equal(want, got), "%s/%s", format, kind)
		}
	}
}

func TestSaveIdentity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, NewIdentity(), FormatYAML))

	loaded, err := Load(&buf, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, config.ScalerNone, loaded.Kind())
}

func TestSaveUnfitted(t *testing.T) {
	var buf bytes.Buffer
	err := Save(&buf, NewRobustScaler(), FormatMsgPack)
	assert.ErrorIs(t, err, ErrNotFitted)
	assert.Zero(t, buf.Len())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"yaml": FormatYAML, "YML": FormatYAML, "msgpack": FormatMsgPack, " mp ": FormatMsgPack,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("json")
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(strings.NewReader("kind: quantile\ncenter: [1]\nscale: [1]\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Load(strings.NewReader("kind: standard\ncenter: [1, 2]\nscale: [1]\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Load(strings.NewReader("kind: minmax\ncenter: [1]\nscale: [0]\n"), FormatYAML)
	assert.Error(t, err)

	for _, doc := range []string{
		"kind: standard\ncenter: [.nan]\nscale: [1]\n",
		"kind: standard\ncenter: [0]\nscale: [.inf]\n",
		"kind: robust\ncenter: [-.inf, 1]\nscale: [1, 1]\n",
		"kind: maxabs\ncenter: [0]\nscale: [.nan]\n",
	} {
		_, err = Load(strings.NewReader(doc), FormatYAML)
		var se *ScalerError
		require.ErrorAs(t, err, &se, doc)
		assert.Equal(t, ErrCodeDecoding, se.Code, doc)
	}

	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&State{
		Kind: "minmax", Center: []float64{math.NaN()}, Scale: []float64{1},
	}))
	_, err = Load(&buf, FormatMsgPack)
	assert.Error(t, err)

	_, err = Load(strings.NewReader("\x01\x02"), FormatMsgPack)
	assert.Error(t, err)

	_, err = Load(strings.NewReader(""), Format(7))
	assert.Error(t, err)
}
