package scaler

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
)

// Format selects the encoding used to persist a scaler.
type Format int

const (
	FormatYAML Format = iota
	FormatMsgPack
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMsgPack:
		return "msgpack"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts a format name or a file extension without the dot.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp", "mpk":
		return FormatMsgPack, nil
	default:
		return 0, fmt.Errorf("unknown scaler format %q", name)
	}
}

// State is a serializable snapshot of a fitted scaler.
type State struct {
	// Kind is the scaler name as accepted by config.ParseScalerKind.
	Kind string `yaml:"kind" msgpack:"kind"`
	// Center is subtracted from each column.
	Center []float64 `yaml:"center,omitempty" msgpack:"center,omitempty"`
	// Scale divides each centered column.
	Scale []float64 `yaml:"scale,omitempty" msgpack:"scale,omitempty"`
}

// FromState rebuilds a fitted scaler from a snapshot.
func FromState(st *State) (Scaler, error) {
	const op = "scaler.FromState"

	kind, err := config.ParseScalerKind(st.Kind)
	if err != nil {
		return nil, NewScalerError(op, ErrCodeUnknownKind, st.Kind, ErrUnknownKind)
	}

	s, err := New(kind)
	if err != nil {
		return nil, err
	}
	if kind == config.ScalerNone {
		return s, nil
	}

	if len(st.Center) == 0 || len(st.Center) != len(st.Scale) {
		return nil, NewScalerError(op, ErrCodeDimensionMismatch,
			fmt.Sprintf("center has %d values, scale has %d", len(st.Center), len(st.Scale)),
			ErrDimensionMismatch)
	}
	for j := range st.Center {
		c, sc := st.Center[j], st.Scale[j]
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, NewScalerError(op, ErrCodeDecoding, fmt.Sprintf("center[%d] is %v", j, c), nil)
		}
		if sc == 0 || math.IsNaN(sc) || math.IsInf(sc, 0) {
			return nil, NewScalerError(op, ErrCodeDecoding, fmt.Sprintf("scale[%d] is %v", j, sc), nil)
		}
	}

	switch typed := s.(type) {
	case *StandardScaler:
		typed.restore(st.Center, st.Scale)
	case *MinMaxScaler:
		typed.restore(st.Center, st.Scale)
	case *MaxAbsScaler:
		typed.restore(st.Center, st.Scale)
	case *RobustScaler:
		typed.restore(st.Center, st.Scale)
	}
	return s, nil
}

// Save writes the fitted statistics of s to w.
func Save(w io.Writer, s Scaler, format Format) error {
	const op = "scaler.Save"

	st, err := s.State()
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(st); err != nil {
			return NewScalerError(op, ErrCodeEncoding, "yaml", err)
		}
		if err := enc.Close(); err != nil {
			return NewScalerError(op, ErrCodeEncoding, "yaml", err)
		}
	case FormatMsgPack:
		if err := msgpack.NewEncoder(w).Encode(st); err != nil {
			return NewScalerError(op, ErrCodeEncoding, "msgpack", err)
		}
	default:
		return NewScalerError(op, ErrCodeEncoding, "unsupported format "+format.String(), nil)
	}
	return nil
}

// Load reads a scaler previously written by Save.
func Load(r io.Reader, format Format) (Scaler, error) {
	const op = "scaler.Load"

	var st State
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&st); err != nil {
			return nil, NewScalerError(op, ErrCodeDecoding, "yaml", err)
		}
	case FormatMsgPack:
		if err := msgpack.NewDecoder(r).Decode(&st); err != nil {
			return nil, NewScalerError(op, ErrCodeDecoding, "msgpack", err)
		}
	default:
		return nil, NewScalerError(op, ErrCodeDecoding, "unsupported format "+format.String(), nil)
	}

	return FromState(&st)
}
