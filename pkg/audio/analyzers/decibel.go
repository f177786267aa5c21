package analyzers

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DecibelConfig controls the conversion of a spectrogram to a log scale.
type DecibelConfig struct {
	// Reference is the value mapped to 0 dB. Zero selects the peak of the input.
	Reference float64
	// Amin floors the input before taking the logarithm.
	Amin float64
	// TopDB clips the output to this many dB below its maximum. Zero disables clipping.
	TopDB float64
}

// DefaultPowerDB references the peak power, the way mel spectrograms are scaled.
func DefaultPowerDB() DecibelConfig {
	return DecibelConfig{Amin: 1e-10, TopDB: 80}
}

// DefaultAmplitudeDB references the peak magnitude of a linear spectrogram.
func DefaultAmplitudeDB() DecibelConfig {
	return DecibelConfig{Amin: 1e-5, TopDB: 80}
}

// PowerToDB converts a power spectrogram to decibels: 10*log10(S/ref),
// floored at Amin and clipped at TopDB below the peak. The input is not modified.
func PowerToDB(power [][]float64, cfg DecibelConfig) [][]float64 {
	if len(power) == 0 {
		return [][]float64{}
	}

	amin := cfg.Amin
	if amin <= 0 {
		amin = 1e-10
	}

	ref := cfg.Reference
	if ref <= 0 {
		ref = peak(power)
	}
	refDB := 10 * math.Log10(math.Max(amin, ref))

	out := make([][]float64, len(power))
	maxDB := math.Inf(-1)
	for t, row := range power {
		out[t] = make([]float64, len(row))
		for f, v := range row {
			db := 10*math.Log10(math.Max(amin, v)) - refDB
			out[t][f] = db
			if db > maxDB {
				maxDB = db
			}
		}
	}

	if cfg.TopDB > 0 {
		floor := maxDB - cfg.TopDB
		for _, row := range out {
			for f := range row {
				if row[f] < floor {
					row[f] = floor
				}
			}
		}
	}

	return out
}

// AmplitudeToDB converts a magnitude spectrogram to decibels: 20*log10(S/ref).
// It is PowerToDB applied to the squared input with squared Amin and reference.
func AmplitudeToDB(magnitude [][]float64, cfg DecibelConfig) [][]float64 {
	power := make([][]float64, len(magnitude))
	for t, row := range magnitude {
		power[t] = make([]float64, len(row))
		for f, v := range row {
			power[t][f] = v * v
		}
	}

	amin := cfg.Amin
	if amin <= 0 {
		amin = 1e-5
	}

	return PowerToDB(power, DecibelConfig{
		Reference: cfg.Reference * cfg.Reference,
		Amin:      amin * amin,
		TopDB:     cfg.TopDB,
	})
}

func peak(m [][]float64) float64 {
	p := math.Inf(-1)
	for _, row := range m {
		if len(row) == 0 {
			continue
		}
		p = math.Max(p, floats.Max(row))
	}
	return p
}
