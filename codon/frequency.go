package codon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"bitbucket.org/Davydov/thmm/bio"
)

// Frequency is array (slice) of codon frequencies.
type Frequency struct {
	Freq  []float64
	GCode *bio.GeneticCode
}

// ReadFrequency reads codon frequencies from a reader. It should be
// just a list of 64 numbers in a text format in the TCAG order, values
// for the stop codons are skipped. Frequencies are normalized to sum
// to 1.
func ReadFrequency(rd io.Reader, gcode *bio.GeneticCode) (Frequency, error) {
	cf := Frequency{
		Freq:  make([]float64, gcode.NCodon),
		GCode: gcode,
	}

	scanner := bufio.NewScanner(rd)
	scanner.Split(bufio.ScanWords)

	codons := bio.Codons()
	i := 0
	sum := 0.0
	for n := 0; scanner.Scan(); n++ {
		if n >= len(codons) {
			return cf, errors.New("too many frequencies in file")
		}
		f, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return cf, err
		}
		if gcode.IsStopCodon(codons[n]) {
			continue
		}
		if f < 0 {
			return cf, fmt.Errorf("negative frequency for codon %s", codons[n])
		}
		cf.Freq[i] = f
		sum += f
		i++
	}
	if err := scanner.Err(); err != nil {
		return cf, err
	}
	if i < gcode.NCodon {
		return cf, errors.New("not enough frequencies in file")
	}
	if sum <= 0 {
		return cf, errors.New("all frequencies are zero")
	}
	for i := range cf.Freq {
		cf.Freq[i] /= sum
	}
	return cf, nil
}

// F0 returns array (slice) of equal codon frequencies.
func F0(gcode *bio.GeneticCode) Frequency {
	cf := Frequency{
		Freq:  make([]float64, gcode.NCodon),
		GCode: gcode,
	}
	for i := 0; i < gcode.NCodon; i++ {
		cf.Freq[i] = 1 / float64(gcode.NCodon)
	}
	return cf
}

// String returns frequencies with codon names.
func (cf Frequency) String() (s string) {
	s = "<Frequency:"
	for i, f := range cf.Freq {
		s += fmt.Sprintf(" %v: %v,", cf.GCode.NumCodon[i], f)
	}
	return s[:len(s)-1] + ">"
}
