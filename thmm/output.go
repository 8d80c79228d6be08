package main

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/thmm/cmodel"
	"bitbucket.org/Davydov/thmm/mmodel"
)

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 8, 64)
}

// writeRates prints the non-zero packed rates, one per line:
// offset, state i, state j and the rate.
func writeRates(w io.Writer, m *cmodel.THMM) error {
	rates, err := m.Rates()
	if err != nil {
		return err
	}
	names := m.StateNames()
	bw := bufio.NewWriter(w)
	s := rates.StateCount()
	for k := 0; k < rates.Len(); k++ {
		r := rates.AtOffset(k)
		if r == 0 {
			continue
		}
		i, j := mmodel.UnpackIndex(k, s)
		bw.WriteString(strings.Join([]string{
			strconv.Itoa(k), names[i], names[j], formatFloat(r),
		}, "\t"))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// writeDense prints a matrix with state names as the header and the
// first column.
func writeDense(w io.Writer, names []string, a mat.Matrix) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("\t" + strings.Join(names, "\t") + "\n")
	r, c := a.Dims()
	row := make([]string, c+1)
	for i := 0; i < r; i++ {
		row[0] = names[i]
		for j := 0; j < c; j++ {
			row[j+1] = formatFloat(a.At(i, j))
		}
		bw.WriteString(strings.Join(row, "\t"))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// writeMatrix prints the generator.
func writeMatrix(w io.Writer, m *cmodel.THMM) error {
	q, scale, err := m.Q()
	if err != nil {
		return err
	}
	log.Noticef("Scale=%v", scale)
	return writeDense(w, m.StateNames(), q)
}

// writeProb prints the transition probabilities for time t.
func writeProb(w io.Writer, m *cmodel.THMM, t float64) error {
	p, err := m.Exp(nil, t)
	if err != nil {
		return err
	}
	return writeDense(w, m.StateNames(), p)
}
