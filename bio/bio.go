// Package bio provides functions related to the genetic code.
package bio

import (
	"fmt"
	"strings"
)

// Alphabet is the nucleotide alphabet in the NCBI order.
const Alphabet = "TCAG"

// GeneticCode stores a genetic code together with the indexing of its
// sense codons.
type GeneticCode struct {
	// ID is NCBI genetic code id.
	ID int
	// Name is the genetic code name.
	Name string
	// Map maps a codon (capital letters) to an amino acid, stop
	// codons are mapped to '*'.
	Map map[string]byte
	// NCodon is the number of sense codons.
	NCodon int
	// CodonNum maps a sense codon to its state number.
	CodonNum map[string]int
	// NumCodon maps a state number to its codon.
	NumCodon []string
}

// GeneticCodes stores the known genetic codes by their NCBI id.
var GeneticCodes = map[int]*GeneticCode{
	1: newGeneticCode(1, "Standard",
		"FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"),
	2: newGeneticCode(2, "Vertebrate Mitochondrial",
		"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSS**VVVVAAAADDEEGGGG"),
}

// Codons returns all 64 codons in the NCBI order.
func Codons() []string {
	codons := make([]string, 0, 64)
	for _, c1 := range Alphabet {
		for _, c2 := range Alphabet {
			for _, c3 := range Alphabet {
				codons = append(codons, string([]rune{c1, c2, c3}))
			}
		}
	}
	return codons
}

// newGeneticCode creates a genetic code from the NCBI amino acid
// string.
func newGeneticCode(id int, name, ncbieaa string) *GeneticCode {
	codons := Codons()
	if len(ncbieaa) != len(codons) {
		panic(fmt.Sprintf("wrong amino acid string length for genetic code %d", id))
	}
	gc := &GeneticCode{
		ID:       id,
		Name:     name,
		Map:      make(map[string]byte, len(codons)),
		CodonNum: make(map[string]int, len(codons)),
	}
	for i, codon := range codons {
		aa := ncbieaa[i]
		gc.Map[codon] = aa
		if aa == '*' {
			continue
		}
		gc.CodonNum[codon] = len(gc.NumCodon)
		gc.NumCodon = append(gc.NumCodon, codon)
	}
	gc.NCodon = len(gc.NumCodon)
	return gc
}

// IsStopCodon tests if the string is a stop-codon (DNA alphabet,
// capital letters).
func (gc *GeneticCode) IsStopCodon(codon string) bool {
	return gc.Map[codon] == '*'
}

// IsSynonymous returns true if two codons code for the same amino
// acid.
func (gc *GeneticCode) IsSynonymous(c1, c2 string) bool {
	return gc.Map[c1] == gc.Map[c2]
}

// Translate returns an amino acid for the codon. U is accepted
// instead of T.
func (gc *GeneticCode) Translate(codon string) (byte, error) {
	codon = strings.Replace(strings.ToUpper(codon), "U", "T", -1)
	aa, ok := gc.Map[codon]
	if !ok {
		return 0, fmt.Errorf("unknown codon: %s", codon)
	}
	return aa, nil
}

// IsTransition returns true if the nucleotide change is a transition
// (purine to purine or pyrimidine to pyrimidine).
func IsTransition(s1, s2 byte) bool {
	return ((s1 == 'A' || s1 == 'G') && (s2 == 'A' || s2 == 'G')) ||
		((s1 == 'T' || s1 == 'C') && (s2 == 'T' || s2 == 'C'))
}
