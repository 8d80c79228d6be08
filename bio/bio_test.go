package bio

import "testing"

func TestStandardCode(tst *testing.T) {
	gc := GeneticCodes[1]
	if gc.NCodon != 61 {
		tst.Error("Expected 61 sense codons, got", gc.NCodon)
	}
	for _, stop := range []string{"TAA", "TAG", "TGA"} {
		if !gc.IsStopCodon(stop) {
			tst.Error("Expected stop codon:", stop)
		}
		if _, ok := gc.CodonNum[stop]; ok {
			tst.Error("Stop codon has a state number:", stop)
		}
	}
	if gc.NumCodon[0] != "TTT" || gc.NumCodon[gc.NCodon-1] != "GGG" {
		tst.Error("Unexpected codon order:", gc.NumCodon[0], gc.NumCodon[gc.NCodon-1])
	}
	for i, codon := range gc.NumCodon {
		if gc.CodonNum[codon] != i {
			tst.Errorf("Codon %s: expected %d, got %d", codon, i, gc.CodonNum[codon])
		}
	}
}

func TestMitochondrialCode(tst *testing.T) {
	gc := GeneticCodes[2]
	if gc.NCodon != 60 {
		tst.Error("Expected 60 sense codons, got", gc.NCodon)
	}
	if gc.IsStopCodon("TGA") {
		tst.Error("TGA codes for W in the mitochondrial code")
	}
	if !gc.IsStopCodon("AGA") {
		tst.Error("AGA is a stop codon in the mitochondrial code")
	}
}

func TestTranslate(tst *testing.T) {
	gc := GeneticCodes[1]
	aa, err := gc.Translate("aug")
	if err != nil || aa != 'M' {
		tst.Error("Expected M, got", string(aa), err)
	}
	if _, err := gc.Translate("AXG"); err == nil {
		tst.Error("Expected an error for an unknown codon")
	}
	if !gc.IsSynonymous("CTT", "TTA") {
		tst.Error("CTT and TTA both code for leucine")
	}
}

func TestIsTransition(tst *testing.T) {
	if !IsTransition('A', 'G') || !IsTransition('C', 'T') {
		tst.Error("Transitions not detected")
	}
	if IsTransition('A', 'C') || IsTransition('G', 'T') {
		tst.Error("Transversion detected as transition")
	}
}
