package main

import (
	"fmt"
	"os"

	"bitbucket.org/Davydov/thmm/bio"
	"bitbucket.org/Davydov/thmm/cmodel"
	"bitbucket.org/Davydov/thmm/codon"
	"bitbucket.org/Davydov/thmm/nuc"
	"bitbucket.org/Davydov/thmm/param"
)

// modelSettings stores settings for creating a new model.
type modelSettings struct {
	name      string
	nclass    int
	normalize bool

	gcodeID int
	cFreqF  string
	nFreq   string

	// negative values keep the defaults
	kappa, omega, alpha float64
	switching           string

	startF    string
	randomize bool
}

// newModelSettings initializes modelSettings from global
// variables (command-line arguments).
func newModelSettings() *modelSettings {
	return &modelSettings{
		name:      *model,
		nclass:    *nclass,
		normalize: *normalize,

		gcodeID: *gcodeID,
		cFreqF:  *cFreqFileName,
		nFreq:   *nFreq,

		kappa:     *kappa,
		omega:     *omega,
		alpha:     *alpha,
		switching: *switching,

		startF:    *startF,
		randomize: *randomize,
	}
}

// createModel creates a new model and sets the parameter values:
// random (if requested), then from the start file, then from the
// command line.
func (ms *modelSettings) createModel() (*cmodel.THMM, error) {
	var (
		m   *cmodel.THMM
		err error
	)
	switch ms.name {
	case "gy94":
		log.Info("Using GY94 model")
		var cf codon.Frequency
		cf, err = ms.codonFrequency()
		if err != nil {
			return nil, err
		}
		m, err = cmodel.NewCodonTHMM(cf, ms.nclass, ms.normalize)
	case "hky":
		log.Info("Using HKY model")
		freq := []float64{0.25, 0.25, 0.25, 0.25}
		if ms.nFreq != "" {
			freq, err = nuc.ParseFrequency(ms.nFreq)
			if err != nil {
				return nil, err
			}
		}
		m, err = cmodel.NewNucleotideTHMM(freq, ms.nclass, ms.normalize)
	default:
		return nil, fmt.Errorf("unknown model: %s", ms.name)
	}
	if err != nil {
		return nil, err
	}

	par := m.Parameters()
	if ms.randomize {
		par.Randomize()
	}
	if ms.startF != "" {
		if err := par.ReadFromJSON(ms.startF); err != nil {
			return nil, err
		}
		log.Infof("Read parameters from %s", ms.startF)
	}
	if err := ms.setParameters(m); err != nil {
		return nil, err
	}
	return m, nil
}

// codonFrequency reads codon frequencies or returns F0.
func (ms *modelSettings) codonFrequency() (codon.Frequency, error) {
	gcode, ok := bio.GeneticCodes[ms.gcodeID]
	if !ok {
		return codon.Frequency{}, fmt.Errorf("couldn't load genetic code with id=%d", ms.gcodeID)
	}
	log.Infof("Genetic code: %d, \"%s\"", gcode.ID, gcode.Name)
	if ms.cFreqF == "" {
		log.Info("Using F0 codon frequencies")
		return codon.F0(gcode), nil
	}
	f, err := os.Open(ms.cFreqF)
	if err != nil {
		return codon.Frequency{}, err
	}
	defer f.Close()
	cf, err := codon.ReadFrequency(f, gcode)
	if err != nil {
		return codon.Frequency{}, fmt.Errorf("reading %s: %w", ms.cFreqF, err)
	}
	log.Debugf("Codon frequencies: %v", cf)
	return cf, nil
}

// setParameters sets the parameters given on the command line.
func (ms *modelSettings) setParameters(m *cmodel.THMM) error {
	par := m.Parameters()
	values := map[string]float64{}
	if ms.kappa >= 0 {
		values["kappa"] = ms.kappa
	}
	if ms.omega >= 0 {
		if par.ByName("omega") == nil {
			return fmt.Errorf("%s model has no omega", m.Name())
		}
		values["omega"] = ms.omega
	}
	if ms.alpha >= 0 && par.ByName("alpha") != nil {
		values["alpha"] = ms.alpha
	}

	sw, err := param.ParseFloatList(ms.switching)
	if err != nil {
		return fmt.Errorf("switching rates: %w", err)
	}
	if len(sw) > 0 {
		nclass := m.Space().Classes()
		n := m.Space().SwitchingCount()
		if len(sw) != 1 && len(sw) != n {
			return fmt.Errorf("%d switching rates, expected 1 or %d", len(sw), n)
		}
		k := 0
		for g := 0; g < nclass; g++ {
			for h := g + 1; h < nclass; h++ {
				if len(sw) == 1 {
					values[cmodel.SwitchingName(g, h)] = sw[0]
				} else {
					values[cmodel.SwitchingName(g, h)] = sw[k]
				}
				k++
			}
		}
	}
	return par.SetMap(values)
}
