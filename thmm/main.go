/*

Thmm builds rate matrices of temporal hidden Markov models, i.e.
codon (GY94) or nucleotide (HKY) models with hidden rate classes and
switching between them.

Print the packed relative rates of a two class nucleotide model:

	thmm rates --model hky --classes 2 --switch 0.3

Print the transition probabilities for a codon model:

	thmm prob --classes 3 --time 0.5

Draw a heat map of the generator:

	thmm plot q.png --model hky --classes 4

Print the class rates:

	thmm gamma --classes 4 --alpha 0.5

To see all the options run:

	thmm -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"math/rand"
	"os"
	"time"

	"github.com/op/go-logging"
	"gopkg.in/alecthomas/kingpin.v2"

	"bitbucket.org/Davydov/thmm/checkpoint"
	"bitbucket.org/Davydov/thmm/cmodel"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = "branch: " + gitbranch + ", revision: " + githash + ", build time: " + buildstamp

// Logger settings.
var log = logging.MustGetLogger("thmm")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line options
var (
	// application
	app = kingpin.New("thmm", "temporal hidden Markov model rate matrices").Version(version)

	// commands
	ratesCmd  = app.Command("rates", "print the packed relative rates")
	matrixCmd = app.Command("matrix", "print the generator matrix")
	probCmd   = app.Command("prob", "print the transition probabilities")
	probTime  = probCmd.Flag("time", "time (branch length)").Default("1").Float64()
	plotCmd   = app.Command("plot", "draw a heat map of the generator or the transition probabilities")
	plotF     = plotCmd.Arg("output", "output image (png, svg, pdf or eps)").Required().String()
	plotTime  = plotCmd.Flag("time", "plot transition probabilities for time t instead of the generator").Default("0").Float64()
	plotSize  = plotCmd.Flag("size", "image size in cm").Default("15").Float64()
	gammaCmd  = app.Command("gamma", "print (and plot) the discrete gamma class rates")
	gammaMed  = gammaCmd.Flag("median", "use median instead of mean").Bool()
	gammaPlot = gammaCmd.Flag("plot", "plot the rates to a file").String()

	// model
	model     = app.Flag("model", "model type (gy94 or hky)").Default("gy94").Enum("gy94", "hky")
	nclass    = app.Flag("classes", "number of hidden classes").Default("2").Int()
	normalize = app.Flag("normalize", "scale the generator to one expected substitution per unit of time").Bool()

	// frequencies
	gcodeID       = app.Flag("gcode", "NCBI genetic code id, standard by default").Default("1").Int()
	cFreqFileName = app.Flag("cfreqfn", "codon frequencies file (F0 by default)").ExistingFile()
	nFreq         = app.Flag("nfreq", "nucleotide frequencies in the TCAG order, comma separated (equal by default)").String()

	// parameters, negative values keep the defaults
	kappa     = app.Flag("kappa", "transition/transversion ratio").Default("-1").Float64()
	omega     = app.Flag("omega", "nonsynonymous/synonymous ratio (gy94)").Default("-1").Float64()
	alpha     = app.Flag("alpha", "shape of the gamma distribution of the class rates").Default("-1").Float64()
	switching = app.Flag("switch", "switching rates in the class pair order (0-1, 0-2, ..., 1-2, ...), "+
		"comma separated; a single value is used for all the pairs").String()
	randomize = app.Flag("randomize", "use uniformly distributed random parameter values").Bool()
	startF    = app.Flag("start", "read parameter values from a JSON file").ExistingFile()

	// checkpoint
	dbFileName = app.Flag("db", "bolt database to load and save the model state").String()
	dbKey      = app.Flag("key", "checkpoint key in the database").Default("thmm").String()

	// technical
	seed = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()

	// input/output
	outLogF  = app.Flag("log", "write log to a file").String()
	outF     = app.Flag("out", "write output to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file").String()
)

// run creates the model and performs the command. Deferred cleanup
// finishes before the error is returned.
func run(command string, out io.Writer) (*RunSummary, error) {
	startTime := time.Now()
	summary := &RunSummary{Command: command}

	ms := newModelSettings()
	m, err := ms.createModel()
	if err != nil {
		return nil, err
	}

	var cp *checkpoint.IO
	if *dbFileName != "" {
		db, err := checkpoint.Open(*dbFileName)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		cp = checkpoint.NewIO(db, []byte(*dbKey))
		if err := loadCheckpoint(cp, m); err != nil {
			return nil, err
		}
	}
	pars := m.Parameters()
	log.Noticef("%s: %s", pars.NamesString(), pars.ValuesString())

	switch command {
	case ratesCmd.FullCommand():
		err = writeRates(out, m)
	case matrixCmd.FullCommand():
		err = writeMatrix(out, m)
	case probCmd.FullCommand():
		err = writeProb(out, m, *probTime)
	case plotCmd.FullCommand():
		err = plotMatrix(*plotF, m, *plotTime, *plotSize)
	}
	if err != nil {
		return nil, err
	}

	if cp != nil {
		if err := saveCheckpoint(cp, m); err != nil {
			return nil, err
		}
	}

	summary.Model, err = m.Summary()
	if err != nil {
		return nil, err
	}
	summary.Time = time.Since(startTime).Seconds()
	log.Infof("Running time: %v", time.Since(startTime))
	return summary, nil
}

// loadCheckpoint sets the model parameters from the checkpoint if it
// exists.
func loadCheckpoint(cp *checkpoint.IO, m *cmodel.THMM) error {
	data, err := cp.Load(m.Name(), m.Space().Classes())
	if err != nil || data == nil {
		return err
	}
	pars := m.Parameters()
	return pars.SetMap(data.Parameters)
}

// saveCheckpoint stores the parameters and the packed rates.
func saveCheckpoint(cp *checkpoint.IO, m *cmodel.THMM) error {
	rates, err := m.Rates()
	if err != nil {
		return err
	}
	_, scale, err := m.Q()
	if err != nil {
		return err
	}
	par := m.Parameters()
	return cp.Save(&checkpoint.Data{
		Model:      m.Name(),
		Classes:    m.Space().Classes(),
		Parameters: par.Map(),
		Rates:      rates.Values(nil),
		Scale:      scale,
	})
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	for _, module := range []string{"thmm", "cmodel", "mmodel", "ctmc", "checkpoint"} {
		logging.SetLevel(level, module)
	}

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)
	rand.Seed(*seed)

	out := io.Writer(os.Stdout)
	if *outF != "" {
		f, err := os.Create(*outF)
		if err != nil {
			log.Fatal("Error creating output file:", err)
		}
		defer f.Close()
		out = f
	}

	if command == gammaCmd.FullCommand() {
		a := *alpha
		if a < 0 {
			a = 1
		}
		if err := writeGamma(out, a, *nclass, *gammaMed, *gammaPlot); err != nil {
			log.Fatal(err)
		}
		return
	}

	summary, err := run(command, out)
	if err != nil {
		log.Fatal(err)
	}
	summary.Version = version
	summary.CommandLine = os.Args
	summary.Seed = *seed

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			if err := ioutil.WriteFile(*jsonF, j, 0666); err != nil {
				log.Error("Error writing json output file:", err)
			}
		}
	}
}
