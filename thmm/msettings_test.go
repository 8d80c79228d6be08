package main

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/op/go-logging"
	bolt "go.etcd.io/bbolt"

	"bitbucket.org/Davydov/thmm/checkpoint"
)

func init() {
	logging.SetLevel(logging.WARNING, "thmm")
	logging.SetLevel(logging.WARNING, "cmodel")
	logging.SetLevel(logging.WARNING, "checkpoint")
}

func hkySettings() *modelSettings {
	return &modelSettings{
		name:   "hky",
		nclass: 3,
		nFreq:  "1,2,3,4",
		kappa:  2,
		omega:  -1,
		alpha:  0.5,
	}
}

func TestCreateModel(tst *testing.T) {
	ms := hkySettings()
	ms.switching = "0.1,0.2,0.3"
	m, err := ms.createModel()
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	par := m.Parameters()
	if s := par.NamesString(); s != "kappa\talpha\tsw_0_1\tsw_0_2\tsw_1_2" {
		tst.Error("Unexpected parameters:", s)
	}
	if s := par.ValuesString(); s != "2.000000\t0.500000\t0.100000\t0.200000\t0.300000" {
		tst.Error("Unexpected values:", s)
	}

	ms.switching = "0.7"
	m, err = ms.createModel()
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	pars := m.Parameters()
	if v := pars.ByName("sw_1_2").Get(); v != 0.7 {
		tst.Error("Expected 0.7, got", v)
	}
}

func TestCreateModelErrors(tst *testing.T) {
	for _, f := range []func(*modelSettings){
		func(ms *modelSettings) { ms.switching = "0.1,0.2" },
		func(ms *modelSettings) { ms.switching = "x" },
		func(ms *modelSettings) { ms.omega = 1 },
		func(ms *modelSettings) { ms.nFreq = "1,2" },
		func(ms *modelSettings) { ms.name = "M0" },
		func(ms *modelSettings) { ms.name = "gy94"; ms.gcodeID = 100 },
	} {
		ms := hkySettings()
		f(ms)
		if _, err := ms.createModel(); err == nil {
			tst.Errorf("Expected an error for %+v", ms)
		}
	}
}

func TestStartFile(tst *testing.T) {
	fn := filepath.Join(tst.TempDir(), "start.json")
	if err := ioutil.WriteFile(fn, []byte(`{"kappa": 5, "sw_0_2": 0.9}`), 0644); err != nil {
		tst.Fatal(err)
	}
	ms := hkySettings()
	ms.startF = fn
	m, err := ms.createModel()
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	par := m.Parameters()
	// command line overrides the start file
	if par.ByName("kappa").Get() != 2 || par.ByName("sw_0_2").Get() != 0.9 {
		tst.Error("Unexpected values:", par.ValuesString())
	}
}

func TestCodonModel(tst *testing.T) {
	fn := filepath.Join(tst.TempDir(), "cfreq")
	var b strings.Builder
	for i := 0; i < 64; i++ {
		b.WriteString("1 ")
	}
	if err := ioutil.WriteFile(fn, []byte(b.String()), 0644); err != nil {
		tst.Fatal(err)
	}
	ms := &modelSettings{
		name:    "gy94",
		nclass:  1,
		gcodeID: 1,
		cFreqF:  fn,
		kappa:   -1,
		omega:   0.3,
		alpha:   -1,
	}
	m, err := ms.createModel()
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	pars := m.Parameters()
	if s := pars.NamesString(); s != "kappa\tomega" {
		tst.Error("Unexpected parameters:", s)
	}
	if n := m.Space().StateCount(); n != 61 {
		tst.Error("Expected 61 states, got", n)
	}
}

func TestOutput(tst *testing.T) {
	m, err := hkySettings().createModel()
	if err != nil {
		tst.Fatal("Error: ", err)
	}

	var buf bytes.Buffer
	if err := writeRates(&buf, m); err != nil {
		tst.Fatal("Error: ", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// 3 classes × 6 pairs of nucleotides plus 3 class pairs × 4 nucleotides
	if len(lines) != 3*6+3*4 {
		tst.Error("Unexpected number of rates:", len(lines))
	}
	if !strings.HasPrefix(lines[0], "0\t0:T\t0:C\t") {
		tst.Error("Unexpected first line:", lines[0])
	}

	buf.Reset()
	if err := writeProb(&buf, m, 0.1); err != nil {
		tst.Fatal("Error: ", err)
	}
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 13 || !strings.HasPrefix(lines[1], "0:T\t") {
		tst.Error("Unexpected matrix:", lines)
	}

	buf.Reset()
	if err := writeMatrix(&buf, m); err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(strings.Fields(strings.Split(buf.String(), "\n")[0])) != 12 {
		tst.Error("Unexpected header:", strings.Split(buf.String(), "\n")[0])
	}
}

func TestPlot(tst *testing.T) {
	m, err := hkySettings().createModel()
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	for _, t := range []float64{0, 0.5} {
		fn := filepath.Join(tst.TempDir(), "q.png")
		if err := plotMatrix(fn, m, t, 5); err != nil {
			tst.Fatal("Error: ", err)
		}
		if fi, err := os.Stat(fn); err != nil || fi.Size() == 0 {
			tst.Error("Image wasn't written:", err)
		}
	}
}

func TestCheckpoint(tst *testing.T) {
	db, err := checkpoint.Open(filepath.Join(tst.TempDir(), "thmm.db"))
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	defer db.Close()
	cp := checkpoint.NewIO(db, []byte("test"))

	m, err := hkySettings().createModel()
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	pars := m.Parameters()
	pars.ByName("sw_0_1").Set(0.42)
	if err := saveCheckpoint(cp, m); err != nil {
		tst.Fatal("Error: ", err)
	}

	m2, err := hkySettings().createModel()
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if err := loadCheckpoint(cp, m2); err != nil {
		tst.Fatal("Error: ", err)
	}
	pars2 := m2.Parameters()
	if v := pars2.ByName("sw_0_1").Get(); v != 0.42 {
		tst.Error("Expected 0.42, got", v)
	}
}

func TestGamma(tst *testing.T) {
	var buf bytes.Buffer
	fn := filepath.Join(tst.TempDir(), "gamma.png")
	if err := writeGamma(&buf, 0.5, 4, false, fn); err != nil {
		tst.Fatal("Error: ", err)
	}
	if f := strings.Fields(buf.String()); len(f) != 4 {
		tst.Error("Expected 4 rates, got", f)
	}
	if _, err := os.Stat(fn); err != nil {
		tst.Error("Plot wasn't written:", err)
	}
	if err := writeGamma(&buf, 0, 4, false, ""); err == nil {
		tst.Error("Expected an error for alpha=0")
	}
}

// setGlobals sets the command-line variables for run.
func setGlobals(db string) {
	*model = "hky"
	*nclass = 2
	*normalize = false
	*nFreq = ""
	*kappa, *omega, *alpha = -1, -1, -1
	*switching = ""
	*randomize = false
	*startF = ""
	*dbFileName = db
	*dbKey = "test"
}

func TestRunClosesDB(tst *testing.T) {
	fn := filepath.Join(tst.TempDir(), "run.db")
	setGlobals(fn)
	defer setGlobals("")

	var buf bytes.Buffer
	summary, err := run(ratesCmd.FullCommand(), &buf)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if summary.Model == nil || buf.Len() == 0 {
		tst.Error("Empty output")
	}

	// a state of another model under the same key
	db, err := bolt.Open(fn, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		tst.Fatal("Database wasn't closed: ", err)
	}
	err = checkpoint.NewIO(db, []byte("test")).Save(&checkpoint.Data{
		Model:      "gy94",
		Classes:    2,
		Parameters: map[string]float64{"kappa": 2},
	})
	db.Close()
	if err != nil {
		tst.Fatal("Error: ", err)
	}

	if _, err := run(ratesCmd.FullCommand(), &buf); !errors.Is(err, checkpoint.ErrModelMismatch) {
		tst.Fatal("Expected model mismatch, got", err)
	}
	db, err = bolt.Open(fn, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		tst.Fatal("Database wasn't closed after an error: ", err)
	}
	db.Close()
}
