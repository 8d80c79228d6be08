package main

import "bitbucket.org/Davydov/thmm/cmodel"

// RunSummary is storing thmm run summary information.
type RunSummary struct {
	// Version stores thmm version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Command is the performed command.
	Command string `json:"command"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
	// Model is the model summary.
	Model *cmodel.Summary `json:"model,omitempty"`
}
