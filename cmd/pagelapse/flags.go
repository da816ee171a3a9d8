package main

import (
	"flag"
	"fmt"
	"os"
)

const (
	version = "0.1.0"
	usage   = `USAGE:
  pagelapse [options]

CONFIGURATIONS:
  -a,   --addr                   control API listen address                (Default: 127.0.0.1:8089)
  -o,   --outfolder              save captures to specified folder         (Default: ./screenshots)
  -db,  --state-db               path to the run-state database            (Default: ./pagelapse.db)
  -ad,  --avoid-duplicates       skip saving near-identical captures       (Default: false)
  -dt,  --duplicate-threshold    similarity score (0-100) treated as a
                                 duplicate when --avoid-duplicates is set  (Default: 96)
  -nh,  --no-headless            run the browser with a visible window     (Default: false)
        --autostart              begin the capture schedule immediately    (Default: false)
        --debug                  enable debug mode
        --version                display version
`
)

type cli struct {
	Addr               string
	OutFolder          string
	StateDB            string
	AvoidDuplicates    bool
	DuplicateThreshold int
	NoHeadless         bool
	Autostart          bool
	Debug              bool
}

func newCLI() *cli {
	return &cli{
		Addr:               "127.0.0.1:8089",
		OutFolder:          "./screenshots",
		StateDB:            "./pagelapse.db",
		DuplicateThreshold: 96,
	}
}

func (c *cli) parseFlags() {
	var help, ver bool

	defaults := newCLI()

	flag.StringVar(&c.Addr, "addr", defaults.Addr, "")
	flag.StringVar(&c.Addr, "a", defaults.Addr, "")
	flag.StringVar(&c.OutFolder, "outfolder", defaults.OutFolder, "")
	flag.StringVar(&c.OutFolder, "o", defaults.OutFolder, "")
	flag.StringVar(&c.StateDB, "state-db", defaults.StateDB, "")
	flag.StringVar(&c.StateDB, "db", defaults.StateDB, "")
	flag.BoolVar(&c.AvoidDuplicates, "avoid-duplicates", defaults.AvoidDuplicates, "")
	flag.BoolVar(&c.AvoidDuplicates, "ad", defaults.AvoidDuplicates, "")
	flag.IntVar(&c.DuplicateThreshold, "duplicate-threshold", defaults.DuplicateThreshold, "")
	flag.IntVar(&c.DuplicateThreshold, "dt", defaults.DuplicateThreshold, "")
	flag.BoolVar(&c.NoHeadless, "no-headless", defaults.NoHeadless, "")
	flag.BoolVar(&c.NoHeadless, "nh", defaults.NoHeadless, "")
	flag.BoolVar(&c.Autostart, "autostart", defaults.Autostart, "")
	flag.BoolVar(&c.Debug, "debug", false, "")
	flag.BoolVar(&help, "help", false, "")
	flag.BoolVar(&help, "h", false, "")
	flag.BoolVar(&ver, "version", false, "")

	flag.Usage = func() {
		fmt.Print(usage)
	}

	flag.Parse()

	if help {
		fmt.Print(usage)
		os.Exit(0)
	}

	if ver {
		fmt.Println("pagelapse ", version)
		os.Exit(0)
	}
}
