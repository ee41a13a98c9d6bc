// Command fastseek builds and queries on-disk hash-index files over
// tabular, FASTA, and FASTQ record files.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		// Structured logging itself failed to initialize; fall back to a
		// no-op logger rather than abort a build/search the user asked for.
		return zap.NewNop().Sugar()
	}

	return log.Sugar()
}

// newApp builds the fastseek CLI. Split out from main so tests can drive
// subcommands through app.Run without touching os.Args or os.Exit.
func newApp() *cli.App {
	var verbose bool

	app := &cli.App{
		Name:        "fastseek",
		Usage:       "build and query on-disk hash-index files over record files",
		Description: "fastseek creates an 8-byte-slotted external hash index over a tabular, FASTA, or FASTQ file, and answers single-key lookups against it without loading the file into memory.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "enable debug logging",
				Destination: &verbose,
			},
		},
		Commands: []*cli.Command{
			newCmdIndexTabular(&verbose),
			newCmdIndexFASTA(&verbose),
			newCmdIndexFASTQ(&verbose),
			newCmdSearch(&verbose),
		},
	}

	sort.Sort(cli.CommandsByName(app.Commands))

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
