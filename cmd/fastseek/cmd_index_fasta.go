package main

import (
	"github.com/urfave/cli/v2"

	"github.com/Marco-Masera/FastSeek/internal/builder"
	"github.com/Marco-Masera/FastSeek/internal/section"
	"github.com/Marco-Masera/FastSeek/internal/source"
)

func newCmdIndexFASTA(verbose *bool) *cli.Command {
	var (
		bySequence      bool
		hashmapSize     uint64
		inMemoryMapSize uint64
	)

	return &cli.Command{
		Name:      "index-fasta",
		Usage:     "build an index over a multi-FASTA file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "by-sequence",
				Usage:       "key on the sequence line instead of the header line",
				Destination: &bySequence,
			},
			&cli.Uint64Flag{
				Name:        "hashmap-size",
				Usage:       "number of hashmap slots; 0 means use the record count",
				Value:       0,
				Destination: &hashmapSize,
			},
			&cli.Uint64Flag{
				Name:        "in-memory-map-size",
				Usage:       "maximum number of hashmap slots held in memory at once",
				Value:       defaultInMemoryMapSize,
				Destination: &inMemoryMapSize,
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().Get(0)
			if path == "" {
				return cli.Exit("missing <file> argument", 1)
			}

			indexType := section.IndexFASTAByID
			if bySequence {
				indexType = section.IndexFASTABySequence
			}

			log := newLogger(*verbose)
			defer func() { _ = log.Sync() }()

			src, err := source.Open(path, indexType, 0, 0)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer src.Close()

			b, err := builder.New(src, path, hashmapSize, inMemoryMapSize, builder.WithLogger(log))
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err := b.Build(); err != nil {
				return cli.Exit(err, 1)
			}
			log.Infow("index built", "file", path, "index_type", indexType.String())

			return nil
		},
	}
}
