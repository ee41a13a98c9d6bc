package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Marco-Masera/FastSeek/internal/builder"
	"github.com/Marco-Masera/FastSeek/internal/section"
	"github.com/Marco-Masera/FastSeek/internal/source"
)

// defaultInMemoryMapSize mirrors spec.md §6: a large default slab size so
// small/medium sources build in a single pass.
const defaultInMemoryMapSize = 2_000_000_000

func newCmdIndexTabular(verbose *bool) *cli.Command {
	var (
		column          int
		separator       string
		hashmapSize     uint64
		inMemoryMapSize uint64
	)

	return &cli.Command{
		Name:      "index-tabular",
		Usage:     "build an index over a tabular (CSV/TSV) file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "column",
				Aliases:     []string{"c"},
				Usage:       "zero-based column index to key on",
				Required:    true,
				Destination: &column,
			},
			&cli.StringFlag{
				Name:        "separator",
				Aliases:     []string{"s"},
				Usage:       "single-byte field separator",
				Value:       ",",
				Destination: &separator,
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
			if len(separator) != 1 {
				return cli.Exit(fmt.Sprintf("separator must be a single byte, got %q", separator), 1)
			}
			if column < 0 || column > 255 {
				return cli.Exit(fmt.Sprintf("column %d out of range [0,255]", column), 1)
			}

			log := newLogger(*verbose)
			defer func() { _ = log.Sync() }()

			src, err := source.Open(path, section.IndexTabular, separator[0], uint8(column))
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
			log.Infow("index built", "file", path)

			return nil
		},
	}
}
