package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Marco-Masera/FastSeek/internal/errs"
	"github.com/Marco-Masera/FastSeek/internal/lookup"
)

func newCmdSearch(verbose *bool) *cli.Command {
	var printDuplicates bool

	return &cli.Command{
		Name:      "search",
		Usage:     "look up a key in a file's index",
		ArgsUsage: "<file> <keyword>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "print-duplicates",
				Usage:       "print every record sharing the key, not just the first match",
				Destination: &printDuplicates,
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().Get(0)
			keyword := c.Args().Get(1)
			if path == "" || keyword == "" {
				return cli.Exit("usage: search <file> <keyword>", 1)
			}

			log := newLogger(*verbose)
			defer func() { _ = log.Sync() }()

			eng, err := lookup.Open(path+".index", path, lookup.WithLogger(log))
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer eng.Close()

			if printDuplicates {
				records, err := eng.SearchAll([]byte(keyword))
				if errors.Is(err, errs.ErrNotFound) {
					fmt.Println("not found")

					return nil
				}
				if err != nil {
					return cli.Exit(err, 1)
				}
				for _, r := range records {
					fmt.Print(string(r))
				}

				return nil
			}

			_, record, err := eng.Search([]byte(keyword))
			if errors.Is(err, errs.ErrNotFound) {
				fmt.Println("not found")

				return nil
			}
			if err != nil {
				return cli.Exit(err, 1)
			}
			fmt.Print(string(record))

			return nil
		},
	}
}
