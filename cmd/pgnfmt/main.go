// pgnfmt reads a PGN game from a file or stdin and re-renders it: reflowed
// movetext at a chosen width, or the variation tree in Graphviz dot format.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pgntree"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		width  int
		dot    bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:          "pgnfmt [file]",
		Short:        "Reformat a PGN game or render its variation tree",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			read := pgntree.ReadGame
			if strict {
				read = pgntree.ReadGameStrict
			}
			game, err := read(in)
			if err != nil {
				return err
			}

			if dot {
				out, err := game.DOT()
				if err != nil {
					return err
				}
				fmt.Print(out)
				return nil
			}

			for _, line := range game.PGN(width) {
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 80,
		"maximum movetext line width, 0 disables wrapping")
	cmd.Flags().BoolVar(&dot, "dot", false,
		"emit the variation tree in Graphviz dot format")
	cmd.Flags().BoolVar(&strict, "strict", false,
		"fail when malformed tokens had to be skipped")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
