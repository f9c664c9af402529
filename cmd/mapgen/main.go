// Command mapgen prints generated or fixed boards for inspection.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"isle-conquest/internal/game"
	"isle-conquest/internal/logger"
	"isle-conquest/pkg/maps"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/exp/rand"
)

func main() {
	width := pflag.Int("width", game.DefaultWidth, "Board width")
	height := pflag.Int("height", game.DefaultHeight, "Board height")
	seed := pflag.Uint64P("seed", "s", 0, "Random seed (0 = time based)")
	count := pflag.IntP("count", "n", 1, "Number of boards to generate")
	layout := pflag.StringP("layout", "l", "", "Print a fixed layout instead of generating")
	asJSON := pflag.Bool("json", false, "Print boards as layout JSON")
	steps := pflag.Bool("steps", false, "Print each grown island")
	pflag.Parse()

	logger.Init()

	if *layout != "" {
		if err := maps.LoadAll(); err != nil {
			log.Fatal().Err(err).Msg("Failed to load layouts")
		}
		l := maps.Get(*layout)
		if l == nil {
			log.Fatal().Str("layout", *layout).Msg("Unknown layout")
		}
		b, err := l.NewBoard()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid layout")
		}
		show(l.ID, l.Name, b, *asJSON)
		return
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	for i := 0; i < *count; i++ {
		s := *seed + uint64(i)
		opts := maps.DefaultOptions()
		opts.Width, opts.Height = *width, *height

		b, grown, err := maps.NewGenerator(opts, rand.New(rand.NewSource(s))).Generate()
		if err != nil {
			log.Fatal().Err(err).Uint64("seed", s).Msg("Generation failed")
		}

		if *steps {
			for _, st := range grown {
				if !st.Complete {
					fmt.Fprintf(os.Stderr, "island %d: %v\n", st.Region, st.Cells)
				}
			}
		}
		show(fmt.Sprintf("seed-%d", s), fmt.Sprintf("Generated %d", s), b, *asJSON)
	}
}

func show(id, name string, b *game.Board, asJSON bool) {
	if asJSON {
		data, _ := json.MarshalIndent(maps.RawLayout{ID: id, Name: name, Rows: b.Layout()}, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Printf("%s (%s)\n%s\n", name, id, maps.Debug(b))
}
