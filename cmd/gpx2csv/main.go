// Command gpx2csv writes the track points of a GPX file as "lat;lon" lines.
//
//	gpx2csv infile outfile
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/jengzang/trakxmap-backend-go/internal/loader"
	"github.com/jengzang/trakxmap-backend-go/internal/track"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "args: infile outfile")
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1], os.Args[2]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, in, out string) error {
	t, err := loader.NewGPXLoader("").Load(ctx, in)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	if err := writeCSV(f, t); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, t *track.Track) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	for _, p := range t.TrackPoints {
		record := []string{
			strconv.FormatFloat(p.Coordinate.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Coordinate.Lon, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write point %d: %w", p.Sequence, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
