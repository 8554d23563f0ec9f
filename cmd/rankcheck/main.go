// Command rankcheck ranks the bundled shelter catalog against an origin
// and prints the result, for checking scoring behavior without running
// the service or any provider.
//
// Usage:
//
//	go run ./cmd/rankcheck -lat 27.8006 -lng -97.3964 -medical -count 5
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/evac-response/internal/domain"
)

func main() {
	lat := flag.Float64("lat", 27.8006, "origin latitude")
	lng := flag.Float64("lng", -97.3964, "origin longitude")
	medical := flag.Bool("medical", false, "prioritize shelters with medical facilities")
	pets := flag.Bool("pets", false, "prioritize pet-friendly shelters")
	special := flag.Bool("special-needs", false, "prioritize accessible shelters")
	count := flag.Int("count", 3, "number of destinations to print")
	asJSON := flag.Bool("json", false, "print JSON instead of a table")
	flag.Parse()

	origin := domain.Coordinate{Lat: *lat, Lng: *lng}
	needs := domain.EvacuationNeeds{Medical: *medical, Pets: *pets, SpecialNeeds: *special}

	ranked := domain.RankDestinations(origin, needs, domain.CorpusChristiShelters, domain.CorpusChristiFloodZones, *count)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ranked); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("%-34s %8s %6s  %s\n", "NAME", "DIST_KM", "SCORE", "FACILITIES")
	for _, dest := range ranked {
		facilities := ""
		for i, f := range dest.Facilities {
			if i > 0 {
				facilities += ", "
			}
			facilities += f
		}
		fmt.Printf("%-34s %8.1f %6d  %s\n", dest.Name, dest.DistanceKm, dest.Score, facilities)
	}
}
