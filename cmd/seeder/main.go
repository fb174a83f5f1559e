package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/relevano/semsearch"
	"github.com/relevano/semsearch/ai"
	"github.com/relevano/semsearch/ai/mock"
)

var companies = []string{
	"Acme Robotics|Industrial robot arms and automation cells for mid-size manufacturers.",
	"Brightline Therapeutics|Small-molecule drug discovery targeting rare metabolic disorders.",
	"Cobalt Grid|Battery storage orchestration software for utility-scale solar farms.",
	"Driftwood Analytics|Demand forecasting for coastal logistics and port operations.",
	"Everfield Agritech|Precision irrigation sensors and yield modeling for row crops.",
	"Fathom Marine|Autonomous underwater survey drones for offshore infrastructure.",
	"Gossamer Textiles|Recycled-fiber technical fabrics for outdoor apparel brands.",
	"Halcyon Security|Managed detection and response for regional banks and credit unions.",
	"Ironvale Mining Systems|Predictive maintenance platforms for heavy extraction equipment.",
	"Junewild Foods|Shelf-stable fermented snacks distributed through specialty grocers.",
	"Kitefall Aerospace|Lightweight composite airframes for cargo drone fleets.",
	"Lumen Health|Remote cardiac monitoring wearables with clinician dashboards.",
	"Mosswood Build|Cross-laminated timber kits for mid-rise residential construction.",
	"Northbeam Freight|Digital brokerage matching refrigerated loads with regional carriers.",
	"Opaline Optics|Precision lens coatings for machine vision cameras.",
	"Pinecone Learning|Adaptive mathematics tutoring software for middle schools.",
	"Quarry Lake Capital|Revenue-based financing for seasonal tourism operators.",
	"Ripplewater Desalination|Modular reverse-osmosis plants for island communities.",
	"Saltfork Kitchens|Ghost kitchen infrastructure and delivery-only restaurant brands.",
	"Tessera Semiconductor|Chiplet packaging and interconnect design services.",
	"Umberline Studios|Procedural world-building tools for independent game developers.",
	"Vantage Rail|Track condition monitoring using axle-mounted vibration sensors.",
	"Willowmere Insurance|Parametric crop insurance priced from satellite imagery.",
	"Xenith Materials|High-temperature ceramics for turbine and kiln linings.",
	"Yarrow Biotics|Soil microbiome inoculants that reduce fertilizer dependence.",
	"Zephyr Cold Chain|Temperature-assured last-mile delivery for biologic drugs.",
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one 'name|description' per line")
	owners       = flag.Int("owners", 4, "number of synthetic owners to spread records across")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedRecords stores one record per line, rotating through the owner IDs.
func seedRecords(ctx context.Context, engine *semsearch.Engine, source iter.Seq[string], ownerIDs []string) error {
	i := 0
	for line := range source {
		name, description, found := strings.Cut(line, "|")
		if !found {
			slog.Warn("skipping malformed seed line", "line", line)
			continue
		}

		owner := ownerIDs[i%len(ownerIDs)]
		record, err := engine.StoreEmbedding(ctx, name, description, owner, nil)
		if err != nil {
			return err
		}
		slog.Info("seeded record", "id", record.Id, "company", record.CompanyName, "owner", owner)
		i++
	}
	return nil
}

func main() {
	// The mock embedder keeps seeding self-contained; point WithEmbedder at
	// a real client to seed with live embeddings.
	engine, err := semsearch.New("./semsearch_db",
		semsearch.WithEmbedder(mock.NewMockEmbedder()),
		semsearch.WithAIConfig(ai.NewConfig(ai.WithDimensions(mock.DefaultDimensions))),
	)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	ctx := context.Background()

	ownerIDs := make([]string, *owners)
	for i := range ownerIDs {
		ownerIDs[i] = uuid.NewString()
	}

	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(companies)
	}

	if err := seedRecords(ctx, engine, source, ownerIDs); err != nil {
		panic(err)
	}
}
