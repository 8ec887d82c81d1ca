package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ghalamif/BrickWatch"
)

// Subscribes to the archived event stream instead of writing it to Postgres.
// Useful for piping events into a dashboard or a message broker.
func main() {
	archiver, batches, closeBatches := brickwatch.NewChannelArchiver("fanout", 32)
	defer closeBatches()

	rt, err := brickwatch.Open("../../data/config.yaml", brickwatch.WithArchiver(archiver))
	if err != nil {
		log.Fatalf("open runtime: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go fanoutWorker("events", batches)

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

func fanoutWorker(name string, batches <-chan []brickwatch.Event) {
	for batch := range batches {
		for _, e := range batch {
			fmt.Printf("[%s] %s channel=%s value=%d at %s\n",
				name, e.Kind, e.Channel, e.Value, time.Now().Format(time.RFC3339))
		}
	}
}
