// toolprobe runs a single assistant tool by hand, for checking the upstream
// APIs without a full assistant run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/lucafehr/fishbuddy/internal/service/tools"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	name := flag.String("tool", "", "tool name (geocode_place, canton_from_place, get_weather_by_place, get_water_data, list_species_by_place, check_rules, beginner_plan)")
	args := flag.String("args", "{}", "tool arguments as JSON")
	rulesPath := flag.String("rules", "", "override path to rules.json")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")

	flag.Parse()

	if *name == "" {
		flag.Usage()
		log.Fatal("specify a tool with -tool")
	}

	var opts []tools.Option
	if *rulesPath != "" {
		opts = append(opts, tools.WithRulesPath(*rulesPath))
	}
	svc := tools.NewService(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result := svc.Dispatch(ctx, *name, *args)
	log.Printf("tool %s finished in %s", *name, time.Since(start).Round(time.Millisecond))

	fmt.Println(result)
}
