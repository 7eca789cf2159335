package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/krisalay/kiro"
	"github.com/krisalay/kiro/images"
	"github.com/krisalay/kiro/layout"
	"github.com/krisalay/kiro/logger"
)

// ================= BENCHMARK =================

func main() {
	sheets := flag.String("sheets", ".", "directory holding legend sheets and their .kiro.json files")
	goroutines := flag.Int("goroutines", 200, "concurrent callers")
	opsPerG := flag.Int("ops", 5000, "lookups per caller")
	flag.Parse()

	fmt.Println("\n================ KIRO LOAD BENCHMARK =================")

	// ---------------- Config ----------------
	cfg := kiro.NewConfig()
	cfg.LogLevel = logger.LevelWarn

	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Sheets        :", *sheets)
	fmt.Println("Cache lifetime:", cfg.DataLifetime)
	fmt.Println("Goroutines    :", *goroutines)
	fmt.Println("Ops/Goroutine :", *opsPerG)
	fmt.Println("---------------------------------")

	k := kiro.New(cfg, images.Dir(*sheets), logger.New(os.Stderr, cfg.LogLevel, "bench"))

	// ---------------- Warmup ----------------
	fmt.Println("Warming up caches...")
	picks, err := k.Keysets()
	if err != nil || len(picks) == 0 {
		fmt.Println("no keysets found:", err)
		os.Exit(1)
	}
	fmt.Printf("Warmup complete, %d keysets.\n", len(picks))
	k.ResetStats()

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")

	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(*goroutines)

	for i := 0; i < *goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < *opsPerG; j++ {
				// Keysets goes through both caches: the image list and every kiro file
				current, err := k.Keysets()
				if err != nil || len(current) == 0 {
					continue
				}
				p := current[(id+j)%len(current)]
				_, _, _ = k.ArrayIndices(p.Keyset.Start, 8, layout.Native, p)
			}
		}(i)
	}

	wg.Wait()

	duration := time.Since(start)
	totalOps := *goroutines * *opsPerG

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	stats := k.Stats()
	fmt.Printf("Cache            : %s\n", stats)
	fmt.Printf("Hit Ratio        : %.4f\n", stats.HitRatio())
	fmt.Println("=========================================")
}
