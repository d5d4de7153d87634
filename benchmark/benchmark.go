package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/xmh1011/go-skiplist/skiplist"
)

type result struct {
	op      string
	count   int
	elapsed time.Duration
}

func (r result) row() []string {
	opsPerSec := float64(r.count) / r.elapsed.Seconds()
	nsPerOp := float64(r.elapsed.Nanoseconds()) / float64(r.count)
	return []string{r.op, fmt.Sprintf("%d", r.count), r.elapsed.String(), fmt.Sprintf("%.2f", opsPerSec), fmt.Sprintf("%.2f", nsPerOp)}
}

func timed(op string, count int, fn func()) result {
	start := time.Now()
	fn()
	return result{op: op, count: count, elapsed: time.Since(start)}
}

func main() {
	n := flag.Int("n", 1000000, "number of keys")
	maxLevel := flag.Int("max-level", 18, "skip list max level")
	workers := flag.Int("workers", 4, "concurrent writers for the parallel insert run")
	flag.Parse()

	keys := rand.Perm(*n)
	sl := skiplist.New[int, int](*maxLevel)

	results := []result{
		timed("insert", *n, func() {
			for _, k := range keys {
				_ = sl.Insert(k, k)
			}
		}),
		timed("search", *n, func() {
			for _, k := range keys {
				sl.Search(k)
			}
		}),
		timed("traverse", *n, func() {
			for range sl.All() {
			}
		}),
		timed("delete", *n, func() {
			for _, k := range keys {
				_ = sl.Delete(k)
			}
		}),
	}

	// 多个写协程共享同一把锁
	shared := skiplist.New[int, int](*maxLevel)
	results = append(results, timed(fmt.Sprintf("insert x%d", *workers), *n, func() {
		var wg sync.WaitGroup
		chunk := (*n + *workers - 1) / *workers
		for w := 0; w < *workers; w++ {
			lo, hi := w*chunk, min((w+1)*chunk, *n)
			if lo >= hi {
				break
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, k := range keys[lo:hi] {
					_ = shared.Insert(k, k)
				}
			}()
		}
		wg.Wait()
	}))

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, r.row())
	}

	fmt.Printf("keys: %d, max level: %d, final level: %d\n", *n, *maxLevel, shared.Level())
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Op", "Count", "Elapsed", "Ops/s", "ns/op"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
