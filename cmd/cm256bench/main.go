// Command cm256bench drives Monte-Carlo erasure trials against the
// cm256 Cauchy MDS code and, for comparison, against the RaptorQ
// fountain code, and reports the measured recovery rate and timing of
// each at a range of loss probabilities.
package main

import (
	"crypto/rand"
	"encoding/csv"
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"strings"
	"time"

	"github.com/lalawue/cm256"
	"github.com/lalawue/cm256/internal/raptorqcompare"
)

type aggregate struct {
	trials    int
	successes int
	encTotal  time.Duration
	decTotal  time.Duration
}

func (a *aggregate) record(ok bool, enc, dec time.Duration) {
	a.trials++
	if ok {
		a.successes++
	}
	a.encTotal += enc
	a.decTotal += dec
}

func main() {
	n := flag.Int("N", 10, "number of original blocks")
	m := flag.Int("M", 6, "number of recovery/repair symbols")
	blockBytes := flag.Int("B", 1200, "bytes per block/symbol")
	pList := flag.String("p", "0,0.05,0.10,0.20,0.30", "comma-separated per-block loss probabilities")
	trials := flag.Int("trials", 500, "trials per loss probability")
	seed := flag.Int64("seed", 1, "PRNG seed for loss simulation")
	schemes := flag.String("schemes", "cm256,raptorq", "comma-separated list of schemes to run")
	csvPath := flag.String("csv", "", "optional CSV output path")
	flag.Parse()

	if err := cm256.Init(cm256.Version); err != nil {
		fmt.Fprintln(os.Stderr, "cm256 init:", err)
		os.Exit(1)
	}

	probs := parseProbs(*pList)
	wantSchemes := strings.Split(*schemes, ",")
	rng := mrand.New(mrand.NewSource(*seed))

	var rows [][]string
	rows = append(rows, []string{"scheme", "N", "M", "B", "loss_p", "trials", "successes", "enc_ms_total", "dec_ms_total"})

	for _, scheme := range wantSchemes {
		scheme = strings.TrimSpace(scheme)
		for _, p := range probs {
			agg := runScheme(scheme, *n, *m, *blockBytes, p, *trials, rng)
			if agg == nil {
				continue
			}
			fmt.Printf("%-8s N=%d M=%d B=%d p=%.3f trials=%d successes=%d enc=%v dec=%v\n",
				scheme, *n, *m, *blockBytes, p, agg.trials, agg.successes, agg.encTotal, agg.decTotal)
			rows = append(rows, []string{
				scheme, itoa(*n), itoa(*m), itoa(*blockBytes), ftoa(p), itoa(agg.trials), itoa(agg.successes),
				itoa(int(agg.encTotal.Milliseconds())), itoa(int(agg.decTotal.Milliseconds())),
			})
		}
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, rows); err != nil {
			fmt.Fprintln(os.Stderr, "csv:", err)
			os.Exit(1)
		}
	}
}

func runScheme(scheme string, n, m, b int, p float64, trials int, rng *mrand.Rand) *aggregate {
	switch scheme {
	case "cm256":
		return runCM256(n, m, b, p, trials, rng)
	case "raptorq":
		return runRaptorQ(n, m, b, p, trials, rng)
	default:
		fmt.Fprintln(os.Stderr, "unknown scheme:", scheme)
		return nil
	}
}

func runCM256(n, m, b int, p float64, trials int, rng *mrand.Rand) *aggregate {
	params := cm256.Params{OriginalCount: n, RecoveryCount: m, BlockBytes: b}
	agg := &aggregate{}
	for t := 0; t < trials; t++ {
		originals := make([][]byte, n)
		for i := range originals {
			originals[i] = make([]byte, b)
			_, _ = rand.Read(originals[i])
		}

		recovery := make([]byte, m*b)
		t0 := time.Now()
		if err := cm256.Encode(params, originals, recovery); err != nil {
			agg.record(false, time.Since(t0), 0)
			continue
		}
		encDur := time.Since(t0)

		blocks, erased := dropOriginals(originals, recovery, n, m, b, p, rng)
		if len(blocks) != n {
			// Too many losses for this call; not decodable even in
			// principle, matching the "fewer than N survive" non-goal.
			agg.record(false, encDur, 0)
			continue
		}

		t1 := time.Now()
		err := cm256.Decode(params, blocks)
		decDur := time.Since(t1)
		if err != nil {
			agg.record(false, encDur, decDur)
			continue
		}
		ok := true
		byIndex := make(map[int][]byte, n)
		for _, blk := range blocks {
			byIndex[blk.Index] = blk.Payload
		}
		for _, idx := range erased {
			if !bytesEqual(byIndex[idx], originals[idx]) {
				ok = false
				break
			}
		}
		agg.record(ok, encDur, decDur)
	}
	return agg
}

// dropOriginals simulates independent loss of each original block at
// rate p; recovery rows are never lost. For each lost original it
// substitutes one recovery row (lowest row first); if more than M
// originals are lost there are not enough symbols left to reach N and
// the trial is reported as undecodable.
func dropOriginals(originals [][]byte, recovery []byte, n, m, b int, p float64, rng *mrand.Rand) ([]cm256.Block, []int) {
	var blocks []cm256.Block
	var erased []int
	for i, o := range originals {
		if rng.Float64() < p {
			erased = append(erased, i)
			continue
		}
		blocks = append(blocks, cm256.Block{Index: i, Payload: o})
	}
	need := n - len(blocks)
	if need > m {
		return blocks, erased
	}
	for i := 0; i < need; i++ {
		blocks = append(blocks, cm256.Block{Index: n + i, Payload: recovery[i*b : (i+1)*b]})
	}
	return blocks, erased
}

func runRaptorQ(n, m, b int, p float64, trials int, rng *mrand.Rand) *aggregate {
	agg := &aggregate{}
	total := n + m
	for t := 0; t < trials; t++ {
		data := make([]byte, n*b)
		_, _ = rand.Read(data)

		t0 := time.Now()
		enc, err := raptorqcompare.NewEncoder(data, n, b)
		if err != nil {
			agg.record(false, time.Since(t0), 0)
			continue
		}
		symbols := enc.EncodeN(total)
		encDur := time.Since(t0)

		dec, err := raptorqcompare.NewDecoder(len(data), b)
		if err != nil {
			agg.record(false, encDur, 0)
			continue
		}
		t1 := time.Now()
		ready := false
		for _, sym := range symbols {
			if rng.Float64() < p {
				continue
			}
			ready, _ = dec.Add(sym)
		}
		ok := false
		var out []byte
		if ready {
			ok, out, _ = dec.Decode()
		}
		decDur := time.Since(t1)
		agg.record(ok && bytesEqual(out, data), encDur, decDur)
	}
	return agg
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func parseProbs(s string) []float64 {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var v float64
		fmt.Sscanf(p, "%f", &v)
		out = append(out, v)
	}
	return out
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	return w.WriteAll(rows)
}

func itoa(v int) string      { return fmt.Sprintf("%d", v) }
func ftoa(v float64) string { return fmt.Sprintf("%.4f", v) }
