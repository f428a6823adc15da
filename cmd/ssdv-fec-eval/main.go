// Command ssdv-fec-eval runs Monte-Carlo erasure trials against package fec:
// for a sweep of (format, k, rate) configurations, it generates a random
// synthetic image, encodes it at the given coding rate, keeps a uniformly
// random subset of the emitted packets, and checks that decode recovers the
// original image bit-for-bit. Results are written as a Prometheus metrics
// dump and a gojay-encoded JSON report.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/francoispqt/gojay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/sync/errgroup"

	"github.com/daniestevez/ssdv-fec-go/fec"
	"github.com/daniestevez/ssdv-fec-go/internal/erasure"
)

var seedMixConstantU64 uint64 = 0x9e3779b97f4a7c15
var seedMixConstant = int64(seedMixConstantU64)

type config struct {
	Format string
	K      int
	Rate   float64
}

type agg struct {
	mu        sync.Mutex
	Runs      int
	Successes int
	EncTotal  time.Duration
	DecTotal  time.Duration
}

func (a *agg) record(ok bool, enc, dec time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Runs++
	if ok {
		a.Successes++
	}
	a.EncTotal += enc
	a.DecTotal += dec
}

// jsonRecord and jsonReport implement gojay's Marshaler interfaces directly,
// matching how gojay is meant to be used (no reflection, one JSON key
// written per field).
type jsonRecord struct {
	Format    string
	K         int
	Rate      float64
	Runs      int
	Successes int
	EncMS     int64
	DecMS     int64
}

func (r jsonRecord) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("format", r.Format)
	enc.IntKey("k", r.K)
	enc.Float64Key("rate", r.Rate)
	enc.IntKey("runs", r.Runs)
	enc.IntKey("successes", r.Successes)
	enc.Int64Key("enc_ms_total", r.EncMS)
	enc.Int64Key("dec_ms_total", r.DecMS)
}

func (r jsonRecord) IsNil() bool { return false }

type jsonReport []jsonRecord

func (r jsonReport) MarshalJSONArray(enc *gojay.Encoder) {
	for _, rec := range r {
		enc.AddObject(rec)
	}
}

func (r jsonReport) IsNil() bool { return len(r) == 0 }

func main() {
	os.Exit(run())
}

func run() int {
	var (
		runs        = flag.Int("runs", 2000, "trials per (format,k,rate) config")
		ksStr       = flag.String("ks", "32,128,512", "comma-separated list of k values")
		ratesStr    = flag.String("rates", "0.9,0.8,0.6", "comma-separated list of coding rates")
		formatsStr  = flag.String("formats", "standard,longjiang2", "comma-separated list of formats")
		seed        = flag.Int64("seed", 1, "random seed")
		concurrency = flag.Int("concurrency", 8, "concurrent trials in flight")
		jsonOut     = flag.String("json-out", "ssdv_fec_eval.json", "path to JSON report")
		metricsOut  = flag.String("metrics-out", "ssdv_fec_eval.prom", "path to Prometheus text-format metrics dump")
	)
	flag.Parse()

	ks, err := parseInts(*ksStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	rates, err := parseFloats(*ratesStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	formats, err := parseFormats(*formatsStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	registry := prometheus.NewRegistry()
	trialCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ssdv_fec_eval_trials_total",
		Help: "Number of erasure-decode trials run, by outcome.",
	}, []string{"format", "k", "rate", "outcome"})
	encodeSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ssdv_fec_eval_encode_seconds",
		Help:    "Wall-clock time to encode one trial's packet set.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format", "k"})
	decodeSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ssdv_fec_eval_decode_seconds",
		Help:    "Wall-clock time to decode one trial's captured packets.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format", "k"})
	registry.MustRegister(trialCounter, encodeSeconds, decodeSeconds)

	var configs []config
	for _, f := range formats {
		for _, k := range ks {
			for _, r := range rates {
				configs = append(configs, config{Format: f, K: k, Rate: r})
			}
		}
	}

	var report jsonReport
	for _, cfg := range configs {
		a := &agg{}
		if err := runConfig(cfg, *runs, *seed, *concurrency, a, trialCounter, encodeSeconds, decodeSeconds); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		report = append(report, jsonRecord{
			Format:    cfg.Format,
			K:         cfg.K,
			Rate:      cfg.Rate,
			Runs:      a.Runs,
			Successes: a.Successes,
			EncMS:     a.EncTotal.Milliseconds(),
			DecMS:     a.DecTotal.Milliseconds(),
		})
		fmt.Printf("%-10s k=%-5d rate=%.2f  %d/%d ok\n", cfg.Format, cfg.K, cfg.Rate, a.Successes, a.Runs)
	}

	if err := writeJSON(*jsonOut, report); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := writeMetrics(*metricsOut, registry); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runConfig runs n independent trials of one (format,k,rate) configuration,
// each on its own goroutine bounded by concurrency, feeding results into a
// and the process-wide Prometheus vectors.
func runConfig(cfg config, n int, seed int64, concurrency int, a *agg, trialCounter *prometheus.CounterVec, encodeSeconds, decodeSeconds *prometheus.HistogramVec) error {
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return err
	}
	L := format.PacketLen()
	kLabel := strconv.Itoa(cfg.K)
	rateLabel := strconv.FormatFloat(cfg.Rate, 'f', 2, 64)

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed ^ int64(i)*seedMixConstant))
			image := syntheticImage(format, cfg.K, rng)

			numFEC := numPacketsForRate(cfg.K, cfg.Rate)

			encStart := time.Now()
			transmitted := make([]byte, numFEC*L)
			for id := 0; id < numFEC; id++ {
				if err := fec.Encode(format, image, uint16(id), transmitted[id*L:(id+1)*L]); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			}
			encDur := time.Since(encStart)
			encodeSeconds.WithLabelValues(cfg.Format, kLabel).Observe(encDur.Seconds())

			sampler := erasure.New(rng)
			kept := sampler.Keep(numFEC, cfg.K)
			recv := make([]byte, len(kept)*L)
			for j, idx := range kept {
				copy(recv[j*L:(j+1)*L], transmitted[idx*L:(idx+1)*L])
			}

			out := make([]byte, cfg.K*L)
			decStart := time.Now()
			decErr := fec.Decode(format, recv, out)
			decDur := time.Since(decStart)
			decodeSeconds.WithLabelValues(cfg.Format, kLabel).Observe(decDur.Seconds())

			ok := decErr == nil && bytesEqual(out, image)
			outcome := "success"
			if !ok {
				outcome = "failure"
			}
			trialCounter.WithLabelValues(cfg.Format, kLabel, rateLabel, outcome).Inc()
			a.record(ok, encDur, decDur)
			return nil
		})
	}
	return g.Wait()
}

func numPacketsForRate(k int, rate float64) int {
	n := int(float64(k)/rate + 0.999999)
	if n < k {
		n = k
	}
	if n > 1<<16 {
		n = 1 << 16
	}
	return n
}

func syntheticImage(format fec.PacketFormat, k int, rng *rand.Rand) []byte {
	L := format.PacketLen()
	payloadOff, payloadLen := format.PayloadRange()
	image := make([]byte, k*L)
	for i := 0; i < k; i++ {
		pkt := image[i*L : (i+1)*L]
		rng.Read(pkt[payloadOff : payloadOff+payloadLen])
		format.SetImageID(pkt, 42)
		format.SetDimensions(pkt, 160, 120)
		format.SetPacketID(pkt, uint16(i))
		format.SetFECPacket(pkt, false)
		format.SetEOI(pkt, i == k-1)
		format.SetFixedFields(pkt)
		format.SetCRC(pkt, format.ComputeCRC(pkt))
	}
	return image
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

func parseFormat(name string) (fec.PacketFormat, error) {
	switch name {
	case "standard":
		return fec.StandardFormat, nil
	case "longjiang2":
		return fec.Longjiang2Format, nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}

func parseFormats(s string) ([]string, error) {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := parseFormat(p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func writeJSON(path string, report jsonReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := gojay.NewEncoder(f)
	return enc.EncodeArray(report)
}

func writeMetrics(path string, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return err
		}
	}
	return nil
}
