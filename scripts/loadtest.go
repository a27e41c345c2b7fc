// Loadtest is a concurrent load generator for the submission endpoint. Every
// request carries a unique message and every response is checked against the
// echo contract, so the tool doubles as a smoke test for a deployed instance.
//
// Usage:
//
//	go run ./scripts -url http://localhost:8000 -concurrency 10 -requests 1000
//	go run ./scripts -url http://localhost:8000 -requests 5000 -out summary.json
//
// Reported:
//   - throughput and status code distribution
//   - latency percentiles (p50, p90, p95, p99)
//   - contract violations (wrong echo, bad timestamp, missing fields)
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type submitResponse struct {
	Status          string `json:"status"`
	ReceivedMessage string `json:"received_message"`
	ProcessedAt     string `json:"processed_at"`
	Response        string `json:"response"`
}

type summary struct {
	Target         string         `json:"target"`
	Requests       int            `json:"requests"`
	Concurrency    int            `json:"concurrency"`
	Success        int32          `json:"success"`
	Failure        int32          `json:"failure"`
	Violations     int32          `json:"contract_violations"`
	DurationMS     int64          `json:"duration_ms"`
	ThroughputRPS  float64        `json:"throughput_rps"`
	StatusCodes    map[int]int32  `json:"status_codes"`
	LatencyMillis  map[string]int `json:"latency_ms"`
	HealthVerified bool           `json:"health_verified"`
}

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8000", "Base URL of the server")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 100, "Total number of submissions to send")
		timeoutSec  = flag.Int("timeout", 10, "Per-request timeout in seconds")
		outJSON     = flag.String("out", "", "Write JSON summary to this file (optional)")
		verbose     = flag.Bool("v", false, "Verbose per-request logging to stdout")
	)
	flag.Parse()

	base := strings.TrimRight(*baseURL, "/")
	client := &http.Client{Timeout: time.Duration(*timeoutSec) * time.Second}

	healthy := checkHealth(client, base)
	if !healthy {
		fmt.Fprintf(os.Stderr, "health check against %s/healthz failed\n", base)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	var success, failure, violations int32

	var latencies []time.Duration
	var latMu sync.Mutex

	statusCodes := make(map[int]int32)
	var statusMu sync.Mutex

	testStart := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				message := fmt.Sprintf("load-%d-%s", idx, uuid.NewString())
				body, _ := json.Marshal(map[string]string{"message": message})

				start := time.Now()
				resp, err := client.Post(base+"/api/submit", "application/json", bytes.NewReader(body))
				dur := time.Since(start)

				latMu.Lock()
				latencies = append(latencies, dur)
				latMu.Unlock()

				if err != nil {
					atomic.AddInt32(&failure, 1)
					if *verbose {
						fmt.Printf("[%d] idx=%d error=%v\n", workerID, idx, err)
					}
					continue
				}

				statusMu.Lock()
				statusCodes[resp.StatusCode]++
				statusMu.Unlock()

				payload, _ := io.ReadAll(resp.Body)
				resp.Body.Close()

				if resp.StatusCode != http.StatusOK {
					atomic.AddInt32(&failure, 1)
					continue
				}
				atomic.AddInt32(&success, 1)

				if problem := verify(message, payload); problem != "" {
					atomic.AddInt32(&violations, 1)
					fmt.Printf("[%d] idx=%d contract violation: %s\n", workerID, idx, problem)
				} else if *verbose {
					fmt.Printf("[%d] idx=%d status=%d dur=%v\n", workerID, idx, resp.StatusCode, dur)
				}
			}
		}(i)
	}

	go func() {
		for i := 0; i < *requests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	wg.Wait()
	totalDuration := time.Since(testStart)

	report := summary{
		Target:         base,
		Requests:       *requests,
		Concurrency:    *concurrency,
		Success:        success,
		Failure:        failure,
		Violations:     violations,
		DurationMS:     totalDuration.Milliseconds(),
		ThroughputRPS:  float64(*requests) / totalDuration.Seconds(),
		StatusCodes:    statusCodes,
		LatencyMillis:  percentiles(latencies),
		HealthVerified: healthy,
	}

	printSummary(report)

	if *outJSON != "" {
		f, err := os.Create(*outJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create json file: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		f.Close()
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	if failure > 0 || violations > 0 || !healthy {
		os.Exit(2)
	}
}

func checkHealth(client *http.Client, base string) bool {
	resp, err := client.Get(base + "/healthz")
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}
	return resp.StatusCode == http.StatusOK && health.Status == "healthy"
}

func verify(message string, payload []byte) string {
	var got submitResponse
	if err := json.Unmarshal(payload, &got); err != nil {
		return "invalid JSON: " + err.Error()
	}
	switch {
	case got.Status != "success":
		return fmt.Sprintf("status %q", got.Status)
	case got.ReceivedMessage != message:
		return fmt.Sprintf("received_message %q, want %q", got.ReceivedMessage, message)
	case got.Response != "Processed: "+message:
		return fmt.Sprintf("response %q", got.Response)
	}
	if _, err := time.Parse(time.RFC3339Nano, got.ProcessedAt); err != nil {
		return fmt.Sprintf("processed_at %q is not ISO-8601", got.ProcessedAt)
	}
	return ""
}

func percentiles(samples []time.Duration) map[string]int {
	out := map[string]int{}
	if len(samples) == 0 {
		return out
	}

	tmp := make([]time.Duration, len(samples))
	copy(tmp, samples)
	sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })

	pick := func(p float64) int {
		return int(tmp[int(float64(len(tmp)-1)*p)].Milliseconds())
	}
	out["min"] = int(tmp[0].Milliseconds())
	out["p50"] = pick(0.50)
	out["p90"] = pick(0.90)
	out["p95"] = pick(0.95)
	out["p99"] = pick(0.99)
	out["max"] = int(tmp[len(tmp)-1].Milliseconds())
	return out
}

func printSummary(r summary) {
	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Target: %s  health verified: %v\n", r.Target, r.HealthVerified)
	fmt.Printf("Requests: %d  Concurrency: %d\n", r.Requests, r.Concurrency)
	fmt.Printf("Success: %d  Failure: %d  Contract violations: %d\n", r.Success, r.Failure, r.Violations)
	fmt.Printf("Duration: %dms  Throughput: %.2f req/s\n", r.DurationMS, r.ThroughputRPS)

	fmt.Println("\nStatus codes:")
	var codes []int
	for k := range r.StatusCodes {
		codes = append(codes, k)
	}
	sort.Ints(codes)
	for _, k := range codes {
		fmt.Printf("  %d -> %d\n", k, r.StatusCodes[k])
	}

	if len(r.LatencyMillis) > 0 {
		l := r.LatencyMillis
		fmt.Printf("\nLatency (ms): min=%d p50=%d p90=%d p95=%d p99=%d max=%d\n",
			l["min"], l["p50"], l["p90"], l["p95"], l["p99"], l["max"])
	}
}
