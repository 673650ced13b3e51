package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const (
	baseURL      = "http://127.0.0.1:8090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numJobs      = 500
	numProfiles  = 20
)

var queries = []string{"golang", "rust", "platform engineer", "data", "frontend"}

var locations = []string{"Berlin", "Remote", "London, UK", "Austin", ""}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== JobDeck Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Jobs: %d | Profiles: %d\n\n", numJobs, numProfiles)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: writes only
	fmt.Println("\n--- Phase 1: Writes (toggle, recent, compare, history) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doWrite(rng)
	})

	// Phase 2: mixed
	fmt.Println("\n--- Phase 2: Mixed load (50% writes, 50% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doWrite(rng)
		case r < 0.70:
			return doGet(rng, "/saved")
		case r < 0.85:
			return doGet(rng, "/recent")
		default:
			return doBrowse(rng)
		}
	})

	// Phase 3: read-heavy, browse dominated
	fmt.Println("\n--- Phase 3: Read-heavy load (10% writes, 90% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doWrite(rng)
		case r < 0.30:
			return doGet(rng, "/saved")
		case r < 0.45:
			return doGet(rng, "/compare")
		case r < 0.55:
			return doGet(rng, "/history")
		default:
			return doBrowse(rng)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func profileParam(rng *rand.Rand) string {
	return fmt.Sprintf("profile=p%d", rng.Intn(numProfiles))
}

func randomJob(rng *rand.Rand) map[string]interface{} {
	id := rng.Intn(numJobs) + 1
	return map[string]interface{}{
		"id":       fmt.Sprintf("job-%d", id),
		"title":    fmt.Sprintf("%s role %d", queries[id%len(queries)], id),
		"company":  fmt.Sprintf("Company %d", id%37),
		"location": locations[id%len(locations)],
		"salary":   fmt.Sprintf("$%d,000", 60+id%120),
	}
}

func doWrite(rng *rand.Rand) result {
	var path string
	var body interface{}
	switch rng.Intn(4) {
	case 0:
		job := randomJob(rng)
		path, body = "/saved/toggle", map[string]interface{}{"id": job["id"], "record": job}
	case 1:
		path, body = "/recent", randomJob(rng)
	case 2:
		path, body = "/compare", randomJob(rng)
	default:
		path, body = "/history", map[string]string{
			"query":    queries[rng.Intn(len(queries))],
			"location": locations[rng.Intn(len(locations))],
		}
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+path+"?"+profileParam(rng), "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	name := "POST " + path
	if err != nil {
		return result{name, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// a full comparison answers 409
	failed := resp.StatusCode >= 400 && resp.StatusCode != http.StatusConflict
	return result{name, resp.StatusCode, lat, failed}
}

func doGet(rng *rand.Rand, path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path + "?" + profileParam(rng))
	lat := time.Since(start)
	name := "GET " + path
	if err != nil {
		return result{name, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{name, resp.StatusCode, lat, resp.StatusCode != 200}
}

func doBrowse(rng *rand.Rand) result {
	target := fmt.Sprintf("%s/browse?%s&q=%s&location=%s&page=%d",
		baseURL, profileParam(rng), url.QueryEscape(queries[rng.Intn(len(queries))]), url.QueryEscape(locations[rng.Intn(len(locations))]), rng.Intn(3)+1)
	start := time.Now()
	resp, err := httpClient.Get(target)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /browse", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /browse", resp.StatusCode, lat, resp.StatusCode != 200}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
