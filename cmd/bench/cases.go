// README: Runner checks: secret store, session store, HTTP status mapping, the chat in-flight guard and a health load run.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

// credentialNames must match the names the API looks up.
var credentialNames = []string{"GEMINI_API_KEY", "SERPAPI_API_KEY", "GOOGLE_MAPS_API_KEY"}

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
	// sessionID is set once an itinerary was generated.
	sessionID string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 90 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "dsn not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "dsn not set"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Secrets: credential rows present",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "dsn not set"}
				}
				rows, err := r.db.Query(ctx, "SELECT name FROM secrets WHERE value <> ''")
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				defer rows.Close()
				var present []string
				for rows.Next() {
					var name string
					if err := rows.Scan(&name); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					present = append(present, name)
				}
				missing, _ := lo.Difference(credentialNames, present)
				if len(missing) > 0 {
					return Result{Status: statusFail, Note: "missing: " + strings.Join(missing, ", ")}
				}
				return Result{Status: statusPass}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCase("Itinerary: missing fields -> 400", base+"/api/itineraries", map[string]any{"source": "Delhi"}, []int{400}),
		httpCase("Itinerary: end before start -> 400", base+"/api/itineraries", tripPayload("2025-02-20", "2025-02-15", false), []int{400}),
		{
			Name: "Itinerary: generate",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.generate(ctx, base+"/api/itineraries")
			},
		},
		httpCaseMethod("Chat: unknown session -> 404", http.MethodGet, base+"/api/sessions/does-not-exist", nil, []int{404}),
		{
			Name: "Chat: concurrent questions, one answered",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.sessionID == "" {
					return Result{Status: statusSkip, Note: "no session"}
				}
				return concurrentAsk(ctx, r, base+"/api/sessions/"+r.sessionID+"/messages")
			},
		},
		httpCase("Booking: placeholder -> 202", base+"/api/flights/book", map[string]any{"booking_token": "bench"}, []int{202}),
		httpCaseMethod("Places: missing destination -> 400", http.MethodGet, base+"/api/places", nil, []int{400}),
		{
			Name: "Perf: health throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/health")
			},
		},
	}
}

func tripPayload(start, end string, includeFlights bool) map[string]any {
	return map[string]any{
		"source":          "Delhi",
		"destination":     "Hanoi",
		"start_date":      start,
		"end_date":        end,
		"budget":          "1500 USD",
		"travelers":       "2",
		"interests":       "street food, history",
		"include_flights": includeFlights,
	}
}

func (r *Runner) generate(ctx context.Context, url string) Result {
	b, _ := json.Marshal(tripPayload("2025-02-15", "2025-02-20", false))
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode == http.StatusServiceUnavailable {
		return Result{Status: statusSkip, Latency: latency, Note: "credentials not configured"}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
	}
	var out struct {
		SessionID string `json:"session_id"`
		Itinerary string `json:"itinerary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{Status: statusFail, Latency: latency, Note: err.Error()}
	}
	if out.SessionID == "" || out.Itinerary == "" {
		return Result{Status: statusFail, Latency: latency, Note: "empty session or itinerary"}
	}
	r.sessionID = out.SessionID
	return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("chars=%d", len(out.Itinerary))}
}

func httpCase(name, url string, body any, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if lo.Contains(okStatuses, resp.StatusCode) {
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

// concurrentAsk fires several questions at one session at once. The in-flight
// guard must let exactly one through and answer the rest with 409.
func concurrentAsk(ctx context.Context, r *Runner, url string) Result {
	b, _ := json.Marshal(map[string]string{"question": "What should I pack?"})
	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	codes := map[int]int{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			if err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			mu.Lock()
			codes[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	answered := codes[http.StatusOK] + codes[http.StatusBadGateway]
	note := fmt.Sprintf("codes=%v", codes)
	if answered == 1 && codes[http.StatusConflict] == r.cfg.Concurrency-1 {
		return Result{Status: statusPass, Note: note}
	}
	return Result{Status: statusFail, Note: note}
}

func perfLoad(ctx context.Context, r *Runner, url string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					if ctx.Err() != nil {
						return
					}
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	return lo.Map(matches, func(m []string, _ int) string { return m[1] }), nil
}
