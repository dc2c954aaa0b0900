// README: Smoke cases for the travelbook API; covers DB, Redis, accounts, surprise orders, and a load probe.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"travelbook/internal/infra"
)

const (
	statusPass    = "PASS"
	statusFail    = "FAIL"
	statusPending = "PENDING"
	statusSkip    = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// filled by the account cases, read by later ones
	travelerID    int64
	travelerToken string
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
		httpc: &http.Client{Timeout: 10 * time.Second},
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
		fmt.Printf("%-7s %s", res.Status, tc.Name)
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
		{Name: "Env: Postgres connect", Run: pingDB},
		{Name: "Env: Redis connect", Run: pingRedis},
		{Name: "Migration: apply (optional)", Run: applyMigrations},
		{Name: "Migration: tables exist", Run: tablesExist},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				code, _, latency, err := r.do(ctx, http.MethodGet, base+"/health", "", nil)
				return expect(code, latency, err, []int{http.StatusOK}, nil)
			},
		},
		{
			Name: "API: metrics exposed",
			Run: func(ctx context.Context, r *Runner) Result {
				code, _, latency, err := r.do(ctx, http.MethodGet, base+"/metrics", "", nil)
				return expect(code, latency, err, []int{http.StatusOK}, nil)
			},
		},
		{Name: "Auth: register + login traveler", Run: registerTraveler},
		{
			Name: "Auth: admin self-register -> 403",
			Run: func(ctx context.Context, r *Runner) Result {
				code, _, latency, err := r.do(ctx, http.MethodPost, base+"/api/auth/register", "", map[string]any{
					"username": "bench-admin-" + uuid.NewString()[:8],
					"name":     "Bench Admin",
					"email":    "admin@bench.invalid",
					"password": "bench-password",
					"role":     "admin",
				})
				return expect(code, latency, err, []int{http.StatusForbidden}, nil)
			},
		},
		{
			Name: "Order: surprise without token -> 401",
			Run: func(ctx context.Context, r *Runner) Result {
				code, _, latency, err := r.do(ctx, http.MethodPost, base+"/api/orders/surprise", "", map[string]any{})
				return expect(code, latency, err, []int{http.StatusUnauthorized}, nil)
			},
		},
		r.authedCase("Order: surprise missing fields -> 400", base+"/api/orders/surprise", map[string]any{}, []int{http.StatusBadRequest}, nil),
		r.authedCase("Order: surprise past date -> 400", base+"/api/orders/surprise", func(r *Runner) any {
			return surprisePayload(r.travelerID, "2000-01-01")
		}, []int{http.StatusBadRequest}, nil),
		// 404 means the catalog has no matching trips; 402 means payments are enabled
		r.authedCase("Order: surprise valid", base+"/api/orders/surprise", func(r *Runner) any {
			return surprisePayload(r.travelerID, time.Now().AddDate(0, 1, 0).Format("2006-01-02"))
		}, []int{http.StatusCreated}, []int{http.StatusNotFound, http.StatusPaymentRequired, http.StatusBadRequest}),
		{
			Name: "Driver: deliveries as traveler -> 403",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.travelerToken == "" {
					return Result{Status: statusSkip, Note: "no traveler token"}
				}
				code, _, latency, err := r.do(ctx, http.MethodGet, base+"/api/driver/deliveries", r.travelerToken, nil)
				return expect(code, latency, err, []int{http.StatusForbidden}, nil)
			},
		},
		{
			Name: "Load: surprise validation path",
			Run: func(ctx context.Context, r *Runner) Result {
				return load(ctx, r, base+"/api/orders/surprise", map[string]any{})
			},
		},
	}
}

func surprisePayload(travelerID int64, date string) map[string]any {
	return map[string]any{
		"travelerId":      travelerID,
		"participantsNum": 2,
		"preferences": map[string]any{
			"style":     "Adventure",
			"activity":  "Hiking",
			"groupType": "Friends",
		},
		"trip_date":    date,
		"region":       "North",
		"trip_address": "Main St 1",
	}
}

func pingDB(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func pingRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: statusSkip, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func applyMigrations(_ context.Context, r *Runner) Result {
	if !r.cfg.ApplyMigration {
		return Result{Status: statusSkip, Note: "apply-migration=false"}
	}
	if r.cfg.DSN == "" {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	if err := infra.Migrate(r.cfg.DSN, r.cfg.MigrationsDir); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func tablesExist(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	tables, err := extractTables(r.cfg.MigrationsDir)
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
	return Result{Status: statusPass, Note: fmt.Sprintf("tables=%d", len(tables))}
}

func registerTraveler(ctx context.Context, r *Runner) Result {
	base := r.cfg.BaseURL
	username := "bench-" + uuid.NewString()[:8]
	password := "bench-password"

	start := time.Now()
	code, body, _, err := r.do(ctx, http.MethodPost, base+"/api/auth/register", "", map[string]any{
		"username": username,
		"name":     "Bench Traveler",
		"email":    username + "@bench.invalid",
		"phone":    "0900000000",
		"password": password,
		"role":     "user",
	})
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if code != http.StatusCreated {
		return Result{Status: statusFail, Note: fmt.Sprintf("register status=%d", code)}
	}
	var created struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(body, &created)

	code, body, _, err = r.do(ctx, http.MethodPost, base+"/api/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if code != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("login status=%d", code)}
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil || login.Token == "" {
		return Result{Status: statusFail, Note: "login returned no token"}
	}
	r.travelerID = created.ID
	r.travelerToken = login.Token
	return Result{Status: statusPass, Latency: time.Since(start), Note: "user=" + username}
}

// authedCase sends body with the traveler token. body may be a func(*Runner) any
// when it depends on state captured by earlier cases.
func (r *Runner) authedCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			if r.travelerToken == "" {
				return Result{Status: statusSkip, Note: "no traveler token"}
			}
			payload := body
			if fn, ok := body.(func(*Runner) any); ok {
				payload = fn(r)
			}
			code, _, latency, err := r.do(ctx, http.MethodPost, url, r.travelerToken, payload)
			return expect(code, latency, err, okStatuses, pendingStatuses)
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url, token string, body any) (int, []byte, time.Duration, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, 0, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, out, time.Since(start), err
}

func expect(code int, latency time.Duration, err error, okStatuses, pendingStatuses []int) Result {
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	note := fmt.Sprintf("status=%d", code)
	if contains(okStatuses, code) {
		return Result{Status: statusPass, Latency: latency, Note: note}
	}
	if contains(pendingStatuses, code) {
		return Result{Status: statusPending, Latency: latency, Note: note}
	}
	return Result{Status: statusFail, Latency: latency, Note: note}
}

func load(ctx context.Context, r *Runner, url string, payload any) Result {
	if r.travelerToken == "" {
		return Result{Status: statusSkip, Note: "no traveler token"}
	}
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				if _, _, _, err := r.do(ctx, http.MethodPost, url, r.travelerToken, payload); err != nil {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}
