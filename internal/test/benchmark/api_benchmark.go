//go:build benchmark

package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// APIBenchmark 对运行中的服务并发发起请求
type APIBenchmark struct {
	BaseURL     string
	Concurrency int
	Requests    int
	AuthToken   string
	Client      *http.Client
}

// BenchmarkResult 一轮压测的统计结果
type BenchmarkResult struct {
	URL            string        `json:"url"`
	Method         string        `json:"method"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"total_requests"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	TotalTime      time.Duration `json:"total_time"`
	AverageTime    time.Duration `json:"average_time"`
	P95Time        time.Duration `json:"p95_time"`
	MaxTime        time.Duration `json:"max_time"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	StatusCodes    map[int]int   `json:"status_codes"`
	Errors         []string      `json:"errors"`
	// Bodies 成功响应的原始内容，仅在 KeepBodies 时收集
	Bodies [][]byte `json:"-"`
}

// Envelope 服务统一响应格式
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type requestResult struct {
	duration   time.Duration
	statusCode int
	body       []byte
	err        error
}

// NewAPIBenchmark 创建压测实例
func NewAPIBenchmark(baseURL string, concurrency, requests int, authToken string) *APIBenchmark {
	return &APIBenchmark{
		BaseURL:     baseURL,
		Concurrency: concurrency,
		Requests:    requests,
		AuthToken:   authToken,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Do 发起单个请求并解析响应
func (b *APIBenchmark) Do(method, path string, payload interface{}) (int, *Envelope, error) {
	body, err := encode(payload)
	if err != nil {
		return 0, nil, err
	}
	r := b.send(method, b.BaseURL+path, body, true)
	if r.err != nil {
		return 0, nil, r.err
	}
	var env Envelope
	if err := json.Unmarshal(r.body, &env); err != nil {
		return r.statusCode, nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return r.statusCode, &env, nil
}

// RunGET 执行GET请求的压测
func (b *APIBenchmark) RunGET(path string) *BenchmarkResult {
	return b.runTest(http.MethodGet, b.BaseURL+path, nil, false)
}

// RunPOST 执行POST请求的压测，keepBodies 为真时保留成功响应
func (b *APIBenchmark) RunPOST(path string, payload interface{}, keepBodies bool) *BenchmarkResult {
	url := b.BaseURL + path
	body, err := encode(payload)
	if err != nil {
		return &BenchmarkResult{URL: url, Method: http.MethodPost, Errors: []string{err.Error()}}
	}
	return b.runTest(http.MethodPost, url, body, keepBodies)
}

func encode(payload interface{}) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("JSON编码错误: %w", err)
	}
	return data, nil
}

func (b *APIBenchmark) send(method, url string, payload []byte, keepBody bool) requestResult {
	start := time.Now()
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return requestResult{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if b.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+b.AuthToken)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return requestResult{err: err}
	}
	defer resp.Body.Close()

	r := requestResult{statusCode: resp.StatusCode}
	if keepBody {
		r.body, r.err = io.ReadAll(resp.Body)
	} else {
		_, r.err = io.Copy(io.Discard, resp.Body)
	}
	r.duration = time.Since(start)
	return r
}

// runTest 以固定并发执行 Requests 次请求
func (b *APIBenchmark) runTest(method, url string, payload []byte, keepBodies bool) *BenchmarkResult {
	results := make(chan requestResult, b.Requests)
	var wg sync.WaitGroup
	limiter := make(chan struct{}, b.Concurrency)

	startTime := time.Now()
	for i := 0; i < b.Requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter <- struct{}{}
			defer func() { <-limiter }()
			results <- b.send(method, url, payload, keepBodies)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BenchmarkResult{
		URL:           url,
		Method:        method,
		Concurrency:   b.Concurrency,
		TotalRequests: b.Requests,
		StatusCodes:   make(map[int]int),
	}
	var durations []time.Duration
	var total time.Duration
	for r := range results {
		if r.err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, r.err.Error())
			continue
		}
		durations = append(durations, r.duration)
		total += r.duration
		result.StatusCodes[r.statusCode]++
		if r.statusCode >= 200 && r.statusCode < 300 {
			result.SuccessCount++
			if keepBodies {
				result.Bodies = append(result.Bodies, r.body)
			}
		} else {
			result.FailureCount++
		}
	}

	result.TotalTime = time.Since(startTime)
	result.RequestsPerSec = float64(b.Requests) / result.TotalTime.Seconds()
	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		result.AverageTime = total / time.Duration(len(durations))
		result.P95Time = durations[len(durations)*95/100]
		result.MaxTime = durations[len(durations)-1]
	}
	return result
}

// PrintResult 打印压测结果
func (r *BenchmarkResult) PrintResult() {
	fmt.Printf("压测结果: %s %s\n", r.Method, r.URL)
	fmt.Printf("并发数: %d  总请求数: %d  成功: %d  失败: %d\n", r.Concurrency, r.TotalRequests, r.SuccessCount, r.FailureCount)
	fmt.Printf("总耗时: %s  平均: %s  P95: %s  最大: %s\n", r.TotalTime, r.AverageTime, r.P95Time, r.MaxTime)
	fmt.Printf("每秒请求数: %.2f\n", r.RequestsPerSec)
	fmt.Printf("状态码分布:\n")
	for code, count := range r.StatusCodes {
		fmt.Printf("  %d: %d\n", code, count)
	}
	if len(r.Errors) > 0 {
		fmt.Printf("错误信息 (最多显示5个):\n")
		for i, err := range r.Errors {
			if i >= 5 {
				fmt.Printf("  ... 还有 %d 个错误\n", len(r.Errors)-5)
				break
			}
			fmt.Printf("  %s\n", err)
		}
	}
}
