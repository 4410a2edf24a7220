package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBaseURL 本地开发后端的默认地址
	DefaultBaseURL = "http://127.0.0.1:8000"
	// DefaultTimeout 单个请求的默认超时，计划生成可能需要较长时间
	DefaultTimeout = 120 * time.Second

	maxResponseBytes = 8 << 20
)

// ErrUnavailable 表示没有收到任何 HTTP 响应（网络错误、连接被拒绝、超时）
var ErrUnavailable = errors.New("backend unavailable")

// TransportError 表示请求在传输层失败，后端没有返回任何响应
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, ErrUnavailable) 对所有传输错误成立
func (e *TransportError) Is(target error) bool {
	return target == ErrUnavailable
}

// Response 是收到的原始 HTTP 响应，状态码不做任何判断，交给 plan 包规范化
type Response struct {
	Status int
	Body   []byte
}

// OK 判断状态码是否为 2xx
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// 全局共享的HTTP客户端，实现连接池化
var (
	sharedHTTPClient *http.Client
	httpClientOnce   sync.Once
)

// getSharedHTTPClient 返回共享的HTTP客户端实例。
// 超时由每个请求的 context 控制，这里不设置 Client.Timeout。
func getSharedHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		sharedHTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   4,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		}
	})
	return sharedHTTPClient
}

// Client 项目管理助手后端的 REST 客户端。不做重试。
type Client struct {
	baseURL string
	doer    Doer
	timeout time.Duration
	logger  *slog.Logger
}

// Option 配置 Client
type Option func(*Client)

// WithDoer 替换底层 HTTP 执行器，测试中用于注入假传输
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTimeout 设置单个请求的超时；<= 0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient 创建后端客户端。
// baseURL: 后端地址，为空时使用 DefaultBaseURL，末尾的斜杠会被去掉
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		doer:    getSharedHTTPClient(),
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL 返回规范化后的后端地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask 向助手提问
func (c *Client) Ask(ctx context.Context, question, mode string) (*Response, error) {
	return c.post(ctx, "/api/ask/", askRequest{Question: question, Mode: mode})
}

// FullPlan 根据项目描述生成完整计划（WBS、甘特图、风险）
func (c *Client) FullPlan(ctx context.Context, description string) (*Response, error) {
	return c.post(ctx, "/api/plan/full/", fullPlanRequest{ProjectDescription: description})
}

// WBS 只生成工作分解结构
func (c *Client) WBS(ctx context.Context, projectID, scope string) (*Response, error) {
	return c.post(ctx, "/api/wbs/", scopeRequest{ProjectID: projectID, ProjectScope: scope})
}

// Gantt 只生成甘特图
func (c *Client) Gantt(ctx context.Context, projectID, scope string) (*Response, error) {
	return c.post(ctx, "/api/gantt/", scopeRequest{ProjectID: projectID, ProjectScope: scope})
}

// Risks 生成风险登记册，wbs_id 与 project_id 相同
func (c *Client) Risks(ctx context.Context, projectID, scope string) (*Response, error) {
	return c.post(ctx, "/api/risk/generate/", riskRequest{ProjectID: projectID, WBSID: projectID, ProjectScope: scope})
}

// post 发送 JSON 请求。只要收到 HTTP 响应就返回 Response，不论状态码；
// 没有收到响应时返回 *TransportError。
func (c *Client) post(ctx context.Context, endpoint string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "endpoint", endpoint, "error", err)
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		// 响应头已经到达，但正文读取中断，按传输失败处理
		c.logger.Warn("reading backend response failed", "endpoint", endpoint, "status", resp.StatusCode, "error", err)
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	out := &Response{Status: resp.StatusCode, Body: data}
	level := slog.LevelDebug
	if !out.OK() {
		level = slog.LevelInfo
	}
	c.logger.Log(ctx, level, "backend request finished",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start))
	return out, nil
}
