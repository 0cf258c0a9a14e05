// Package api 学习平台后端的 HTTP 客户端：附带令牌、限流、超时，
// 已认证请求遇到 401 时通过事件总线广播会话过期
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lk2023060901/kidlingo/app/learner/internal/event"
	"github.com/lk2023060901/kidlingo/app/learner/internal/metrics"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"golang.org/x/time/rate"
)

// TokenSource 提供当前会话令牌，没有时返回空串
type TokenSource interface {
	Token(ctx context.Context) string
}

// Client 后端客户端
type Client struct {
	config  *Config
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	bus     *event.Bus
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewClient 创建客户端，tokens 与 m 可以为 nil
func NewClient(cfg *Config, tokens TokenSource, bus *event.Bus, m *metrics.Metrics, l logger.Logger) (*Client, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "merge api config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(newCfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base_url")
	}

	limit := rate.Inf
	if newCfg.RateLimit > 0 {
		limit = rate.Limit(newCfg.RateLimit)
	}
	burst := newCfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		config:  newCfg,
		base:    base,
		http:    &http.Client{},
		tokens:  tokens,
		bus:     bus,
		limiter: rate.NewLimiter(limit, burst),
		metrics: m,
		logger:  logger.OrNoop(l).Named("api"),
	}, nil
}

// SetTokenSource 替换令牌来源，用于组装阶段解开循环依赖
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL API 根地址
func (c *Client) BaseURL() string {
	return c.base.String()
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	anonymous   bool
}

// RequestOption 单次请求选项
type RequestOption func(*request)

// Anonymous 不附带令牌，401 也不视为会话过期 (登录、注册)
func Anonymous() RequestOption {
	return func(r *request) { r.anonymous = true }
}

// WithQuery 附加查询参数
func WithQuery(q url.Values) RequestOption {
	return func(r *request) { r.query = q }
}

// Get 发送 GET 并解析 JSON 响应
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, newRequest(http.MethodGet, path, nil, "", opts), decodeInto(out))
}

// Post 发送 JSON 请求体
func (c *Client) Post(ctx context.Context, path string, in, out any, opts ...RequestOption) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out, opts)
}

// Put 发送 JSON 请求体
func (c *Client) Put(ctx context.Context, path string, in, out any, opts ...RequestOption) error {
	return c.sendJSON(ctx, http.MethodPut, path, in, out, opts)
}

// PostForm 发送 application/x-www-form-urlencoded
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any, opts ...RequestOption) error {
	req := newRequest(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", opts)
	return c.do(ctx, req, decodeInto(out))
}

// PostMultipart 以 multipart/form-data 上传单个文件
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, r io.Reader, out any, opts ...RequestOption) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, r); err != nil {
		return errors.Wrap(err, "copy upload")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close multipart writer")
	}
	return c.do(ctx, newRequest(http.MethodPost, path, &buf, mw.FormDataContentType(), opts), decodeInto(out))
}

// Stream POST JSON 并按块回调响应正文，返回完整正文
func (c *Client) Stream(ctx context.Context, path string, in any, onChunk func(string), opts ...RequestOption) (string, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	var full strings.Builder
	err = c.do(ctx, newRequest(http.MethodPost, path, bytes.NewReader(body), "application/json", opts), func(resp *http.Response) error {
		buf := make([]byte, 1024)
		for {
			n, rerr := resp.Body.Read(buf)
			if n > 0 {
				chunk := string(buf[:n])
				full.WriteString(chunk)
				if onChunk != nil {
					onChunk(chunk)
				}
			}
			if rerr == io.EOF {
				return nil
			}
			if rerr != nil {
				return errors.Mark(errors.Wrap(rerr, "read stream"), ErrNetwork)
			}
		}
	})
	return full.String(), err
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any, opts []RequestOption) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, newRequest(method, path, body, "application/json", opts), decodeInto(out))
}

func newRequest(method, path string, body io.Reader, contentType string, opts []RequestOption) *request {
	r := &request{method: method, path: path, body: body, contentType: contentType}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func decodeInto(out any) func(*http.Response) error {
	return func(resp *http.Response) error {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Mark(errors.Wrap(err, "decode response"), ErrDecode)
		}
		return nil
	}
}

// do 执行请求，handle 只在 2xx 时调用且在超时上下文内完成
func (c *Client) do(ctx context.Context, r *request, handle func(*http.Response) error) (err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestID := uuid.NewString()
	ctx = logger.WithRequestID(ctx, requestID)

	target := *c.base
	target.Path += r.path
	if r.query != nil {
		target.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target.String(), r.body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	withToken := false
	if !r.anonymous && c.tokens != nil {
		if tok := c.tokens.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
			withToken = true
		}
	}

	endpoint := r.method + " " + endpointLabel(r.path)
	start := time.Now()
	c.metrics.IncrActiveRequest()
	defer func() {
		c.metrics.DecrActiveRequest()
		c.metrics.RecordRequest(endpoint, err == nil, time.Since(start).Seconds())
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed", "endpoint", endpoint, "error", err)
		return errors.Mark(errors.Wrapf(err, "%s %s", r.method, r.path), ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode, Method: r.method, Path: r.path, Detail: readDetail(resp.Body)}
		c.logger.DebugContext(ctx, "request rejected", "endpoint", endpoint, "status", resp.StatusCode, "detail", apiErr.Detail)
		if resp.StatusCode == http.StatusUnauthorized && withToken && c.bus != nil {
			c.bus.Publish(event.Event{Topic: event.SessionExpired, Payload: r.path})
		}
		return newStatusError(apiErr)
	}

	return handle(resp)
}

func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body kidapi.ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return body.Text()
}

var idSegment = regexp.MustCompile(`/(\d+|DH\d+|[A-Za-z]+\d+)(/|$)`)

// endpointLabel 把路径中的 id 段替换为 :id，控制指标基数
func endpointLabel(path string) string {
	for {
		next := idSegment.ReplaceAllString(path, "/:id$2")
		if next == path {
			return path
		}
		path = next
	}
}
