// Package workflow 顺序执行的多步骤脚本，步骤可配置重试与超时，步骤间通过 Data 共享数据
package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/logger"
)

var ErrStepTimeout = errors.New("workflow: step timeout")

// Status 工作流/步骤状态
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusFailure
	StatusRetrying
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusRunning:
		return "Running"
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRetrying:
		return "Retrying"
	case StatusSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// StepFunc 步骤执行函数
type StepFunc func(ctx context.Context, data *Data) error

// StepOption 步骤选项
type StepOption func(*Step)

// WithRetries 失败后最多重试 n 次，每次间隔 delay
func WithRetries(n int, delay time.Duration) StepOption {
	return func(s *Step) {
		s.MaxRetries = n
		s.RetryDelay = delay
	}
}

// WithTimeout 单次执行超时
func WithTimeout(d time.Duration) StepOption {
	return func(s *Step) { s.Timeout = d }
}

// Optional 失败时跳过而不是终止工作流
func Optional() StepOption {
	return func(s *Step) { s.Optional = true }
}

// Step 工作流步骤
type Step struct {
	Name       string
	Func       StepFunc
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	Optional   bool

	attempts int
	status   Status
	err      error
	duration time.Duration
}

// Status 步骤状态
func (s *Step) Status() Status { return s.status }

// Err 最后一次错误
func (s *Step) Err() error { return s.err }

// Attempts 执行次数 (含首次)
func (s *Step) Attempts() int { return s.attempts }

// Duration 最后一次执行耗时
func (s *Step) Duration() time.Duration { return s.duration }

// Data 步骤间共享的黑板
type Data struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewData 创建数据容器
func NewData() *Data {
	return &Data{values: make(map[string]any)}
}

// Set 设置数据
func (d *Data) Set(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = value
}

// Get 获取数据
func (d *Data) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[key]
	return v, ok
}

// Value 按类型取值，类型不符视为不存在
func Value[T any](d *Data, key string) (T, bool) {
	var zero T
	v, ok := d.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Workflow 工作流，非并发安全，同一时间只能 Run 一次
type Workflow struct {
	id     string
	steps  []*Step
	data   *Data
	logger logger.Logger
	status Status
}

// New 创建工作流
func New(id string, l logger.Logger) *Workflow {
	return &Workflow{
		id:     id,
		data:   NewData(),
		logger: logger.OrNoop(l).Named("workflow." + id),
		status: StatusPending,
	}
}

// AddStep 添加步骤，默认不重试、超时 30s
func (w *Workflow) AddStep(name string, fn StepFunc, opts ...StepOption) *Workflow {
	step := &Step{
		Name:       name,
		Func:       fn,
		RetryDelay: time.Second,
		Timeout:    30 * time.Second,
		status:     StatusPending,
	}
	for _, opt := range opts {
		opt(step)
	}
	w.steps = append(w.steps, step)
	return w
}

// Run 依次执行所有步骤
func (w *Workflow) Run(ctx context.Context) error {
	w.status = StatusRunning
	w.logger.Info("workflow started", "total_steps", len(w.steps))

	for i, step := range w.steps {
		w.logger.Info("executing step", "step", step.Name, "index", i+1, "total", len(w.steps))

		if err := w.runStep(ctx, step); err != nil {
			if step.Optional && ctx.Err() == nil {
				step.status = StatusSkipped
				w.logger.Warn("optional step failed, skipped", "step", step.Name, "error", err)
				continue
			}
			step.status = StatusFailure
			w.status = StatusFailure
			return errors.Wrapf(err, "step %s failed after %d attempts", step.Name, step.attempts)
		}

		step.status = StatusSuccess
		w.logger.Info("step completed", "step", step.Name, "duration", step.duration)
	}

	w.status = StatusSuccess
	w.logger.Info("workflow completed successfully")
	return nil
}

// runStep 执行单个步骤，失败时按配置重试；等待重试期间响应取消
func (w *Workflow) runStep(ctx context.Context, step *Step) error {
	for {
		step.attempts++
		step.status = StatusRunning
		err := w.execute(ctx, step)
		if err == nil {
			step.err = nil
			return nil
		}
		step.err = err
		w.logger.Error("step failed", "step", step.Name, "attempt", step.attempts, "error", err)

		if step.attempts > step.MaxRetries || ctx.Err() != nil {
			return err
		}
		step.status = StatusRetrying
		w.logger.Info("retrying step", "step", step.Name, "retry", step.attempts, "max", step.MaxRetries)

		timer := time.NewTimer(step.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.CombineErrors(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func (w *Workflow) execute(ctx context.Context, step *Step) error {
	start := time.Now()
	defer func() { step.duration = time.Since(start) }()

	stepCtx, cancel := context.WithTimeout(ctx, step.Timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- step.Func(stepCtx, w.data)
	}()

	select {
	case err := <-errCh:
		return err
	case <-stepCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrapf(ErrStepTimeout, "after %v", step.Timeout)
	}
}

// Data 工作流数据
func (w *Workflow) Data() *Data { return w.data }

// Status 工作流状态
func (w *Workflow) Status() Status { return w.status }

// Steps 所有步骤
func (w *Workflow) Steps() []*Step { return w.steps }

// Reset 重置状态与数据以便再次运行
func (w *Workflow) Reset() {
	w.status = StatusPending
	w.data = NewData()
	for _, step := range w.steps {
		step.status = StatusPending
		step.attempts = 0
		step.err = nil
		step.duration = 0
	}
}
