package auto

import "time"

// Option 配置选项函数类型
type Option func(*Options)

// Options 自动化操作配置
type Options struct {
	// Timeout 操作超时时间（等待类操作使用）
	Timeout time.Duration
	// Interval 轮询间隔
	Interval time.Duration
	// Duration 拟人移动的目标耗时
	Duration time.Duration
	// Step 拟人移动的采样间隔
	Step time.Duration
	// Filter 窗口查找的过滤关键字（匹配标题或进程名）
	Filter string
}

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		Timeout:  3 * time.Second,
		Interval: DefaultPollInterval,
		Duration: DefaultMoveDuration,
		Step:     DefaultMoveStep,
	}
}

// ApplyOptions 应用配置选项
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithTimeout 设置超时时间
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithInterval 设置轮询间隔
func WithInterval(d time.Duration) Option {
	return func(o *Options) {
		o.Interval = d
	}
}

// WithDuration 设置拟人移动耗时
func WithDuration(d time.Duration) Option {
	return func(o *Options) {
		o.Duration = d
	}
}

// WithStep 设置拟人移动采样间隔
func WithStep(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Step = d
		}
	}
}

// WithFilter 设置窗口过滤关键字
func WithFilter(keyword string) Option {
	return func(o *Options) {
		o.Filter = keyword
	}
}

// 默认参数
const (
	// DefaultPollInterval 默认轮询间隔
	DefaultPollInterval = 200 * time.Millisecond
	// DefaultMoveDuration 拟人移动默认耗时
	DefaultMoveDuration = 500 * time.Millisecond
	// DefaultMoveStep 拟人移动默认采样间隔
	DefaultMoveStep = 10 * time.Millisecond
	// MinHumanlikeDistance 小于该距离不做欠冲修正（像素）
	MinHumanlikeDistance = 50
)
