// Package window 提供窗口枚举、焦点查询、激活和窗口截图。
// 窗口对象是枚举时刻的快照，标题和边界不随窗口变化更新；
// 焦点查询和截图每次都向后端重新验证句柄。
package window

import (
	"fmt"
	stdimage "image"
	"strings"
	"time"

	"github.com/zoeyai/zoeyauto/pkg/auto"
	"github.com/zoeyai/zoeyauto/pkg/auto/backend"
	autoimage "github.com/zoeyai/zoeyauto/pkg/auto/image"
)

// Backend 窗口注册表需要的后端能力
type Backend interface {
	ListWindows() ([]backend.WindowMeta, error)
	IsFocused(h backend.WindowHandle) (bool, error)
	ActivateWindow(h backend.WindowHandle) error
	CaptureWindow(h backend.WindowHandle) (*stdimage.RGBA, error)
}

// Registry 窗口注册表
type Registry struct {
	backend Backend
}

// NewRegistry 创建窗口注册表
func NewRegistry(b Backend) *Registry {
	return &Registry{backend: b}
}

// Window 单个顶层窗口的快照
type Window struct {
	backend Backend
	meta    backend.WindowMeta
}

// All 枚举当前所有顶层窗口
func (r *Registry) All() ([]*Window, error) {
	metas, err := r.backend.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("获取窗口列表失败: %w", err)
	}

	windows := make([]*Window, 0, len(metas))
	for _, meta := range metas {
		windows = append(windows, &Window{backend: r.backend, meta: meta})
	}
	return windows, nil
}

// Find 按标题或进程名查找窗口 (不区分大小写，支持部分匹配)
func (r *Registry) Find(filter string) ([]*Window, error) {
	windows, err := r.All()
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return windows, nil
	}

	filter = strings.ToLower(filter)
	matches := make([]*Window, 0, len(windows))
	for _, w := range windows {
		titleMatch := strings.Contains(strings.ToLower(w.meta.Title), filter)
		ownerMatch := strings.Contains(strings.ToLower(w.meta.OwnerName), filter)
		if titleMatch || ownerMatch {
			matches = append(matches, w)
		}
	}
	return matches, nil
}

// WaitFor 轮询等待匹配的窗口出现，超时返回错误
func (r *Registry) WaitFor(filter string, opts ...auto.Option) (*Window, error) {
	options := auto.ApplyOptions(opts...)
	deadline := time.Now().Add(options.Timeout)

	for {
		windows, err := r.Find(filter)
		if err != nil {
			return nil, err
		}
		if len(windows) > 0 {
			return windows[0], nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("等待窗口出现超时: %s", filter)
		}
		auto.Sleep(options.Interval)
	}
}

// Focused 返回当前持有焦点的窗口，没有时返回 ErrWindowNotFound
func (r *Registry) Focused() (*Window, error) {
	windows, err := r.All()
	if err != nil {
		return nil, err
	}
	for _, w := range windows {
		if w.meta.Focused {
			return w, nil
		}
	}
	return nil, auto.ErrWindowNotFound
}

// ==================== 快照属性 ====================

// Handle 平台窗口句柄
func (w *Window) Handle() backend.WindowHandle {
	return w.meta.Handle
}

// Title 窗口标题
func (w *Window) Title() string {
	return w.meta.Title
}

// Bounds 窗口在屏幕上的边界
func (w *Window) Bounds() auto.Region {
	return w.meta.Bounds
}

// X 窗口左上角横坐标
func (w *Window) X() int {
	return w.meta.Bounds.X
}

// Y 窗口左上角纵坐标
func (w *Window) Y() int {
	return w.meta.Bounds.Y
}

// Width 窗口宽度
func (w *Window) Width() int {
	return w.meta.Bounds.Width
}

// Height 窗口高度
func (w *Window) Height() int {
	return w.meta.Bounds.Height
}

// Z 叠放次序，数值越大越靠上
func (w *Window) Z() int {
	return w.meta.Z
}

// PID 窗口所属进程
func (w *Window) PID() int {
	return w.meta.PID
}

// OwnerName 窗口所属进程名称
func (w *Window) OwnerName() string {
	return w.meta.OwnerName
}

// ==================== 实时操作 ====================

// IsFocused 实时查询窗口是否持有输入焦点。
// 窗口已关闭时返回 ErrWindowNotFound。
func (w *Window) IsFocused() (bool, error) {
	return w.backend.IsFocused(w.meta.Handle)
}

// Activate 把窗口带到前台并交给它输入焦点
func (w *Window) Activate() error {
	return w.backend.ActivateWindow(w.meta.Handle)
}

// CaptureImage 截取窗口当前内容。窗口已关闭时返回
// ErrWindowNotFound，最小化时返回 ErrWindowMinimized。
func (w *Window) CaptureImage() (*autoimage.Image, error) {
	rgba, err := w.backend.CaptureWindow(w.meta.Handle)
	if err != nil {
		return nil, err
	}
	return autoimage.NewFromRGBA(rgba), nil
}

// Refresh 按句柄重新获取窗口快照。窗口已不在枚举结果中时
// 返回 ErrWindowNotFound。
func (w *Window) Refresh() (*Window, error) {
	metas, err := w.backend.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("获取窗口列表失败: %w", err)
	}
	for _, meta := range metas {
		if meta.Handle == w.meta.Handle {
			return &Window{backend: w.backend, meta: meta}, nil
		}
	}
	return nil, auto.ErrWindowNotFound
}
