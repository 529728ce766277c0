// Package backend 定义平台后端契约：光标控制、按键注入、窗口枚举、
// 屏幕截图四组能力。每个目标平台提供一份实现，通过构建标签在编译期
// 选择，运行期不做平台分支。
package backend

import (
	"image"

	"github.com/zoeyai/zoeyauto/pkg/auto"
)

// WindowHandle 平台窗口句柄。X11 为窗口 XID，Windows 为 HWND，
// macOS 为 CGWindowID。句柄可能在枚举后失效，每次操作前都要重新校验。
type WindowHandle uintptr

// WindowMeta 枚举时刻的窗口快照
type WindowMeta struct {
	Handle    WindowHandle `json:"handle"`
	Title     string       `json:"title"`
	Bounds    auto.Region  `json:"bounds"`
	Z         int          `json:"z"`
	PID       int          `json:"pid"`
	OwnerName string       `json:"owner_name"`
	Focused   bool         `json:"focused"`
}

// KeyCode 解析后的平台按键码。各平台只使用与自己相关的字段：
// X11/Windows 使用 Code（keycode / 虚拟键码），Windows 对布局外字符
// 改用 Char 走 Unicode 扫描码注入，macOS 使用 Name（按键名）。
type KeyCode struct {
	Code uint32
	Char rune
	Name string
}

// CursorControl 光标控制能力
type CursorControl interface {
	// SetCursorPos 立即移动系统光标
	SetCursorPos(x, y int) error
	// GetCursorPos 读取当前光标位置
	GetCursorPos() (auto.Point, error)
}

// KeyInjector 输入注入能力
type KeyInjector interface {
	// ResolveKey 把按键请求解析为平台按键码序列，
	// 顺序为先修饰键后主键。无法解析时返回 ErrUnsupportedKey。
	ResolveKey(k auto.Key) ([]KeyCode, error)
	// InjectKeyEvent 注入一次按下或抬起事件
	InjectKeyEvent(code KeyCode, pressed bool) error
	// InjectButtonEvent 注入一次鼠标按钮事件。滚动按钮在按下时
	// 滚动一格，抬起为空操作。
	InjectButtonEvent(btn auto.MouseButton, pressed bool) error
}

// WindowEnumerator 窗口枚举能力
type WindowEnumerator interface {
	// ListWindows 返回当前顶层窗口快照，顺序为系统枚举顺序
	ListWindows() ([]WindowMeta, error)
	// IsFocused 实时查询窗口是否持有输入焦点
	IsFocused(h WindowHandle) (bool, error)
	// ActivateWindow 把窗口置前并尝试转移焦点
	ActivateWindow(h WindowHandle) error
}

// ScreenCapture 截图能力
type ScreenCapture interface {
	// CaptureWindow 截取窗口客户区为 RGBA 栅格。
	// 尺寸与 ListWindows 报告的客户区一致。
	// 句柄失效返回 ErrWindowNotFound，最小化返回 ErrWindowMinimized，
	// 系统调用失败返回 ErrCaptureFailed。
	CaptureWindow(h WindowHandle) (*image.RGBA, error)
	// ScreenSize 主屏尺寸（逻辑像素）
	ScreenSize() (width, height int, err error)
}

// Backend 平台后端完整契约
type Backend interface {
	CursorControl
	KeyInjector
	WindowEnumerator
	ScreenCapture
	// Close 释放后端持有的系统资源
	Close() error
}
