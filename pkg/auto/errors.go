package auto

import (
	"errors"
	"fmt"
)

// 错误分类。所有后端失败都以类型化错误上抛给直接调用方，
// 核心层不做自动重试，也不会用默认值掩盖失败。
var (
	// ErrMovementInProgress 同一鼠标实例上已有拟人移动正在执行。
	// 调用方可稍后重试，调用本身不会排队等待。
	ErrMovementInProgress = errors.New("拟人移动正在进行中")

	// ErrUnsupportedKey 当前键盘布局无法产生请求的按键
	ErrUnsupportedKey = errors.New("当前键盘布局不支持该按键")

	// ErrOutOfBounds 像素查询超出图像范围
	ErrOutOfBounds = errors.New("坐标超出图像范围")

	// ErrWindowNotFound 窗口句柄已失效（窗口在枚举后被关闭）
	ErrWindowNotFound = errors.New("窗口不存在或已关闭")

	// ErrWindowMinimized 窗口处于最小化状态，无法截图
	ErrWindowMinimized = errors.New("窗口已最小化")

	// ErrCaptureFailed 系统截图调用失败
	ErrCaptureFailed = errors.New("窗口截图失败")

	// ErrUnsupportedPlatform 当前平台没有可用的后端实现
	ErrUnsupportedPlatform = errors.New("当前平台不支持该操作")
)

// PlatformError 系统调用失败。只影响单次操作，不影响进程。
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("平台调用 %s 失败: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewPlatformError 包装一次失败的系统调用
func NewPlatformError(op string, err error) *PlatformError {
	return &PlatformError{Op: op, Err: err}
}

// IsCaptureError 判断是否为截图类错误（任一子类）
func IsCaptureError(err error) bool {
	return errors.Is(err, ErrWindowNotFound) ||
		errors.Is(err, ErrWindowMinimized) ||
		errors.Is(err, ErrCaptureFailed)
}
