//go:build windows

package backend

import (
	"fmt"
	"strings"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/zoeyai/zoeyauto/pkg/auto"
	"github.com/zoeyai/zoeyauto/pkg/process"
)

var (
	user32                       = syscall.NewLazyDLL("user32.dll")
	kernel32                     = syscall.NewLazyDLL("kernel32.dll")
	psapi                        = syscall.NewLazyDLL("psapi.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsIconic                 = user32.NewProc("IsIconic")
	procGetWindowLongW           = user32.NewProc("GetWindowLongW")
	procPrintWindow              = user32.NewProc("PrintWindow")
	procVkKeyScanW               = user32.NewProc("VkKeyScanW")
	procOpenProcess              = kernel32.NewProc("OpenProcess")
	procCloseHandle              = kernel32.NewProc("CloseHandle")
	procGetModuleBaseNameW       = psapi.NewProc("GetModuleBaseNameW")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procBringWindowToTop         = user32.NewProc("BringWindowToTop")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
	procGetCurrentThreadId       = kernel32.NewProc("GetCurrentThreadId")
)

const (
	gwlStyle   = ^uintptr(15) // -16
	gwlExStyle = ^uintptr(19) // -20

	wsVisible      uintptr = 0x10000000
	wsExToolWindow uintptr = 0x00000080
	wsExAppWindow  uintptr = 0x00040000

	processQueryInformation = 0x0400
	processVMRead           = 0x0010
	swRestore               = 9

	pwClientOnly        uintptr = 0x1
	pwRenderFullContent uintptr = 0x2
)

// winEnumEntry EnumWindows 收集的单个窗口
type winEnumEntry struct {
	hwnd  win.HWND
	title string
	pid   uint32
	rect  win.RECT
}

// EnumWindows 回调只注册一次。syscall.NewCallback 的数量有进程级
// 上限，每次枚举都新建回调会在长时间轮询后耗尽。
var (
	enumMu     sync.Mutex
	enumResult []winEnumEntry
	enumOnce   sync.Once
	enumProc   uintptr
)

// enumCallback 过滤出常规的顶层应用窗口：可见、带标题、
// 非工具窗口、尺寸不小于 50x50
func enumCallback(hwnd syscall.Handle, _ uintptr) uintptr {
	ret, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
	if ret == 0 {
		return 1
	}

	style, _, _ := procGetWindowLongW.Call(uintptr(hwnd), gwlStyle)
	exStyle, _, _ := procGetWindowLongW.Call(uintptr(hwnd), gwlExStyle)

	if style&wsVisible == 0 {
		return 1
	}

	if exStyle&wsExToolWindow != 0 && exStyle&wsExAppWindow == 0 {
		return 1
	}

	length, _, _ := procGetWindowTextLengthW.Call(uintptr(hwnd))
	if length == 0 {
		return 1
	}

	buf := make([]uint16, length+1)
	procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(length+1))
	title := syscall.UTF16ToString(buf)
	if title == "" {
		return 1
	}

	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return 1
	}

	var rect win.RECT
	procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&rect)))

	if int(rect.Right-rect.Left) < 50 || int(rect.Bottom-rect.Top) < 50 {
		return 1
	}

	enumResult = append(enumResult, winEnumEntry{
		hwnd:  win.HWND(hwnd),
		title: title,
		pid:   pid,
		rect:  rect,
	})
	return 1
}

// enumTopLevelWindows 枚举顶层窗口，按 Z 序从上到下返回
func enumTopLevelWindows() []winEnumEntry {
	enumOnce.Do(func() {
		enumProc = syscall.NewCallback(enumCallback)
	})

	enumMu.Lock()
	defer enumMu.Unlock()

	enumResult = enumResult[:0]
	procEnumWindows.Call(enumProc, 0)

	out := make([]winEnumEntry, len(enumResult))
	copy(out, enumResult)
	return out
}

// ==================== 窗口枚举 ====================

// ListWindows 枚举顶层窗口。EnumWindows 按 Z 序从上到下返回，
// 换算成数值越大越靠上的 Z 值。
func (b *winBackend) ListWindows() ([]WindowMeta, error) {
	entries := enumTopLevelWindows()
	foreground, _, _ := procGetForegroundWindow.Call()

	metas := make([]WindowMeta, 0, len(entries))
	for i, e := range entries {
		ownerName := getProcessName(e.pid)
		if ownerName == "" {
			if info, err := process.GetProcessByPID(int(e.pid)); err == nil {
				ownerName = info.Name
			}
		}

		metas = append(metas, WindowMeta{
			Handle:    WindowHandle(e.hwnd),
			Title:     e.title,
			Bounds:    auto.Region{X: int(e.rect.Left), Y: int(e.rect.Top), Width: int(e.rect.Right - e.rect.Left), Height: int(e.rect.Bottom - e.rect.Top)},
			Z:         len(entries) - 1 - i,
			PID:       int(e.pid),
			OwnerName: ownerName,
			Focused:   uintptr(e.hwnd) == foreground,
		})
	}

	return metas, nil
}

// IsFocused 实时查询窗口是否为前台窗口
func (b *winBackend) IsFocused(h WindowHandle) (bool, error) {
	hwnd := win.HWND(h)
	if !isWindow(hwnd) {
		return false, auto.ErrWindowNotFound
	}

	foreground, _, _ := procGetForegroundWindow.Call()
	return uintptr(hwnd) == foreground, nil
}

// ActivateWindow 把窗口带到前台。前台进程和目标进程的输入队列
// 先挂接到当前线程，否则 SetForegroundWindow 会被系统拒绝。
func (b *winBackend) ActivateWindow(h WindowHandle) error {
	hwnd := win.HWND(h)
	if !isWindow(hwnd) {
		return auto.ErrWindowNotFound
	}

	foregroundHwnd, _, _ := procGetForegroundWindow.Call()
	var foregroundThreadId uintptr
	if foregroundHwnd != 0 {
		foregroundThreadId, _, _ = procGetWindowThreadProcessId.Call(foregroundHwnd, 0)
	}

	currentThreadId, _, _ := procGetCurrentThreadId.Call()
	targetThreadId, _, _ := procGetWindowThreadProcessId.Call(uintptr(hwnd), 0)

	if foregroundThreadId != 0 && foregroundThreadId != currentThreadId {
		procAttachThreadInput.Call(currentThreadId, foregroundThreadId, 1)
		defer procAttachThreadInput.Call(currentThreadId, foregroundThreadId, 0)
	}

	if targetThreadId != 0 && targetThreadId != currentThreadId {
		procAttachThreadInput.Call(currentThreadId, targetThreadId, 1)
		defer procAttachThreadInput.Call(currentThreadId, targetThreadId, 0)
	}

	procShowWindow.Call(uintptr(hwnd), swRestore)
	procBringWindowToTop.Call(uintptr(hwnd))

	ret, _, _ := procSetForegroundWindow.Call(uintptr(hwnd))
	if ret == 0 {
		return fmt.Errorf("SetForegroundWindow 失败")
	}

	return nil
}

// ==================== 内部函数 ====================

func isWindow(hwnd win.HWND) bool {
	ret, _, _ := procIsWindow.Call(uintptr(hwnd))
	return ret != 0
}

func isIconic(hwnd win.HWND) bool {
	ret, _, _ := procIsIconic.Call(uintptr(hwnd))
	return ret != 0
}

// getProcessName 通过 PID 获取进程名称
func getProcessName(pid uint32) string {
	handle, _, _ := procOpenProcess.Call(
		uintptr(processQueryInformation|processVMRead),
		0,
		uintptr(pid),
	)
	if handle == 0 {
		return ""
	}
	defer procCloseHandle.Call(handle)

	buf := make([]uint16, 260)
	ret, _, _ := procGetModuleBaseNameW.Call(
		handle,
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if ret == 0 {
		return ""
	}

	name := syscall.UTF16ToString(buf)
	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		name = name[:len(name)-4]
	}

	return name
}
