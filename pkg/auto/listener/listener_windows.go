//go:build windows

package listener

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"
)

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	kernel32                = syscall.NewLazyDLL("kernel32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procGetCurrentThreadId  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whKeyboardLL = 13

	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
	wmQuit       = 0x0012
)

// kbdllHookStruct 对应 Win32 的 KBDLLHOOKSTRUCT
type kbdllHookStruct struct {
	VkCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// pumpMsg 对应 Win32 的 MSG
type pumpMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// 钩子回调只注册一次。syscall.NewCallback 的数量有进程级上限，
// 反复创建监听器时不能每次都注册新回调。活动监听器同时只允许
// 一个，回调通过 activeListener 找到事件队列。
var (
	hookMu         sync.Mutex
	hookOnce       sync.Once
	hookProc       uintptr
	activeListener *Listener
	pumpThreadID   uint32
	pumpDone       chan struct{}
)

// keyboardProc 低级键盘钩子回调，在消息循环线程上执行。
// 回调内不能做耗时操作，事件写不进队列就直接丢弃。
func keyboardProc(code, wparam, lparam uintptr) uintptr {
	if int32(code) >= 0 {
		switch wparam {
		case wmKeyDown, wmSysKeyDown, wmKeyUp, wmSysKeyUp:
			kb := (*kbdllHookStruct)(unsafe.Pointer(lparam))
			ev := KeyEvent{
				Code:    kb.VkCode,
				Pressed: wparam == wmKeyDown || wparam == wmSysKeyDown,
				When:    time.Now(),
			}
			hookMu.Lock()
			l := activeListener
			hookMu.Unlock()
			if l != nil {
				select {
				case l.events <- ev:
				default:
				}
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, code, wparam, lparam)
	return ret
}

// start 在独立线程上安装钩子并运行消息循环
func (l *Listener) start() error {
	hookMu.Lock()
	if activeListener != nil {
		hookMu.Unlock()
		return ErrAlreadyActive
	}
	activeListener = l
	pumpDone = make(chan struct{})
	hookMu.Unlock()

	hookOnce.Do(func() {
		hookProc = syscall.NewCallback(keyboardProc)
	})

	initCh := make(chan error, 1)
	go runPump(initCh)
	if err := <-initCh; err != nil {
		hookMu.Lock()
		activeListener = nil
		hookMu.Unlock()
		return err
	}
	return nil
}

// stop 通知消息循环退出并等待钩子卸载完成
func (l *Listener) stop() error {
	hookMu.Lock()
	if activeListener != l {
		hookMu.Unlock()
		return nil
	}
	tid := pumpThreadID
	done := pumpDone
	hookMu.Unlock()

	procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
	<-done

	hookMu.Lock()
	activeListener = nil
	hookMu.Unlock()
	return nil
}

// runPump 安装 WH_KEYBOARD_LL 钩子并驱动消息循环。低级钩子的
// 回调由系统投递到安装线程，安装和取消息必须在同一个线程上。
func runPump(initCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(pumpDone)

	tid, _, _ := procGetCurrentThreadId.Call()
	hook, _, callErr := procSetWindowsHookExW.Call(whKeyboardLL, hookProc, 0, 0)
	if hook == 0 {
		initCh <- fmt.Errorf("安装键盘钩子失败: %w", callErr)
		return
	}

	hookMu.Lock()
	pumpThreadID = uint32(tid)
	hookMu.Unlock()
	initCh <- nil

	var m pumpMsg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		// 0 表示收到 WM_QUIT，-1 表示出错，两者都结束循环
		if ret == 0 || int32(ret) == -1 {
			break
		}
	}

	procUnhookWindowsHookEx.Call(hook)
}
