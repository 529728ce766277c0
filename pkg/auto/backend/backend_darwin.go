//go:build darwin

package backend

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework Cocoa -framework AppKit
#import <CoreGraphics/CoreGraphics.h>
#import <Cocoa/Cocoa.h>
#import <AppKit/AppKit.h>

// 窗口信息结构
typedef struct {
    int pid;
    int windowId;
    int x;
    int y;
    int width;
    int height;
    int onscreen;
    char title[512];
    char ownerName[256];
} WindowInfoC;

// 通过 PID 激活应用窗口
int activateAppByPID(int pid) {
    NSRunningApplication* app = [NSRunningApplication runningApplicationWithProcessIdentifier:pid];
    if (app == nil) {
        return 0;
    }
    [app activateWithOptions:NSApplicationActivateAllWindows];
    return 1;
}

// 获取前台应用的 PID
int frontmostAppPID(void) {
    NSRunningApplication* app = [[NSWorkspace sharedWorkspace] frontmostApplication];
    if (app == nil) {
        return 0;
    }
    return (int)[app processIdentifier];
}

// 获取窗口列表，按 Z 序从上到下
int getWindowList(WindowInfoC* windows, int maxCount) {
    CFArrayRef windowList = CGWindowListCopyWindowInfo(
        kCGWindowListOptionAll | kCGWindowListExcludeDesktopElements,
        kCGNullWindowID
    );

    if (windowList == NULL) {
        return 0;
    }

    CFIndex count = CFArrayGetCount(windowList);
    int resultCount = 0;

    for (CFIndex i = 0; i < count && resultCount < maxCount; i++) {
        CFDictionaryRef window = (CFDictionaryRef)CFArrayGetValueAtIndex(windowList, i);

        CFNumberRef layerRef = (CFNumberRef)CFDictionaryGetValue(window, kCGWindowLayer);
        int layer = 0;
        if (layerRef) {
            CFNumberGetValue(layerRef, kCFNumberIntType, &layer);
        }
        if (layer != 0) {
            continue;
        }

        CFNumberRef pidRef = (CFNumberRef)CFDictionaryGetValue(window, kCGWindowOwnerPID);
        int pid = 0;
        if (pidRef) {
            CFNumberGetValue(pidRef, kCFNumberIntType, &pid);
        }
        if (pid == 0) {
            continue;
        }

        CFNumberRef windowIdRef = (CFNumberRef)CFDictionaryGetValue(window, kCGWindowNumber);
        int windowId = 0;
        if (windowIdRef) {
            CFNumberGetValue(windowIdRef, kCFNumberIntType, &windowId);
        }

        int onscreen = 0;
        CFBooleanRef onscreenRef = (CFBooleanRef)CFDictionaryGetValue(window, kCGWindowIsOnscreen);
        if (onscreenRef && CFBooleanGetValue(onscreenRef)) {
            onscreen = 1;
        }

        char ownerName[256] = {0};
        CFStringRef ownerRef = (CFStringRef)CFDictionaryGetValue(window, kCGWindowOwnerName);
        if (ownerRef) {
            CFStringGetCString(ownerRef, ownerName, sizeof(ownerName), kCFStringEncodingUTF8);
        }

        CFStringRef nameRef = (CFStringRef)CFDictionaryGetValue(window, kCGWindowName);
        char title[512] = {0};
        if (nameRef) {
            CFStringGetCString(nameRef, title, sizeof(title), kCFStringEncodingUTF8);
        }

        if (strlen(title) == 0) {
            strncpy(title, ownerName, sizeof(title) - 1);
        }

        if (strlen(title) == 0) {
            continue;
        }

        CFDictionaryRef boundsRef = (CFDictionaryRef)CFDictionaryGetValue(window, kCGWindowBounds);
        CGRect bounds;
        if (boundsRef) {
            CGRectMakeWithDictionaryRepresentation(boundsRef, &bounds);
        } else {
            bounds = CGRectZero;
        }

        if (bounds.size.width < 50 || bounds.size.height < 50) {
            continue;
        }

        windows[resultCount].pid = pid;
        windows[resultCount].windowId = windowId;
        windows[resultCount].x = (int)bounds.origin.x;
        windows[resultCount].y = (int)bounds.origin.y;
        windows[resultCount].width = (int)bounds.size.width;
        windows[resultCount].height = (int)bounds.size.height;
        windows[resultCount].onscreen = onscreen;
        strncpy(windows[resultCount].title, title, sizeof(windows[resultCount].title) - 1);
        strncpy(windows[resultCount].ownerName, ownerName, sizeof(windows[resultCount].ownerName) - 1);

        resultCount++;
    }

    CFRelease(windowList);
    return resultCount;
}
*/
import "C"
import (
	"fmt"
	"image"
	"os/exec"
	"strings"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/zoeyauto/pkg/auto"
	"github.com/zoeyai/zoeyauto/pkg/auto/screen"
)

// darwinBackend macOS 平台实现。输入和截图走 robotgo，
// 窗口枚举走 CGWindowList，激活走 NSRunningApplication。
type darwinBackend struct{}

// New 创建 macOS 后端
func New() (Backend, error) {
	return &darwinBackend{}, nil
}

// Close 释放资源。macOS 后端没有持久句柄。
func (b *darwinBackend) Close() error {
	return nil
}

// ==================== 光标控制 ====================

// SetCursorPos 移动光标
func (b *darwinBackend) SetCursorPos(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// GetCursorPos 查询光标位置
func (b *darwinBackend) GetCursorPos() (auto.Point, error) {
	x, y := robotgo.Location()
	return auto.Point{X: x, Y: y}, nil
}

// ==================== 输入注入 ====================

// InjectKeyEvent 注入按键事件。键名由 ResolveKey 解析。
func (b *darwinBackend) InjectKeyEvent(code KeyCode, pressed bool) error {
	direction := "up"
	if pressed {
		direction = "down"
	}
	if err := robotgo.KeyToggle(code.Name, direction); err != nil {
		return auto.NewPlatformError("KeyToggle", err)
	}
	return nil
}

// 滚轮一次滚动的行数
const scrollStep = 3

// InjectButtonEvent 注入鼠标按钮事件。滚轮方向按一次滚动一格，
// 只在按下时发事件，抬起为空操作。
func (b *darwinBackend) InjectButtonEvent(btn auto.MouseButton, pressed bool) error {
	var name string
	switch btn {
	case auto.ButtonLeft:
		name = "left"
	case auto.ButtonMiddle:
		name = "center"
	case auto.ButtonRight:
		name = "right"
	case auto.ButtonScrollUp:
		if pressed {
			robotgo.Scroll(0, scrollStep)
		}
		return nil
	case auto.ButtonScrollDown:
		if pressed {
			robotgo.Scroll(0, -scrollStep)
		}
		return nil
	case auto.ButtonScrollLeft:
		if pressed {
			robotgo.Scroll(scrollStep, 0)
		}
		return nil
	case auto.ButtonScrollRight:
		if pressed {
			robotgo.Scroll(-scrollStep, 0)
		}
		return nil
	default:
		return fmt.Errorf("macOS 不支持鼠标按钮: %s", btn)
	}

	direction := "up"
	if pressed {
		direction = "down"
	}
	if err := robotgo.Toggle(name, direction); err != nil {
		return auto.NewPlatformError("MouseToggle", err)
	}
	return nil
}

// ==================== 窗口枚举 ====================

// darwinWindow CGWindowList 返回的单个窗口
type darwinWindow struct {
	pid      int
	id       int
	bounds   auto.Region
	onscreen bool
	title    string
	owner    string
}

// listRaw 获取窗口列表，按 Z 序从上到下
func listRaw() []darwinWindow {
	const maxWindows = 256
	windows := make([]C.WindowInfoC, maxWindows)

	count := C.getWindowList(&windows[0], C.int(maxWindows))

	result := make([]darwinWindow, 0, int(count))
	for i := 0; i < int(count); i++ {
		w := windows[i]
		result = append(result, darwinWindow{
			pid: int(w.pid),
			id:  int(w.windowId),
			bounds: auto.Region{
				X:      int(w.x),
				Y:      int(w.y),
				Width:  int(w.width),
				Height: int(w.height),
			},
			onscreen: w.onscreen != 0,
			title:    C.GoString(&w.title[0]),
			owner:    C.GoString(&w.ownerName[0]),
		})
	}
	return result
}

// findWindow 按句柄查找窗口，不存在时返回 ErrWindowNotFound
func findWindow(h WindowHandle) (darwinWindow, error) {
	for _, w := range listRaw() {
		if WindowHandle(w.id) == h {
			return w, nil
		}
	}
	return darwinWindow{}, auto.ErrWindowNotFound
}

// focusedWindowID 前台应用最靠上的窗口即焦点窗口。
// macOS 的焦点属于应用而不是单个窗口，这里取叠放最高的一个。
func focusedWindowID(windows []darwinWindow) int {
	front := int(C.frontmostAppPID())
	if front == 0 {
		return 0
	}
	for _, w := range windows {
		if w.pid == front {
			return w.id
		}
	}
	return 0
}

// ListWindows 枚举顶层窗口
func (b *darwinBackend) ListWindows() ([]WindowMeta, error) {
	windows := listRaw()
	focused := focusedWindowID(windows)

	metas := make([]WindowMeta, 0, len(windows))
	for i, w := range windows {
		metas = append(metas, WindowMeta{
			Handle:    WindowHandle(w.id),
			Title:     w.title,
			Bounds:    w.bounds,
			Z:         len(windows) - 1 - i,
			PID:       w.pid,
			OwnerName: w.owner,
			Focused:   w.id == focused && focused != 0,
		})
	}
	return metas, nil
}

// IsFocused 实时查询窗口是否为焦点窗口
func (b *darwinBackend) IsFocused(h WindowHandle) (bool, error) {
	windows := listRaw()

	found := false
	for _, w := range windows {
		if WindowHandle(w.id) == h {
			found = true
			break
		}
	}
	if !found {
		return false, auto.ErrWindowNotFound
	}

	return WindowHandle(focusedWindowID(windows)) == h, nil
}

// ActivateWindow 激活窗口所属应用，再通过辅助功能把窗口提到最前
func (b *darwinBackend) ActivateWindow(h WindowHandle) error {
	w, err := findWindow(h)
	if err != nil {
		return err
	}

	if C.activateAppByPID(C.int(w.pid)) == 0 {
		return fmt.Errorf("无法激活 PID %d 的应用", w.pid)
	}

	if w.title != "" {
		title := strings.ReplaceAll(w.title, `"`, `\"`)
		script := fmt.Sprintf(`
			tell application "System Events"
				tell (first process whose unix id is %d)
					set frontmost to true
					repeat with w in windows
						if name of w contains "%s" then
							perform action "AXRaise" of w
							exit repeat
						end if
					end repeat
				end tell
			end tell
		`, w.pid, title)
		exec.Command("osascript", "-e", script).Run()
	}

	return nil
}

// ==================== 截图 ====================

// CaptureWindow 按窗口边界截取屏幕区域。Retina 屏的截图是
// 两倍像素，归一化到窗口的逻辑尺寸。
func (b *darwinBackend) CaptureWindow(h WindowHandle) (*image.RGBA, error) {
	w, err := findWindow(h)
	if err != nil {
		return nil, err
	}
	if !w.onscreen {
		return nil, auto.ErrWindowMinimized
	}

	img := robotgo.CaptureImg(w.bounds.X, w.bounds.Y, w.bounds.Width, w.bounds.Height)
	if img == nil {
		return nil, fmt.Errorf("%w: CaptureImg 返回空图像 (可能需要屏幕录制权限)", auto.ErrCaptureFailed)
	}

	return screen.Normalize(img, w.bounds.Width, w.bounds.Height), nil
}

// ScreenSize 主屏尺寸
func (b *darwinBackend) ScreenSize() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	return w, h, nil
}
