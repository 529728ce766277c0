//go:build windows

package backend

import (
	"fmt"
	"image"
	"unicode/utf16"
	"unsafe"

	"github.com/lxn/win"

	"github.com/zoeyai/zoeyauto/pkg/auto"
)

// winBackend Windows 平台实现。输入注入走 SendInput，
// 窗口枚举和截图走 user32/gdi32 原生 API。
type winBackend struct{}

// New 创建 Windows 后端
func New() (Backend, error) {
	return &winBackend{}, nil
}

// Close 释放资源。Windows 后端没有持久句柄。
func (b *winBackend) Close() error {
	return nil
}

// ==================== 光标控制 ====================

// SetCursorPos 移动光标。先用 SendInput 产生真实输入事件，
// 再用 SetCursorPos 把光标钉到精确像素上。
func (b *winBackend) SetCursorPos(x, y int) error {
	dx, dy := mapAbsolute(x, y)
	flags := uint32(win.MOUSEEVENTF_MOVE | win.MOUSEEVENTF_ABSOLUTE | win.MOUSEEVENTF_VIRTUALDESK)
	if err := sendMouseInput(flags, dx, dy, 0); err != nil {
		if win.SetCursorPos(int32(x), int32(y)) {
			return nil
		}
		return auto.NewPlatformError("SendInput", err)
	}
	win.SetCursorPos(int32(x), int32(y))
	return nil
}

// GetCursorPos 查询光标位置
func (b *winBackend) GetCursorPos() (auto.Point, error) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return auto.Point{}, auto.NewPlatformError("GetCursorPos", win.GetLastError())
	}
	return auto.Point{X: int(pt.X), Y: int(pt.Y)}, nil
}

// mapAbsolute 把屏幕坐标换算到 SendInput 的绝对坐标范围 (0..65535)
func mapAbsolute(x, y int) (int32, int32) {
	vx := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	vy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)
	vw := win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)
	vh := win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)
	if vw <= 1 {
		vw = 2
	}
	if vh <= 1 {
		vh = 2
	}
	dx := (int64(x) - int64(vx)) * 65535 / int64(vw-1)
	dy := (int64(y) - int64(vy)) * 65535 / int64(vh-1)
	return int32(dx), int32(dy)
}

// ==================== 输入注入 ====================

// sendMouseInput 发送单条鼠标输入事件
func sendMouseInput(flags uint32, dx, dy int32, data uint32) error {
	input := win.INPUT{
		Type: win.INPUT_MOUSE,
		Mi: win.MOUSEINPUT{
			Dx:        dx,
			Dy:        dy,
			MouseData: data,
			DwFlags:   flags,
		},
	}
	if win.SendInput(1, &input, int32(win.SizeofINPUT)) != 1 {
		return win.GetLastError()
	}
	return nil
}

// sendKeyboardInput 发送单条键盘输入事件
func sendKeyboardInput(key win.KEYBDINPUT) error {
	input := win.INPUT{
		Type: win.INPUT_KEYBOARD,
		Ki:   key,
	}
	if win.SendInput(1, &input, int32(win.SizeofINPUT)) != 1 {
		return win.GetLastError()
	}
	return nil
}

// InjectKeyEvent 注入按键事件。带虚拟键码的走 WVk，
// 当前布局没有键位的字符走 Unicode 扫描码。
func (b *winBackend) InjectKeyEvent(code KeyCode, pressed bool) error {
	var flags uint32
	if !pressed {
		flags = win.KEYEVENTF_KEYUP
	}

	if code.Char != 0 {
		for _, unit := range utf16.Encode([]rune{code.Char}) {
			err := sendKeyboardInput(win.KEYBDINPUT{
				WScan:   unit,
				DwFlags: win.KEYEVENTF_UNICODE | flags,
			})
			if err != nil {
				return auto.NewPlatformError("SendInput", err)
			}
		}
		return nil
	}

	err := sendKeyboardInput(win.KEYBDINPUT{WVk: uint16(code.Code), DwFlags: flags})
	if err != nil {
		return auto.NewPlatformError("SendInput", err)
	}
	return nil
}

const (
	xButton1   = 1
	xButton2   = 2
	wheelDelta = 120
)

// InjectButtonEvent 注入鼠标按钮事件。滚轮方向按一次滚动一格，
// 只在按下时发事件，抬起为空操作。
func (b *winBackend) InjectButtonEvent(btn auto.MouseButton, pressed bool) error {
	var flags uint32
	var data uint32

	switch btn {
	case auto.ButtonLeft:
		flags = win.MOUSEEVENTF_LEFTDOWN
		if !pressed {
			flags = win.MOUSEEVENTF_LEFTUP
		}
	case auto.ButtonMiddle:
		flags = win.MOUSEEVENTF_MIDDLEDOWN
		if !pressed {
			flags = win.MOUSEEVENTF_MIDDLEUP
		}
	case auto.ButtonRight:
		flags = win.MOUSEEVENTF_RIGHTDOWN
		if !pressed {
			flags = win.MOUSEEVENTF_RIGHTUP
		}
	case auto.ButtonBack:
		flags = win.MOUSEEVENTF_XDOWN
		if !pressed {
			flags = win.MOUSEEVENTF_XUP
		}
		data = xButton1
	case auto.ButtonForward:
		flags = win.MOUSEEVENTF_XDOWN
		if !pressed {
			flags = win.MOUSEEVENTF_XUP
		}
		data = xButton2
	case auto.ButtonScrollUp:
		if !pressed {
			return nil
		}
		flags = win.MOUSEEVENTF_WHEEL
		data = wheelDelta
	case auto.ButtonScrollDown:
		if !pressed {
			return nil
		}
		flags = win.MOUSEEVENTF_WHEEL
		data = uint32(int32(-wheelDelta))
	case auto.ButtonScrollLeft:
		if !pressed {
			return nil
		}
		flags = win.MOUSEEVENTF_HWHEEL
		data = uint32(int32(-wheelDelta))
	case auto.ButtonScrollRight:
		if !pressed {
			return nil
		}
		flags = win.MOUSEEVENTF_HWHEEL
		data = wheelDelta
	default:
		return fmt.Errorf("未知的鼠标按钮: %s", btn)
	}

	if err := sendMouseInput(flags, 0, 0, data); err != nil {
		return auto.NewPlatformError("SendInput", err)
	}
	return nil
}

// ==================== 截图 ====================

// CaptureWindow 截取窗口客户区。优先 PrintWindow 拿 DWM 合成内容，
// 失败退回 BitBlt。
func (b *winBackend) CaptureWindow(h WindowHandle) (*image.RGBA, error) {
	hwnd := win.HWND(h)
	if !isWindow(hwnd) {
		return nil, auto.ErrWindowNotFound
	}
	if isIconic(hwnd) {
		return nil, auto.ErrWindowMinimized
	}

	var rect win.RECT
	if !win.GetClientRect(hwnd, &rect) {
		return nil, fmt.Errorf("%w: GetClientRect 失败", auto.ErrCaptureFailed)
	}
	width := int(rect.Right - rect.Left)
	height := int(rect.Bottom - rect.Top)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: 窗口尺寸为 %dx%d", auto.ErrCaptureFailed, width, height)
	}

	hdc := win.GetDC(hwnd)
	if hdc == 0 {
		return nil, fmt.Errorf("%w: GetDC 失败", auto.ErrCaptureFailed)
	}
	defer win.ReleaseDC(hwnd, hdc)

	memDC := win.CreateCompatibleDC(hdc)
	if memDC == 0 {
		return nil, fmt.Errorf("%w: CreateCompatibleDC 失败", auto.ErrCaptureFailed)
	}
	defer win.DeleteDC(memDC)

	bmp := win.CreateCompatibleBitmap(hdc, int32(width), int32(height))
	if bmp == 0 {
		return nil, fmt.Errorf("%w: CreateCompatibleBitmap 失败", auto.ErrCaptureFailed)
	}
	defer win.DeleteObject(win.HGDIOBJ(bmp))

	old := win.SelectObject(memDC, win.HGDIOBJ(bmp))
	defer win.SelectObject(memDC, old)

	ret, _, _ := procPrintWindow.Call(uintptr(hwnd), uintptr(memDC), pwClientOnly|pwRenderFullContent)
	if ret == 0 {
		if !win.BitBlt(memDC, 0, 0, int32(width), int32(height), hdc, 0, 0, win.SRCCOPY) {
			return nil, fmt.Errorf("%w: BitBlt 失败", auto.ErrCaptureFailed)
		}
	}

	bi := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // 负高度表示自上而下的行序
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}

	buf := make([]byte, width*height*4)
	if win.GetDIBits(memDC, bmp, 0, uint32(height), &buf[0], &bi, win.DIB_RGB_COLORS) == 0 {
		return nil, fmt.Errorf("%w: GetDIBits 失败", auto.ErrCaptureFailed)
	}

	// GDI 像素为 BGRA 排列，转成 RGBA 并置为不透明
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i+3 < len(buf); i += 4 {
		img.Pix[i] = buf[i+2]
		img.Pix[i+1] = buf[i+1]
		img.Pix[i+2] = buf[i]
		img.Pix[i+3] = 0xff
	}

	return img, nil
}

// ScreenSize 主屏尺寸
func (b *winBackend) ScreenSize() (int, int, error) {
	w := win.GetSystemMetrics(win.SM_CXSCREEN)
	h := win.GetSystemMetrics(win.SM_CYSCREEN)
	if w == 0 || h == 0 {
		return 0, 0, auto.NewPlatformError("GetSystemMetrics", win.GetLastError())
	}
	return int(w), int(h), nil
}
