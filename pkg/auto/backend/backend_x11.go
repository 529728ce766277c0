//go:build linux

package backend

import (
	"fmt"
	"image"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"

	"github.com/zoeyai/zoeyauto/pkg/auto"
	"github.com/zoeyai/zoeyauto/pkg/process"
)

// x11Backend X11 平台实现。全部走 X 协议，不依赖 cgo。
type x11Backend struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms atomCache
	km    *x11Keymap
	kmMu  sync.Mutex
}

// atomCache 原子缓存，避免重复 InternAtom 往返
type atomCache struct {
	mu   sync.RWMutex
	data map[string]xproto.Atom
}

// New 连接 X 服务并初始化 XTEST 扩展
func New() (Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("连接 X 服务失败: %w", err)
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("初始化 XTEST 扩展失败: %w", err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &x11Backend{
		conn:  conn,
		root:  root,
		atoms: atomCache{data: make(map[string]xproto.Atom)},
	}, nil
}

// Close 断开 X 连接
func (b *x11Backend) Close() error {
	b.conn.Close()
	return nil
}

// ==================== 光标控制 ====================

// SetCursorPos 通过 WarpPointer 移动光标
func (b *x11Backend) SetCursorPos(x, y int) error {
	err := xproto.WarpPointerChecked(
		b.conn, xproto.WindowNone, b.root,
		0, 0, 0, 0,
		int16(x), int16(y),
	).Check()
	if err != nil {
		return auto.NewPlatformError("WarpPointer", err)
	}
	return nil
}

// GetCursorPos 查询光标位置
func (b *x11Backend) GetCursorPos() (auto.Point, error) {
	reply, err := xproto.QueryPointer(b.conn, b.root).Reply()
	if err != nil {
		return auto.Point{}, auto.NewPlatformError("QueryPointer", err)
	}
	return auto.Point{X: int(reply.RootX), Y: int(reply.RootY)}, nil
}

// ==================== 输入注入 ====================

// InjectKeyEvent 通过 XTEST 注入按键事件
func (b *x11Backend) InjectKeyEvent(code KeyCode, pressed bool) error {
	evtType := byte(xproto.KeyRelease)
	if pressed {
		evtType = xproto.KeyPress
	}

	err := xtest.FakeInputChecked(
		b.conn, evtType, byte(code.Code), 0, b.root, 0, 0, 0,
	).Check()
	if err != nil {
		return auto.NewPlatformError("XTestFakeInput", err)
	}
	return nil
}

// x11ButtonDetail 按钮到 X11 按钮编号的映射
// 4-7 为滚轮方向，8/9 为侧键
func x11ButtonDetail(btn auto.MouseButton) (byte, bool) {
	switch btn {
	case auto.ButtonLeft:
		return 1, true
	case auto.ButtonMiddle:
		return 2, true
	case auto.ButtonRight:
		return 3, true
	case auto.ButtonScrollUp:
		return 4, true
	case auto.ButtonScrollDown:
		return 5, true
	case auto.ButtonScrollLeft:
		return 6, true
	case auto.ButtonScrollRight:
		return 7, true
	case auto.ButtonBack:
		return 8, true
	case auto.ButtonForward:
		return 9, true
	}
	return 0, false
}

// InjectButtonEvent 通过 XTEST 注入鼠标按钮事件
func (b *x11Backend) InjectButtonEvent(btn auto.MouseButton, pressed bool) error {
	detail, ok := x11ButtonDetail(btn)
	if !ok {
		return fmt.Errorf("未知的鼠标按钮: %s", btn)
	}

	evtType := byte(xproto.ButtonRelease)
	if pressed {
		evtType = xproto.ButtonPress
	}

	err := xtest.FakeInputChecked(
		b.conn, evtType, detail, 0, b.root, 0, 0, 0,
	).Check()
	if err != nil {
		return auto.NewPlatformError("XTestFakeInput", err)
	}
	return nil
}

// ==================== 窗口枚举 ====================

// ListWindows 枚举顶层窗口。优先读 _NET_CLIENT_LIST_STACKING
// （自底向上的叠放顺序），窗口管理器不支持时退回 QueryTree 遍历。
func (b *x11Backend) ListWindows() ([]WindowMeta, error) {
	windows, err := b.clientListStacking()
	if err != nil || len(windows) == 0 {
		windows, err = b.queryTreeWindows()
		if err != nil {
			return nil, fmt.Errorf("枚举窗口失败: %w", err)
		}
	}

	active, _ := b.activeWindow()

	metas := make([]WindowMeta, 0, len(windows))
	for z, win := range windows {
		attrs, err := xproto.GetWindowAttributes(b.conn, win).Reply()
		if err != nil || attrs.MapState != xproto.MapStateViewable {
			continue
		}

		title := b.windowTitle(win)
		if title == "" {
			continue
		}

		bounds, err := b.windowBounds(win)
		if err != nil {
			continue
		}

		pid := b.windowPid(win)
		ownerName := ""
		if pid > 0 {
			if info, err := process.GetProcessByPID(pid); err == nil {
				ownerName = info.Name
			}
		}

		metas = append(metas, WindowMeta{
			Handle:    WindowHandle(win),
			Title:     title,
			Bounds:    bounds,
			Z:         z,
			PID:       pid,
			OwnerName: ownerName,
			Focused:   win == active,
		})
	}

	return metas, nil
}

// IsFocused 实时查询窗口是否为活动窗口
func (b *x11Backend) IsFocused(h WindowHandle) (bool, error) {
	if err := b.validateWindow(xproto.Window(h)); err != nil {
		return false, err
	}

	active, err := b.activeWindow()
	if err != nil {
		// 窗口管理器不支持 _NET_ACTIVE_WINDOW 时退回输入焦点
		reply, ferr := xproto.GetInputFocus(b.conn).Reply()
		if ferr != nil {
			return false, auto.NewPlatformError("GetInputFocus", ferr)
		}
		return reply.Focus == xproto.Window(h), nil
	}
	return active == xproto.Window(h), nil
}

// ActivateWindow 通过 _NET_ACTIVE_WINDOW 客户端消息请求激活
func (b *x11Backend) ActivateWindow(h WindowHandle) error {
	win := xproto.Window(h)
	if err := b.validateWindow(win); err != nil {
		return err
	}

	atom, err := b.atom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	data := []uint32{
		2, // 消息来源：分页器
		0, // 时间戳
		0, // 调用方的活动窗口
		0,
		0,
	}
	evt := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}

	err = xproto.SendEventChecked(
		b.conn, false, b.root,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
		string(evt.Bytes()),
	).Check()
	if err != nil {
		return auto.NewPlatformError("SendEvent", err)
	}
	return nil
}

// ==================== 截图 ====================

// CaptureWindow 通过 GetImage 截取窗口内容
func (b *x11Backend) CaptureWindow(h WindowHandle) (*image.RGBA, error) {
	win := xproto.Window(h)

	geo, err := xproto.GetGeometry(b.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auto.ErrWindowNotFound, err)
	}

	attrs, err := xproto.GetWindowAttributes(b.conn, win).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auto.ErrWindowNotFound, err)
	}
	if attrs.MapState != xproto.MapStateViewable || b.isHidden(win) {
		return nil, auto.ErrWindowMinimized
	}

	width := int(geo.Width)
	height := int(geo.Height)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: 窗口尺寸为 %dx%d", auto.ErrCaptureFailed, width, height)
	}

	reply, err := xproto.GetImage(
		b.conn, xproto.ImageFormatZPixmap, xproto.Drawable(win),
		0, 0, uint16(width), uint16(height), 0xffffffff,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auto.ErrCaptureFailed, err)
	}

	expected := width * height * 4
	if len(reply.Data) < expected {
		return nil, fmt.Errorf("%w: 图像数据不完整 (%d < %d)", auto.ErrCaptureFailed, len(reply.Data), expected)
	}

	// ZPixmap 数据为 BGRX 排列，转成 RGBA。
	// 深度 24 时 X 通道为填充字节，alpha 置为不透明。
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	opaque := reply.Depth != 32
	for i := 0; i+3 < expected; i += 4 {
		img.Pix[i] = reply.Data[i+2]
		img.Pix[i+1] = reply.Data[i+1]
		img.Pix[i+2] = reply.Data[i]
		if opaque {
			img.Pix[i+3] = 0xff
		} else {
			img.Pix[i+3] = reply.Data[i+3]
		}
	}

	return img, nil
}

// ScreenSize 根窗口几何即主屏尺寸
func (b *x11Backend) ScreenSize() (int, int, error) {
	geo, err := xproto.GetGeometry(b.conn, xproto.Drawable(b.root)).Reply()
	if err != nil {
		return 0, 0, auto.NewPlatformError("GetGeometry", err)
	}
	return int(geo.Width), int(geo.Height), nil
}

// ==================== 内部函数 ====================

// atom 查询原子并缓存
func (b *x11Backend) atom(name string) (xproto.Atom, error) {
	b.atoms.mu.RLock()
	atom, ok := b.atoms.data[name]
	b.atoms.mu.RUnlock()
	if ok {
		return atom, nil
	}

	reply, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("查询原子 %s 失败: %w", name, err)
	}

	b.atoms.mu.Lock()
	b.atoms.data[name] = reply.Atom
	b.atoms.mu.Unlock()
	return reply.Atom, nil
}

// getProperty 读取窗口属性原始字节
func (b *x11Backend) getProperty(win xproto.Window, name string, typ xproto.Atom) ([]byte, error) {
	atom, err := b.atom(name)
	if err != nil {
		return nil, err
	}

	reply, err := xproto.GetProperty(b.conn, false, win, atom, typ, 0, 1024).Reply()
	if err != nil {
		return nil, fmt.Errorf("读取属性 %s 失败: %w", name, err)
	}
	if reply.Format == 0 {
		return nil, fmt.Errorf("属性 %s 不存在", name)
	}
	return reply.Value, nil
}

// getPropertyString 读取字符串属性
func (b *x11Backend) getPropertyString(win xproto.Window, name string, typ xproto.Atom) (string, error) {
	value, err := b.getProperty(win, name, typ)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// windowTitle 读窗口标题，_NET_WM_NAME 优先，退回 WM_NAME
func (b *x11Backend) windowTitle(win xproto.Window) string {
	utf8, err := b.atom("UTF8_STRING")
	if err == nil {
		if title, err := b.getPropertyString(win, "_NET_WM_NAME", utf8); err == nil && title != "" {
			return title
		}
	}
	title, err := b.getPropertyString(win, "WM_NAME", xproto.AtomString)
	if err != nil {
		return ""
	}
	return title
}

// windowPid 读 _NET_WM_PID
func (b *x11Backend) windowPid(win xproto.Window) int {
	value, err := b.getProperty(win, "_NET_WM_PID", xproto.AtomCardinal)
	if err != nil || len(value) < 4 {
		return 0
	}
	return int(uint32(value[0]) | uint32(value[1])<<8 | uint32(value[2])<<16 | uint32(value[3])<<24)
}

// windowBounds 计算窗口的屏幕绝对边界
func (b *x11Backend) windowBounds(win xproto.Window) (auto.Region, error) {
	geo, err := xproto.GetGeometry(b.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return auto.Region{}, err
	}

	trans, err := xproto.TranslateCoordinates(b.conn, win, b.root, 0, 0).Reply()
	if err != nil {
		return auto.Region{}, err
	}

	return auto.Region{
		X:      int(trans.DstX),
		Y:      int(trans.DstY),
		Width:  int(geo.Width),
		Height: int(geo.Height),
	}, nil
}

// clientListStacking 读 _NET_CLIENT_LIST_STACKING（自底向上）
func (b *x11Backend) clientListStacking() ([]xproto.Window, error) {
	value, err := b.getProperty(b.root, "_NET_CLIENT_LIST_STACKING", xproto.AtomWindow)
	if err != nil {
		return nil, err
	}

	windows := make([]xproto.Window, 0, len(value)/4)
	for i := 0; i+3 < len(value); i += 4 {
		win := xproto.Window(uint32(value[i]) | uint32(value[i+1])<<8 |
			uint32(value[i+2])<<16 | uint32(value[i+3])<<24)
		windows = append(windows, win)
	}
	return windows, nil
}

// queryTreeWindows 退回方案：广度优先遍历窗口树，收集有标题的可视窗口
func (b *x11Backend) queryTreeWindows() ([]xproto.Window, error) {
	var result []xproto.Window
	queue := []xproto.Window{b.root}

	for len(queue) > 0 {
		win := queue[0]
		queue = queue[1:]

		reply, err := xproto.QueryTree(b.conn, win).Reply()
		if err != nil {
			continue
		}

		for _, child := range reply.Children {
			if b.windowTitle(child) != "" {
				result = append(result, child)
			} else {
				queue = append(queue, child)
			}
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("未找到任何窗口")
	}
	return result, nil
}

// activeWindow 读 _NET_ACTIVE_WINDOW
func (b *x11Backend) activeWindow() (xproto.Window, error) {
	value, err := b.getProperty(b.root, "_NET_ACTIVE_WINDOW", xproto.AtomWindow)
	if err != nil || len(value) < 4 {
		return 0, fmt.Errorf("读取活动窗口失败: %w", err)
	}
	return xproto.Window(uint32(value[0]) | uint32(value[1])<<8 |
		uint32(value[2])<<16 | uint32(value[3])<<24), nil
}

// validateWindow 校验句柄是否仍然有效
func (b *x11Backend) validateWindow(win xproto.Window) error {
	_, err := xproto.GetWindowAttributes(b.conn, win).Reply()
	if err != nil {
		return fmt.Errorf("%w: %v", auto.ErrWindowNotFound, err)
	}
	return nil
}

// isHidden 检查 _NET_WM_STATE 是否包含隐藏状态
func (b *x11Backend) isHidden(win xproto.Window) bool {
	hidden, err := b.atom("_NET_WM_STATE_HIDDEN")
	if err != nil {
		return false
	}

	value, err := b.getProperty(win, "_NET_WM_STATE", xproto.AtomAtom)
	if err != nil {
		return false
	}

	for i := 0; i+3 < len(value); i += 4 {
		state := xproto.Atom(uint32(value[i]) | uint32(value[i+1])<<8 |
			uint32(value[i+2])<<16 | uint32(value[i+3])<<24)
		if state == hidden {
			return true
		}
	}
	return false
}
