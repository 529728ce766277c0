package auto

import "fmt"

// Key 表示一次按键请求：具名特殊键或单个字符。
// 两种取值都是封闭的，由 SpecialKey 和 UnicodeChar 实现。
type Key interface {
	fmt.Stringer
	key()
}

// SpecialKey 具名的非打印按键。取值固定，新增按键只会追加，
// 不会改名，保证序列化兼容。
type SpecialKey string

func (SpecialKey) key() {}

// String 返回按键名称
func (k SpecialKey) String() string { return string(k) }

// 特殊键集合
const (
	KeyAdd            SpecialKey = "Add"
	KeyAlt            SpecialKey = "Alt"
	KeyBackspace      SpecialKey = "Backspace"
	KeyCancel         SpecialKey = "Cancel"
	KeyCapsLock       SpecialKey = "CapsLock"
	KeyClear          SpecialKey = "Clear"
	KeyCommand        SpecialKey = "Command"
	KeyControl        SpecialKey = "Control"
	KeyDecimal        SpecialKey = "Decimal"
	KeyDelete         SpecialKey = "Delete"
	KeyDivide         SpecialKey = "Divide"
	KeyDownArrow      SpecialKey = "DownArrow"
	KeyEnd            SpecialKey = "End"
	KeyEscape         SpecialKey = "Escape"
	KeyExecute        SpecialKey = "Execute"
	KeyF1             SpecialKey = "F1"
	KeyF2             SpecialKey = "F2"
	KeyF3             SpecialKey = "F3"
	KeyF4             SpecialKey = "F4"
	KeyF5             SpecialKey = "F5"
	KeyF6             SpecialKey = "F6"
	KeyF7             SpecialKey = "F7"
	KeyF8             SpecialKey = "F8"
	KeyF9             SpecialKey = "F9"
	KeyF10            SpecialKey = "F10"
	KeyF11            SpecialKey = "F11"
	KeyF12            SpecialKey = "F12"
	KeyF13            SpecialKey = "F13"
	KeyF14            SpecialKey = "F14"
	KeyF15            SpecialKey = "F15"
	KeyF16            SpecialKey = "F16"
	KeyF17            SpecialKey = "F17"
	KeyF18            SpecialKey = "F18"
	KeyF19            SpecialKey = "F19"
	KeyHelp           SpecialKey = "Help"
	KeyHome           SpecialKey = "Home"
	KeyInsert         SpecialKey = "Insert"
	KeyLControl       SpecialKey = "LControl"
	KeyLeftArrow      SpecialKey = "LeftArrow"
	KeyLShift         SpecialKey = "LShift"
	KeyMediaNextTrack SpecialKey = "MediaNextTrack"
	KeyMediaPlayPause SpecialKey = "MediaPlayPause"
	KeyMediaPrevTrack SpecialKey = "MediaPrevTrack"
	KeyMeta           SpecialKey = "Meta"
	KeyMultiply       SpecialKey = "Multiply"
	KeyNumpad0        SpecialKey = "Numpad0"
	KeyNumpad1        SpecialKey = "Numpad1"
	KeyNumpad2        SpecialKey = "Numpad2"
	KeyNumpad3        SpecialKey = "Numpad3"
	KeyNumpad4        SpecialKey = "Numpad4"
	KeyNumpad5        SpecialKey = "Numpad5"
	KeyNumpad6        SpecialKey = "Numpad6"
	KeyNumpad7        SpecialKey = "Numpad7"
	KeyNumpad8        SpecialKey = "Numpad8"
	KeyNumpad9        SpecialKey = "Numpad9"
	KeyOption         SpecialKey = "Option"
	KeyPageDown       SpecialKey = "PageDown"
	KeyPageUp         SpecialKey = "PageUp"
	KeyPause          SpecialKey = "Pause"
	KeyRControl       SpecialKey = "RControl"
	KeyReturn         SpecialKey = "Return"
	KeyRightArrow     SpecialKey = "RightArrow"
	KeyRShift         SpecialKey = "RShift"
	KeyShift          SpecialKey = "Shift"
	KeySpace          SpecialKey = "Space"
	KeySubtract       SpecialKey = "Subtract"
	KeyTab            SpecialKey = "Tab"
	KeyUpArrow        SpecialKey = "UpArrow"
	KeyVolumeDown     SpecialKey = "VolumeDown"
	KeyVolumeMute     SpecialKey = "VolumeMute"
	KeyVolumeUp       SpecialKey = "VolumeUp"
)

// SpecialKeys 返回全部特殊键，顺序固定
func SpecialKeys() []SpecialKey {
	return []SpecialKey{
		KeyAdd, KeyAlt, KeyBackspace, KeyCancel, KeyCapsLock, KeyClear,
		KeyCommand, KeyControl, KeyDecimal, KeyDelete, KeyDivide,
		KeyDownArrow, KeyEnd, KeyEscape, KeyExecute,
		KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9,
		KeyF10, KeyF11, KeyF12, KeyF13, KeyF14, KeyF15, KeyF16, KeyF17,
		KeyF18, KeyF19,
		KeyHelp, KeyHome, KeyInsert, KeyLControl, KeyLeftArrow, KeyLShift,
		KeyMediaNextTrack, KeyMediaPlayPause, KeyMediaPrevTrack, KeyMeta,
		KeyMultiply,
		KeyNumpad0, KeyNumpad1, KeyNumpad2, KeyNumpad3, KeyNumpad4,
		KeyNumpad5, KeyNumpad6, KeyNumpad7, KeyNumpad8, KeyNumpad9,
		KeyOption, KeyPageDown, KeyPageUp, KeyPause, KeyRControl,
		KeyReturn, KeyRightArrow, KeyRShift, KeyShift, KeySpace,
		KeySubtract, KeyTab, KeyUpArrow,
		KeyVolumeDown, KeyVolumeMute, KeyVolumeUp,
	}
}

// ParseSpecialKey 按名称解析特殊键
func ParseSpecialKey(name string) (SpecialKey, error) {
	for _, k := range SpecialKeys() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("未知的特殊键: %s", name)
}

// UnicodeChar 单个字符的按键请求。后端会把字符解析为当前键盘布局下
// 产生该字符所需的按键序列（可能包含修饰键）。
type UnicodeChar rune

func (UnicodeChar) key() {}

// String 返回字符本身
func (c UnicodeChar) String() string { return string(rune(c)) }

// Rune 返回底层字符
func (c UnicodeChar) Rune() rune { return rune(c) }

// Unicode 构造单字符按键。输入必须恰好是一个字符。
func Unicode(s string) (UnicodeChar, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0, fmt.Errorf("字符不能为空")
	}
	if len(runes) > 1 {
		return 0, fmt.Errorf("每次只能输入一个字符: %q", s)
	}
	return UnicodeChar(runes[0]), nil
}

// MustUnicode 构造单字符按键，输入非单字符时 panic。仅用于常量场景。
func MustUnicode(r rune) UnicodeChar {
	return UnicodeChar(r)
}

// MouseButton 鼠标按钮。滚动方向也按按钮建模，
// 点击一次等于滚动一格。
type MouseButton string

// 鼠标按钮集合
const (
	ButtonLeft        MouseButton = "Left"
	ButtonMiddle      MouseButton = "Middle"
	ButtonRight       MouseButton = "Right"
	ButtonBack        MouseButton = "Back"
	ButtonForward     MouseButton = "Forward"
	ButtonScrollUp    MouseButton = "ScrollUp"
	ButtonScrollDown  MouseButton = "ScrollDown"
	ButtonScrollLeft  MouseButton = "ScrollLeft"
	ButtonScrollRight MouseButton = "ScrollRight"
)

// IsScroll 判断按钮是否为滚动方向
func (b MouseButton) IsScroll() bool {
	switch b {
	case ButtonScrollUp, ButtonScrollDown, ButtonScrollLeft, ButtonScrollRight:
		return true
	}
	return false
}
