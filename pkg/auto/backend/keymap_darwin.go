//go:build darwin

package backend

import (
	"fmt"

	"github.com/zoeyai/zoeyauto/pkg/auto"
)

// specialNames 功能键到 robotgo 键名的映射。
// Insert、Cancel、Execute、Pause、Help 在 macOS 键盘上没有对应键位。
var specialNames = map[auto.SpecialKey]string{
	auto.KeyAdd:            "num+",
	auto.KeyAlt:            "alt",
	auto.KeyBackspace:      "backspace",
	auto.KeyCapsLock:       "capslock",
	auto.KeyClear:          "num_clear",
	auto.KeyCommand:        "cmd",
	auto.KeyControl:        "ctrl",
	auto.KeyDecimal:        "num.",
	auto.KeyDelete:         "delete",
	auto.KeyDivide:         "num/",
	auto.KeyDownArrow:      "down",
	auto.KeyEnd:            "end",
	auto.KeyEscape:         "esc",
	auto.KeyF1:             "f1",
	auto.KeyF2:             "f2",
	auto.KeyF3:             "f3",
	auto.KeyF4:             "f4",
	auto.KeyF5:             "f5",
	auto.KeyF6:             "f6",
	auto.KeyF7:             "f7",
	auto.KeyF8:             "f8",
	auto.KeyF9:             "f9",
	auto.KeyF10:            "f10",
	auto.KeyF11:            "f11",
	auto.KeyF12:            "f12",
	auto.KeyF13:            "f13",
	auto.KeyF14:            "f14",
	auto.KeyF15:            "f15",
	auto.KeyF16:            "f16",
	auto.KeyF17:            "f17",
	auto.KeyF18:            "f18",
	auto.KeyF19:            "f19",
	auto.KeyHome:           "home",
	auto.KeyLControl:       "ctrl",
	auto.KeyLeftArrow:      "left",
	auto.KeyLShift:         "shift",
	auto.KeyMediaNextTrack: "audio_next",
	auto.KeyMediaPlayPause: "audio_play",
	auto.KeyMediaPrevTrack: "audio_prev",
	auto.KeyMeta:           "cmd",
	auto.KeyMultiply:       "num*",
	auto.KeyNumpad0:        "num0",
	auto.KeyNumpad1:        "num1",
	auto.KeyNumpad2:        "num2",
	auto.KeyNumpad3:        "num3",
	auto.KeyNumpad4:        "num4",
	auto.KeyNumpad5:        "num5",
	auto.KeyNumpad6:        "num6",
	auto.KeyNumpad7:        "num7",
	auto.KeyNumpad8:        "num8",
	auto.KeyNumpad9:        "num9",
	auto.KeyOption:         "alt",
	auto.KeyPageDown:       "pagedown",
	auto.KeyPageUp:         "pageup",
	auto.KeyRControl:       "rctrl",
	auto.KeyReturn:         "enter",
	auto.KeyRightArrow:     "right",
	auto.KeyRShift:         "rshift",
	auto.KeyShift:          "shift",
	auto.KeySpace:          "space",
	auto.KeySubtract:       "num-",
	auto.KeyTab:            "tab",
	auto.KeyUpArrow:        "up",
	auto.KeyVolumeDown:     "audio_vol_down",
	auto.KeyVolumeMute:     "audio_mute",
	auto.KeyVolumeUp:       "audio_vol_up",
}

// shiftedChars 美式布局中需要 Shift 的符号到基础键的映射
var shiftedChars = map[rune]string{
	'!': "1", '@': "2", '#': "3", '$': "4", '%': "5",
	'^': "6", '&': "7", '*': "8", '(': "9", ')': "0",
	'_': "-", '+': "=", '{': "[", '}': "]", '|': "\\",
	':': ";", '"': "'", '<': ",", '>': ".", '?': "/",
	'~': "`",
}

// plainChars 不需要修饰键就能输入的字符
func plainCharName(r rune) (string, bool) {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return string(r), true
	}
	switch r {
	case '-', '=', '[', ']', '\\', ';', '\'', ',', '.', '/', '`':
		return string(r), true
	case ' ':
		return "space", true
	case '\n', '\r':
		return "enter", true
	case '\t':
		return "tab", true
	}
	return "", false
}

// resolveCharDarwin 把字符解析为键名序列。大写字母和上档符号
// 带上 Shift，布局外的字符报不支持。
func resolveCharDarwin(r rune) ([]KeyCode, error) {
	if n, ok := plainCharName(r); ok {
		return []KeyCode{{Name: n}}, nil
	}

	var base string
	switch {
	case r >= 'A' && r <= 'Z':
		base = string(r - 'A' + 'a')
	default:
		b, ok := shiftedChars[r]
		if !ok {
			return nil, fmt.Errorf("%w: 无法在 macOS 上输入字符 %q", auto.ErrUnsupportedKey, r)
		}
		base = b
	}

	return []KeyCode{
		{Name: "shift"},
		{Name: base},
	}, nil
}

// ResolveKey 把按键解析为键名序列。需要 Shift 的字符会带上
// Shift 键名，调用方按顺序按下、逆序抬起。
func (b *darwinBackend) ResolveKey(k auto.Key) ([]KeyCode, error) {
	switch v := k.(type) {
	case auto.SpecialKey:
		name, ok := specialNames[v]
		if !ok {
			return nil, fmt.Errorf("%w: %s", auto.ErrUnsupportedKey, v)
		}
		return []KeyCode{{Name: name}}, nil
	case auto.UnicodeChar:
		return resolveCharDarwin(v.Rune())
	default:
		return nil, fmt.Errorf("%w: %T", auto.ErrUnsupportedKey, k)
	}
}
