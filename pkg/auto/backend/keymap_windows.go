//go:build windows

package backend

import (
	"fmt"

	"github.com/lxn/win"

	"github.com/zoeyai/zoeyauto/pkg/auto"
)

// specialVks 功能键到虚拟键码的映射
var specialVks = map[auto.SpecialKey]uint16{
	auto.KeyAdd:            win.VK_ADD,
	auto.KeyAlt:            win.VK_MENU,
	auto.KeyBackspace:      win.VK_BACK,
	auto.KeyCancel:         win.VK_CANCEL,
	auto.KeyCapsLock:       win.VK_CAPITAL,
	auto.KeyClear:          win.VK_CLEAR,
	auto.KeyCommand:        win.VK_LWIN,
	auto.KeyControl:        win.VK_CONTROL,
	auto.KeyDecimal:        win.VK_DECIMAL,
	auto.KeyDelete:         win.VK_DELETE,
	auto.KeyDivide:         win.VK_DIVIDE,
	auto.KeyDownArrow:      win.VK_DOWN,
	auto.KeyEnd:            win.VK_END,
	auto.KeyEscape:         win.VK_ESCAPE,
	auto.KeyExecute:        win.VK_EXECUTE,
	auto.KeyF1:             win.VK_F1,
	auto.KeyF2:             win.VK_F2,
	auto.KeyF3:             win.VK_F3,
	auto.KeyF4:             win.VK_F4,
	auto.KeyF5:             win.VK_F5,
	auto.KeyF6:             win.VK_F6,
	auto.KeyF7:             win.VK_F7,
	auto.KeyF8:             win.VK_F8,
	auto.KeyF9:             win.VK_F9,
	auto.KeyF10:            win.VK_F10,
	auto.KeyF11:            win.VK_F11,
	auto.KeyF12:            win.VK_F12,
	auto.KeyF13:            win.VK_F13,
	auto.KeyF14:            win.VK_F14,
	auto.KeyF15:            win.VK_F15,
	auto.KeyF16:            win.VK_F16,
	auto.KeyF17:            win.VK_F17,
	auto.KeyF18:            win.VK_F18,
	auto.KeyF19:            win.VK_F19,
	auto.KeyHelp:           win.VK_HELP,
	auto.KeyHome:           win.VK_HOME,
	auto.KeyInsert:         win.VK_INSERT,
	auto.KeyLControl:       win.VK_LCONTROL,
	auto.KeyLeftArrow:      win.VK_LEFT,
	auto.KeyLShift:         win.VK_LSHIFT,
	auto.KeyMediaNextTrack: win.VK_MEDIA_NEXT_TRACK,
	auto.KeyMediaPlayPause: win.VK_MEDIA_PLAY_PAUSE,
	auto.KeyMediaPrevTrack: win.VK_MEDIA_PREV_TRACK,
	auto.KeyMeta:           win.VK_LWIN,
	auto.KeyMultiply:       win.VK_MULTIPLY,
	auto.KeyNumpad0:        win.VK_NUMPAD0,
	auto.KeyNumpad1:        win.VK_NUMPAD1,
	auto.KeyNumpad2:        win.VK_NUMPAD2,
	auto.KeyNumpad3:        win.VK_NUMPAD3,
	auto.KeyNumpad4:        win.VK_NUMPAD4,
	auto.KeyNumpad5:        win.VK_NUMPAD5,
	auto.KeyNumpad6:        win.VK_NUMPAD6,
	auto.KeyNumpad7:        win.VK_NUMPAD7,
	auto.KeyNumpad8:        win.VK_NUMPAD8,
	auto.KeyNumpad9:        win.VK_NUMPAD9,
	auto.KeyOption:         win.VK_MENU,
	auto.KeyPageDown:       win.VK_NEXT,
	auto.KeyPageUp:         win.VK_PRIOR,
	auto.KeyPause:          win.VK_PAUSE,
	auto.KeyRControl:       win.VK_RCONTROL,
	auto.KeyReturn:         win.VK_RETURN,
	auto.KeyRightArrow:     win.VK_RIGHT,
	auto.KeyRShift:         win.VK_RSHIFT,
	auto.KeyShift:          win.VK_SHIFT,
	auto.KeySpace:          win.VK_SPACE,
	auto.KeySubtract:       win.VK_SUBTRACT,
	auto.KeyTab:            win.VK_TAB,
	auto.KeyUpArrow:        win.VK_UP,
	auto.KeyVolumeDown:     win.VK_VOLUME_DOWN,
	auto.KeyVolumeMute:     win.VK_VOLUME_MUTE,
	auto.KeyVolumeUp:       win.VK_VOLUME_UP,
}

// resolveChar 把字符解析为键码序列。VkKeyScanW 给出当前布局的
// 虚拟键和修饰状态，布局外的字符退回 Unicode 扫描码注入。
func resolveChar(r rune, name string) []KeyCode {
	if r > 0xffff {
		// VkKeyScanW 只接受 UTF-16 单元，增补平面字符直接走扫描码
		return []KeyCode{{Char: r, Name: name}}
	}

	ret, _, _ := procVkKeyScanW.Call(uintptr(uint16(r)))
	scan := int16(ret)
	if scan == -1 {
		return []KeyCode{{Char: r, Name: name}}
	}

	vk := uint16(scan & 0xff)
	shiftState := byte(uint16(scan) >> 8)

	var codes []KeyCode
	if shiftState&1 != 0 {
		codes = append(codes, KeyCode{Code: uint32(win.VK_SHIFT), Name: string(auto.KeyShift)})
	}
	if shiftState&2 != 0 {
		codes = append(codes, KeyCode{Code: uint32(win.VK_CONTROL), Name: string(auto.KeyControl)})
	}
	if shiftState&4 != 0 {
		codes = append(codes, KeyCode{Code: uint32(win.VK_MENU), Name: string(auto.KeyAlt)})
	}
	codes = append(codes, KeyCode{Code: uint32(vk), Name: name})
	return codes
}

// ResolveKey 把按键解析为键码序列。需要修饰键的字符会带上
// 修饰键码，调用方按顺序按下、逆序抬起。
func (b *winBackend) ResolveKey(k auto.Key) ([]KeyCode, error) {
	switch v := k.(type) {
	case auto.SpecialKey:
		vk, ok := specialVks[v]
		if !ok {
			return nil, fmt.Errorf("%w: %s", auto.ErrUnsupportedKey, v)
		}
		return []KeyCode{{Code: uint32(vk), Name: v.String()}}, nil
	case auto.UnicodeChar:
		return resolveChar(v.Rune(), v.String()), nil
	default:
		return nil, fmt.Errorf("%w: %T", auto.ErrUnsupportedKey, k)
	}
}
