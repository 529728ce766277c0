//go:build linux

package backend

import (
	"fmt"

	"github.com/jezek/xgb/xproto"

	"github.com/zoeyai/zoeyauto/pkg/auto"
)

// X11 keysym 常量，值来自 keysymdef.h 与 XF86keysym.h
const (
	keysymSpace       = 0x0020
	keysymBackspace   = 0xff08
	keysymTab         = 0xff09
	keysymClear       = 0xff0b
	keysymReturn      = 0xff0d
	keysymPause       = 0xff13
	keysymEscape      = 0xff1b
	keysymDelete      = 0xffff
	keysymHome        = 0xff50
	keysymLeft        = 0xff51
	keysymUp          = 0xff52
	keysymRight       = 0xff53
	keysymDown        = 0xff54
	keysymPageUp      = 0xff55
	keysymPageDown    = 0xff56
	keysymEnd         = 0xff57
	keysymExecute     = 0xff62
	keysymInsert      = 0xff63
	keysymCancel      = 0xff69
	keysymHelp        = 0xff6a
	keysymNumpad0     = 0xffb0
	keysymKPMultiply  = 0xffaa
	keysymKPAdd       = 0xffab
	keysymKPSubtract  = 0xffad
	keysymKPDecimal   = 0xffae
	keysymKPDivide    = 0xffaf
	keysymF1          = 0xffbe
	keysymShiftL      = 0xffe1
	keysymShiftR      = 0xffe2
	keysymControlL    = 0xffe3
	keysymControlR    = 0xffe4
	keysymCapsLock    = 0xffe5
	keysymAltL        = 0xffe9
	keysymSuperL      = 0xffeb
	keysymVolumeDown  = 0x1008ff11
	keysymVolumeMute  = 0x1008ff12
	keysymVolumeUp    = 0x1008ff13
	keysymMediaPlay   = 0x1008ff14
	keysymMediaPrev   = 0x1008ff16
	keysymMediaNext   = 0x1008ff17
	keysymUnicodeBase = 0x01000000
)

// specialKeysyms 功能键到 keysym 的映射
var specialKeysyms = map[auto.SpecialKey]xproto.Keysym{
	auto.KeyAdd:            keysymKPAdd,
	auto.KeyAlt:            keysymAltL,
	auto.KeyBackspace:      keysymBackspace,
	auto.KeyCancel:         keysymCancel,
	auto.KeyCapsLock:       keysymCapsLock,
	auto.KeyClear:          keysymClear,
	auto.KeyCommand:        keysymSuperL,
	auto.KeyControl:        keysymControlL,
	auto.KeyDecimal:        keysymKPDecimal,
	auto.KeyDelete:         keysymDelete,
	auto.KeyDivide:         keysymKPDivide,
	auto.KeyDownArrow:      keysymDown,
	auto.KeyEnd:            keysymEnd,
	auto.KeyEscape:         keysymEscape,
	auto.KeyExecute:        keysymExecute,
	auto.KeyF1:             keysymF1,
	auto.KeyF2:             keysymF1 + 1,
	auto.KeyF3:             keysymF1 + 2,
	auto.KeyF4:             keysymF1 + 3,
	auto.KeyF5:             keysymF1 + 4,
	auto.KeyF6:             keysymF1 + 5,
	auto.KeyF7:             keysymF1 + 6,
	auto.KeyF8:             keysymF1 + 7,
	auto.KeyF9:             keysymF1 + 8,
	auto.KeyF10:            keysymF1 + 9,
	auto.KeyF11:            keysymF1 + 10,
	auto.KeyF12:            keysymF1 + 11,
	auto.KeyF13:            keysymF1 + 12,
	auto.KeyF14:            keysymF1 + 13,
	auto.KeyF15:            keysymF1 + 14,
	auto.KeyF16:            keysymF1 + 15,
	auto.KeyF17:            keysymF1 + 16,
	auto.KeyF18:            keysymF1 + 17,
	auto.KeyF19:            keysymF1 + 18,
	auto.KeyHelp:           keysymHelp,
	auto.KeyHome:           keysymHome,
	auto.KeyInsert:         keysymInsert,
	auto.KeyLControl:       keysymControlL,
	auto.KeyLeftArrow:      keysymLeft,
	auto.KeyLShift:         keysymShiftL,
	auto.KeyMediaNextTrack: keysymMediaNext,
	auto.KeyMediaPlayPause: keysymMediaPlay,
	auto.KeyMediaPrevTrack: keysymMediaPrev,
	auto.KeyMeta:           keysymSuperL,
	auto.KeyMultiply:       keysymKPMultiply,
	auto.KeyNumpad0:        keysymNumpad0,
	auto.KeyNumpad1:        keysymNumpad0 + 1,
	auto.KeyNumpad2:        keysymNumpad0 + 2,
	auto.KeyNumpad3:        keysymNumpad0 + 3,
	auto.KeyNumpad4:        keysymNumpad0 + 4,
	auto.KeyNumpad5:        keysymNumpad0 + 5,
	auto.KeyNumpad6:        keysymNumpad0 + 6,
	auto.KeyNumpad7:        keysymNumpad0 + 7,
	auto.KeyNumpad8:        keysymNumpad0 + 8,
	auto.KeyNumpad9:        keysymNumpad0 + 9,
	auto.KeyOption:         keysymAltL,
	auto.KeyPageDown:       keysymPageDown,
	auto.KeyPageUp:         keysymPageUp,
	auto.KeyPause:          keysymPause,
	auto.KeyRControl:       keysymControlR,
	auto.KeyReturn:         keysymReturn,
	auto.KeyRightArrow:     keysymRight,
	auto.KeyRShift:         keysymShiftR,
	auto.KeyShift:          keysymShiftL,
	auto.KeySpace:          keysymSpace,
	auto.KeySubtract:       keysymKPSubtract,
	auto.KeyTab:            keysymTab,
	auto.KeyUpArrow:        keysymUp,
	auto.KeyVolumeDown:     keysymVolumeDown,
	auto.KeyVolumeMute:     keysymVolumeMute,
	auto.KeyVolumeUp:       keysymVolumeUp,
}

// keycodeEntry 一个 keysym 在当前布局中的键位
type keycodeEntry struct {
	code    xproto.Keycode
	shifted bool
}

// x11Keymap 当前键盘布局的 keysym 到 keycode 索引
type x11Keymap struct {
	codes    map[xproto.Keysym]keycodeEntry
	shiftKey xproto.Keycode
}

// keymap 懒加载键盘映射。布局在运行期间视为不变。
func (b *x11Backend) keymap() (*x11Keymap, error) {
	b.kmMu.Lock()
	defer b.kmMu.Unlock()
	if b.km != nil {
		return b.km, nil
	}

	setup := xproto.Setup(b.conn)
	first := setup.MinKeycode
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)

	reply, err := xproto.GetKeyboardMapping(b.conn, first, count).Reply()
	if err != nil {
		return nil, fmt.Errorf("读取键盘映射失败: %w", err)
	}

	km := &x11Keymap{codes: make(map[xproto.Keysym]keycodeEntry)}
	perCode := int(reply.KeysymsPerKeycode)
	for i := 0; i < int(count); i++ {
		code := first + xproto.Keycode(i)
		row := reply.Keysyms[i*perCode : (i+1)*perCode]

		// 第 0 列为无修饰键位，第 1 列为 Shift 键位。
		// 无修饰键位优先，已有条目不被 Shift 键位覆盖。
		if len(row) > 0 && row[0] != 0 {
			if _, ok := km.codes[row[0]]; !ok {
				km.codes[row[0]] = keycodeEntry{code: code}
			}
		}
		if len(row) > 1 && row[1] != 0 {
			if _, ok := km.codes[row[1]]; !ok {
				km.codes[row[1]] = keycodeEntry{code: code, shifted: true}
			}
		}
	}

	shift, ok := km.codes[keysymShiftL]
	if !ok {
		return nil, fmt.Errorf("键盘映射缺少 Shift 键")
	}
	km.shiftKey = shift.code

	b.km = km
	return km, nil
}

// keysymForRune 字符到 keysym 的换算规则：
// Latin-1 范围直接用码点，其余加 0x01000000 偏移
func keysymForRune(r rune) xproto.Keysym {
	switch r {
	case '\n', '\r':
		return keysymReturn
	case '\t':
		return keysymTab
	}
	if r <= 0xff {
		return xproto.Keysym(r)
	}
	return xproto.Keysym(keysymUnicodeBase + uint32(r))
}

// ResolveKey 把按键解析为键码序列。需要 Shift 的字符会带上
// Shift 修饰键，调用方按顺序按下、逆序抬起。
func (b *x11Backend) ResolveKey(k auto.Key) ([]KeyCode, error) {
	km, err := b.keymap()
	if err != nil {
		return nil, err
	}

	var sym xproto.Keysym
	switch v := k.(type) {
	case auto.SpecialKey:
		s, ok := specialKeysyms[v]
		if !ok {
			return nil, fmt.Errorf("%w: %s", auto.ErrUnsupportedKey, v)
		}
		sym = s
	case auto.UnicodeChar:
		sym = keysymForRune(v.Rune())
	default:
		return nil, fmt.Errorf("%w: %T", auto.ErrUnsupportedKey, k)
	}

	entry, ok := km.codes[sym]
	if !ok {
		return nil, fmt.Errorf("%w: 当前键盘布局没有 %s 的键位", auto.ErrUnsupportedKey, k)
	}

	primary := KeyCode{Code: uint32(entry.code), Name: k.String()}
	if !entry.shifted {
		return []KeyCode{primary}, nil
	}
	return []KeyCode{
		{Code: uint32(km.shiftKey), Name: string(auto.KeyShift)},
		primary,
	}, nil
}
