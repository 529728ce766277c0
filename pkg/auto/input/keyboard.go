package input

import (
	"fmt"

	"github.com/zoeyai/zoeyauto/pkg/auto"
	"github.com/zoeyai/zoeyauto/pkg/auto/backend"
)

// KeyboardBackend 键盘控制器需要的后端能力
type KeyboardBackend interface {
	ResolveKey(k auto.Key) ([]backend.KeyCode, error)
	InjectKeyEvent(code backend.KeyCode, pressed bool) error
}

// Keyboard 键盘控制器
type Keyboard struct {
	backend KeyboardBackend
}

// NewKeyboard 创建键盘控制器
func NewKeyboard(b KeyboardBackend) *Keyboard {
	return &Keyboard{backend: b}
}

// pressCodes 按顺序按下键码，中途失败时回滚已按下的键，
// 避免修饰键卡在按下状态
func (k *Keyboard) pressCodes(codes []backend.KeyCode) error {
	for i, code := range codes {
		if err := k.backend.InjectKeyEvent(code, true); err != nil {
			for j := i - 1; j >= 0; j-- {
				k.backend.InjectKeyEvent(codes[j], false)
			}
			return err
		}
	}
	return nil
}

// releaseCodes 逆序抬起键码。出错也继续抬完剩下的键，
// 返回第一个错误。
func (k *Keyboard) releaseCodes(codes []backend.KeyCode) error {
	var firstErr error
	for i := len(codes) - 1; i >= 0; i-- {
		if err := k.backend.InjectKeyEvent(codes[i], false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// KeyPress 敲击按键：修饰键和主键按顺序按下，再逆序抬起
func (k *Keyboard) KeyPress(key auto.Key) error {
	codes, err := k.backend.ResolveKey(key)
	if err != nil {
		return err
	}

	if err := k.pressCodes(codes); err != nil {
		return err
	}
	return k.releaseCodes(codes)
}

// KeyDown 按下按键不抬起
func (k *Keyboard) KeyDown(key auto.Key) error {
	codes, err := k.backend.ResolveKey(key)
	if err != nil {
		return err
	}
	return k.pressCodes(codes)
}

// KeyUp 抬起按键
func (k *Keyboard) KeyUp(key auto.Key) error {
	codes, err := k.backend.ResolveKey(key)
	if err != nil {
		return err
	}
	return k.releaseCodes(codes)
}

// Combo 组合键：按顺序按下所有按键，再逆序抬起。
// 例如 Combo(KeyControl, MustUnicode('c')) 发送 Ctrl+C。
func (k *Keyboard) Combo(keys ...auto.Key) error {
	resolved := make([][]backend.KeyCode, 0, len(keys))
	for _, key := range keys {
		codes, err := k.backend.ResolveKey(key)
		if err != nil {
			return err
		}
		resolved = append(resolved, codes)
	}

	for i, codes := range resolved {
		if err := k.pressCodes(codes); err != nil {
			for j := i - 1; j >= 0; j-- {
				k.releaseCodes(resolved[j])
			}
			return err
		}
	}

	var firstErr error
	for i := len(resolved) - 1; i >= 0; i-- {
		if err := k.releaseCodes(resolved[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TypeText 逐字符输入文本。换行和制表符走对应的功能键。
func (k *Keyboard) TypeText(text string) error {
	for _, r := range text {
		if err := k.KeyPress(auto.MustUnicode(r)); err != nil {
			return fmt.Errorf("输入字符 %q 失败: %w", r, err)
		}
	}
	return nil
}
