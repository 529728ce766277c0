package input

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zoeyai/zoeyauto/pkg/auto"
	"github.com/zoeyai/zoeyauto/pkg/auto/backend"
)

// keyInject 记录一次按键注入
type keyInject struct {
	code    uint32
	pressed bool
}

// fakeKeyBackend 录制按键注入的假后端。resolve 表按 Key 的
// 字符串形式查键码序列，failCode 指定按下即报错的键码。
type fakeKeyBackend struct {
	resolve  map[string][]backend.KeyCode
	events   []keyInject
	failCode uint32
}

func (f *fakeKeyBackend) ResolveKey(k auto.Key) ([]backend.KeyCode, error) {
	codes, ok := f.resolve[k.String()]
	if !ok {
		return nil, fmt.Errorf("无法解析按键 %s: %w", k, auto.ErrUnsupportedKey)
	}
	return codes, nil
}

func (f *fakeKeyBackend) InjectKeyEvent(code backend.KeyCode, pressed bool) error {
	if pressed && f.failCode != 0 && code.Code == f.failCode {
		return errors.New("注入失败")
	}
	f.events = append(f.events, keyInject{code.Code, pressed})
	return nil
}

func newFakeKeyBackend() *fakeKeyBackend {
	return &fakeKeyBackend{
		resolve: map[string][]backend.KeyCode{
			// 大写字母解析为 Shift 修饰键加主键
			"A":       {{Code: 16}, {Code: 65}},
			"a":       {{Code: 65}},
			"b":       {{Code: 66}},
			"Control": {{Code: 17}},
			"c":       {{Code: 67}},
		},
	}
}

// checkInjects 逐个比对注入序列
func checkInjects(t *testing.T, got []keyInject, want []keyInject) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("注入事件数错误: 期望 %d, 实际 %d (%+v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("事件 %d 错误: 期望 %+v, 实际 %+v", i, want[i], got[i])
		}
	}
}

// TestKeyPress 敲击按顺序按下再逆序抬起
func TestKeyPress(t *testing.T) {
	f := newFakeKeyBackend()
	k := NewKeyboard(f)

	if err := k.KeyPress(auto.MustUnicode('A')); err != nil {
		t.Fatalf("KeyPress 失败: %v", err)
	}
	checkInjects(t, f.events, []keyInject{
		{16, true},  // Shift 按下
		{65, true},  // A 按下
		{65, false}, // A 抬起
		{16, false}, // Shift 抬起
	})
}

// TestKeyPressUnsupported 无法解析的按键返回 ErrUnsupportedKey
func TestKeyPressUnsupported(t *testing.T) {
	f := newFakeKeyBackend()
	k := NewKeyboard(f)

	err := k.KeyPress(auto.KeyF1)
	if !errors.Is(err, auto.ErrUnsupportedKey) {
		t.Errorf("期望 ErrUnsupportedKey, 实际 %v", err)
	}
	if len(f.events) != 0 {
		t.Errorf("解析失败不应注入事件: %+v", f.events)
	}
}

// TestKeyDownUp 按下和抬起分开控制
func TestKeyDownUp(t *testing.T) {
	f := newFakeKeyBackend()
	k := NewKeyboard(f)

	if err := k.KeyDown(auto.MustUnicode('A')); err != nil {
		t.Fatalf("KeyDown 失败: %v", err)
	}
	if err := k.KeyUp(auto.MustUnicode('A')); err != nil {
		t.Fatalf("KeyUp 失败: %v", err)
	}
	checkInjects(t, f.events, []keyInject{
		{16, true},
		{65, true},
		{65, false},
		{16, false},
	})
}

// TestKeyPressRollback 主键按下失败时回滚已按下的修饰键
func TestKeyPressRollback(t *testing.T) {
	f := newFakeKeyBackend()
	f.failCode = 65
	k := NewKeyboard(f)

	if err := k.KeyPress(auto.MustUnicode('A')); err == nil {
		t.Fatal("主键注入失败应返回错误")
	}
	// Shift 按下成功，主键失败后 Shift 被抬起
	checkInjects(t, f.events, []keyInject{
		{16, true},
		{16, false},
	})
}

// TestCombo 组合键按顺序按下再逆序抬起
func TestCombo(t *testing.T) {
	f := newFakeKeyBackend()
	k := NewKeyboard(f)

	if err := k.Combo(auto.KeyControl, auto.MustUnicode('c')); err != nil {
		t.Fatalf("Combo 失败: %v", err)
	}
	checkInjects(t, f.events, []keyInject{
		{17, true},
		{67, true},
		{67, false},
		{17, false},
	})
}

// TestComboResolveFirst 任一按键无法解析时不注入任何事件
func TestComboResolveFirst(t *testing.T) {
	f := newFakeKeyBackend()
	k := NewKeyboard(f)

	err := k.Combo(auto.KeyControl, auto.KeyF1)
	if !errors.Is(err, auto.ErrUnsupportedKey) {
		t.Errorf("期望 ErrUnsupportedKey, 实际 %v", err)
	}
	if len(f.events) != 0 {
		t.Errorf("解析失败不应注入事件: %+v", f.events)
	}
}

// TestComboRollback 组合键中途失败时抬起已按下的按键
func TestComboRollback(t *testing.T) {
	f := newFakeKeyBackend()
	f.failCode = 67
	k := NewKeyboard(f)

	if err := k.Combo(auto.KeyControl, auto.MustUnicode('c')); err == nil {
		t.Fatal("组合键中途失败应返回错误")
	}
	checkInjects(t, f.events, []keyInject{
		{17, true},
		{17, false},
	})
}

// TestTypeText 逐字符输入产生独立的敲击序列
func TestTypeText(t *testing.T) {
	f := newFakeKeyBackend()
	k := NewKeyboard(f)

	if err := k.TypeText("ab"); err != nil {
		t.Fatalf("TypeText 失败: %v", err)
	}
	checkInjects(t, f.events, []keyInject{
		{65, true},
		{65, false},
		{66, true},
		{66, false},
	})
}

// TestTypeTextFailure 中途失败时报告出错字符并停止输入
func TestTypeTextFailure(t *testing.T) {
	f := newFakeKeyBackend()
	k := NewKeyboard(f)

	err := k.TypeText("a数b")
	if err == nil {
		t.Fatal("无法解析的字符应返回错误")
	}
	if !errors.Is(err, auto.ErrUnsupportedKey) {
		t.Errorf("期望包装 ErrUnsupportedKey, 实际 %v", err)
	}
	if !strings.Contains(err.Error(), "输入字符") {
		t.Errorf("错误信息应指明出错字符: %v", err)
	}
	// 失败字符之前的输入已完成，之后的不再输入
	checkInjects(t, f.events, []keyInject{
		{65, true},
		{65, false},
	})
}
