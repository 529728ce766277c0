package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultAutomationConfig(t *testing.T) {
	config := DefaultAutomationConfig()

	if config.LogLevel != "INFO" {
		t.Errorf("默认 LogLevel 应为 INFO, 实际为 %s", config.LogLevel)
	}
	if config.LogToFile {
		t.Error("默认 LogToFile 应为 false")
	}
	if config.MoveDurationMs != 500 {
		t.Errorf("默认 MoveDurationMs 应为 500, 实际为 %d", config.MoveDurationMs)
	}
	if config.MoveStepMs != 10 {
		t.Errorf("默认 MoveStepMs 应为 10, 实际为 %d", config.MoveStepMs)
	}
	if config.ListenerBuffer != 100 {
		t.Errorf("默认 ListenerBuffer 应为 100, 实际为 %d", config.ListenerBuffer)
	}

	t.Logf("默认配置: %+v", config)
}

func TestNormalize(t *testing.T) {
	// 非法值应被拉回默认值
	config := &AutomationConfig{
		LogLevel:       "",
		MoveDurationMs: -100,
		MoveStepMs:     0,
		ListenerBuffer: -1,
	}
	config.Normalize()

	if config.LogLevel != "INFO" {
		t.Errorf("空 LogLevel 应恢复为 INFO, 实际为 %s", config.LogLevel)
	}
	if config.MoveDurationMs != 500 {
		t.Errorf("负的 MoveDurationMs 应恢复为 500, 实际为 %d", config.MoveDurationMs)
	}
	if config.MoveStepMs != 10 {
		t.Errorf("零 MoveStepMs 应恢复为 10, 实际为 %d", config.MoveStepMs)
	}
	if config.ListenerBuffer != 100 {
		t.Errorf("负的 ListenerBuffer 应恢复为 100, 实际为 %d", config.ListenerBuffer)
	}

	// 合法值不应被改动
	config = &AutomationConfig{
		LogLevel:       "DEBUG",
		MoveDurationMs: 800,
		MoveStepMs:     5,
		ListenerBuffer: 32,
	}
	config.Normalize()

	if config.MoveDurationMs != 800 || config.MoveStepMs != 5 || config.ListenerBuffer != 32 {
		t.Errorf("合法值被 Normalize 改动: %+v", config)
	}
}

func TestManagerSaveAndLoad(t *testing.T) {
	// 使用临时目录
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	// 检查初始状态
	if manager.Exists() {
		t.Error("初始时配置文件不应存在")
	}

	// 保存配置
	config := &AutomationConfig{
		LogLevel:       "DEBUG",
		LogToFile:      true,
		MoveDurationMs: 750,
		MoveStepMs:     8,
		ListenerBuffer: 64,
	}

	err := manager.Save(config)
	if err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	// 检查文件是否存在
	if !manager.Exists() {
		t.Error("保存后配置文件应存在")
	}

	// 加载配置
	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	// 验证内容
	if loaded.LogLevel != config.LogLevel {
		t.Errorf("LogLevel 不匹配: 期望 %s, 实际 %s", config.LogLevel, loaded.LogLevel)
	}
	if loaded.LogToFile != config.LogToFile {
		t.Errorf("LogToFile 不匹配: 期望 %v, 实际 %v", config.LogToFile, loaded.LogToFile)
	}
	if loaded.MoveDurationMs != config.MoveDurationMs {
		t.Errorf("MoveDurationMs 不匹配: 期望 %d, 实际 %d", config.MoveDurationMs, loaded.MoveDurationMs)
	}
	if loaded.MoveStepMs != config.MoveStepMs {
		t.Errorf("MoveStepMs 不匹配: 期望 %d, 实际 %d", config.MoveStepMs, loaded.MoveStepMs)
	}
	if loaded.ListenerBuffer != config.ListenerBuffer {
		t.Errorf("ListenerBuffer 不匹配: 期望 %d, 实际 %d", config.ListenerBuffer, loaded.ListenerBuffer)
	}

	t.Logf("加载的配置: %+v", loaded)
}

func TestManagerClear(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	// 先保存一个配置
	config := DefaultAutomationConfig()
	err := manager.Save(config)
	if err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	if !manager.Exists() {
		t.Fatal("保存后配置文件应存在")
	}

	// 清除配置
	err = manager.Clear()
	if err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}

	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}

	// 清除不存在的文件不应报错
	err = manager.Clear()
	if err != nil {
		t.Errorf("清除不存在的配置不应报错: %v", err)
	}
}

func TestManagerLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	// 加载不存在的配置应返回默认值
	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}

	defaultConfig := DefaultAutomationConfig()
	if config.MoveDurationMs != defaultConfig.MoveDurationMs {
		t.Errorf("应返回默认 MoveDurationMs")
	}

	t.Log("加载不存在的配置返回默认值: OK")
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	// 创建一个损坏的配置文件
	configFile := filepath.Join(tempDir, "config.json")
	os.MkdirAll(tempDir, 0755)
	err := os.WriteFile(configFile, []byte("not valid json"), 0600)
	if err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	// 加载损坏的配置应返回默认值和错误
	config, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置应返回错误")
	}

	// 但仍应返回默认配置
	if config == nil {
		t.Error("即使出错也应返回默认配置")
	}

	t.Logf("加载损坏配置的错误: %v", err)
}

func TestManagerLoadPartialFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	// 只包含部分字段的配置文件，缺失字段应被 Normalize 补齐
	configFile := filepath.Join(tempDir, "config.json")
	err := os.WriteFile(configFile, []byte(`{"log_level": "WARN"}`), 0600)
	if err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载部分配置失败: %v", err)
	}

	if config.LogLevel != "WARN" {
		t.Errorf("LogLevel 应保留为 WARN, 实际为 %s", config.LogLevel)
	}
	if config.MoveDurationMs != 500 {
		t.Errorf("缺失的 MoveDurationMs 应补为 500, 实际为 %d", config.MoveDurationMs)
	}
	if config.MoveStepMs != 10 {
		t.Errorf("缺失的 MoveStepMs 应补为 10, 实际为 %d", config.MoveStepMs)
	}

	t.Logf("部分配置补齐后: %+v", config)
}

func TestManagerPaths(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if manager.GetConfigDir() != tempDir {
		t.Errorf("GetConfigDir 应为 %s", tempDir)
	}

	expectedFile := filepath.Join(tempDir, "config.json")
	if manager.GetConfigFile() != expectedFile {
		t.Errorf("GetConfigFile 应为 %s", expectedFile)
	}

	t.Logf("配置目录: %s", manager.GetConfigDir())
	t.Logf("配置文件: %s", manager.GetConfigFile())
}

func TestDefaultManager(t *testing.T) {
	manager := GetDefaultManager()
	if manager == nil {
		t.Fatal("GetDefaultManager 返回 nil")
	}

	// 检查默认路径是否在用户目录下
	homeDir, _ := os.UserHomeDir()
	expectedDir := filepath.Join(homeDir, ".zoeyauto")

	if manager.GetConfigDir() != expectedDir {
		t.Errorf("默认配置目录应为 %s, 实际为 %s", expectedDir, manager.GetConfigDir())
	}

	t.Logf("默认配置目录: %s", manager.GetConfigDir())
}

func TestGlobalFunctions(t *testing.T) {
	// 测试全局函数不会 panic
	_, err := Load()
	if err != nil {
		t.Logf("Load 错误 (可能正常): %v", err)
	}

	// 不实际保存，避免污染用户配置
	t.Log("全局函数测试通过")
}

func TestConfigFilePermissions(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	err := manager.Save(DefaultAutomationConfig())
	if err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	// 检查文件权限 (应为 0600)
	info, err := os.Stat(manager.GetConfigFile())
	if err != nil {
		t.Fatalf("获取文件信息失败: %v", err)
	}

	perm := info.Mode().Perm()
	// 在某些系统上权限可能略有不同，但不应该是全局可读的
	if perm&0077 != 0 {
		t.Logf("警告: 配置文件权限为 %o, 建议设为 0600", perm)
	}

	t.Logf("配置文件权限: %o", perm)
}

// BenchmarkSaveLoad 基准测试
func BenchmarkSaveLoad(b *testing.B) {
	tempDir := b.TempDir()
	manager := NewManagerWithDir(tempDir)
	config := &AutomationConfig{
		LogLevel:       "DEBUG",
		MoveDurationMs: 600,
		MoveStepMs:     10,
		ListenerBuffer: 128,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		manager.Save(config)
		manager.Load()
	}
}
