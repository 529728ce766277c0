package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/zoeyai/zoeyauto/internal/logger"
	"github.com/zoeyai/zoeyauto/pkg/auto"
	"github.com/zoeyai/zoeyauto/pkg/auto/backend"
	"github.com/zoeyai/zoeyauto/pkg/auto/input"
	"github.com/zoeyai/zoeyauto/pkg/auto/listener"
	"github.com/zoeyai/zoeyauto/pkg/auto/window"
	"github.com/zoeyai/zoeyauto/pkg/config"
	"github.com/zoeyai/zoeyauto/pkg/permissions"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 命令行参数
	var (
		listWindows   = flag.Bool("windows", false, "列出当前所有顶层窗口")
		captureTitle  = flag.String("capture", "", "截取窗口并输出像素统计 (标题关键字)")
		colorHex      = flag.String("color", "", "在截图中查找的颜色 (RRGGBBAA 十六进制)")
		activateTitle = flag.String("activate", "", "激活窗口 (标题关键字)")
		moveArg       = flag.String("move", "", "立即移动光标 (例: 100,200)")
		humanArg      = flag.String("human", "", "拟人移动光标 (例: 100,200)")
		clickArg      = flag.String("click", "", "拟人移动并左键点击 (例: 100,200)")
		scrollArg     = flag.String("scroll", "", "滚动一格 (up/down/left/right)")
		durationMs    = flag.Int("duration", 0, "拟人移动耗时毫秒 (默认读取配置)")
		keyName       = flag.String("key", "", "按下并释放按键 (例: Return)")
		comboArg      = flag.String("combo", "", "组合键 (例: Control+c)")
		textArg       = flag.String("text", "", "输入一段文本")
		listen        = flag.Bool("listen", false, "监听全局键盘事件直到 Ctrl+C (仅 Windows)")
		logLevel      = flag.String("log", "", "日志级别 (DEBUG/INFO/WARN/ERROR)")
		saveConfig    = flag.Bool("save", false, "保存当前配置到本地")
		showVersion   = flag.Bool("version", false, "显示版本信息")
		showHelp      = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本
	if *showVersion {
		printVersion()
		return
	}

	// 显示帮助
	if *showHelp {
		printHelp()
		return
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("[WARN] 加载配置失败: %v\n", err)
	}

	// 命令行参数优先级高于配置文件
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *durationMs > 0 {
		cfg.MoveDurationMs = *durationMs
	}

	setupLogger(cfg)

	// 保存配置
	if *saveConfig {
		if err := config.Save(cfg); err != nil {
			fmt.Printf("[WARN] 保存配置失败: %v\n", err)
		} else {
			fmt.Printf("[INFO] 配置已保存到 %s\n", config.GetDefaultManager().GetConfigFile())
		}
	}

	// macOS 权限检查
	if runtime.GOOS == "darwin" {
		checkMacOSPermissions()
	}

	needBackend := *listWindows || *captureTitle != "" || *activateTitle != "" ||
		*moveArg != "" || *humanArg != "" || *clickArg != "" || *scrollArg != "" ||
		*keyName != "" || *comboArg != "" || *textArg != ""

	if !needBackend && !*listen && !*saveConfig {
		printHelp()
		return
	}

	var (
		mouse    *input.Mouse
		keyboard *input.Keyboard
		registry *window.Registry
	)
	if needBackend {
		be, err := backend.New()
		if err != nil {
			fatal("初始化平台后端失败: %v", err)
		}
		defer be.Close()

		mouse = input.NewMouse(be)
		keyboard = input.NewKeyboard(be)
		registry = window.NewRegistry(be)
	}

	moveOpts := []auto.Option{
		auto.WithDuration(time.Duration(cfg.MoveDurationMs) * time.Millisecond),
		auto.WithStep(time.Duration(cfg.MoveStepMs) * time.Millisecond),
	}

	if *listWindows {
		runListWindows(registry)
	}
	if *activateTitle != "" {
		runActivate(registry, *activateTitle)
	}
	if *captureTitle != "" {
		runCapture(registry, *captureTitle, *colorHex)
	}
	if *moveArg != "" {
		runMove(mouse, *moveArg)
	}
	if *humanArg != "" {
		runHumanMove(mouse, *humanArg, moveOpts)
	}
	if *clickArg != "" {
		runClick(mouse, *clickArg, moveOpts)
	}
	if *scrollArg != "" {
		runScroll(mouse, *scrollArg)
	}
	if *keyName != "" {
		runKeyPress(keyboard, *keyName)
	}
	if *comboArg != "" {
		runCombo(keyboard, *comboArg)
	}
	if *textArg != "" {
		runTypeText(keyboard, *textArg)
	}
	if *listen {
		runListen(cfg.ListenerBuffer)
	}
}

// setupLogger 按配置初始化全局日志
func setupLogger(cfg *config.AutomationConfig) {
	log := logger.Default()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if cfg.LogToFile {
		path, err := logger.DefaultLogPath()
		if err != nil {
			fmt.Printf("[WARN] 无法确定日志文件路径: %v\n", err)
			return
		}
		if err := log.SetFile(true, path); err != nil {
			fmt.Printf("[WARN] 打开日志文件失败: %v\n", err)
		}
	}
}

// fatal 打印错误并退出
func fatal(format string, args ...interface{}) {
	fmt.Printf("[ERROR] "+format+"\n", args...)
	os.Exit(1)
}

// elapsedMs 计算耗时毫秒数
func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// parsePoint 解析 "x,y" 形式的坐标参数
func parsePoint(arg string) (int, int, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("坐标格式应为 x,y: %q", arg)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("无效的 x 坐标: %q", parts[0])
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("无效的 y 坐标: %q", parts[1])
	}
	return x, y, nil
}

// parseColor 解析 RRGGBBAA 十六进制颜色，省略 alpha 时按不透明处理
func parseColor(arg string) (uint32, error) {
	s := strings.TrimPrefix(strings.TrimSpace(arg), "0x")
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return 0, fmt.Errorf("颜色格式应为 RRGGBBAA: %q", arg)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("无效的颜色值: %q", arg)
	}
	return uint32(v), nil
}

// parseKey 把参数解析为特殊键或单个字符
func parseKey(name string) (auto.Key, error) {
	if sk, err := auto.ParseSpecialKey(name); err == nil {
		return sk, nil
	}
	return auto.Unicode(name)
}

// findWindow 按标题关键字找到第一个匹配窗口
func findWindow(registry *window.Registry, title string) *window.Window {
	matches, err := registry.Find(title)
	if err != nil {
		fatal("查找窗口失败: %v", err)
	}
	if len(matches) == 0 {
		fatal("没有找到标题包含 %q 的窗口", title)
	}
	if len(matches) > 1 {
		fmt.Printf("[WARN] 有 %d 个窗口匹配 %q, 使用第一个\n", len(matches), title)
	}
	return matches[0]
}

// truncate 截断过长的字符串
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func runListWindows(registry *window.Registry) {
	start := time.Now()
	windows, err := registry.All()
	if err != nil {
		logger.LogEvent("WIN", false, elapsedMs(start), err.Error())
		fatal("枚举窗口失败: %v", err)
	}
	logger.LogEvent("WIN", true, elapsedMs(start), fmt.Sprintf("枚举到 %d 个窗口", len(windows)))

	var focusedHandle backend.WindowHandle
	if fw, err := registry.Focused(); err == nil {
		focusedHandle = fw.Handle()
	}

	fmt.Printf("共 %d 个窗口:\n", len(windows))
	for _, w := range windows {
		marker := " "
		if focusedHandle != 0 && w.Handle() == focusedHandle {
			marker = "*"
		}
		fmt.Printf("%s [%6d] z=%-3d %-20s %4dx%-4d @(%d,%d)  %s\n",
			marker, w.PID(), w.Z(), truncate(w.OwnerName(), 20),
			w.Width(), w.Height(), w.X(), w.Y(), w.Title())
	}
}

func runActivate(registry *window.Registry, title string) {
	w := findWindow(registry, title)

	start := time.Now()
	if err := w.Activate(); err != nil {
		logger.LogEvent("WIN", false, elapsedMs(start), err.Error())
		fatal("激活窗口失败: %v", err)
	}
	logger.LogEvent("WIN", true, elapsedMs(start), "激活 "+w.Title())
	fmt.Printf("[INFO] 已激活: %s\n", w.Title())
}

func runCapture(registry *window.Registry, title, colorHex string) {
	w := findWindow(registry, title)

	start := time.Now()
	img, err := w.CaptureImage()
	if err != nil {
		logger.LogEvent("CAP", false, elapsedMs(start), err.Error())
		fatal("截图失败: %v", err)
	}
	logger.LogEvent("CAP", true, elapsedMs(start),
		fmt.Sprintf("%s %dx%d", w.Title(), img.Width(), img.Height()))

	fmt.Printf("窗口: %s\n", w.Title())
	fmt.Printf("尺寸: %dx%d (%d 像素)\n", img.Width(), img.Height(), img.Width()*img.Height())

	// 指定了颜色就做精确查找，否则输出颜色分布
	if colorHex != "" {
		rgba, err := parseColor(colorHex)
		if err != nil {
			fatal("%v", err)
		}

		pixels := img.FindRGBAs(rgba)
		features := img.GetFeaturesFromColor(rgba)
		fmt.Printf("颜色 %08X: %d 个像素, %d 个特征块\n", rgba, len(pixels), len(features))
		for i, f := range features {
			if i >= 5 {
				fmt.Println("  ... 仅显示前 5 个")
				break
			}
			fmt.Printf("  特征 %d: %d 个像素, 起点 (%d, %d)\n",
				i+1, len(f.Pixels), f.Pixels[0].X, f.Pixels[0].Y)
		}
		return
	}

	freqs, err := img.GetColourFrequencies(0, 0, img.Width()-1, img.Height()-1)
	if err != nil {
		fatal("统计颜色失败: %v", err)
	}
	fmt.Println("出现最多的颜色:")
	for i, f := range freqs {
		if i >= 10 {
			break
		}
		fmt.Printf("  %08X  %8d 次\n", f.RGBA, f.Count)
	}
}

func runMove(mouse *input.Mouse, arg string) {
	x, y, err := parsePoint(arg)
	if err != nil {
		fatal("%v", err)
	}

	start := time.Now()
	if err := mouse.MoveTo(x, y); err != nil {
		logger.LogEvent("MOVE", false, elapsedMs(start), err.Error())
		fatal("移动光标失败: %v", err)
	}

	pos, _ := mouse.GetPosition()
	logger.LogEvent("MOVE", true, elapsedMs(start), fmt.Sprintf("瞬移到 (%d, %d)", pos.X, pos.Y))
	fmt.Printf("[INFO] 光标位置: (%d, %d)\n", pos.X, pos.Y)
}

func runHumanMove(mouse *input.Mouse, arg string, opts []auto.Option) {
	x, y, err := parsePoint(arg)
	if err != nil {
		fatal("%v", err)
	}

	start := time.Now()
	if err := mouse.HumanlikeMoveTo(x, y, opts...); err != nil {
		logger.LogEvent("MOVE", false, elapsedMs(start), err.Error())
		fatal("拟人移动失败: %v", err)
	}
	logger.LogEvent("MOVE", true, elapsedMs(start), fmt.Sprintf("拟人移动到 (%d, %d)", x, y))
	fmt.Printf("[INFO] 拟人移动完成, 耗时 %.0fms\n", elapsedMs(start))
}

func runClick(mouse *input.Mouse, arg string, opts []auto.Option) {
	x, y, err := parsePoint(arg)
	if err != nil {
		fatal("%v", err)
	}

	start := time.Now()
	if err := mouse.ClickAt(x, y, opts...); err != nil {
		logger.LogEvent("MOVE", false, elapsedMs(start), err.Error())
		fatal("点击失败: %v", err)
	}
	logger.LogEvent("MOVE", true, elapsedMs(start), fmt.Sprintf("点击 (%d, %d)", x, y))
	fmt.Printf("[INFO] 已点击 (%d, %d)\n", x, y)
}

func runScroll(mouse *input.Mouse, direction string) {
	var btn auto.MouseButton
	switch strings.ToLower(direction) {
	case "up":
		btn = auto.ButtonScrollUp
	case "down":
		btn = auto.ButtonScrollDown
	case "left":
		btn = auto.ButtonScrollLeft
	case "right":
		btn = auto.ButtonScrollRight
	default:
		fatal("滚动方向应为 up/down/left/right: %q", direction)
	}

	start := time.Now()
	if err := mouse.Click(btn); err != nil {
		logger.LogEvent("MOVE", false, elapsedMs(start), err.Error())
		fatal("滚动失败: %v", err)
	}
	logger.LogEvent("MOVE", true, elapsedMs(start), "滚动 "+direction)
	fmt.Printf("[INFO] 已滚动: %s\n", direction)
}

func runKeyPress(keyboard *input.Keyboard, name string) {
	key, err := parseKey(name)
	if err != nil {
		fatal("无法识别的按键 %q: %v", name, err)
	}

	start := time.Now()
	if err := keyboard.KeyPress(key); err != nil {
		logger.LogEvent("KEY", false, elapsedMs(start), err.Error())
		fatal("按键失败: %v", err)
	}
	logger.LogEvent("KEY", true, elapsedMs(start), "按键 "+key.String())
	fmt.Printf("[INFO] 已按下: %s\n", key)
}

func runCombo(keyboard *input.Keyboard, arg string) {
	parts := strings.Split(arg, "+")
	keys := make([]auto.Key, 0, len(parts))
	for _, part := range parts {
		key, err := parseKey(strings.TrimSpace(part))
		if err != nil {
			fatal("无法识别的按键 %q: %v", part, err)
		}
		keys = append(keys, key)
	}

	start := time.Now()
	if err := keyboard.Combo(keys...); err != nil {
		logger.LogEvent("KEY", false, elapsedMs(start), err.Error())
		fatal("组合键失败: %v", err)
	}
	logger.LogEvent("KEY", true, elapsedMs(start), "组合键 "+arg)
	fmt.Printf("[INFO] 已按下组合键: %s\n", arg)
}

func runTypeText(keyboard *input.Keyboard, text string) {
	start := time.Now()
	if err := keyboard.TypeText(text); err != nil {
		logger.LogEvent("KEY", false, elapsedMs(start), err.Error())
		fatal("输入文本失败: %v", err)
	}

	count := len([]rune(text))
	logger.LogEvent("KEY", true, elapsedMs(start), fmt.Sprintf("输入 %d 个字符", count))
	fmt.Printf("[INFO] 已输入 %d 个字符\n", count)
}

func runListen(bufSize int) {
	l, err := listener.New(listener.WithBufferSize(bufSize))
	if err != nil {
		fatal("启动全局监听失败: %v", err)
	}
	defer l.Close()

	sub, err := l.Subscribe()
	if err != nil {
		fatal("订阅键盘事件失败: %v", err)
	}

	fmt.Println("[INFO] 正在监听全局键盘事件, 按 Ctrl+C 退出")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			state := "抬起"
			if ev.Pressed {
				state = "按下"
			}
			fmt.Printf("%s | 键码 0x%02X %s\n", ev.When.Format("15:04:05.000"), ev.Code, state)
		case <-sigCh:
			fmt.Println()
			fmt.Println("[INFO] 停止监听")
			return
		}
	}
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Zoey Auto v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("Zoey Auto - 桌面自动化工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  zoeyauto [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -windows            列出当前所有顶层窗口")
	fmt.Println("  -capture string     截取窗口并输出像素统计 (标题关键字)")
	fmt.Println("  -color string       在截图中查找的颜色 (RRGGBBAA 十六进制)")
	fmt.Println("  -activate string    激活窗口 (标题关键字)")
	fmt.Println("  -move string        立即移动光标 (例: 100,200)")
	fmt.Println("  -human string       拟人移动光标 (例: 100,200)")
	fmt.Println("  -click string       拟人移动并左键点击 (例: 100,200)")
	fmt.Println("  -scroll string      滚动一格 (up/down/left/right)")
	fmt.Println("  -duration int       拟人移动耗时毫秒 (默认读取配置)")
	fmt.Println("  -key string         按下并释放按键 (例: Return)")
	fmt.Println("  -combo string       组合键 (例: Control+c)")
	fmt.Println("  -text string        输入一段文本")
	fmt.Println("  -listen             监听全局键盘事件 (仅 Windows)")
	fmt.Println("  -log string         日志级别 (DEBUG/INFO/WARN/ERROR)")
	fmt.Println("  -save               保存当前配置到本地")
	fmt.Println("  -version            显示版本信息")
	fmt.Println("  -help               显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 列出窗口并截取记事本窗口")
	fmt.Println("  zoeyauto -windows")
	fmt.Println("  zoeyauto -capture 记事本")
	fmt.Println()
	fmt.Println("  # 在截图中查找纯红色像素")
	fmt.Println("  zoeyauto -capture 记事本 -color ff0000ff")
	fmt.Println()
	fmt.Println("  # 用 800ms 拟人轨迹移动并点击")
	fmt.Println("  zoeyauto -click 400,300 -duration 800")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}

// checkMacOSPermissions 检查 macOS 权限
func checkMacOSPermissions() {
	status := permissions.CheckPermissions()

	if status.AllGranted {
		return
	}

	fmt.Println("[WARN] ========== 缺少权限 ==========")

	if !status.Accessibility {
		fmt.Println("[WARN] ❌ 辅助功能: 未授权 (用于控制鼠标/键盘)")
	}

	if !status.ScreenRecording {
		fmt.Println("[WARN] ❌ 屏幕录制: 未授权 (用于窗口截图)")
	}

	fmt.Println("[WARN] 请在 系统设置 > 隐私与安全性 中授权")
	fmt.Println("[WARN] ==================================")
	fmt.Println()
}
