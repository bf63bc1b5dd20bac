package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
	"github.com/3586649596/Nikke-clicker/internal/core/coordinator"
	"github.com/3586649596/Nikke-clicker/internal/settings"
)

const (
	sliderMaxMS       = 1000
	sliderMaxJitterMS = 50
	maxUILogLines     = 50
	strategyInject    = "Global inject"
	strategyPost      = "Post to window"
)

var clickerAccent = color.NRGBA{R: 0x5a, G: 0xb4, B: 0xff, A: 0xff}

// clickerTheme is the dark theme with a blue accent. The error color feeds the
// hook failure line.
type clickerTheme struct {
	fyne.Theme
}

func newClickerTheme() fyne.Theme {
	return clickerTheme{Theme: theme.DarkTheme()}
}

func (t clickerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return clickerAccent
	case theme.ColorNameFocus, theme.ColorNameSelection:
		accent := clickerAccent
		accent.A = 0x55
		return accent
	case theme.ColorNameError:
		return color.NRGBA{R: 0xff, G: 0x82, B: 0x82, A: 0xff}
	}
	return t.Theme.Color(name, variant)
}

func strategyLabel(strategy autoclicker.Strategy) string {
	if strategy == autoclicker.StrategyPostToWindow {
		return strategyPost
	}
	return strategyInject
}

func strategyFromLabel(label string) autoclicker.Strategy {
	if label == strategyPost {
		return autoclicker.StrategyPostToWindow
	}
	return autoclicker.StrategyInjectGlobal
}

func hookStatusText(status coordinator.Status) string {
	var b strings.Builder
	switch {
	case status.HookInstalled:
		b.WriteString("Hook: installed")
	case status.HookError != "":
		b.WriteString("Hook: failed")
	default:
		b.WriteString("Hook: starting")
	}
	if status.Running {
		b.WriteString("  |  Clicking")
	} else {
		b.WriteString("  |  Idle")
	}
	fmt.Fprintf(&b, "  |  Clicks: %d", status.Clicks)
	return b.String()
}

func newMilliSlider(maxMS float64, value int) *widget.Slider {
	slider := widget.NewSlider(0, maxMS)
	slider.Step = 1
	slider.SetValue(float64(value))
	return slider
}

func runUI(cfg config) error {
	fApp := app.New()
	fApp.Settings().SetTheme(newClickerTheme())

	window := fApp.NewWindow("Nikke Clicker")
	window.Resize(fyne.NewSize(760, 560))
	window.SetFixedSize(true)
	window.CenterOnScreen()

	errorText := canvas.NewText("", nil)
	errorText.Color = theme.Color(theme.ColorNameError)
	showError := func(msg string) {
		errorText.Text = msg
		errorText.Refresh()
	}

	logGrid := widget.NewTextGrid()
	logScroll := container.NewVScroll(logGrid)
	logScroll.SetMinSize(fyne.NewSize(0, 150))

	var logMu sync.Mutex
	logLines := make([]string, 0, maxUILogLines)
	debugLogs := debugLogsEnabled()
	appendLogLine := func(line string) {
		if !debugLogs {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}

		logMu.Lock()
		logLines = append(logLines, line)
		if len(logLines) > maxUILogLines {
			logLines = logLines[len(logLines)-maxUILogLines:]
		}
		logText := strings.Join(logLines, "\n")
		logMu.Unlock()

		fyne.Do(func() {
			logGrid.SetText(logText)
			logScroll.ScrollToBottom()
		})
	}

	logger := newSlogLogger(cfg.logLevel, appendLogLine)
	clicker, err := newClickerApp(cfg, logger)
	if err != nil {
		msg := err.Error()
		if isPermissionError(err) {
			msg = permissionDeniedHint()
		}
		showError(msg)
		quitBtn := widget.NewButton("Quit", fApp.Quit)
		window.SetContent(container.NewPadded(container.NewVBox(errorText, quitBtn)))
		window.ShowAndRun()
		return nil
	}

	initial := clicker.engine.Params()

	intervalSlider := newMilliSlider(sliderMaxMS, initial.Interval)
	pressSlider := newMilliSlider(sliderMaxMS, initial.PressDuration)
	jitterSlider := newMilliSlider(sliderMaxJitterMS, initial.JitterRange)

	intervalValue := widget.NewLabel("")
	pressValue := widget.NewLabel("")
	jitterValue := widget.NewLabel("")
	for _, label := range []*widget.Label{intervalValue, pressValue, jitterValue} {
		label.Alignment = fyne.TextAlignTrailing
		label.TextStyle = fyne.TextStyle{Bold: true}
	}

	strategyRadio := widget.NewRadioGroup([]string{strategyInject, strategyPost}, nil)
	strategyRadio.Horizontal = true
	strategyRadio.Required = true
	strategyRadio.SetSelected(strategyLabel(initial.Strategy))

	summaryText := widget.NewLabel(clicker.summary())
	summaryText.TextStyle = fyne.TextStyle{Bold: true}
	summaryText.Wrapping = fyne.TextWrapWord
	statusText := widget.NewLabel(hookStatusText(clicker.coordinator.Status()))

	hotkeyBtn := widget.NewButton(clicker.coordinator.Status().HotkeyLabel(), nil)
	hotkeyBtn.Importance = widget.MediumImportance
	startBtn := widget.NewButton("Start", nil)
	startBtn.Importance = widget.HighImportance

	soundCheck := widget.NewCheck("Beep on start/stop", func(enabled bool) {
		clicker.setSound(enabled)
	})
	soundCheck.SetChecked(clicker.store.Get().Sound)

	// syncing suppresses OnChanged feedback while controls are set from code.
	syncing := false

	refreshLabels := func() {
		intervalValue.SetText(fmt.Sprintf("%d ms", int(intervalSlider.Value)))
		pressValue.SetText(fmt.Sprintf("%d ms", int(pressSlider.Value)))
		jitterValue.SetText(fmt.Sprintf("±%d ms", int(jitterSlider.Value)))
		summaryText.SetText(clicker.summary())
	}

	syncControls := func(p autoclicker.Params) {
		syncing = true
		intervalSlider.SetValue(float64(p.Interval))
		pressSlider.SetValue(float64(p.PressDuration))
		jitterSlider.SetValue(float64(p.JitterRange))
		strategyRadio.SetSelected(strategyLabel(p.Strategy))
		syncing = false
		refreshLabels()
	}

	applyControls := func() {
		if syncing {
			return
		}
		p := autoclicker.Params{
			Interval:      int(intervalSlider.Value),
			PressDuration: int(pressSlider.Value),
			JitterRange:   int(jitterSlider.Value),
			Strategy:      strategyFromLabel(strategyRadio.Selected),
		}
		if err := clicker.setParams(p); err != nil {
			showError(err.Error())
			return
		}
		showError("")
		refreshLabels()
	}

	intervalSlider.OnChanged = func(float64) { applyControls() }
	pressSlider.OnChanged = func(float64) { applyControls() }
	jitterSlider.OnChanged = func(float64) { applyControls() }
	strategyRadio.OnChanged = func(string) { applyControls() }
	refreshLabels()

	presetButtons := make([]fyne.CanvasObject, 0, len(autoclicker.Presets()))
	for _, preset := range autoclicker.Presets() {
		presetButtons = append(presetButtons, widget.NewButton(preset.Title(), func() {
			p := preset.Apply(clicker.engine.Params())
			if err := clicker.setParams(p); err != nil {
				showError(err.Error())
				return
			}
			syncControls(p)
			logger.Info("Preset applied", "preset", preset.String())
		}))
	}

	hotkeyBtn.OnTapped = func() {
		if clicker.coordinator.Status().Capturing {
			clicker.coordinator.CancelCapture()
			return
		}
		if !clicker.coordinator.BeginCapture() {
			showError("Keyboard hook is not installed; the hotkey cannot be captured.")
			return
		}
		showError("")
	}

	startBtn.OnTapped = func() {
		clicker.engine.Toggle()
	}

	clicker.coordinator.OnStatus(func(status coordinator.Status) {
		fyne.Do(func() {
			statusText.SetText(hookStatusText(status))
			if status.Capturing {
				hotkeyBtn.SetText("Press a key... (click to cancel)")
			} else {
				hotkeyBtn.SetText(status.HotkeyLabel())
			}
			if status.Running {
				startBtn.SetText(fmt.Sprintf("Stop (%s)", status.HotkeyLabel()))
			} else {
				startBtn.SetText(fmt.Sprintf("Start (%s)", status.HotkeyLabel()))
			}
			if status.HookError != "" {
				showError(status.HookError + ". " + permissionDeniedHint())
			}
			summaryText.SetText(clicker.summary())
		})
	})
	clicker.store.OnChange(func(next settings.Settings) {
		fyne.Do(func() {
			syncControls(next.Params())
			soundCheck.SetChecked(next.Sound)
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			cancel()
			clicker.shutdown()
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	requestQuit := func() {
		fyne.Do(func() {
			cleanup()
			if currentApp := fyne.CurrentApp(); currentApp != nil {
				currentApp.Quit()
				return
			}
			window.SetCloseIntercept(nil)
			window.Close()
		})
	}

	go func() {
		<-sigCh
		requestQuit()
	}()

	// Some GUI backends can leave Ctrl+C as raw ETX byte instead of SIGINT.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 && buf[0] == 3 {
				requestQuit()
				return
			}
		}
	}()

	window.SetCloseIntercept(func() {
		cleanup()
		if currentApp := fyne.CurrentApp(); currentApp != nil {
			currentApp.Quit()
			return
		}
		window.SetCloseIntercept(nil)
		window.Close()
	})

	titleText := canvas.NewText("NIKKE CLICKER", color.NRGBA{R: 0x5a, G: 0xb4, B: 0xff, A: 0xff})
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 30

	accentLine := canvas.NewRectangle(color.NRGBA{R: 0x5a, G: 0xb4, B: 0xff, A: 0xff})
	accentLine.SetMinSize(fyne.NewSize(220, 3))

	newSliderControl := func(label string, value *widget.Label, slider *widget.Slider) fyne.CanvasObject {
		title := widget.NewLabel(label)
		title.TextStyle = fyne.TextStyle{Bold: true}
		head := container.NewBorder(nil, nil, title, value, nil)
		return container.NewVBox(head, slider)
	}

	timingControls := container.NewVBox(
		newSliderControl("Interval", intervalValue, intervalSlider),
		newSliderControl("Press", pressValue, pressSlider),
		newSliderControl("Jitter", jitterValue, jitterSlider),
	)
	behaviourControls := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Hotkey", hotkeyBtn),
			widget.NewFormItem("Mode", strategyRadio),
		),
		container.NewGridWithColumns(len(presetButtons), presetButtons...),
		soundCheck,
	)
	timingCard := widget.NewCard("Timing", "", timingControls)
	behaviourCard := widget.NewCard("Behaviour", "", behaviourControls)
	controlsRow := container.NewGridWithColumns(2, timingCard, behaviourCard)

	mainContent := container.NewVBox(
		titleText,
		accentLine,
		controlsRow,
		summaryText,
		statusText,
		errorText,
		startBtn,
	)
	mainPanel := container.NewPadded(mainContent)

	var rootContent fyne.CanvasObject = mainPanel
	if debugLogs {
		logsCard := widget.NewCard("Logs", "", logScroll)
		split := container.NewVSplit(mainPanel, logsCard)
		split.SetOffset(0.7)
		rootContent = split
	}

	fApp.Lifecycle().SetOnStarted(func() {
		clicker.start(ctx)
	})

	window.SetContent(rootContent)
	window.ShowAndRun()
	cleanup()
	return nil
}
