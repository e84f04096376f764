// Package tray provides the system tray surface of the tracking daemon: a
// tracking toggle plus live readouts of the last gesture, the speaking
// state, and the renderer connection.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray application. Status setters are safe to call from
// the engine's observer callbacks before and after the menu exists.
type Tray struct {
	mu       sync.RWMutex
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool

	toggleItem   *systray.MenuItem
	gestureItem  *systray.MenuItem
	speakingItem *systray.MenuItem
	rendererItem *systray.MenuItem
}

// New creates a Tray with tracking enabled by default.
func New() *Tray {
	return &Tray{enabled: true}
}

// OnToggle sets the callback fired when tracking is toggled from the menu.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenRenderer sets the callback fired when the renderer menu item is
// clicked.
func (t *Tray) OnOpenRenderer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback fired before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray and blocks until quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

func (t *Tray) onReady() {
	systray.SetTitle("Abhinaya")
	systray.SetTooltip("Abhinaya Gesture & Expression Tracking")

	t.mu.Lock()
	t.toggleItem = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle tracking")
	systray.AddSeparator()

	t.gestureItem = systray.AddMenuItem("Gesture: none", "Last detected gesture")
	t.gestureItem.Disable()
	t.speakingItem = systray.AddMenuItem("Speaking: no", "Voice activity")
	t.speakingItem.Disable()
	t.rendererItem = systray.AddMenuItem("Renderer: waiting", "Renderer connection")
	t.rendererItem.Disable()
	systray.AddSeparator()

	openItem := systray.AddMenuItem("Open Renderer...", "Open the renderer in browser")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Quit Abhinaya")

	toggleCh := t.toggleItem.ClickedCh
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-toggleCh:
				t.handleToggle()
			case <-openItem.ClickedCh:
				t.fireOpen()
			case <-quitItem.ClickedCh:
				t.fireQuit()
				systray.Quit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking on"
	}
	return "○ Tracking off"
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.toggleItem != nil {
		t.toggleItem.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Callbacks run outside the lock; they may call back into the tray.
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) fireOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()
	if callback != nil {
		callback()
	}
}

func (t *Tray) fireQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()
	if callback != nil {
		callback()
	}
}

// SetEnabled syncs the toggle display with externally driven tracking state.
// The toggle callback does not fire.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.toggleItem != nil {
		t.toggleItem.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current tracking toggle state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetLastGesture updates the gesture readout.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.gestureItem == nil {
		return
	}
	if name == "" {
		t.gestureItem.SetTitle("Gesture: none")
	} else {
		t.gestureItem.SetTitle("Gesture: " + name)
	}
}

// SetSpeaking updates the voice-activity readout.
func (t *Tray) SetSpeaking(active bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.speakingItem == nil {
		return
	}
	if active {
		t.speakingItem.SetTitle("Speaking: yes")
	} else {
		t.speakingItem.SetTitle("Speaking: no")
	}
}

// SetRendererConnected updates the renderer connection readout.
func (t *Tray) SetRendererConnected(connected bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.rendererItem == nil {
		return
	}
	if connected {
		t.rendererItem.SetTitle("Renderer: connected")
	} else {
		t.rendererItem.SetTitle("Renderer: waiting")
	}
}
