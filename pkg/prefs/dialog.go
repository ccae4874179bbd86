package prefs

import "sync"

// DialogSizeMaximize is the session setting that opens dialogs fullscreen.
const DialogSizeMaximize = "maximize"

// DialogSize flips a dialog between fullscreen and its initial size.
type DialogSize struct {
	mu         sync.Mutex
	fullscreen bool
}

// NewDialogSize starts fullscreen when the session setting asks for it.
func NewDialogSize(sessionSetting string) *DialogSize {
	return &DialogSize{fullscreen: sessionSetting == DialogSizeMaximize}
}

// Toggle switches size and returns whether the dialog is now fullscreen.
func (d *DialogSize) Toggle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fullscreen = !d.fullscreen
	return d.fullscreen
}

// Fullscreen reports the current size.
func (d *DialogSize) Fullscreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen
}

// SizeClass is the modal size class.
func (d *DialogSize) SizeClass() string {
	if d.Fullscreen() {
		return "modal-fs"
	}
	return "modal-lg"
}

// Icon is the glyph of the size toggle button.
func (d *DialogSize) Icon() string {
	if d.Fullscreen() {
		return "fa-compress"
	}
	return "fa-expand"
}
