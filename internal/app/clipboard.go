package app

import "github.com/atotto/clipboard"

// Clipboard receives copied command text.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// SystemClipboard returns the desktop clipboard.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}
