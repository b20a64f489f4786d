// Package translator holds the process-wide ANGLE shader translator instance.
// Creating one spins up a wazero runtime, so it is shared and lazily built.
package translator

import (
	"context"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once    sync.Once
	shared  *gst.ShaderTranslator
	initErr error
)

// Shared returns the singleton translator, creating it on first use.
func Shared() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		shared, initErr = gst.NewShaderTranslator(context.Background())
	})
	return shared, initErr
}
