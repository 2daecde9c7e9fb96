package logging

import "go.uber.org/zap"

// New returns a sugared logger named for component. It wraps whatever global logger
// config.New installed, so call it after config is loaded.
func New(component string) *zap.SugaredLogger {
	return zap.L().Named(component).Sugar()
}

// Sync flushes the global logger
func Sync() {
	_ = zap.L().Sync()
}
