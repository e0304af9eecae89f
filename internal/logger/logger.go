package logger

import (
	"go.uber.org/zap"
)

// New returns a console logger at debug level for development and a JSON
// production logger otherwise.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
