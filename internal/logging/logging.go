package logging

import "go.uber.org/zap"

// New builds the process logger. Development mode logs at debug level in
// console format; otherwise JSON at info level.
func New(development bool) (*zap.SugaredLogger, error) {
	var (
		base *zap.Logger
		err  error
	)
	if development {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return base.Sugar(), nil
}
