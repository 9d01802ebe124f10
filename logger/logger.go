package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Logger interface {
	With(label string) Logger

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Warn(err error)
	Error(err error)
}

//New returns a zap backed logger. "prod" selects the production presets,
//anything else the development ones.
func New(env string) (Logger, error) {
	var logger *zap.Logger
	var err error

	switch env {
	case "prod", "production":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, errors.Wrap(err, "unable to init logger")
	}

	return FromZap(logger), nil
}

func FromZap(l *zap.Logger) Logger {
	return &wrapper{base: l.Sugar()}
}

type wrapper struct {
	base *zap.SugaredLogger
}

func (w *wrapper) With(label string) Logger {
	return &wrapper{w.base.Named(label)}
}

func (w *wrapper) Debugf(format string, args ...interface{}) {
	w.base.Debugf(format, args...)
}

func (w *wrapper) Infof(format string, args ...interface{}) {
	w.base.Infof(format, args...)
}

func (w *wrapper) Warnf(format string, args ...interface{}) {
	w.base.Warnf(format, args...)
}

func (w *wrapper) Errorf(format string, args ...interface{}) {
	w.base.Errorf(format, args...)
}

func (w *wrapper) Warn(err error) {
	if err == nil {
		return
	}
	w.base.Warnw(err.Error(), "cause", errors.Cause(err).Error())
}

func (w *wrapper) Error(err error) {
	if err == nil {
		return
	}
	w.base.Errorw(err.Error(), "cause", errors.Cause(err).Error())
}
