package logger

func NewStub() Logger {
	return stubLogger{}
}

type stubLogger struct{}

func (s stubLogger) With(label string) Logger {
	return s
}

func (s stubLogger) Debugf(format string, args ...interface{}) {}

func (s stubLogger) Infof(format string, args ...interface{}) {}

func (s stubLogger) Warnf(format string, args ...interface{}) {}

func (s stubLogger) Errorf(format string, args ...interface{}) {}

func (s stubLogger) Warn(err error) {}

func (s stubLogger) Error(err error) {}
