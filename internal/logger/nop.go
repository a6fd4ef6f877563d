package logger

// NopLogger drops everything; it is the default until the CLI installs a real logger.
type NopLogger struct{}

func (NopLogger) Tracef(string, ...interface{}) {}
func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{}) {}
func (NopLogger) Warnf(string, ...interface{}) {}
func (NopLogger) Errorf(string, ...interface{}) {}
func (NopLogger) Debug(...interface{}) {}
func (NopLogger) Info(...interface{}) {}
func (NopLogger) Warn(...interface{}) {}
func (NopLogger) Error(...interface{}) {}
func (n NopLogger) WithFields(map[string]interface{}) Logger { return n }
