package chromem

import "github.com/Aleph-Alpha/agentmem/v1/vectorstore"

// Logger defines the logging calls the store makes.
// *logger.LoggerClient satisfies it.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

var _ vectorstore.Store = (*Store)(nil)

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{}) {}
