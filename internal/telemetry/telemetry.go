// Package telemetry provides the structured logger used at the engine
// boundary. Executors never log directly — only pkg/engine, around
// statement lifecycle events.
package telemetry

import "go.uber.org/zap"

// Logger wraps a zap.Logger; New selects the production or development
// encoder based on Config.Dev.
type Logger struct {
	*zap.Logger
}

func New(dev bool) (*Logger, error) {
	var z *zap.Logger
	var err error
	if dev {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: z}, nil
}

// Nop returns a Logger that discards everything, for tests that don't
// care about telemetry output.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func (l *Logger) StmtStart(sql string, stmtID string) {
	l.Info("stmt.start", zap.String("stmt_id", stmtID), zap.String("sql", sql))
}

func (l *Logger) StmtCommit(stmtID string, rows int) {
	l.Info("stmt.commit", zap.String("stmt_id", stmtID), zap.Int("rows", rows))
}

func (l *Logger) StmtError(stmtID string, err error) {
	l.Error("stmt.error", zap.String("stmt_id", stmtID), zap.Error(err))
}
