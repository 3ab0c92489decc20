package temporal

import "go.uber.org/zap"

// ZapAdapter exposes a zap logger through Temporal's log.Logger interface.
// The SDK hands over alternating key/value pairs, which is exactly what the
// sugared logger's *w methods take.
type ZapAdapter struct {
	s *zap.SugaredLogger
}

// NewZapAdapter wraps logger for use as the Temporal client/worker logger.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{s: logger.Sugar()}
}

func (z *ZapAdapter) Debug(msg string, keyvals ...interface{}) { z.s.Debugw(msg, keyvals...) }
func (z *ZapAdapter) Info(msg string, keyvals ...interface{})  { z.s.Infow(msg, keyvals...) }
func (z *ZapAdapter) Warn(msg string, keyvals ...interface{})  { z.s.Warnw(msg, keyvals...) }
func (z *ZapAdapter) Error(msg string, keyvals ...interface{}) { z.s.Errorw(msg, keyvals...) }
