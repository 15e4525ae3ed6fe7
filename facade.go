package xappend

// Facade helpers using global Singleton logger.
// Usage: xappend.Error().Err(err).Msg("reading file")

func Trace() *Event { return L().Trace() }
func Debug() *Event { return L().Debug() }
func Info() *Event  { return L().Info() }
func Warn() *Event  { return L().Warn() }
func Error() *Event { return L().Error() }
func Fatal() *Event { return L().Fatal() }
