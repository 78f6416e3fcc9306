package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum level to log (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the output encoding (json, console).
	Format string `mapstructure:"format" default:"json"`
	// Output is where entries are written: stderr, stdout or a file path.
	Output string `mapstructure:"output" default:"stderr"`
}

// Development reports whether the logger runs with development settings.
// Development loggers panic on DPanic, which turns list validation failures
// into crashes.
func (c Config) Development() bool {
	return c.Level == "debug"
}
