package catalogdb

import "bharatbus.in/internal/appconf"

// Config controls where the catalog store lives.
type Config struct {
	// DBPath is a file path or ":memory:".
	DBPath  string
	Env     appconf.Environment
	Verbose bool
}
