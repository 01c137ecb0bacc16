package version

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// String renders the human-readable version line.
func String() string {
	s := Version
	if Commit != "" {
		c := Commit
		if len(c) > 12 {
			c = c[:12]
		}
		s += " (" + c + ")"
	}
	if BuildTime != "" {
		s += " built " + BuildTime
	}
	return s
}
