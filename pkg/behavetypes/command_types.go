package behavetypes

// Command is a built-in statement of the script language.
type Command interface {
	// Name returns a short identifier used in listings and logs.
	Name() string
	// Pattern returns the regular expression matched against whole lines.
	Pattern() string
	// Description returns a one-line summary of the command.
	Description() string
	// Usage returns the statement syntax as written in scripts.
	Usage() string
	// Execute runs the command with the pattern's capture groups.
	Execute(ctx ExecutionContext, params []string) error
}
