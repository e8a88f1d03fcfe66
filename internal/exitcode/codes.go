// Package exitcode defines named exit codes for the sqlverify CLI.
//
// Each code maps a specific termination condition to a numeric value
// recognized by shell scripts and CI pipelines.
package exitcode

const (
	Success     = 0   // A winning candidate was selected
	Error       = 1   // Invalid args, task file not found, misconfiguration
	NoWinner    = 2   // The verifier chain selected no candidate
	Interrupted = 130 // SIGINT/SIGTERM received
)

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case NoWinner:
		return "NoWinner"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}
