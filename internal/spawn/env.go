package spawn

import "fmt"

// buildEnv materializes an envp slice from an environment mapping, the Go
// equivalent of duplicating each KEY=VALUE entry into independently
// allocated C strings. A nil map means "inherit the parent's environ" and
// is represented by a nil return, which exec.Cmd already treats that way;
// a non-nil (possibly empty) map means exactly those entries and nothing
// else, grounded on proctmux's builder.go buildEnvironment (which instead
// starts from os.Environ() and overlays — generalized here to the spec's
// stricter "provided means exclusive" contract).
func buildEnv(env map[string]string) []string {
	if env == nil {
		return nil
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}
