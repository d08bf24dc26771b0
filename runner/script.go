package runner

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
)

// wrapperTemplate localizes ARGV inside a block so the engine entry script
// sees exactly the flags and list paths of this invocation.
const wrapperTemplate = `#!/usr/bin/perl
{
    local @ARGV = (%s);
    do '%s';
}
`

// wrapperScript is the ephemeral generated script that delegates one suite
// run to the engine. It is created executable and removed after the run
// unless debug mode retains it.
type wrapperScript struct {
	Path string
}

// newWrapperScript writes a uniquely named executable wrapper into dir.
func newWrapperScript(dir string, executorPath string, args []string) (*wrapperScript, error) {
	f, err := os.CreateTemp(dir, "estest_wrapper_*.pl")
	if err != nil {
		return nil, fmt.Errorf("creating wrapper script: %w", err)
	}

	contents := fmt.Sprintf(wrapperTemplate, perlList(args), executorPath)
	if _, err := f.WriteString(contents); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("writing wrapper script: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("closing wrapper script: %w", err)
	}
	if err := os.Chmod(f.Name(), 0o755); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("marking wrapper script executable: %w", err)
	}

	return &wrapperScript{Path: f.Name()}, nil
}

// Remove deletes the script. With keep set the script is retained so a failed
// run can be reproduced by hand.
func (w *wrapperScript) Remove(keep bool, logger log.Logger) {
	if keep {
		logger.Debug("Debug enabled, keeping wrapper script", "path", w.Path)
		return
	}
	if err := os.Remove(w.Path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove wrapper script", "path", w.Path, "err", err)
	}
}

// perlList renders args as a quoted perl list: "-root", "a.list"
func perlList(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		quoted = append(quoted, fmt.Sprintf("%q", arg))
	}
	return strings.Join(quoted, ", ")
}
