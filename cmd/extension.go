package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Environment passed to extensions, with the effective configuration.
const (
	EnvStore    = "FOLIO_STORE"
	EnvSheetURL = "FOLIO_SHEET_URL"
	EnvDB       = "FOLIO_DB"
	EnvCurrency = "FOLIO_CURRENCY"
	EnvVerbose  = "FOLIO_VERBOSE"
)

// RunExtension runs pcs-<subcommand> from the PATH, if any, with args.
//
// It reports whether an extension was found, and its exit code. The extension
// inherits the standard streams and receives the effective configuration in
// its environment, flags included.
func RunExtension(subcommand string, args []string) (found bool, code int) {
	name := "pcs-" + subcommand
	path, err := exec.LookPath(name)
	if err != nil {
		log.Debug().Err(err).Str("command", name).Msg("no extension")
		return false, 0
	}

	ext := exec.Command(path, args...)
	ext.Stdin, ext.Stdout, ext.Stderr = os.Stdin, stdout, os.Stderr
	ext.Env = append(os.Environ(),
		EnvStore+"="+cfg.Store,
		EnvSheetURL+"="+cfg.SheetURL,
		EnvDB+"="+cfg.DatabasePath,
		EnvCurrency+"="+cfg.Currency,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)

	err = ext.Run()
	var exit *exec.ExitError
	switch {
	case err == nil:
		return true, 0
	case errors.As(err, &exit):
		return true, exit.ExitCode()
	default:
		fmt.Fprintf(os.Stderr, "Error running extension %q: %v\n", name, err)
		return true, 1
	}
}
