// Package common holds the flag plumbing and small helpers shared by the
// CLI command packages.
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/crmarques/restmodel/core"
	"github.com/crmarques/restmodel/faults"
	"github.com/crmarques/restmodel/resource"
)

type GlobalFlags struct {
	ConfigPath string
	Debug      bool
	Verbose    int
}

func BindGlobalFlags(root *cobra.Command, flags *GlobalFlags) {
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to the configuration file")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "dump request and response details to stderr")
	root.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "increase log verbosity")
}

// Logger builds the CLI logger. Verbosity maps to logr V-levels; zero
// verbosity discards everything.
func (f GlobalFlags) Logger() logr.Logger {
	if f.Verbose <= 0 {
		return logr.Discard()
	}

	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: f.Verbose})
}

type CommandDependencies struct {
	NewModelContext func(flags GlobalFlags) (*core.ModelContext, error)
}

func (d CommandDependencies) ModelContext(flags GlobalFlags) (*core.ModelContext, error) {
	if d.NewModelContext == nil {
		return nil, faults.NewTypedError(faults.InternalError, "model context factory is not configured", nil)
	}
	return d.NewModelContext(flags)
}

// ParseParents turns repeated name=value flags into the parent key map.
func ParseParents(pairs []string) (map[string]resource.Value, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	parents := make(map[string]resource.Value, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(name) == "" {
			return nil, faults.NewTypedError(faults.ValidationError, "parent flag must use name=value, got "+pair, nil)
		}
		parents[strings.TrimSpace(name)] = value
	}
	return parents, nil
}

// DecodeData parses the --data payload. A value of "-" reads stdin.
func DecodeData(raw string, stdin io.Reader) (map[string]resource.Value, error) {
	payload := strings.TrimSpace(raw)
	if payload == "-" {
		read, err := io.ReadAll(stdin)
		if err != nil {
			return nil, faults.NewTypedError(faults.ValidationError, "failed to read data from stdin", err)
		}
		payload = strings.TrimSpace(string(read))
	}
	if payload == "" {
		return nil, faults.NewTypedError(faults.ValidationError, "data payload is required", nil)
	}

	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()

	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, "data payload is not valid JSON", err)
	}

	normalized, err := resource.Normalize(decoded)
	if err != nil {
		return nil, err
	}
	props, ok := normalized.(map[string]resource.Value)
	if !ok {
		return nil, faults.NewTypedError(faults.ValidationError, "data payload must be a JSON object", nil)
	}
	return props, nil
}

func PrintJSON(w io.Writer, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return faults.NewTypedError(faults.InternalError, "failed to render output", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
