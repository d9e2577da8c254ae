// Command there is the CLI front end for talking to a MicroPython
// board over its raw REPL: listing, reading, writing, and syncing
// files, plus running code, resetting the board, reporting free space
// and dumping a block device. It has no terminal passthrough verb.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpytool/there/config"
	"github.com/mpytool/there/internal/xlog"
	"github.com/mpytool/there/link"
	"github.com/mpytool/there/remotefs"
	"github.com/mpytool/there/transport"
)

var linkCfg link.Config

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "there",
		Short:         "Talk to a MicroPython board over its raw REPL",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&linkCfg.Port, "port", "p", "", "device path or socket://host:port (env "+config.EnvPort+")")
	flags.IntVarP(&linkCfg.Baud, "baud", "b", 0, "baud rate (env "+config.EnvBaud+")")
	flags.StringVarP(&linkCfg.User, "user", "u", "", "login username for socket:// boards (env "+config.EnvUser+")")
	flags.StringVar(&linkCfg.Password, "password", "", "login password for socket:// boards (env "+config.EnvPassword+")")
	var verbose bool
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			xlog.SetLevel(xlog.LevelDebug)
		}
	}

	root.AddCommand(
		newLsCmd(),
		newCatCmd(),
		newGetCmd(),
		newPutCmd(),
		newRmCmd(),
		newMkdirCmd(),
		newCpCmd(),
		newRunCmd(),
		newResetCmd(),
		newDfCmd(),
		newSaveCmd(),
	)
	return root
}

// resolvedConfig merges flags (already parsed into linkCfg by cobra)
// over THERE_* environment defaults.
func resolvedConfig() link.Config {
	return config.FromEnv(linkCfg)
}

// connect opens the link and wraps it in a Transport and an FS, ready
// for a verb to use. Callers are responsible for closing the returned
// link.
func connect() (*link.Link, *transport.Transport, *remotefs.FS, error) {
	cfg := resolvedConfig()
	l, err := link.Open(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	t := transport.New(l)
	return l, t, remotefs.New(t), nil
}

const defaultExecTimeout = 10 * time.Second
