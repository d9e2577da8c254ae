package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path.py>",
		Short: "Execute a local Python file's contents on the board and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			l, t, _, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			out, err := t.Exec(string(code), defaultExecTimeout)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var runMain bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Soft-reset the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, t, _, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()
			return t.SoftReset(runMain)
		},
	}
	cmd.Flags().BoolVar(&runMain, "run-main", false, "let main.py run instead of suppressing autostart")
	return cmd
}

func newDfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "df [remote-path]",
		Short: "Report free space on the board's filesystem",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			l, _, fs, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			st, err := fs.Path(path).StatVFS()
			if err != nil {
				return err
			}
			total := st.Blocks * st.BlockSize
			free := st.BlocksFree * st.BlockSize
			fmt.Fprintf(cmd.OutOrStdout(), "%d bytes total, %d bytes free\n", total, free)
			return nil
		},
	}
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <device> <local-path>",
		Short: "Dump a raw block device (e.g. the flash filesystem partition) to a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, fs, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			return fs.Path("/").DumpBlockDevice(f, args[0])
		},
	}
}
