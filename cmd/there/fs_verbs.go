package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpytool/there/remotefs"
)

func newLsCmd() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a remote directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 1 {
				dir = args[0]
			}
			l, _, fs, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			entries, err := fs.Path(dir).IterDir()
			if err != nil {
				return err
			}
			for _, e := range entries {
				if long {
					kind := "f"
					if e.Stat.IsDir() {
						kind = "d"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %8d %s\n", kind, e.Stat.Size, e.Name)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), e.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show size and type")
	return cmd
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <remote-path>",
		Short: "Print a remote file's contents to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, fs, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			data, err := fs.Path(args[0]).ReadBytes()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote-path> <local-path>",
		Short: "Copy a file from the board to the host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, fs, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			data, err := fs.Path(args[0]).ReadBytes()
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], data, 0o644)
		},
	}
}

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-path> <remote-path>",
		Short: "Copy a file from the host to the board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			l, _, fs, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			return fs.Path(args[1]).WriteBytes(data)
		},
	}
}

func newRmCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "rm <remote-path>",
		Short: "Remove a remote file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, fs, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			p := fs.Path(args[0])
			st, err := p.Stat()
			if err != nil {
				return err
			}
			if st.IsDir() {
				return removeRecursive(p, recursive)
			}
			return p.Unlink()
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directory contents too")
	return cmd
}

func removeRecursive(p *remotefs.Path, recursive bool) error {
	if recursive {
		entries, err := p.IterDir()
		if err != nil {
			return err
		}
		for _, e := range entries {
			child := p.Child(e.Name)
			if e.Stat.IsDir() {
				if err := removeRecursive(child, true); err != nil {
					return err
				}
			} else if err := child.Unlink(); err != nil {
				return err
			}
		}
	}
	return p.Rmdir()
}

func newMkdirCmd() *cobra.Command {
	var parents bool
	cmd := &cobra.Command{
		Use:   "mkdir <remote-path>",
		Short: "Create a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, fs, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			return fs.Path(args[0]).Mkdir(parents, parents)
		},
	}
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create parent directories as needed")
	return cmd
}
