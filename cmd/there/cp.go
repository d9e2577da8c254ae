package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpytool/there/remotefs"
	"github.com/mpytool/there/syncengine"
)

// remotePath reports whether arg names a board path (":"-prefixed,
// modeled on rsync's "host:path" shorthand for distinguishing local
// from remote endpoints).
func remotePath(arg string) (path string, remote bool) {
	if strings.HasPrefix(arg, ":") {
		return arg[1:], true
	}
	return arg, false
}

func newCpCmd() *cobra.Command {
	var recursive, dryRun, force, hashCheck bool
	cmd := &cobra.Command{
		Use:   "cp <src> <dst>",
		Short: "Recursively sync a file or directory, local <-> board (prefix a path with ':' to mean remote)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcPath, srcRemote := remotePath(args[0])
			dstPath, dstRemote := remotePath(args[1])

			var fs *remotefs.FS
			if srcRemote || dstRemote {
				l, _, rfs, err := connect()
				if err != nil {
					return err
				}
				defer l.Close()
				fs = rfs
			}

			src := resolveNode(fs, srcPath, srcRemote)
			dst := resolveNode(fs, dstPath, dstRemote)

			s := syncengine.New()
			s.DryRun = dryRun
			s.Force = force
			s.HashCheck = hashCheck

			srcStat, err := src.Stat()
			if err != nil {
				return err
			}
			if srcStat.IsDir {
				if err := s.SyncDirectory(src, dst, recursive); err != nil {
					return err
				}
			} else if err := s.SyncFile(src, dst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d, skipped %d\n", s.Copied, s.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "descend into subdirectories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without touching anything")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "copy even when the destination already looks up to date")
	cmd.Flags().BoolVar(&hashCheck, "checksum", false, "compare SHA-256 digests instead of just size")
	return cmd
}

func resolveNode(fs *remotefs.FS, path string, remote bool) syncengine.Node {
	if remote {
		return syncengine.NewRemoteNode(fs.Path(path))
	}
	return syncengine.NewLocalNode(path)
}
