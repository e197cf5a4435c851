package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/replay"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	Output_Text = "text"
	Output_Csv  = "csv"
)

type followingRow struct {
	Index   int    `csv:"index"`
	Address string `csv:"address"`
}

var (
	followingOutput string
	followingRoot   bool
)

var followingCmd = &cobra.Command{
	Use:   "following <listId>",
	Short: "List the addresses a list follows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if followingOutput != Output_Text && followingOutput != Output_Csv {
			return errors.Errorf("unsupported output %q, expected %s or %s", followingOutput, Output_Text, Output_Csv)
		}
		listId, err := parseListId(args[0])
		if err != nil {
			return err
		}

		deps, err := newSidecarDeps()
		if err != nil {
			return err
		}
		defer deps.close()

		res, err := deps.service.ReplayList(context.Background(), listId)
		if err != nil {
			return err
		}
		if res.Skipped > 0 {
			deps.logger.Sugar().Warnw("Skipped undecodable list ops",
				"listId", listId.String(),
				"skipped", res.Skipped,
			)
		}
		if err := writeFollowing(cmd.OutOrStdout(), followingOutput, res.Following); err != nil {
			return err
		}
		if followingRoot {
			root, err := replay.FollowingRootHex(res.Following)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "root: %s\n", root)
		}
		return nil
	},
}

func init() {
	followingCmd.Flags().StringVarP(&followingOutput, "output", "o", Output_Text, "Output format: text or csv")
	followingCmd.Flags().BoolVar(&followingRoot, "root", false, "Also print the following set root to stderr")
}

func writeFollowing(out io.Writer, format string, following []string) error {
	if format == Output_Csv {
		rows := make([]*followingRow, 0, len(following))
		for i, addr := range following {
			rows = append(rows, &followingRow{Index: i, Address: addr})
		}
		if err := gocsv.Marshal(rows, out); err != nil {
			return errors.Wrap(err, "failed to write csv")
		}
		return nil
	}
	for _, addr := range following {
		fmt.Fprintln(out, addr)
	}
	return nil
}
