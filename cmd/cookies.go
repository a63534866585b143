package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fbstory/internal/credential"
)

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage Netscape cookie files",
}

var cookiesMergeCmd = &cobra.Command{
	Use:   "merge <existing> <incoming>",
	Short: "Merge an exported cookie file into the stored one",
	Long: `Merge appends the cookie lines of <incoming> that are not already in
<existing>, keeping header comments first. <existing> is created if missing
and is replaced atomically.`,
	Args: cobra.ExactArgs(2),
	RunE: cookiesMergeRun,
}

var cookiesCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Report valid and invalid lines of a cookie file",
	Args:  cobra.ExactArgs(1),
	RunE:  cookiesCheckRun,
}

func init() {
	cookiesCmd.AddCommand(cookiesMergeCmd)
	cookiesCmd.AddCommand(cookiesCheckCmd)
}

func cookiesMergeRun(cmd *cobra.Command, args []string) error {
	res, err := credential.MergeFiles(args[0], args[1])
	if err != nil {
		return fmt.Errorf("merging cookies: %w", err)
	}

	logger.Debug().
		Str("file", args[0]).
		Int("added", res.Added).
		Int("total", res.Total).
		Msg("Merged cookies")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added %d of %d incoming cookies (%d total)\n", res.Added, res.IncomingLines, res.Total)
	if res.InvalidIncoming > 0 {
		fmt.Fprintf(out, "Warning: %d incoming lines are not valid cookie lines\n", res.InvalidIncoming)
		fmt.Fprintf(out, "Expected format: %s\n", credential.CookieFormatExample)
	}
	return nil
}

func cookiesCheckRun(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading cookie file: %w", err)
	}

	res := credential.Check(string(data))
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d valid, %d invalid cookie lines\n", res.Valid, res.Invalid)
	if res.Valid == 0 || res.Invalid > 0 {
		fmt.Fprintf(out, "Expected format: %s\n", credential.CookieFormatExample)
	}
	return nil
}
