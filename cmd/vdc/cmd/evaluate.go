package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func evaluateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "evaluate [url]",
		Short: "Extract, value, and rate a listing",
		Long: "Fetch a listing page, extract the vehicle with the server's LLM,\n" +
			"value it, and rate the asking price. With --file the listing text\n" +
			"is read locally instead of fetched by the server.",
		Example: `  # Let the server fetch the page
  vdc evaluate https://cars.example.com/vehicle/42

  # Send a saved page
  vdc evaluate --file listing.html https://cars.example.com/vehicle/42

  # Pipe listing text
  pbpaste | vdc evaluate --file -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var url string
			if len(args) == 1 {
				url = args[0]
			}
			if url == "" && file == "" {
				return errors.New("a listing URL or --file is required")
			}

			c := newClient()
			ctx := cmd.Context()

			var (
				content string
				err     error
			)
			if file != "" {
				content, err = readContent(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
			}

			var eval *domain.Evaluation
			if content != "" {
				eval, err = c.EvaluateContent(ctx, content, url)
			} else {
				eval, err = c.Evaluate(ctx, url)
			}
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), eval)
			}
			return printEvaluation(cmd.OutOrStdout(), eval)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read listing content from a file ('-' for stdin)")

	return cmd
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "extract <url>",
		Short:   "Extract the vehicle record from a listing without valuing it",
		Example: `  vdc extract https://cars.example.com/vehicle/42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newClient().Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), rec)
			}
			return printRecord(cmd.OutOrStdout(), rec)
		},
	}
}

func readContent(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // user-supplied path
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
