package cli

import (
	"fmt"
	"io"

	"github.com/routinely/cli/internal/api"
	"github.com/routinely/cli/internal/classify"
	"github.com/spf13/cobra"
)

var (
	failureStatus  int
	failureMessage string
	failureCode    string
	failureURL     string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show how a request failure would be reported",
	Long: `Classify a request failure described by flags and print the kind and the
message a user would see. Precedence:

  1. server message (--message) is shown verbatim
  2. --status >= 500 is a server error
  3. --code NETWORK_ERROR, ERR_NETWORK, ECONNREFUSED or ENOTFOUND is a network error
  4. --code ETIMEDOUT, ECONNABORTED or TIMEOUT is a timeout
  5. --code PERMISSION_DENIED is a denied notification permission
  6. anything else is unknown`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().IntVar(&failureStatus, "status", 0, "HTTP status of the failed response")
	classifyCmd.Flags().StringVar(&failureMessage, "message", "", "message from the response body")
	classifyCmd.Flags().StringVar(&failureCode, "code", "", "transport error code")
	classifyCmd.Flags().StringVar(&failureURL, "url", "/", "request URL")
}

func runClassify(cmd *cobra.Command, args []string) error {
	failure := &api.Error{
		Method: "GET",
		URL:    failureURL,
		Status: failureStatus,
		Code:   failureCode,
	}
	if failureMessage != "" {
		failure.Data = &api.ResponseData{Message: failureMessage}
	}

	c := classify.New(classify.NewZapSink(logger), nil).HandleAndReport(commandContext(cmd), failure)
	printClassification(cmd.OutOrStdout(), c)
	return nil
}

func printClassification(out io.Writer, c classify.Classification) {
	fmt.Fprintf(out, "Kind:    %s\n", c.Kind)
	fmt.Fprintf(out, "Message: %s\n", c.Message)
}
