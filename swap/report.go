package swap

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	cyan    = color.New(color.FgCyan).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	red     = color.New(color.FgRed).SprintFunc()
	blue    = color.New(color.FgBlue).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
)

var separator = strings.Repeat("-", 102)

func printTradeResult(w io.Writer, res TradeResult) {
	fmt.Fprintf(w, "\n%s\n", green(fmt.Sprintf("Number %d", res.Number)))
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%s %s\n", yellow(res.ReceiveLabel+":"), res.ReceiveAddress)
	fmt.Fprintf(w, "%s %s\n", yellow(res.RefundLabel+":"), res.RefundAddress)
	fmt.Fprintf(w, "%s %s\n", yellow("DEPOSIT ADDRESS:"), magenta(res.DepositAddress))
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%s %s\n\n", yellow("Result:"), blue(res.ExplorerURL))
}

func printTradeError(w io.Writer, err error) {
	var netErr *NetworkError
	switch {
	case errors.Is(err, ErrServerRejected):
		fmt.Fprintf(w, "\n%s\n", red("Server error or incorrect address, try again!"))
	case errors.As(err, &netErr):
		fmt.Fprintf(w, "\n%s %v\n", red("Network error:"), netErr.Err)
	default:
		fmt.Fprintf(w, "\n%s %v\n", red("Error processing trade:"), err)
	}
}

func printBatchSummary(w io.Writer, summary BatchSummary) {
	total := fmt.Sprintf("%d/%d", summary.Succeeded, summary.Total)
	if summary.Succeeded == summary.Total {
		fmt.Fprintf(w, "%s %s\n", green("Completed"), green(total+" trades"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", yellow("Completed"), red(total+" trades"))
}
