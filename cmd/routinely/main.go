package main

import (
	"errors"
	"os"

	"github.com/routinely/cli/internal/cli"
	apperrors "github.com/routinely/cli/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Exit with the code carried by AppError when present
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			os.Exit(int(appErr.Code))
		}
		os.Exit(1)
	}
}
