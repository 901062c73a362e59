package common

import (
	"errors"

	"github.com/kataras/iris/v12"
)

// Serve runs app until it fails or is shut down. A clean shutdown, including
// the one iris performs on interrupt, is not an error.
func Serve(app *iris.Application, runner iris.Runner) error {
	err := app.Run(runner, iris.WithoutServerError(iris.ErrServerClosed))
	if errors.Is(err, iris.ErrServerClosed) {
		return nil
	}

	return err
}
