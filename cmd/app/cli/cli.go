package cli

import (
	"context"

	"go.uber.org/fx"

	"eversoul.dev/stageguide/internal/app"
	"eversoul.dev/stageguide/internal/app/appcontext"
)

// Start builds the CLI graph and starts it. The returned stop func runs the
// OnStop hooks.
func Start(module fx.Option) (stop func(), err error) {
	fxApp := app.New(appcontext.Declare(appcontext.EnvCLI), module)
	if err := fxApp.Start(context.Background()); err != nil {
		return nil, err
	}
	return func() {
		_ = fxApp.Stop(context.Background())
	}, nil
}
