// Package bootstrap wires an apikit process together: it loads Config,
// registers the telemetry, redis and HTTP components, starts them in order
// and builds the Dispatcher on top of what they provide.
//
//	cfg, err := bootstrap.Load("apikit")
//	app, err := bootstrap.NewApp(cfg)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    user, err := api.NewClient(app.Dispatcher()).User(ctx, "42")
//	    ...
//	})
//
// Components stop in reverse order when the task returns or the process
// receives SIGINT or SIGTERM.
package bootstrap
