// Package pg bootstraps the Postgres side of transitionkit on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config and retries until the database
// answers a ping. Migrate applies goose migrations read from an fs.FS, which
// lets packages such as audit ship their schema embedded in the binary:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, audit.Migrations, audit.MigrationsDir, log); err != nil {
//		return err
//	}
//
// Healthcheck adapts the pool to a func(context.Context) error probe. The
// Is* helpers classify driver errors a caller may want to retry, such as
// serialization failures between concurrent transitions on the same row.
package pg
