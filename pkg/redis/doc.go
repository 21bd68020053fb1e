// Package redis connects transitionkit to Redis through go-redis/v9.
//
// Connect retries until the server answers a ping and Healthcheck adapts a
// client to a func(context.Context) error probe. The client backs the
// notification storage and the real-time pub/sub deliverer.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	rdb, err := redis.Connect(ctx, cfg)
package redis
