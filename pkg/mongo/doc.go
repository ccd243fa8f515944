// Package mongo bootstraps a MongoDB client from environment configuration.
//
// New applies pool and timeout settings from Config, retries the initial
// connection, and verifies it with a ping. DatabaseName resolves which
// database the service writes to, and Healthcheck produces a readiness probe
// suitable for the HTTP server.
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//	db := client.Database(mongo.DatabaseName(cfg))
package mongo
