package mongo

import "errors"

var (
	// ErrFailedToConnectToMongo is returned once every connection attempt failed.
	ErrFailedToConnectToMongo = errors.New("mongodb: failed to connect")
	ErrHealthcheckFailed      = errors.New("mongodb: healthcheck failed")
)
