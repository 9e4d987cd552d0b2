package test

import (
	"context"
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.vocdoni.io/dvote/util"
)

const (
	// MongoPort is the port exposed by the MongoDB test container.
	MongoPort = 27017
	// RedisPort is the port exposed by the Redis test container.
	RedisPort = 6379
	// MinioPort is the S3 API port exposed by the MinIO test container.
	MinioPort = 9000
	// MinioAccessKey and MinioSecretKey are the root credentials of the
	// MinIO test container.
	MinioAccessKey = "surveypro"
	MinioSecretKey = "surveypro-secret"
)

// RandomDatabaseName returns a unique database name so tests sharing a
// MongoDB container do not see each other's data.
func RandomDatabaseName() string {
	return fmt.Sprintf("surveypro-test-%s", util.RandomHex(8))
}

// StartMongoContainer starts a MongoDB container. Use Endpoint(ctx, "mongodb")
// on the result to get the connection URI.
func StartMongoContainer(ctx context.Context) (testcontainers.Container, error) {
	exposedPort := fmt.Sprintf("%d/tcp", MongoPort)
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo",
				ExposedPorts: []string{exposedPort},
				WaitingFor: wait.ForAll(
					wait.ForLog("Waiting for connections"),
					wait.ForListeningPort(nat.Port(exposedPort)),
				),
			},
			Started: true,
		})
}

// StartRedisContainer starts a Redis container. Use Endpoint(ctx, "") on the
// result to get the host:port address.
func StartRedisContainer(ctx context.Context) (testcontainers.Container, error) {
	exposedPort := fmt.Sprintf("%d/tcp", RedisPort)
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{exposedPort},
				WaitingFor: wait.ForAll(
					wait.ForLog("Ready to accept connections"),
					wait.ForListeningPort(nat.Port(exposedPort)),
				),
			},
			Started: true,
		})
}

// StartMinioContainer starts a MinIO server to test the S3 object storage.
// Use Endpoint(ctx, "http") on the result to get the S3 endpoint URL.
func StartMinioContainer(ctx context.Context) (testcontainers.Container, error) {
	exposedPort := fmt.Sprintf("%d/tcp", MinioPort)
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "minio/minio",
				Cmd:          []string{"server", "/data"},
				ExposedPorts: []string{exposedPort},
				Env: map[string]string{
					"MINIO_ROOT_USER":     MinioAccessKey,
					"MINIO_ROOT_PASSWORD": MinioSecretKey,
				},
				WaitingFor: wait.ForAll(
					wait.ForListeningPort(nat.Port(exposedPort)),
					wait.ForHTTP("/minio/health/live").WithPort(nat.Port(exposedPort)),
				),
			},
			Started: true,
		})
}
