package awsclient

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"

	"github.com/codedrop/relay/internal/config"
)

func TestEndpointFor(t *testing.T) {
	cfg := &config.Config{
		S3Endpoint:       "http://minio:9000",
		DynamoDBEndpoint: "http://dynamodb-local:8000",
	}

	assert.Equal(t, "http://minio:9000", endpointFor(cfg, s3.ServiceID))
	assert.Equal(t, "http://dynamodb-local:8000", endpointFor(cfg, dynamodb.ServiceID))
	assert.Equal(t, "", endpointFor(cfg, "STS"))
	assert.Equal(t, "", endpointFor(&config.Config{}, s3.ServiceID))
}
