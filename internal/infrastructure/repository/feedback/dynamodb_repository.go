package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	domain "github.com/codedrop/relay/internal/domain/feedback"
	"github.com/codedrop/relay/internal/infrastructure/metrics"
)

const storeDynamoDB = "dynamodb_feedback"

// DynamoDBAPI is the subset of the DynamoDB client used by the repository.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type feedbackItem struct {
	FeedbackID string `dynamodbav:"feedback_id"`
	Rating     int    `dynamodbav:"rating"`
	Feedback   string `dynamodbav:"feedback"`
	Timestamp  string `dynamodbav:"timestamp"`
	CreatedAt  string `dynamodbav:"created_at"`
}

// DynamoDBRepository appends feedback rows to a DynamoDB table.
type DynamoDBRepository struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoDBRepository(client DynamoDBAPI, table string) *DynamoDBRepository {
	return &DynamoDBRepository{client: client, table: table}
}

func (r *DynamoDBRepository) Create(ctx context.Context, fb *domain.Feedback) (err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeDynamoDB, "put", start, err) }(time.Now())

	item, err := attributevalue.MarshalMap(feedbackItem{
		FeedbackID: fb.ID,
		Rating:     fb.Rating,
		Feedback:   fb.Text,
		Timestamp:  fb.Timestamp,
		CreatedAt:  fb.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(feedback_id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return fmt.Errorf("feedback %s already exists: %w", fb.ID, err)
		}
		return fmt.Errorf("put feedback: %w", err)
	}
	return nil
}

// Health describes the table.
func (r *DynamoDBRepository) Health(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}
