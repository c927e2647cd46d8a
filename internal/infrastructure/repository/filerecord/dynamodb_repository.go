package filerecord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	domain "github.com/codedrop/relay/internal/domain/transfer"
	"github.com/codedrop/relay/internal/infrastructure/metrics"
)

const storeDynamoDB = "dynamodb"

// DynamoDBAPI is the subset of the DynamoDB client used by the repository.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// fileItem is one row of the file table, keyed by code. The ttl attribute
// drives the table's native expiry.
type fileItem struct {
	Code                string `dynamodbav:"code"`
	FileID              string `dynamodbav:"file_id"`
	S3Key               string `dynamodbav:"s3_key"`
	Filename            string `dynamodbav:"filename"`
	FileType            string `dynamodbav:"filetype"`
	UploadTime          string `dynamodbav:"upload_time"`
	ExpiryTime          string `dynamodbav:"expiry_time,omitempty"`
	TTL                 int64  `dynamodbav:"ttl"`
	Size                int64  `dynamodbav:"size"`
	CodeDisplayDuration int    `dynamodbav:"code_display_duration"`
}

// Layouts accepted when reading stored timestamps. Older rows were written
// as naive ISO-8601 without a zone and are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// A code may be reissued once its previous record is past expiry plus grace,
// even while DynamoDB TTL has not yet deleted the row.
const putIfAbsentCondition = "attribute_not_exists(code) OR #ttl < :cutoff"

// DynamoDBRepository stores file records in a DynamoDB table with TTL.
type DynamoDBRepository struct {
	client DynamoDBAPI
	table  string
	grace  time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

func NewDynamoDBRepository(client DynamoDBAPI, table string, grace time.Duration, log zerolog.Logger) *DynamoDBRepository {
	return &DynamoDBRepository{
		client: client,
		table:  table,
		grace:  grace,
		now:    time.Now,
		log:    log.With().Str("component", "dynamodb-records").Str("table", table).Logger(),
	}
}

// PutIfAbsent writes rec unless a live record already holds its code.
func (r *DynamoDBRepository) PutIfAbsent(ctx context.Context, rec *domain.FileRecord) (err error) {
	defer func(start time.Time) {
		if errors.Is(err, domain.ErrCodeTaken) {
			metrics.RecordStoreOperation(storeDynamoDB, "put_if_absent", start, nil)
			return
		}
		metrics.RecordStoreOperation(storeDynamoDB, "put_if_absent", start, err)
	}(time.Now())

	item, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return fmt.Errorf("marshal file record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String(putIfAbsentCondition),
		ExpressionAttributeNames: map[string]string{
			"#ttl": "ttl",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cutoff": &types.AttributeValueMemberN{Value: strconv.FormatInt(r.now().Add(-r.grace).Unix(), 10)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return domain.ErrCodeTaken
		}
		return fmt.Errorf("put file record: %w", err)
	}
	return nil
}

// Get reads the record for code with a strongly consistent read.
func (r *DynamoDBRepository) Get(ctx context.Context, code string) (_ *domain.FileRecord, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeDynamoDB, "get", start, err) }(time.Now())

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: code},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get file record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var item fileItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal file record: %w", err)
	}
	rec, err := fromItem(item)
	if err != nil {
		r.log.Warn().Err(err).Str("code", code).Msg("file record has malformed timestamps")
		return nil, err
	}
	return rec, nil
}

// Health describes the table.
func (r *DynamoDBRepository) Health(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}

func toItem(rec *domain.FileRecord) fileItem {
	item := fileItem{
		Code:                rec.Code,
		FileID:              rec.FileID,
		S3Key:               rec.StorageKey,
		Filename:            rec.Filename,
		FileType:            rec.FileType,
		UploadTime:          rec.UploadTime.UTC().Format(time.RFC3339Nano),
		TTL:                 rec.TTL,
		Size:                rec.Size,
		CodeDisplayDuration: rec.CodeDisplayDuration,
	}
	if !rec.ExpiryTime.IsZero() {
		item.ExpiryTime = rec.ExpiryTime.UTC().Format(time.RFC3339Nano)
	}
	return item
}

func fromItem(item fileItem) (*domain.FileRecord, error) {
	rec := &domain.FileRecord{
		Code:                item.Code,
		FileID:              item.FileID,
		StorageKey:          item.S3Key,
		Filename:            item.Filename,
		FileType:            item.FileType,
		TTL:                 item.TTL,
		Size:                item.Size,
		CodeDisplayDuration: item.CodeDisplayDuration,
	}

	var err error
	if item.UploadTime != "" {
		if rec.UploadTime, err = parseTime(item.UploadTime); err != nil {
			return nil, fmt.Errorf("upload_time: %w", err)
		}
	}
	if item.ExpiryTime != "" {
		if rec.ExpiryTime, err = parseTime(item.ExpiryTime); err != nil {
			return nil, fmt.Errorf("expiry_time: %w", err)
		}
	}
	return rec, nil
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
