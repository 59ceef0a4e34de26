package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"food-assist-agent/internal/domain"
)

const (
	// DefaultTableName is the assistance-request table used when no override
	// is configured.
	DefaultTableName = "food_assistance_requests"

	statusPending = "pending"
	pkPrefix      = "REQ#"
)

// timeNow is a test seam.
var timeNow = time.Now

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client wraps a DynamoDB table as the assistance-request storage sink.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// requestPK returns the partition key for a session's requests.
func requestPK(sessionID string) string {
	return pkPrefix + sessionID
}

// requestSK returns the sort key for a request created at ts.
func requestSK(ts time.Time) string {
	return pkPrefix + ts.UTC().Format(time.RFC3339Nano)
}

// InsertRequest writes one pending assistance-request row. Failures are
// returned to the dispatcher, which logs them and degrades the reply; they
// never abort the conversation.
func (c *Client) InsertRequest(ctx context.Context, rec domain.FulfillmentRecord) error {
	if rec.SessionID == "" {
		return errors.New("repository: InsertRequest: session id is required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      requestItem(rec, timeNow()),
	})
	if err != nil {
		return fmt.Errorf("repository: InsertRequest: %w", err)
	}
	return nil
}

func requestItem(rec domain.FulfillmentRecord, now time.Time) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":              &types.AttributeValueMemberS{Value: requestPK(rec.SessionID)},
		"SK":              &types.AttributeValueMemberS{Value: requestSK(now)},
		"person_name":     &types.AttributeValueMemberS{Value: rec.PersonName},
		"age":             &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.Age)},
		"location":        &types.AttributeValueMemberS{Value: rec.Location},
		"food_request":    &types.AttributeValueMemberS{Value: rec.FoodRequest},
		"assistance_type": &types.AttributeValueMemberS{Value: string(rec.AssistanceType)},
		"session_id":      &types.AttributeValueMemberS{Value: rec.SessionID},
		"status":          &types.AttributeValueMemberS{Value: statusPending},
		"created_at":      &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
	}
}
