package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"food-assist-agent/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func strAttr(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q missing or not a string", key)
	return v.Value
}

func numAttr(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberN)
	require.True(t, ok, "attribute %q missing or not a number", key)
	return v.Value
}

func sampleRecord() domain.FulfillmentRecord {
	return domain.FulfillmentRecord{
		PersonName:     "John",
		Age:            25,
		Location:       "Lagos",
		FoodRequest:    "rice and beans",
		AssistanceType: domain.AssistanceNGOReferral,
		SessionID:      "sess-1",
	}
}

func TestNew_ValidatesInputs(t *testing.T) {
	_, err := New(nil, "t")
	require.Error(t, err)

	_, err = New(&fakeDynamo{}, "  ")
	require.Error(t, err)
}

func TestInsertRequest_HappyPath(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	require.NoError(t, c.InsertRequest(context.Background(), sampleRecord()))
	require.NotNil(t, db.lastPutInput)
	require.Equal(t, "test-table", *db.lastPutInput.TableName)

	item := db.lastPutInput.Item
	require.Equal(t, "REQ#sess-1", strAttr(t, item, "PK"))
	require.Equal(t, "REQ#2025-06-01T12:00:00Z", strAttr(t, item, "SK"))
	require.Equal(t, "John", strAttr(t, item, "person_name"))
	require.Equal(t, "25", numAttr(t, item, "age"))
	require.Equal(t, "Lagos", strAttr(t, item, "location"))
	require.Equal(t, "rice and beans", strAttr(t, item, "food_request"))
	require.Equal(t, "ngo_referral", strAttr(t, item, "assistance_type"))
	require.Equal(t, "sess-1", strAttr(t, item, "session_id"))
	require.Equal(t, "pending", strAttr(t, item, "status"))
	require.Equal(t, "2025-06-01T12:00:00Z", strAttr(t, item, "created_at"))
}

func TestInsertRequest_RequiresSessionID(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{})
	rec := sampleRecord()
	rec.SessionID = ""
	require.Error(t, c.InsertRequest(context.Background(), rec))
}

func TestInsertRequest_WrapsPutError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("throttled")}
	c := mustNewClient(t, db)

	err := c.InsertRequest(context.Background(), sampleRecord())
	require.Error(t, err)
	require.Contains(t, err.Error(), "InsertRequest")
	require.Contains(t, err.Error(), "throttled")
}
