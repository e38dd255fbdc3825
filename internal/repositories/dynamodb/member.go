package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"member-info-api/internal/models"
	"member-info-api/internal/repositories"
)

// API is the subset of the DynamoDB client the member store uses
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// MemberStore implements repositories.MemberStore on a DynamoDB table keyed by email
type MemberStore struct {
	client API
	table  string
	logger *logrus.Logger
}

// NewMemberStore creates a new DynamoDB member store
func NewMemberStore(client API, table string, logger *logrus.Logger) *MemberStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &MemberStore{
		client: client,
		table:  table,
		logger: logger,
	}
}

func emailKey(email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.AttrEmail: &types.AttributeValueMemberS{Value: email},
	}
}

// Get fetches a member by email
func (s *MemberStore) Get(ctx context.Context, email string) (models.Member, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       emailKey(email),
	})
	if err != nil {
		return nil, s.storeError("Get", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	return s.unmarshal("Get", out.Item)
}

// Put inserts a member if no record with its email exists
func (s *MemberStore) Put(ctx context.Context, member models.Member) error {
	item, err := attributevalue.MarshalMap(map[string]interface{}(member))
	if err != nil {
		return repositories.NewStoreError("Put", http.StatusBadRequest, repositories.CodeValidation,
			fmt.Errorf("failed to marshal member: %w", err))
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		return s.storeError("Put", err)
	}

	return nil
}

// Update sets one attribute on an existing member. The attribute name is
// interpolated into the update expression as given, so any attribute
// (including ones outside the nominal schema) can be written.
func (s *MemberStore) Update(ctx context.Context, email, attribute string, value interface{}) (models.Member, error) {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return nil, repositories.NewStoreError("Update", http.StatusBadRequest, repositories.CodeValidation,
			fmt.Errorf("failed to marshal value: %w", err))
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       emailKey(email),
		UpdateExpression:          aws.String(fmt.Sprintf("set %s = :value", attribute)),
		ExpressionAttributeValues: map[string]types.AttributeValue{":value": av},
		ConditionExpression:       aws.String("attribute_exists(email)"),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return nil, s.storeError("Update", err)
	}

	return s.unmarshal("Update", out.Attributes)
}

// Delete removes a member and returns the prior record
func (s *MemberStore) Delete(ctx context.Context, email string) (models.Member, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.table),
		Key:          emailKey(email),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, s.storeError("Delete", err)
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}

	return s.unmarshal("Delete", out.Attributes)
}

// ScanPage returns the page of members following token
func (s *MemberStore) ScanPage(ctx context.Context, token repositories.PageToken) (*repositories.ScanPage, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	}

	if token != nil {
		startKey, err := attributevalue.MarshalMap(map[string]interface{}(token))
		if err != nil {
			return nil, repositories.NewStoreError("Scan", http.StatusBadRequest, repositories.CodeValidation,
				fmt.Errorf("failed to marshal page token: %w", err))
		}
		input.ExclusiveStartKey = startKey
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, s.storeError("Scan", err)
	}

	page := &repositories.ScanPage{
		Items: make([]models.Member, 0, len(out.Items)),
	}
	for _, item := range out.Items {
		member, err := s.unmarshal("Scan", item)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, member)
	}

	if len(out.LastEvaluatedKey) > 0 {
		var next repositories.PageToken
		if err := attributevalue.UnmarshalMap(out.LastEvaluatedKey, &next); err != nil {
			return nil, repositories.NewStoreError("Scan", http.StatusInternalServerError, repositories.CodeInternal,
				fmt.Errorf("failed to unmarshal last evaluated key: %w", err))
		}
		page.Next = next
	}

	s.logger.WithFields(logrus.Fields{
		"table":    s.table,
		"items":    len(page.Items),
		"has_next": page.Next != nil,
	}).Debug("Scanned member page")

	return page, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (s *MemberStore) Close() error {
	return nil
}

func (s *MemberStore) unmarshal(op string, item map[string]types.AttributeValue) (models.Member, error) {
	var member models.Member
	if err := attributevalue.UnmarshalMap(item, &member); err != nil {
		return nil, repositories.NewStoreError(op, http.StatusInternalServerError, repositories.CodeInternal,
			fmt.Errorf("failed to unmarshal member: %w", err))
	}
	return member, nil
}

// storeError maps an SDK error onto a StoreError, keeping the service's
// error code and HTTP status.
func (s *MemberStore) storeError(op string, err error) error {
	storeErr := repositories.AsStoreError(op, err)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		storeErr.Code = apiErr.ErrorCode()
		if apiErr.ErrorFault() == smithy.FaultClient {
			storeErr.StatusCode = http.StatusBadRequest
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() != 0 {
		storeErr.StatusCode = respErr.HTTPStatusCode()
	}

	s.logger.WithFields(logrus.Fields{
		"table":       s.table,
		"op":          op,
		"status_code": storeErr.StatusCode,
		"code":        storeErr.Code,
	}).WithError(err).Debug("DynamoDB call failed")

	return storeErr
}
