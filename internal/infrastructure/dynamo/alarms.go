package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-iot-telemetry/internal/domain"
)

// AlarmRepo provides typed DynamoDB operations for the alarms table.
type AlarmRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAlarmRepo(client *dynamodb.Client, tableName string) *AlarmRepo {
	return &AlarmRepo{client: client, tableName: tableName}
}

func (r *AlarmRepo) Put(ctx context.Context, a *domain.Alarm) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal alarm: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AlarmRepo) Get(ctx context.Context, alarmID string) (*domain.Alarm, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("alarm_id", alarmID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("alarm not found: %w", domain.ErrNotFound)
	}
	var a domain.Alarm
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByUser returns every alarm the user owns, active or not.
func (r *AlarmRepo) ListByUser(ctx context.Context, userID string) ([]domain.Alarm, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexAlarmUser),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": strVal(userID),
		},
	})
	alarms := []domain.Alarm{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Alarm
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		alarms = append(alarms, batch...)
	}
	return alarms, nil
}

func (r *AlarmRepo) Update(ctx context.Context, alarmID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("alarm_id", alarmID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *AlarmRepo) Delete(ctx context.Context, alarmID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("alarm_id", alarmID),
	})
	return err
}
