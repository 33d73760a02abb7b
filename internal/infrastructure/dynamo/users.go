package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-iot-telemetry/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Put creates a user. It fails with ErrConflict if the id already exists.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if u.LastTrainedAt != nil {
		item[fieldLastTrainedAt] = strVal(formatTime(*u.LastTrainedAt))
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("user %s already exists: %w", u.UserID, domain.ErrConflict)
	}
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return decodeUser(out.Item)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.queryGSI(ctx, indexUsername, "username", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, indexEmail, "email", email)
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return err
}

// ClaimTraining sets last_trained_at to now only if it is unset or at least
// interval old. The age is judged on the parsed stored value, and the write is
// conditioned on that exact stored string, so concurrent callers for the same
// user cannot both claim the same window. It reports false when the window is
// not open or another caller took it first.
func (r *UserRepo) ClaimTraining(ctx context.Context, userID string, now time.Time, interval time.Duration) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldUserID, userID),
		ProjectionExpression:     aws.String("#id, #t"),
		ExpressionAttributeNames: map[string]string{"#id": fieldUserID, "#t": fieldLastTrainedAt},
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("read training window: %w", err)
	}
	if out.Item == nil {
		return false, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	claim, ok := planTrainingClaim(out.Item, now, interval)
	if !ok {
		return false, nil
	}

	values := map[string]types.AttributeValue{":now": strVal(formatTime(now))}
	for k, v := range claim.values {
		values[k] = v
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String("SET #t = :now"),
		ConditionExpression:       aws.String(claim.condition),
		ExpressionAttributeNames:  map[string]string{"#t": fieldLastTrainedAt},
		ExpressionAttributeValues: values,
	})
	if err == nil {
		return true, nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return false, nil
	}
	return false, fmt.Errorf("claim training window: %w", err)
}

// trainingClaim is the condition a training claim write must satisfy.
type trainingClaim struct {
	condition string
	values    map[string]types.AttributeValue
}

// planTrainingClaim decides from a stored user item whether the training
// window is open at now. When it is, the returned condition only matches the
// item as it was read. An unreadable stored value counts as never trained.
func planTrainingClaim(item map[string]types.AttributeValue, now time.Time, interval time.Duration) (trainingClaim, bool) {
	av, ok := item[fieldLastTrainedAt].(*types.AttributeValueMemberS)
	if !ok {
		return trainingClaim{
			condition: "attribute_exists(user_id) AND attribute_not_exists(#t)",
		}, true
	}
	if last, err := parseUTC(av.Value); err == nil && now.UTC().Sub(last) < interval {
		return trainingClaim{}, false
	}
	return trainingClaim{
		condition: "attribute_exists(user_id) AND #t = :observed",
		values:    map[string]types.AttributeValue{":observed": strVal(av.Value)},
	}, true
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": strVal(value)},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return decodeUser(out.Items[0])
}

func decodeUser(item map[string]types.AttributeValue) (*domain.User, error) {
	var u domain.User
	if err := attributevalue.UnmarshalMap(item, &u); err != nil {
		return nil, err
	}
	if av, ok := item[fieldLastTrainedAt].(*types.AttributeValueMemberS); ok && av.Value != "" {
		t, err := parseUTC(av.Value)
		if err != nil {
			slog.Warn("ignoring unreadable last_trained_at", "user_id", u.UserID, "err", err)
		} else {
			u.LastTrainedAt = &t
		}
	}
	return &u, nil
}
