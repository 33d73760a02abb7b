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

// readingStream is the single partition all readings share; the device
// stream is global rather than per user.
const readingStream = "default"

// ReadingRepo provides typed DynamoDB operations for the append-only readings table.
type ReadingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReadingRepo(client *dynamodb.Client, tableName string) *ReadingRepo {
	return &ReadingRepo{client: client, tableName: tableName}
}

// readingSortKey orders by sample time, then by id so repeated samples never collide.
func readingSortKey(ts time.Time, readingID string) string {
	return fmt.Sprintf("%013d#%s", ts.UnixMilli(), readingID)
}

// readingRange returns inclusive sort-key bounds covering [from, to].
func readingRange(from, to time.Time) (string, string) {
	return fmt.Sprintf("%013d", from.UnixMilli()), fmt.Sprintf("%013d#~", to.UnixMilli())
}

func (r *ReadingRepo) Put(ctx context.Context, rd *domain.Reading) error {
	item, err := attributevalue.MarshalMap(rd)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	item[fieldStream] = strVal(readingStream)
	item[fieldSortKey] = strVal(readingSortKey(rd.Timestamp, rd.ReadingID))
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Latest returns up to limit readings, newest first.
func (r *ReadingRepo) Latest(ctx context.Context, limit int) ([]domain.Reading, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#s = :s"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStream,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": strVal(readingStream),
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, err
	}
	var readings []domain.Reading
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// Between returns every reading with from <= timestamp <= to, oldest first.
func (r *ReadingRepo) Between(ctx context.Context, from, to time.Time) ([]domain.Reading, error) {
	lo, hi := readingRange(from, to)
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#s = :s AND #k BETWEEN :lo AND :hi"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStream,
			"#k": fieldSortKey,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s":  strVal(readingStream),
			":lo": strVal(lo),
			":hi": strVal(hi),
		},
		ScanIndexForward: aws.Bool(true),
	})
	var readings []domain.Reading
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Reading
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		readings = append(readings, batch...)
	}
	return readings, nil
}
