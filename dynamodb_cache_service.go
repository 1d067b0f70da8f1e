package blogapi

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBCacheService stores entries under CACHE#<key>/DATA and an inverted
// index of TAG#<tag>/CACHE#<key> items in a single table.
type DynamoDBCacheService struct {
	client    DynamoDBAPI
	tableName string
}

func NewDynamoDBCacheService(client DynamoDBAPI, tableName string) *DynamoDBCacheService {
	return &DynamoDBCacheService{client: client, tableName: tableName}
}

// EnsureTable creates the cache table when it does not exist.
func (s *DynamoDBCacheService) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err == nil {
		return nil
	}

	var notFoundEx *types.ResourceNotFoundException
	if !errors.As(err, &notFoundEx) {
		return err
	}

	log.Printf("[cache] DynamoDB table %s does not exist, creating it", s.tableName)
	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	return err
}

func (s *DynamoDBCacheService) Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	entry, tagEntries := newEntries(key, data, tags, duration)
	entry.PK = CachePartitionPrefix + key
	entry.SK = CacheSortKey

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return err
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return err
	}

	for _, te := range tagEntries {
		tagItem, err := attributevalue.MarshalMap(te)
		if err != nil {
			return err
		}
		if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      tagItem,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *DynamoDBCacheService) Get(ctx context.Context, key string) ([]byte, error) {
	itemKey, err := s.key(CachePartitionPrefix+key, CacheSortKey)
	if err != nil {
		return nil, err
	}

	output, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey,
	})
	if err != nil {
		return nil, err
	}
	if output.Item == nil {
		return nil, nil
	}

	var entry CacheEntry
	if err := attributevalue.UnmarshalMap(output.Item, &entry); err != nil {
		return nil, err
	}
	// DynamoDB TTL deletion is lazy, so expired items may still be returned.
	if entry.IsExpired() {
		return nil, nil
	}
	return entry.Data, nil
}

func (s *DynamoDBCacheService) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tagEntries, err := s.tagEntries(ctx, TagPartitionPrefix+tag)
		if err != nil {
			return err
		}

		for _, te := range tagEntries {
			if err := s.delete(ctx, te.SK, CacheSortKey); err != nil {
				return err
			}
			if err := s.delete(ctx, te.PK, te.SK); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *DynamoDBCacheService) tagEntries(ctx context.Context, pk string) ([]TagEntry, error) {
	var entries []TagEntry
	var startKey map[string]types.AttributeValue

	for {
		output, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("pk = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: pk},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}

		var page []TagEntry
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, err
		}
		entries = append(entries, page...)

		if len(output.LastEvaluatedKey) == 0 {
			return entries, nil
		}
		startKey = output.LastEvaluatedKey
	}
}

func (s *DynamoDBCacheService) delete(ctx context.Context, pk, sk string) error {
	itemKey, err := s.key(pk, sk)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey,
	})
	return err
}

func (s *DynamoDBCacheService) key(pk, sk string) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(map[string]string{"pk": pk, "sk": sk})
}
