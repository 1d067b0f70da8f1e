package blogapi

import "time"

// CacheEntry is one cached response body. The struct tags cover the SQL,
// Mongo and DynamoDB backends.
type CacheEntry struct {
	PK   string `dynamodbav:"pk" json:"pk" bson:"_id" db:"id"`
	Data []byte `dynamodbav:"data" json:"data" bson:"data" db:"data"`

	SK string `dynamodbav:"sk" json:"sk,omitempty" bson:"-" db:"-"`

	TTL       int64 `dynamodbav:"ttl" json:"ttl" bson:"ttl" db:"ttl"`
	CreatedAt int64 `dynamodbav:"createdAt" json:"createdAt" bson:"createdAt" db:"created_at"`

	// Mongo queries the tag array directly; the other backends keep TagEntry rows.
	Tags []string `dynamodbav:"tags,omitempty" json:"tags,omitempty" bson:"tags,omitempty" db:"-"`
}

func (c CacheEntry) GetTableName() string {
	return "cache_entries"
}

// TagEntry maps a tag to a cache key. In SQL it is a row of cache_tags keyed
// "tag:key"; in DynamoDB it is an item under the TAG#<tag> partition.
type TagEntry struct {
	ID        string `dynamodbav:"-" json:"id" bson:"-" db:"id"`
	PK        string `dynamodbav:"pk" json:"pk" bson:"-" db:"-"`
	SK        string `dynamodbav:"sk" json:"sk" bson:"-" db:"-"`
	TTL       int64  `dynamodbav:"ttl" json:"ttl" bson:"-" db:"ttl"`
	CreatedAt int64  `dynamodbav:"createdAt" json:"createdAt" bson:"-" db:"created_at"`

	Tag      string `dynamodbav:"-" json:"-" bson:"-" db:"tag"`
	CacheKey string `dynamodbav:"-" json:"-" bson:"-" db:"cache_key"`
}

func (t TagEntry) GetTableName() string {
	return "cache_tags"
}

const (
	CachePartitionPrefix = "CACHE#"
	TagPartitionPrefix   = "TAG#"
	CacheSortKey         = "DATA"
)

func (e *CacheEntry) IsExpired() bool {
	return time.Now().Unix() > e.TTL
}

func newEntries(key string, data []byte, tags []string, duration time.Duration) (CacheEntry, []TagEntry) {
	now := time.Now()
	ttl := now.Add(duration).Unix()

	entry := CacheEntry{
		PK:        key,
		Data:      data,
		Tags:      tags,
		TTL:       ttl,
		CreatedAt: now.Unix(),
	}

	tagEntries := make([]TagEntry, 0, len(tags))
	for _, tag := range tags {
		tagEntries = append(tagEntries, TagEntry{
			ID:        tag + ":" + key,
			PK:        TagPartitionPrefix + tag,
			SK:        CachePartitionPrefix + key,
			Tag:       tag,
			CacheKey:  key,
			TTL:       ttl,
			CreatedAt: now.Unix(),
		})
	}
	return entry, tagEntries
}
