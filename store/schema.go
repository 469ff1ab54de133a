package store

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/valnk/internal/keys"
)

// TableSchema returns the CreateTableInput for the content table: string
// PK/SK, both secondary indexes projecting every attribute, and a stream
// carrying old and new images for the cascade handler.
func TableSchema(tableName string) *dynamodb.CreateTableInput {
	var attrs []types.AttributeDefinition
	for _, name := range keys.Table.KeyAttrs() {
		attrs = append(attrs, stringAttrDef(name))
	}

	var gsis []types.GlobalSecondaryIndex
	for _, idx := range keys.Indexes() {
		attrs = append(attrs, stringAttrDef(idx.PartitionAttr), stringAttrDef(idx.SortAttr))
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(idx.Name),
			KeySchema: keySchema(idx),
			Projection: &types.Projection{
				ProjectionType: types.ProjectionTypeAll,
			},
		})
	}

	return &dynamodb.CreateTableInput{
		TableName:              aws.String(tableName),
		AttributeDefinitions:   attrs,
		KeySchema:              keySchema(keys.Table),
		GlobalSecondaryIndexes: gsis,
		BillingMode:            types.BillingModePayPerRequest,
		StreamSpecification: &types.StreamSpecification{
			StreamEnabled:  aws.Bool(true),
			StreamViewType: types.StreamViewTypeNewAndOldImages,
		},
	}
}

// TimeToLive returns the input enabling expiry on the ttl attribute.
func TimeToLive(tableName string) *dynamodb.UpdateTimeToLiveInput {
	return &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String(TTLAttr),
			Enabled:       aws.Bool(true),
		},
	}
}

func stringAttrDef(name string) types.AttributeDefinition {
	return types.AttributeDefinition{
		AttributeName: aws.String(name),
		AttributeType: types.ScalarAttributeTypeS,
	}
}

func keySchema(idx keys.Index) []types.KeySchemaElement {
	return []types.KeySchemaElement{
		{AttributeName: aws.String(idx.PartitionAttr), KeyType: types.KeyTypeHash},
		{AttributeName: aws.String(idx.SortAttr), KeyType: types.KeyTypeRange},
	}
}
