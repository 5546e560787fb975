package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"wayfinder-backend/internal/domain/location"
	apperrors "wayfinder-backend/internal/errors"
)

// Item kinds stored in the table. Every item of a building shares the
// partition key BUILDING#<name>.
const (
	kindBuilding = "building"
	kindNode     = "node"
	kindEdge     = "edge"
)

// QueryAPI is the slice of the DynamoDB client the source uses.
type QueryAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// item is the union of the attributes stored for each kind.
type item struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Kind      string `dynamodbav:"kind"`
	Building  string `dynamodbav:"building"`
	StartNode string `dynamodbav:"start_node,omitempty"`
}

// DynamoDB reads a building definition from a single table.
type DynamoDB struct {
	client   QueryAPI
	table    string
	building string
	logger   *zap.Logger
}

// NewDynamoDB creates a DynamoDB source for one building.
func NewDynamoDB(client QueryAPI, table, building string, logger *zap.Logger) *DynamoDB {
	return &DynamoDB{client: client, table: table, building: building, logger: logger}
}

func (d *DynamoDB) Name() string { return "dynamodb" }

// PartitionKey returns the partition key of a building's items.
func PartitionKey(building string) string {
	return "BUILDING#" + building
}

// Load queries the building's partition. Nodes and edges are returned in
// sort key order so definition order is stable across loads.
func (d *DynamoDB) Load(ctx context.Context) (location.Definition, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(PartitionKey(d.building)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return location.Definition{}, sourceFailed(err, "build key condition: %v", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(d.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return location.Definition{}, sourceFailed(classifyAWSError(err, "Query"), "query %s: %v", d.table, err)
		}
		items = append(items, page.Items...)
	}

	def, err := d.decode(items)
	if err != nil {
		return location.Definition{}, err
	}

	d.logger.Info("Loaded building definition from DynamoDB",
		zap.String("table", d.table),
		zap.String("building", d.building),
		zap.Int("nodes", len(def.Nodes)),
		zap.Int("edges", len(def.Edges)),
	)
	return def, nil
}

func (d *DynamoDB) decode(raw []map[string]types.AttributeValue) (location.Definition, error) {
	type keyed struct {
		sk  string
		raw map[string]types.AttributeValue
	}
	var nodes, edges []keyed
	def := location.Definition{Building: d.building}

	for _, av := range raw {
		var it item
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return location.Definition{}, sourceFailed(err, "decode item: %v", err)
		}
		switch it.Kind {
		case kindBuilding:
			def.Entrance = it.StartNode
		case kindNode:
			nodes = append(nodes, keyed{it.SK, av})
		case kindEdge:
			edges = append(edges, keyed{it.SK, av})
		default:
			d.logger.Warn("Skipping item of unknown kind",
				zap.String("sk", it.SK),
				zap.String("kind", it.Kind),
			)
		}
	}

	if len(nodes) == 0 {
		return location.Definition{}, sourceFailed(nil, "no nodes stored for building %q in %s", d.building, d.table)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].sk < nodes[j].sk })
	sort.Slice(edges, func(i, j int) bool { return edges[i].sk < edges[j].sk })

	def.Nodes = make([]location.Node, 0, len(nodes))
	for _, k := range nodes {
		var n location.Node
		if err := attributevalue.UnmarshalMap(k.raw, &n); err != nil {
			return location.Definition{}, sourceFailed(err, "decode node %s: %v", k.sk, err)
		}
		def.Nodes = append(def.Nodes, n)
	}
	for _, k := range edges {
		var e location.Edge
		if err := attributevalue.UnmarshalMap(k.raw, &e); err != nil {
			return location.Definition{}, sourceFailed(err, "decode edge %s: %v", k.sk, err)
		}
		def.Edges = append(def.Edges, e)
	}
	return def, nil
}

// Items encodes def as the table items Load reads back. It is used by the
// seeding command and by tests.
func Items(def location.Definition) ([]map[string]types.AttributeValue, error) {
	pk := PartitionKey(def.Building)
	out := make([]map[string]types.AttributeValue, 0, len(def.Nodes)+len(def.Edges)+1)

	meta, err := attributevalue.MarshalMap(item{PK: pk, SK: "META", Kind: kindBuilding, Building: def.Building, StartNode: def.Entrance})
	if err != nil {
		return nil, err
	}
	out = append(out, meta)

	// Zero padded positions keep the definition order under sort key order.
	for i, n := range def.Nodes {
		av, err := attributevalue.MarshalMap(n)
		if err != nil {
			return nil, fmt.Errorf("marshal node %s: %w", n.ID, err)
		}
		if err := addKeys(av, item{PK: pk, SK: fmt.Sprintf("NODE#%06d#%s", i, n.ID), Kind: kindNode, Building: def.Building}); err != nil {
			return nil, err
		}
		out = append(out, av)
	}
	for i, e := range def.Edges {
		av, err := attributevalue.MarshalMap(e)
		if err != nil {
			return nil, fmt.Errorf("marshal edge %s-%s: %w", e.From, e.To, err)
		}
		if err := addKeys(av, item{PK: pk, SK: fmt.Sprintf("EDGE#%06d#%s#%s", i, e.From, e.To), Kind: kindEdge, Building: def.Building}); err != nil {
			return nil, err
		}
		out = append(out, av)
	}
	return out, nil
}

func addKeys(av map[string]types.AttributeValue, keys item) error {
	k, err := attributevalue.MarshalMap(keys)
	if err != nil {
		return err
	}
	for name, v := range k {
		av[name] = v
	}
	return nil
}

// classifyAWSError maps SDK failures onto the unified error types.
func classifyAWSError(err error, operation string) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return apperrors.External(apperrors.CodeDynamoDBError.String(), "DynamoDB request failed").
			WithOperation(operation).
			WithCause(err).
			Build()
	}

	code := apiErr.ErrorCode()
	switch {
	case code == "ResourceNotFoundException":
		return apperrors.NotFound(apperrors.CodeDynamoDBError.String(), "DynamoDB table not found").
			WithDetails(apiErr.ErrorMessage()).
			WithOperation(operation).
			WithCause(err).
			Build()
	case code == "ProvisionedThroughputExceededException" || code == "RequestLimitExceeded" ||
		code == "ThrottlingException" || strings.HasSuffix(code, "ServiceUnavailable"):
		return apperrors.External(apperrors.CodeDynamoDBError.String(), "DynamoDB is throttling requests").
			WithDetails(apiErr.ErrorMessage()).
			WithOperation(operation).
			WithRetryable(true).
			WithCause(err).
			Build()
	default:
		return apperrors.External(apperrors.CodeDynamoDBError.String(), "DynamoDB request failed").
			WithDetails(fmt.Sprintf("%s: %s", code, apiErr.ErrorMessage())).
			WithOperation(operation).
			WithCause(err).
			Build()
	}
}
