package dynamo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// compositeKey builds a DynamoDB primary key with two string attributes (PK + SK).
func compositeKey(pkName, pkValue, skName, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberS{Value: pkValue},
		skName: &types.AttributeValueMemberS{Value: skValue},
	}
}

// exprBuilder accumulates placeholders shared by an update expression and its
// condition expression. Attribute names map to #f<n>, values to :v<n>.
type exprBuilder struct {
	names   map[string]string
	byAttr  map[string]string
	values  map[string]types.AttributeValue
	sets    []string
	removes []string
	err     error
}

func newExprBuilder() *exprBuilder {
	return &exprBuilder{
		names:  make(map[string]string),
		byAttr: make(map[string]string),
		values: make(map[string]types.AttributeValue),
	}
}

func (b *exprBuilder) name(attr string) string {
	if k, ok := b.byAttr[attr]; ok {
		return k
	}
	k := fmt.Sprintf("#f%d", len(b.names))
	b.names[k] = attr
	b.byAttr[attr] = k
	return k
}

func (b *exprBuilder) value(v interface{}) string {
	k := fmt.Sprintf(":v%d", len(b.values))
	av, err := attributevalue.Marshal(v)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("marshal value %s: %w", k, err)
	}
	b.values[k] = av
	return k
}

func (b *exprBuilder) set(attr string, v interface{}) {
	b.sets = append(b.sets, fmt.Sprintf("%s = %s", b.name(attr), b.value(v)))
}

// setIfNotExists writes v only when the attribute is absent, which lets a
// single UpdateItem create a record or leave its identity fields untouched.
func (b *exprBuilder) setIfNotExists(attr string, v interface{}) {
	n := b.name(attr)
	b.sets = append(b.sets, fmt.Sprintf("%s = if_not_exists(%s, %s)", n, n, b.value(v)))
}

func (b *exprBuilder) remove(attr string) {
	b.removes = append(b.removes, b.name(attr))
}

func (b *exprBuilder) update() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if len(b.sets) == 0 && len(b.removes) == 0 {
		return "", errors.New("no fields to update")
	}
	var parts []string
	if len(b.sets) > 0 {
		parts = append(parts, "SET "+strings.Join(b.sets, ", "))
	}
	if len(b.removes) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(b.removes, ", "))
	}
	return strings.Join(parts, " "), nil
}

// attrValues returns nil instead of an empty map; DynamoDB rejects empty
// ExpressionAttributeValues.
func (b *exprBuilder) attrValues() map[string]types.AttributeValue {
	if len(b.values) == 0 {
		return nil
	}
	return b.values
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
