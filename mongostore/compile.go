package mongostore

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/criterion"
)

const (
	fieldCollection = "collection"
	fieldID         = "id"
	fieldCreated    = "created"
	fieldUpdated    = "updated"
	fieldProperties = "properties"
)

//path is the location of a document field in a stored record
func path(field string) string {
	if field == criterion.IDField {
		return fieldID
	}
	return fieldProperties + "." + field
}

var comparisonOperators = map[criterion.Op]string{
	criterion.EQ: "$eq",
	criterion.NE: "$ne",
	criterion.LT: "$lt",
	criterion.LE: "$lte",
	criterion.GT: "$gt",
	criterion.GE: "$gte",
}

func compile(c criterion.Criterion) (bson.M, error) {
	switch x := c.(type) {
	case criterion.Comparison:
		op, ok := comparisonOperators[x.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q", x.Op)
		}
		return bson.M{path(x.Field): bson.M{op: x.Value}}, nil

	case criterion.Membership:
		values := bson.A(x.Values)
		if values == nil {
			values = bson.A{}
		}
		if x.Negated {
			return bson.M{path(x.Field): bson.M{"$nin": values}}, nil
		}
		return bson.M{path(x.Field): bson.M{"$in": values}}, nil

	case criterion.Match:
		pattern := regexp.QuoteMeta(x.Value)
		switch x.Kind {
		case criterion.Prefix:
			pattern = "^" + pattern
		case criterion.Suffix:
			pattern = pattern + "$"
		}
		return bson.M{path(x.Field): bson.M{"$regex": pattern}}, nil

	case criterion.Null:
		if x.Negated {
			return bson.M{path(x.Field): bson.M{"$ne": nil}}, nil
		}
		return bson.M{path(x.Field): nil}, nil

	case criterion.Junction:
		terms := bson.A{}
		for _, t := range x.Terms {
			m, err := compile(t)
			if err != nil {
				return nil, err
			}
			terms = append(terms, m)
		}
		if x.Kind == criterion.OrKind {
			return bson.M{"$or": terms}, nil
		}
		return bson.M{"$and": terms}, nil

	case criterion.Negation:
		m, err := compile(x.Term)
		if err != nil {
			return nil, err
		}
		return bson.M{"$nor": bson.A{m}}, nil
	}
	return nil, fmt.Errorf("unsupported criterion type: %T", c)
}

//queryFilter restricts the criterion to the collection of the query
func queryFilter(typ string, c criterion.Criterion) (bson.M, error) {
	f := bson.M{fieldCollection: typ}
	if c == nil {
		return f, nil
	}
	m, err := compile(c)
	if err != nil {
		return nil, err
	}
	return bson.M{"$and": bson.A{f, m}}, nil
}

func sortOf(sorting api.Sorting) bson.D {
	var d bson.D
	for _, r := range sorting {
		order := 1
		if r.Order == api.Descending {
			order = -1
		}
		d = append(d, bson.E{Key: path(r.Field), Value: order})
	}
	return d
}
